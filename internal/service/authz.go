package service

import "contact_book/internal/model"

// Actor is the authenticated caller, as asserted by its token
type Actor struct {
	ID    int
	Roles []string
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	return model.IsAdmin(a.Roles)
}

// CanRead reports whether the actor may see the contact. Admins see every
// contact; everyone else sees only their own.
func CanRead(a Actor, c *model.Contact) bool {
	return a.IsAdmin() || c.OwnerID == a.ID
}

// CanModify reports whether the actor may change or delete the contact.
// Mutation is owner-only; there is no admin bypass on write paths.
func CanModify(a Actor, c *model.Contact) bool {
	return c.OwnerID == a.ID
}
