package model

import "time"

// Contact is a single entry in a user's contact list. A contact always
// belongs to exactly one owner, assigned at creation and immutable after.
type Contact struct {
	ID           int64     `json:"id"`
	OwnerID      int       `json:"owner_id"`
	Firstname    string    `json:"firstname"`
	Lastname     string    `json:"lastname"`
	Phone        string    `json:"phone"`
	ProfileImage *string   `json:"profileImage,omitempty"` // Stored object name, nil when no image uploaded
	Note         *string   `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateContactRequest carries the multipart form fields for contact creation
type CreateContactRequest struct {
	Firstname string  `form:"firstname" binding:"required"`
	Lastname  string  `form:"lastname" binding:"required"`
	Phone     string  `form:"phone" binding:"required,max=20"`
	Note      *string `form:"note"`
}

// UpdateContactRequest carries the multipart form fields for a partial
// contact update. Pointers distinguish "absent" from "set to empty".
type UpdateContactRequest struct {
	Firstname *string `form:"firstname"`
	Lastname  *string `form:"lastname"`
	Phone     *string `form:"phone" binding:"omitempty,max=20"`
	Note      *string `form:"note"`
}
