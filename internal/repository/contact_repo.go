package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contact_book/internal/model"

	"github.com/jackc/pgx/v5"
)

const contactColumns = `id, owner_id, firstname, lastname, phone, profile_image, note, created_at, updated_at`

// ContactRepository defines operations for contact data
type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	FindByID(ctx context.Context, id int64) (*model.Contact, error)
	FindByOwner(ctx context.Context, ownerID int) ([]model.Contact, error)
	FindAll(ctx context.Context) ([]model.Contact, error)
	FindByOwnerAndPhone(ctx context.Context, ownerID int, phone string) (*model.Contact, error)
	Update(ctx context.Context, contact *model.Contact) error
	UpdateProfileImage(ctx context.Context, id int64, image *string) (time.Time, error)
	Delete(ctx context.Context, id int64) error
}

type contactRepository struct {
	db DB
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db DB) ContactRepository {
	return &contactRepository{db: db}
}

// Create inserts a new contact. A race on the per-owner phone constraint
// surfaces as ErrUniqueViolation.
func (r *contactRepository) Create(ctx context.Context, c *model.Contact) error {
	sql := `INSERT INTO contacts (owner_id, firstname, lastname, phone, profile_image, note, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, sql,
		c.OwnerID, c.Firstname, c.Lastname, c.Phone, c.ProfileImage, c.Note, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUniqueViolation
		}
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// FindByID retrieves a contact by its ID
func (r *contactRepository) FindByID(ctx context.Context, id int64) (*model.Contact, error) {
	c := &model.Contact{}
	sql := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`
	err := r.db.QueryRow(ctx, sql, id).Scan(
		&c.ID, &c.OwnerID, &c.Firstname, &c.Lastname, &c.Phone, &c.ProfileImage, &c.Note, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find contact by ID: %w", err)
	}
	return c, nil
}

// FindByOwner retrieves all contacts belonging to one user
func (r *contactRepository) FindByOwner(ctx context.Context, ownerID int) ([]model.Contact, error) {
	sql := `SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = $1 ORDER BY lastname, firstname`
	rows, err := r.db.Query(ctx, sql, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts by owner: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

// FindAll retrieves every contact regardless of owner (admin listing)
func (r *contactRepository) FindAll(ctx context.Context) ([]model.Contact, error) {
	sql := `SELECT ` + contactColumns + ` FROM contacts ORDER BY owner_id, lastname, firstname`
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query all contacts: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

// FindByOwnerAndPhone retrieves the contact with the given phone in one
// user's list, or nil when the number is free for that user
func (r *contactRepository) FindByOwnerAndPhone(ctx context.Context, ownerID int, phone string) (*model.Contact, error) {
	c := &model.Contact{}
	sql := `SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = $1 AND phone = $2`
	err := r.db.QueryRow(ctx, sql, ownerID, phone).Scan(
		&c.ID, &c.OwnerID, &c.Firstname, &c.Lastname, &c.Phone, &c.ProfileImage, &c.Note, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find contact by owner and phone: %w", err)
	}
	return c, nil
}

// Update modifies an existing contact. The owner column is never written.
func (r *contactRepository) Update(ctx context.Context, c *model.Contact) error {
	sql := `UPDATE contacts
            SET firstname = $1, lastname = $2, phone = $3, note = $4, updated_at = NOW()
            WHERE id = $5 RETURNING updated_at`
	err := r.db.QueryRow(ctx, sql, c.Firstname, c.Lastname, c.Phone, c.Note, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("contact %d not found for update", c.ID)
		}
		if isUniqueViolation(err) {
			return ErrUniqueViolation
		}
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

// UpdateProfileImage sets or clears the stored image reference and refreshes
// updated_at
func (r *contactRepository) UpdateProfileImage(ctx context.Context, id int64, image *string) (time.Time, error) {
	sql := `UPDATE contacts SET profile_image = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`
	var updatedAt time.Time
	err := r.db.QueryRow(ctx, sql, image, id).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, fmt.Errorf("contact %d not found for image update", id)
		}
		return time.Time{}, fmt.Errorf("failed to update profile image: %w", err)
	}
	return updatedAt, nil
}

// Delete removes a contact from the database
func (r *contactRepository) Delete(ctx context.Context, id int64) error {
	sql := `DELETE FROM contacts WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("contact %d not found for deletion", id)
	}
	return nil
}

func scanContacts(rows pgx.Rows) ([]model.Contact, error) {
	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(
			&c.ID, &c.OwnerID, &c.Firstname, &c.Lastname, &c.Phone, &c.ProfileImage, &c.Note, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contact row: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact rows: %w", err)
	}
	return contacts, nil
}
