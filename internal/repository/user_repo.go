package repository

import (
	"context"
	"errors"
	"fmt"

	"contact_book/internal/model"
	"contact_book/internal/utils"

	"github.com/jackc/pgx/v5"
)

// UserRepository defines operations for user data. It is the credential
// store: every write path that touches the password runs the hashing hook
// before the row reaches the database.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, user *model.User) error
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
}

type userRepository struct {
	db   DB
	hash func(string) (string, error)
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db, hash: utils.HashPassword}
}

// ensureHashed hashes the staged password when the record carries the
// explicit NeedsHashing flag. An already-hashed record passes through
// untouched, so repeated writes never double-hash.
func (r *userRepository) ensureHashed(user *model.User) error {
	if !user.NeedsHashing {
		return nil
	}
	hashed, err := r.hash(user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hashed
	user.NeedsHashing = false
	return nil
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.ensureHashed(user); err != nil {
		return err
	}
	sql := `INSERT INTO users (phone, password_hash, role, created_at)
            VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRow(ctx, sql, user.Phone, user.PasswordHash, user.Role, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUniqueViolation
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdatePassword persists a password change for an existing user
func (r *userRepository) UpdatePassword(ctx context.Context, user *model.User) error {
	if err := r.ensureHashed(user); err != nil {
		return err
	}
	sql := `UPDATE users SET password_hash = $1 WHERE id = $2`
	tag, err := r.db.Exec(ctx, sql, user.PasswordHash, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found for password update", user.ID)
	}
	return nil
}

// FindByPhone retrieves a user by their phone number
func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT id, phone, password_hash, role, created_at FROM users WHERE phone = $1`
	err := r.db.QueryRow(ctx, sql, phone).Scan(&user.ID, &user.Phone, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // User not found is not an error for this method's contract, service layer handles it
		}
		return nil, fmt.Errorf("failed to find user by phone: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT id, phone, password_hash, role, created_at FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, sql, id).Scan(&user.ID, &user.Phone, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}
