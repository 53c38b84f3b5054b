package repository

import (
	"context"
	"testing"
	"time"

	"contact_book/internal/model"
	"contact_book/internal/utils"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserRepo(t *testing.T) (UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

func TestUserRepository_Create_HashesStagedPassword(t *testing.T) {
	repo, mock := newUserRepo(t)

	user := &model.User{Phone: "+33600000001", Role: model.RoleUser, CreatedAt: time.Now()}
	user.SetPassword("plaintext-secret")

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(user.Phone, pgxmock.AnyArg(), model.RoleUser, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(1))

	err := repo.Create(context.Background(), user)

	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.False(t, user.NeedsHashing)
	assert.NotEqual(t, "plaintext-secret", user.PasswordHash)
	assert.True(t, utils.CheckPasswordHash("plaintext-secret", user.PasswordHash))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_AlreadyHashedPassesThrough(t *testing.T) {
	repo, mock := newUserRepo(t)

	hashed, err := utils.HashPassword("plaintext-secret")
	require.NoError(t, err)

	// NeedsHashing unset: the hook must not touch the stored hash
	user := &model.User{Phone: "+33600000002", PasswordHash: hashed, Role: model.RoleUser, CreatedAt: time.Now()}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(user.Phone, hashed, model.RoleUser, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(2))

	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, hashed, user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	repo, mock := newUserRepo(t)

	user := &model.User{Phone: "+33600000003", Role: model.RoleUser, CreatedAt: time.Now()}
	user.SetPassword("plaintext-secret")

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(user.Phone, pgxmock.AnyArg(), model.RoleUser, pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	err := repo.Create(context.Background(), user)
	assert.ErrorIs(t, err, ErrUniqueViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword_HashesStagedPassword(t *testing.T) {
	repo, mock := newUserRepo(t)

	user := &model.User{ID: 5, Phone: "+33600000004", Role: model.RoleUser}
	user.SetPassword("new-secret")

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(pgxmock.AnyArg(), 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), user))
	assert.NotEqual(t, "new-secret", user.PasswordHash)
	assert.True(t, utils.CheckPasswordHash("new-secret", user.PasswordHash))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByPhone_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("SELECT id, phone, password_hash, role, created_at FROM users WHERE phone").
		WithArgs("+33699999999").
		WillReturnError(pgx.ErrNoRows)

	user, err := repo.FindByPhone(context.Background(), "+33699999999")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID(t *testing.T) {
	repo, mock := newUserRepo(t)
	created := time.Now()

	mock.ExpectQuery("SELECT id, phone, password_hash, role, created_at FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(pgxmock.NewRows([]string{"id", "phone", "password_hash", "role", "created_at"}).
			AddRow(7, "+33600000007", "hash", model.RoleAdmin, created))

	user, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "+33600000007", user.Phone)
	assert.Equal(t, model.RoleAdmin, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}
