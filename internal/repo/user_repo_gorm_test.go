package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"user-account-service/internal/domain"
)

func newMockRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)
	return NewUserRepo(db), mock
}

func userColumns() []string {
	return []string{"id", "email", "name", "birthday", "password_hash", "role", "state", "created_at", "updated_at"}
}

func TestUserRepo_FindByID(t *testing.T) {
	r, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow("u1", "a@x.com", "A", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), "hash", "USER", "ACTIVE", now, now))

	u, err := r.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Equal(t, domain.StateActive, u.State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_FindByEmail_NotFound(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns()))

	_, err := r.FindByEmail(context.Background(), "missing@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_UniqueViolation(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, Message: "duplicate key value"})

	err := r.Create(context.Background(), &domain.User{ID: "u1", Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_OtherError(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(`INSERT INTO "users"`).WillReturnError(errors.New("connection reset"))

	err := r.Create(context.Background(), &domain.User{ID: "u1", Email: "a@x.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserRepo_UpdateState(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.UpdateState(context.Background(), "u1", domain.StateBlocked))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UpdateState_NotFound(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.UpdateState(context.Background(), "missing", domain.StateBlocked)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestIsDupKey(t *testing.T) {
	assert.True(t, isDupKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDupKey(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.True(t, isDupKey(errors.New("Error 1062 (23000): Duplicate entry 'a@x.com' for key 'users.email'")))
	assert.False(t, isDupKey(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, Message: "fk"}))
}
