// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penward/marketplace/internal/cache"
	"github.com/penward/marketplace/internal/core"
)

func newTestRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db := &core.Database{DB: sqlx.NewDb(mockDB, "sqlmock")}
	return NewRepository(db, cache.NewMemory[User](16, time.Minute)), mock
}

func userRows(u *User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "picture",
		"created_at", "updated_at",
	}).AddRow(
		u.ID, u.Name, u.Email, u.PasswordHash, u.Picture,
		u.CreatedAt, u.UpdatedAt,
	)
}

func testUser() *User {
	now := time.Now()
	return &User{
		ID:           "7f8b0a70-3c41-4a5a-9186-1b2d6a3e9f01",
		Name:         "wordsmith",
		Email:        "wordsmith@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		Picture:      PictureDefault,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateDuplicateName(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), testUser())
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDPopulatesCache(t *testing.T) {
	repo, mock := newTestRepository(t)
	u := testUser()

	// One expectation only: the second read must be served from cache.
	mock.ExpectQuery("FROM users").
		WithArgs(u.ID).
		WillReturnRows(userRows(u))

	ctx := context.Background()

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Name, got.Name)

	again, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, again.Email)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery("FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	repo, mock := newTestRepository(t)
	u := testUser()

	mock.ExpectQuery("FROM users").
		WithArgs(u.ID).
		WillReturnRows(userRows(u))

	ctx := context.Background()
	_, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)

	mock.ExpectQuery("UPDATE users").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).
			AddRow(time.Now()))

	u.Name = "penmaster"
	require.NoError(t, repo.Update(ctx, u))

	// The stale snapshot must be gone: the next read hits the database.
	fresh := testUser()
	fresh.Name = "penmaster"
	mock.ExpectQuery("FROM users").
		WithArgs(u.ID).
		WillReturnRows(userRows(fresh))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "penmaster", got.Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDuplicateName(t *testing.T) {
	repo, mock := newTestRepository(t)
	u := testUser()

	mock.ExpectQuery("UPDATE users").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Update(context.Background(), u)
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestDeleteMissingUser(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec("DELETE FROM users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestExistsByName(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("wordsmith").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByName(context.Background(), "wordsmith")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestListEscapesSearchPattern(t *testing.T) {
	repo, mock := newTestRepository(t)
	u := testUser()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WithArgs(`%o\_b%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM users").
		WithArgs(`%o\_b%`, 20, 0).
		WillReturnRows(userRows(u))

	users, total, err := repo.List(
		context.Background(),
		ListParams{Search: "o_b"},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWithoutSearch(t *testing.T) {
	repo, mock := newTestRepository(t)
	u := testUser()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM users").
		WithArgs(20, 0).
		WillReturnRows(userRows(u))

	users, total, err := repo.List(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
}
