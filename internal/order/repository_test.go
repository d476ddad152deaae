// AngelaMos | 2026
// repository_test.go

package order

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

const (
	orderID = "0b9f3a64-27c5-4f07-8f2e-5d1a9b7c3e01"
	userID  = "7f8b0a70-3c41-4a5a-9186-1b2d6a3e9f01"
)

func newTestRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db := &core.Database{DB: sqlx.NewDb(mockDB, "sqlmock")}
	return NewRepository(db, cache.NewMemory[Order](16, time.Minute)), mock
}

func orderRows(o *Order) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "creator_id", "name", "description", "deadline", "placed_at",
		"completed", "completed_at", "claim_count",
	}).AddRow(
		o.ID, o.CreatorID, o.Name, o.Description, o.Deadline, o.PlacedAt,
		o.Completed, o.CompletedAt, o.ClaimCount,
	)
}

func testOrder() *Order {
	creator := userID
	return &Order{
		ID:          orderID,
		CreatorID:   &creator,
		Name:        "novel draft review",
		Description: "first three chapters",
		Deadline:    time.Now().AddDate(0, 1, 0),
		PlacedAt:    time.Now(),
	}
}

func TestClaimReturnsClaimedAt(t *testing.T) {
	repo, mock := newTestRepository(t)

	claimedAt := time.Now()
	mock.ExpectQuery("INSERT INTO claims").
		WithArgs(userID, orderID).
		WillReturnRows(sqlmock.NewRows([]string{"claimed_at"}).
			AddRow(claimedAt))

	claim, err := repo.Claim(context.Background(), userID, orderID)
	require.NoError(t, err)
	assert.Equal(t, userID, claim.UserID)
	assert.Equal(t, orderID, claim.OrderID)
	assert.WithinDuration(t, claimedAt, claim.ClaimedAt, time.Second)
}

func TestClaimDuplicate(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery("INSERT INTO claims").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Claim(context.Background(), userID, orderID)
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestClaimMissingOrder(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery("INSERT INTO claims").
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.Claim(context.Background(), userID, orderID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestClaimInvalidatesOrderCache(t *testing.T) {
	repo, mock := newTestRepository(t)
	o := testOrder()

	mock.ExpectQuery("FROM orders").
		WithArgs(o.ID).
		WillReturnRows(orderRows(o))

	ctx := context.Background()
	cached, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cached.ClaimCount)

	mock.ExpectQuery("INSERT INTO claims").
		WithArgs(userID, o.ID).
		WillReturnRows(sqlmock.NewRows([]string{"claimed_at"}).
			AddRow(time.Now()))

	_, err = repo.Claim(ctx, userID, o.ID)
	require.NoError(t, err)

	// The cached snapshot was invalidated, so the next read sees the new
	// claim count from the database.
	claimed := testOrder()
	claimed.ClaimCount = 1
	mock.ExpectQuery("FROM orders").
		WithArgs(o.ID).
		WillReturnRows(orderRows(claimed))

	fresh, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.ClaimCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteZeroRows(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Complete(context.Background(), orderID, userID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteScopedToCreator(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec("DELETE FROM orders").
		WithArgs(orderID, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), orderID, userID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateSubmissionCommits(t *testing.T) {
	repo, mock := newTestRepository(t)

	doc := &Document{
		ID:        "d1a2b3c4-0000-4000-8000-000000000001",
		Title:     "chapter one",
		Filename:  "chapter1.pdf",
		Extension: "pdf",
	}
	sub := &Submission{UserID: userID, OrderID: orderID}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(doc.ID, doc.Title, doc.Filename, doc.Extension).
		WillReturnRows(sqlmock.NewRows([]string{"uploaded_at"}).
			AddRow(time.Now()))
	mock.ExpectQuery("INSERT INTO submissions").
		WithArgs(userID, orderID, doc.ID).
		WillReturnRows(sqlmock.NewRows([]string{"submitted_at"}).
			AddRow(time.Now()))
	mock.ExpectCommit()

	err := repo.CreateSubmission(context.Background(), doc, sub)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, sub.DocumentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSubmissionWithoutClaim(t *testing.T) {
	repo, mock := newTestRepository(t)

	doc := &Document{
		ID:        "d1a2b3c4-0000-4000-8000-000000000002",
		Title:     "chapter two",
		Filename:  "chapter2.pdf",
		Extension: "pdf",
	}
	sub := &Submission{UserID: userID, OrderID: orderID}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO documents").
		WillReturnRows(sqlmock.NewRows([]string{"uploaded_at"}).
			AddRow(time.Now()))
	mock.ExpectQuery("INSERT INTO submissions").
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	err := repo.CreateSubmission(context.Background(), doc, sub)
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasClaim(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(userID, orderID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := repo.HasClaim(context.Background(), userID, orderID)
	require.NoError(t, err)
	assert.True(t, has)
}
