// AngelaMos | 2026
// service_test.go

package order

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penward/marketplace/internal/blob"
	"github.com/penward/marketplace/internal/config"
	"github.com/penward/marketplace/internal/core"
)

type fakeRepo struct {
	Repository

	orders      map[string]*Order
	claims      map[string]bool
	created     []*Order
	submissions []*Submission
	claimErr    error
	submitErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: map[string]*Order{},
		claims: map[string]bool{},
	}
}

func claimKey(userID, orderID string) string {
	return userID + "/" + orderID
}

func (f *fakeRepo) Create(_ context.Context, o *Order) error {
	f.created = append(f.created, o)
	f.orders[o.ID] = o
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	return o, nil
}

func (f *fakeRepo) Claim(
	_ context.Context,
	userID, orderID string,
) (*Claim, error) {
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	if f.claims[claimKey(userID, orderID)] {
		return nil, fmt.Errorf("claim order: %w", core.ErrDuplicateKey)
	}
	f.claims[claimKey(userID, orderID)] = true
	return &Claim{
		UserID:    userID,
		OrderID:   orderID,
		ClaimedAt: time.Now(),
	}, nil
}

func (f *fakeRepo) HasClaim(
	_ context.Context,
	userID, orderID string,
) (bool, error) {
	return f.claims[claimKey(userID, orderID)], nil
}

func (f *fakeRepo) Complete(
	_ context.Context,
	orderID, claimantID string,
) error {
	o, ok := f.orders[orderID]
	if !ok || o.Completed || !f.claims[claimKey(claimantID, orderID)] {
		return fmt.Errorf("complete order: %w", core.ErrNotFound)
	}
	o.Completed = true
	return nil
}

func (f *fakeRepo) CreateSubmission(
	_ context.Context,
	doc *Document,
	sub *Submission,
) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	if !f.claims[claimKey(sub.UserID, sub.OrderID)] {
		return fmt.Errorf("create submission: %w", core.ErrForbidden)
	}
	sub.DocumentID = doc.ID
	sub.SubmittedAt = time.Now()
	f.submissions = append(f.submissions, sub)
	return nil
}

func (f *fakeRepo) ListSubmissions(
	_ context.Context,
	_ string,
) ([]SubmissionDetail, error) {
	return nil, nil
}

type fakeBlobs struct {
	stored  map[string][]byte
	deleted []string
	nextID  int
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{stored: map[string][]byte{}}
}

func (f *fakeBlobs) Store(
	_ context.Context,
	data []byte,
	_ blob.Kind,
) (string, error) {
	f.nextID++
	id := fmt.Sprintf("blob-%d", f.nextID)
	f.stored[id] = data
	return id, nil
}

func (f *fakeBlobs) Retrieve(_ context.Context, id string) ([]byte, error) {
	data, ok := f.stored[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return data, nil
}

func (f *fakeBlobs) Delete(_ context.Context, id string) error {
	delete(f.stored, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBlobs) Ping(_ context.Context) error { return nil }

func newTestService(repo *fakeRepo, blobs *fakeBlobs) *Service {
	svc := NewService(repo, blobs, config.BlobConfig{
		DocExtensions: []string{"pdf", "txt"},
	})
	return svc
}

func TestCreateOrderRejectsPastDeadline(t *testing.T) {
	svc := newTestService(newFakeRepo(), newFakeBlobs())

	_, err := svc.CreateOrder(context.Background(), userID, CreateOrderRequest{
		Name:        "late order",
		Description: "too late",
		Deadline:    "2020-01-01",
	})
	assert.ErrorIs(t, err, ErrDeadlinePast)
}

func TestCreateOrderAcceptsToday(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeBlobs())
	svc.now = func() time.Time {
		return time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	}

	o, err := svc.CreateOrder(context.Background(), userID, CreateOrderRequest{
		Name:        "same day order",
		Description: "due today",
		Deadline:    "2026-08-28",
	})
	require.NoError(t, err)
	assert.Equal(t, userID, *o.CreatorID)
	assert.Len(t, repo.created, 1)
}

func TestClaimOrderCompleted(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[orderID] = &Order{ID: orderID, Completed: true}
	svc := newTestService(repo, newFakeBlobs())

	_, err := svc.ClaimOrder(context.Background(), userID, orderID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestClaimOrderTwice(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[orderID] = &Order{ID: orderID}
	svc := newTestService(repo, newFakeBlobs())

	ctx := context.Background()
	_, err := svc.ClaimOrder(ctx, userID, orderID)
	require.NoError(t, err)

	_, err = svc.ClaimOrder(ctx, userID, orderID)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestClaimOrderMissing(t *testing.T) {
	svc := newTestService(newFakeRepo(), newFakeBlobs())

	_, err := svc.ClaimOrder(context.Background(), userID, orderID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCompleteOrderNotClaimed(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[orderID] = &Order{ID: orderID}
	svc := newTestService(repo, newFakeBlobs())

	err := svc.CompleteOrder(context.Background(), orderID, userID)
	assert.ErrorIs(t, err, ErrNotClaimed)
}

func TestCompleteOrderAlreadyCompleted(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[orderID] = &Order{ID: orderID, Completed: true}
	svc := newTestService(repo, newFakeBlobs())

	err := svc.CompleteOrder(context.Background(), orderID, userID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestCompleteOrderByClaimant(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[orderID] = &Order{ID: orderID}
	repo.claims[claimKey(userID, orderID)] = true
	svc := newTestService(repo, newFakeBlobs())

	err := svc.CompleteOrder(context.Background(), orderID, userID)
	require.NoError(t, err)
	assert.True(t, repo.orders[orderID].Completed)
}

func TestSubmitDocumentBadExtension(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[orderID] = &Order{ID: orderID}
	repo.claims[claimKey(userID, orderID)] = true
	svc := newTestService(repo, newFakeBlobs())

	_, err := svc.SubmitDocument(
		context.Background(),
		userID,
		orderID,
		SubmitDocumentRequest{
			Title:    "binary",
			Filename: "payload.exe",
			Content:  base64.StdEncoding.EncodeToString([]byte("data")),
		},
	)
	assert.ErrorIs(t, err, ErrExtensionDenied)
}

func TestSubmitDocumentWithoutClaimCleansBlob(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[orderID] = &Order{ID: orderID}
	blobs := newFakeBlobs()
	svc := newTestService(repo, blobs)

	_, err := svc.SubmitDocument(
		context.Background(),
		userID,
		orderID,
		SubmitDocumentRequest{
			Title:    "chapter one",
			Filename: "chapter1.pdf",
			Content:  base64.StdEncoding.EncodeToString([]byte("draft")),
		},
	)
	assert.ErrorIs(t, err, ErrNotClaimed)
	assert.Len(t, blobs.deleted, 1)
	assert.Empty(t, blobs.stored)
}

func TestSubmitDocumentStoresBlobAndRow(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[orderID] = &Order{ID: orderID}
	repo.claims[claimKey(userID, orderID)] = true
	blobs := newFakeBlobs()
	svc := newTestService(repo, blobs)

	sub, err := svc.SubmitDocument(
		context.Background(),
		userID,
		orderID,
		SubmitDocumentRequest{
			Title:    "chapter one",
			Filename: "Chapter1.PDF",
			Content:  base64.StdEncoding.EncodeToString([]byte("draft")),
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "pdf", sub.Extension)
	assert.Len(t, repo.submissions, 1)
	assert.Len(t, blobs.stored, 1)
}

func TestSubmitDocumentCompletedOrder(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[orderID] = &Order{ID: orderID, Completed: true}
	svc := newTestService(repo, newFakeBlobs())

	_, err := svc.SubmitDocument(
		context.Background(),
		userID,
		orderID,
		SubmitDocumentRequest{
			Title:    "chapter one",
			Filename: "chapter1.pdf",
			Content:  base64.StdEncoding.EncodeToString([]byte("draft")),
		},
	)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestListSubmissionsForbidden(t *testing.T) {
	repo := newFakeRepo()
	creator := "someone-else"
	repo.orders[orderID] = &Order{ID: orderID, CreatorID: &creator}
	svc := newTestService(repo, newFakeBlobs())

	_, err := svc.ListSubmissions(context.Background(), userID, orderID)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestOrderStatus(t *testing.T) {
	o := &Order{}
	assert.Equal(t, StatusPlaced, o.Status())

	o.ClaimCount = 2
	assert.Equal(t, StatusClaimed, o.Status())

	o.Completed = true
	assert.Equal(t, StatusCompleted, o.Status())
}
