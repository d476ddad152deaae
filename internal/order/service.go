// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/penward/marketplace/internal/blob"
	"github.com/penward/marketplace/internal/config"
	"github.com/penward/marketplace/internal/core"
)

// Domain errors the handler maps to specific responses.
var (
	ErrAlreadyClaimed   = errors.New("order already claimed by this user")
	ErrNotClaimed       = errors.New("order not claimed by this user")
	ErrAlreadyCompleted = errors.New("order already completed")
	ErrDeadlinePast     = errors.New("deadline is in the past")
	ErrExtensionDenied  = errors.New("file extension not allowed")
)

type Service struct {
	repo  Repository
	blobs blob.Store
	cfg   config.BlobConfig

	// now is swapped in tests to pin deadline validation.
	now func() time.Time
}

func NewService(
	repo Repository,
	blobs blob.Store,
	cfg config.BlobConfig,
) *Service {
	return &Service{
		repo:  repo,
		blobs: blobs,
		cfg:   cfg,
		now:   time.Now,
	}
}

// CreateOrder places a new order for creatorID. The deadline must not lie
// before today (UTC date comparison, time of day ignored).
func (s *Service) CreateOrder(
	ctx context.Context,
	creatorID string,
	req CreateOrderRequest,
) (*Order, error) {
	if creatorID == "" {
		return nil, fmt.Errorf("create order: %w", core.ErrUnauthorized)
	}

	deadline, err := time.Parse(DeadlineLayout, req.Deadline)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", core.ErrInvalidInput)
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	if deadline.Before(today) {
		return nil, fmt.Errorf("create order: %w", ErrDeadlinePast)
	}

	o := &Order{
		ID:          uuid.New().String(),
		CreatorID:   &creatorID,
		Name:        req.Name,
		Description: req.Description,
		Deadline:    deadline,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListOrders(
	ctx context.Context,
	params ListParams,
) ([]Order, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) ListPlaced(
	ctx context.Context,
	userID string,
) ([]Order, error) {
	return s.repo.ListPlacedBy(ctx, userID)
}

func (s *Service) ListClaimed(
	ctx context.Context,
	userID string,
) ([]Order, error) {
	return s.repo.ListClaimedBy(ctx, userID)
}

// ClaimOrder records userID's claim. Completed orders reject new claims;
// the duplicate-claim race is settled by the claims primary key, so two
// concurrent claims by the same user resolve to exactly one row and one
// ErrAlreadyClaimed.
func (s *Service) ClaimOrder(
	ctx context.Context,
	userID, orderID string,
) (*Claim, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.Completed {
		return nil, fmt.Errorf("claim order: %w", ErrAlreadyCompleted)
	}

	claim, err := s.repo.Claim(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, fmt.Errorf("claim order: %w", ErrAlreadyClaimed)
		}
		return nil, err
	}

	return claim, nil
}

// CompleteOrder marks the order done on behalf of a claimant. The guarded
// update fails closed; this refines the zero-row outcome into the precise
// precondition that did not hold.
func (s *Service) CompleteOrder(
	ctx context.Context,
	orderID, userID string,
) error {
	err := s.repo.Complete(ctx, orderID, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return err
	}

	o, getErr := s.repo.GetByID(ctx, orderID)
	if getErr != nil {
		return getErr
	}

	if o.Completed {
		return fmt.Errorf("complete order: %w", ErrAlreadyCompleted)
	}

	return fmt.Errorf("complete order: %w", ErrNotClaimed)
}

// DeleteOrder removes an order its creator placed. Submitted document rows
// cascade; their blobs are deleted best-effort first.
func (s *Service) DeleteOrder(ctx context.Context, orderID, userID string) error {
	subs, err := s.repo.ListSubmissions(ctx, orderID)
	if err != nil {
		return err
	}

	err = s.repo.Delete(ctx, orderID, userID)
	if err == nil {
		for _, sub := range subs {
			if delErr := s.blobs.Delete(ctx, sub.DocumentID); delErr != nil {
				slog.Warn("orphaned document blob",
					"blob_id", sub.DocumentID,
					"error", delErr,
				)
			}
		}
		return nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return err
	}

	// Distinguish "no such order" from "not yours".
	if _, getErr := s.repo.GetByID(ctx, orderID); getErr != nil {
		return getErr
	}

	return fmt.Errorf("delete order: %w", core.ErrForbidden)
}

// SubmitDocument stores the uploaded payload and records the submission.
// The blob is written first; if the database rejects the submission the
// blob is removed again. The composite foreign key onto claims enforces
// "submitter holds a claim" without a racy pre-check.
func (s *Service) SubmitDocument(
	ctx context.Context,
	userID, orderID string,
	req SubmitDocumentRequest,
) (*SubmissionDetail, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.Completed {
		return nil, fmt.Errorf("submit document: %w", ErrAlreadyCompleted)
	}

	ext := extension(req.Filename)
	if !s.extensionAllowed(ext) {
		return nil, fmt.Errorf("submit document: %w", ErrExtensionDenied)
	}

	data, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		return nil, fmt.Errorf(
			"submit document: decode content: %w",
			core.ErrInvalidInput,
		)
	}

	blobID, err := s.blobs.Store(ctx, data, blob.KindDocument)
	if err != nil {
		return nil, fmt.Errorf("submit document: %w", err)
	}

	doc := &Document{
		ID:        blobID,
		Title:     req.Title,
		Filename:  req.Filename,
		Extension: ext,
	}
	sub := &Submission{
		UserID:  userID,
		OrderID: orderID,
	}

	if err := s.repo.CreateSubmission(ctx, doc, sub); err != nil {
		if delErr := s.blobs.Delete(ctx, blobID); delErr != nil {
			slog.Warn("orphaned document blob",
				"blob_id", blobID,
				"error", delErr,
			)
		}
		if errors.Is(err, core.ErrForbidden) {
			return nil, fmt.Errorf("submit document: %w", ErrNotClaimed)
		}
		return nil, err
	}

	return &SubmissionDetail{
		UserID:      sub.UserID,
		OrderID:     sub.OrderID,
		DocumentID:  doc.ID,
		Title:       doc.Title,
		Filename:    doc.Filename,
		Extension:   doc.Extension,
		SubmittedAt: sub.SubmittedAt,
	}, nil
}

// ListSubmissions is visible to the order's creator and its claimants.
func (s *Service) ListSubmissions(
	ctx context.Context,
	callerID, orderID string,
) ([]SubmissionDetail, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	allowed := o.CreatorID != nil && *o.CreatorID == callerID
	if !allowed {
		hasClaim, claimErr := s.repo.HasClaim(ctx, callerID, orderID)
		if claimErr != nil {
			return nil, claimErr
		}
		allowed = hasClaim
	}

	if !allowed {
		return nil, fmt.Errorf("list submissions: %w", core.ErrForbidden)
	}

	return s.repo.ListSubmissions(ctx, orderID)
}

func (s *Service) extensionAllowed(ext string) bool {
	for _, allowed := range s.cfg.DocExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
