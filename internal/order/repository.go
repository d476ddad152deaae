// AngelaMos | 2026
// repository.go

package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/penward/marketplace/internal/cache"
	"github.com/penward/marketplace/internal/core"
)

type Repository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, params ListParams) ([]Order, int, error)
	ListPlacedBy(ctx context.Context, userID string) ([]Order, error)
	ListClaimedBy(ctx context.Context, userID string) ([]Order, error)
	Delete(ctx context.Context, id, creatorID string) error

	Claim(ctx context.Context, userID, orderID string) (*Claim, error)
	HasClaim(ctx context.Context, userID, orderID string) (bool, error)
	Complete(ctx context.Context, orderID, claimantID string) error

	CreateSubmission(
		ctx context.Context,
		doc *Document,
		sub *Submission,
	) error
	ListSubmissions(ctx context.Context, orderID string) ([]SubmissionDetail, error)
}

type ListParams struct {
	Page           int
	PageSize       int
	OpenOnly       bool
	UnclaimedOnly  bool
	DeadlineBefore *time.Time
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// orderColumns carries the derived claim_count on every order row so the
// cached snapshot can answer status questions without a second query.
const orderColumns = `
	o.id, o.creator_id, o.name, o.description, o.deadline, o.placed_at,
	o.completed, o.completed_at,
	(SELECT COUNT(*) FROM claims c WHERE c.order_id = o.id) AS claim_count`

// repository owns the order cache with the same discipline as the user
// repository: invalidate the touched id before the write statement and
// again after it returns.
type repository struct {
	db    *core.Database
	cache cache.Cache[Order]
}

func NewRepository(db *core.Database, c cache.Cache[Order]) Repository {
	return &repository{db: db, cache: c}
}

func (r *repository) Create(ctx context.Context, order *Order) error {
	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	query := `
		INSERT INTO orders (id, creator_id, name, description, deadline)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING placed_at, completed`

	err := r.db.DB.QueryRowxContext(ctx, query,
		order.ID,
		order.CreatorID,
		order.Name,
		order.Description,
		order.Deadline,
	).Scan(&order.PlacedAt, &order.Completed)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create order: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create order: %w", core.ClassifyStoreError(err))
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	if cached, ok := r.cache.Get(ctx, id); ok {
		return &cached, nil
	}

	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders o
		WHERE o.id = $1`, orderColumns)

	var order Order
	err := r.db.DB.GetContext(ctx, &order, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", core.ClassifyStoreError(err))
	}

	r.cache.Put(ctx, id, order)

	return &order, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Order, int, error) {
	params.Normalize()

	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	conditions := []string{"TRUE"}
	args := []any{}

	if params.OpenOnly {
		conditions = append(conditions, "NOT o.completed")
	}
	if params.UnclaimedOnly {
		conditions = append(conditions,
			"NOT EXISTS (SELECT 1 FROM claims c WHERE c.order_id = o.id)")
	}
	if params.DeadlineBefore != nil {
		args = append(args, *params.DeadlineBefore)
		conditions = append(conditions,
			fmt.Sprintf("o.deadline < $%d", len(args)))
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM orders o WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf(
			"count orders: %w",
			core.ClassifyStoreError(err),
		)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders o
		WHERE %s
		ORDER BY o.deadline ASC, o.placed_at DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, len(args)+1, len(args)+2)

	args = append(args, params.PageSize, params.Offset())

	var orders []Order
	if err := r.db.DB.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, fmt.Errorf(
			"list orders: %w",
			core.ClassifyStoreError(err),
		)
	}

	return orders, total, nil
}

func (r *repository) ListPlacedBy(
	ctx context.Context,
	userID string,
) ([]Order, error) {
	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders o
		WHERE o.creator_id = $1
		ORDER BY o.placed_at DESC`, orderColumns)

	var orders []Order
	if err := r.db.DB.SelectContext(ctx, &orders, query, userID); err != nil {
		return nil, fmt.Errorf(
			"list placed orders: %w",
			core.ClassifyStoreError(err),
		)
	}

	return orders, nil
}

func (r *repository) ListClaimedBy(
	ctx context.Context,
	userID string,
) ([]Order, error) {
	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders o
		JOIN claims cl ON cl.order_id = o.id
		WHERE cl.user_id = $1
		ORDER BY cl.claimed_at DESC`, orderColumns)

	var orders []Order
	if err := r.db.DB.SelectContext(ctx, &orders, query, userID); err != nil {
		return nil, fmt.Errorf(
			"list claimed orders: %w",
			core.ClassifyStoreError(err),
		)
	}

	return orders, nil
}

func (r *repository) Delete(ctx context.Context, id, creatorID string) error {
	r.cache.Invalidate(ctx, id)
	defer r.cache.Invalidate(ctx, id)

	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	// Scoped to the creator so ownership is enforced in the same statement
	// as the delete. Claims and submissions cascade at the schema level.
	query := `DELETE FROM orders WHERE id = $1 AND creator_id = $2`

	result, err := r.db.DB.ExecContext(ctx, query, id, creatorID)
	if err != nil {
		return fmt.Errorf("delete order: %w", core.ClassifyStoreError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete order: %w", core.ErrNotFound)
	}

	return nil
}

// Claim inserts the (user, order) pair directly and lets the composite
// primary key arbitrate races: the losing INSERT surfaces 23505, never a
// stale read. No check-then-act.
func (r *repository) Claim(
	ctx context.Context,
	userID, orderID string,
) (*Claim, error) {
	r.cache.Invalidate(ctx, orderID)
	defer r.cache.Invalidate(ctx, orderID)

	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	query := `
		INSERT INTO claims (user_id, order_id)
		VALUES ($1, $2)
		RETURNING claimed_at`

	claim := Claim{UserID: userID, OrderID: orderID}
	err := r.db.DB.QueryRowxContext(ctx, query, userID, orderID).
		Scan(&claim.ClaimedAt)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return nil, fmt.Errorf("claim order: %w", core.ErrDuplicateKey)
		}
		if core.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("claim order: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("claim order: %w", core.ClassifyStoreError(err))
	}

	return &claim, nil
}

func (r *repository) HasClaim(
	ctx context.Context,
	userID, orderID string,
) (bool, error) {
	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	query := `
		SELECT EXISTS(
			SELECT 1 FROM claims WHERE user_id = $1 AND order_id = $2
		)`

	var exists bool
	err := r.db.DB.GetContext(ctx, &exists, query, userID, orderID)
	if err != nil {
		return false, fmt.Errorf(
			"check claim: %w",
			core.ClassifyStoreError(err),
		)
	}

	return exists, nil
}

// Complete marks the order done only when it is still open and the caller
// holds a claim on it, all inside one guarded UPDATE. Zero rows means some
// precondition failed; the service refines which one.
func (r *repository) Complete(
	ctx context.Context,
	orderID, claimantID string,
) error {
	r.cache.Invalidate(ctx, orderID)
	defer r.cache.Invalidate(ctx, orderID)

	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	query := `
		UPDATE orders
		SET completed = TRUE, completed_at = NOW()
		WHERE id = $1
		  AND NOT completed
		  AND EXISTS (
			SELECT 1 FROM claims
			WHERE order_id = $1 AND user_id = $2
		  )`

	result, err := r.db.DB.ExecContext(ctx, query, orderID, claimantID)
	if err != nil {
		return fmt.Errorf("complete order: %w", core.ClassifyStoreError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete order: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("complete order: %w", core.ErrNotFound)
	}

	return nil
}

// CreateSubmission inserts the document row and the submission row in one
// transaction. The composite FK from submissions onto claims rejects
// submitters without a claim at the storage level, so there is no racy
// pre-check here.
func (r *repository) CreateSubmission(
	ctx context.Context,
	doc *Document,
	sub *Submission,
) error {
	r.cache.Invalidate(ctx, sub.OrderID)
	defer r.cache.Invalidate(ctx, sub.OrderID)

	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	err := core.InTx(ctx, r.db.DB, func(tx *sqlx.Tx) error {
		docQuery := `
			INSERT INTO documents (id, title, filename, extension)
			VALUES ($1, $2, $3, $4)
			RETURNING uploaded_at`

		err := tx.QueryRowxContext(ctx, docQuery,
			doc.ID,
			doc.Title,
			doc.Filename,
			doc.Extension,
		).Scan(&doc.UploadedAt)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}

		subQuery := `
			INSERT INTO submissions (user_id, order_id, document_id)
			VALUES ($1, $2, $3)
			RETURNING submitted_at`

		err = tx.QueryRowxContext(ctx, subQuery,
			sub.UserID,
			sub.OrderID,
			doc.ID,
		).Scan(&sub.SubmittedAt)
		if err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}

		sub.DocumentID = doc.ID

		return nil
	})
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create submission: %w", core.ErrForbidden)
		}
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create submission: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf(
			"create submission: %w",
			core.ClassifyStoreError(err),
		)
	}

	return nil
}

func (r *repository) ListSubmissions(
	ctx context.Context,
	orderID string,
) ([]SubmissionDetail, error) {
	ctx, cancel := r.db.StatementContext(ctx)
	defer cancel()

	query := `
		SELECT s.user_id, s.order_id, s.document_id,
		       d.title, d.filename, d.extension, s.submitted_at
		FROM submissions s
		JOIN documents d ON d.id = s.document_id
		WHERE s.order_id = $1
		ORDER BY s.submitted_at DESC`

	var subs []SubmissionDetail
	if err := r.db.DB.SelectContext(ctx, &subs, query, orderID); err != nil {
		return nil, fmt.Errorf(
			"list submissions: %w",
			core.ClassifyStoreError(err),
		)
	}

	return subs, nil
}
