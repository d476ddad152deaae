// AngelaMos | 2026
// entity.go

package order

import "time"

// Order is a placed unit of work. CreatorID is nullable: orders survive
// their creator's account deletion. Status is derived, never stored —
// completed wins, otherwise any claim means "claimed", otherwise "placed".
type Order struct {
	ID          string     `db:"id"           json:"id"`
	CreatorID   *string    `db:"creator_id"   json:"creator_id,omitempty"`
	Name        string     `db:"name"         json:"name"`
	Description string     `db:"description"  json:"description"`
	Deadline    time.Time  `db:"deadline"     json:"deadline"`
	PlacedAt    time.Time  `db:"placed_at"    json:"placed_at"`
	Completed   bool       `db:"completed"    json:"completed"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ClaimCount  int        `db:"claim_count"  json:"claim_count"`
}

const (
	StatusPlaced    = "placed"
	StatusClaimed   = "claimed"
	StatusCompleted = "completed"
)

func (o *Order) Status() string {
	switch {
	case o.Completed:
		return StatusCompleted
	case o.ClaimCount > 0:
		return StatusClaimed
	default:
		return StatusPlaced
	}
}

type Claim struct {
	UserID    string    `db:"user_id"    json:"user_id"`
	OrderID   string    `db:"order_id"   json:"order_id"`
	ClaimedAt time.Time `db:"claimed_at" json:"claimed_at"`
}

type Document struct {
	ID         string    `db:"id"          json:"id"`
	Title      string    `db:"title"       json:"title"`
	Filename   string    `db:"filename"    json:"filename"`
	Extension  string    `db:"extension"   json:"extension"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

type Submission struct {
	UserID      string    `db:"user_id"      json:"user_id"`
	OrderID     string    `db:"order_id"     json:"order_id"`
	DocumentID  string    `db:"document_id"  json:"document_id"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}

// SubmissionDetail joins a submission with its document row for listing.
type SubmissionDetail struct {
	UserID      string    `db:"user_id"      json:"user_id"`
	OrderID     string    `db:"order_id"     json:"order_id"`
	DocumentID  string    `db:"document_id"  json:"document_id"`
	Title       string    `db:"title"        json:"title"`
	Filename    string    `db:"filename"     json:"filename"`
	Extension   string    `db:"extension"    json:"extension"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}
