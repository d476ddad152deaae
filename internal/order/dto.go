// AngelaMos | 2026
// dto.go

package order

import "time"

// DeadlineLayout is the wire format for order deadlines.
const DeadlineLayout = "2006-01-02"

type CreateOrderRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=50"`
	Description string `json:"description" validate:"required,max=5000"`
	Deadline    string `json:"deadline"    validate:"required,datetime=2006-01-02"`
}

type SubmitDocumentRequest struct {
	Title    string `json:"title"    validate:"required,min=1,max=50"`
	Filename string `json:"filename" validate:"required,min=1,max=255"`
	Content  string `json:"content"  validate:"required,base64"`
}

type OrderResponse struct {
	ID          string     `json:"id"`
	CreatorID   *string    `json:"creator_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Deadline    string     `json:"deadline"`
	PlacedAt    time.Time  `json:"placed_at"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ClaimCount  int        `json:"claim_count"`
}

type ClaimResponse struct {
	OrderID   string    `json:"order_id"`
	ClaimedAt time.Time `json:"claimed_at"`
}

type SubmissionResponse struct {
	DocumentID  string    `json:"document_id"`
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Filename    string    `json:"filename"`
	Extension   string    `json:"extension"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func ToOrderResponse(o *Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		CreatorID:   o.CreatorID,
		Name:        o.Name,
		Description: o.Description,
		Deadline:    o.Deadline.Format(DeadlineLayout),
		PlacedAt:    o.PlacedAt,
		Status:      o.Status(),
		CompletedAt: o.CompletedAt,
		ClaimCount:  o.ClaimCount,
	}
}

func ToOrderResponseList(orders []Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderResponse(&orders[i]))
	}
	return out
}

func ToSubmissionResponse(s *SubmissionDetail) SubmissionResponse {
	return SubmissionResponse{
		DocumentID:  s.DocumentID,
		OrderID:     s.OrderID,
		UserID:      s.UserID,
		Title:       s.Title,
		Filename:    s.Filename,
		Extension:   s.Extension,
		SubmittedAt: s.SubmittedAt,
	}
}

func ToSubmissionResponseList(subs []SubmissionDetail) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(subs))
	for i := range subs {
		out = append(out, ToSubmissionResponse(&subs[i]))
	}
	return out
}
