// AngelaMos | 2026
// handler.go

package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/penward/marketplace/internal/core"
	"github.com/penward/marketplace/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)

		r.Route("/{orderID}", func(r chi.Router) {
			r.Get("/", h.GetOrder)
			r.Delete("/", h.DeleteOrder)
			r.Post("/claim", h.ClaimOrder)
			r.Post("/complete", h.CompleteOrder)
			r.Post("/submissions", h.SubmitDocument)
			r.Get("/submissions", h.ListSubmissions)
		})
	})

	r.With(authenticator).Get("/users/me/orders", h.ListMyOrders)
	r.With(authenticator).Get("/users/me/claims", h.ListMyClaims)
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	o, err := h.service.CreateOrder(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDeadlinePast):
			core.UnprocessableEntity(w, "deadline must not be in the past")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "invalid deadline")
		default:
			core.JSONError(w, err)
		}
		return
	}

	core.Created(w, ToOrderResponse(o))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	o, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "order")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToOrderResponse(o))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	params, err := listParamsFromQuery(r)
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	orders, total, err := h.service.ListOrders(r.Context(), params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	params.Normalize()
	core.Paginated(
		w,
		ToOrderResponseList(orders),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	orderID := chi.URLParam(r, "orderID")

	err := h.service.DeleteOrder(r.Context(), orderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "order")
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "only the creator can delete an order")
		default:
			core.JSONError(w, err)
		}
		return
	}

	core.NoContent(w)
}

func (h *Handler) ClaimOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	orderID := chi.URLParam(r, "orderID")

	claim, err := h.service.ClaimOrder(r.Context(), userID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "order")
		case errors.Is(err, ErrAlreadyClaimed):
			core.Conflict(w, "order already claimed")
		case errors.Is(err, ErrAlreadyCompleted):
			core.Conflict(w, "order already completed")
		default:
			core.JSONError(w, err)
		}
		return
	}

	core.Created(w, ClaimResponse{
		OrderID:   claim.OrderID,
		ClaimedAt: claim.ClaimedAt,
	})
}

func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	orderID := chi.URLParam(r, "orderID")

	err := h.service.CompleteOrder(r.Context(), orderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "order")
		case errors.Is(err, ErrAlreadyCompleted):
			core.Conflict(w, "order already completed")
		case errors.Is(err, ErrNotClaimed):
			core.Forbidden(w, "order must be claimed before completion")
		default:
			core.JSONError(w, err)
		}
		return
	}

	core.NoContent(w)
}

func (h *Handler) SubmitDocument(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	orderID := chi.URLParam(r, "orderID")

	var req SubmitDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sub, err := h.service.SubmitDocument(r.Context(), userID, orderID, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "order")
		case errors.Is(err, ErrNotClaimed):
			core.Forbidden(w, "order must be claimed before submitting")
		case errors.Is(err, ErrAlreadyCompleted):
			core.Conflict(w, "order already completed")
		case errors.Is(err, ErrExtensionDenied):
			core.UnprocessableEntity(w, "file extension not allowed")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, err.Error())
		default:
			core.JSONError(w, err)
		}
		return
	}

	core.Created(w, ToSubmissionResponse(sub))
}

func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	orderID := chi.URLParam(r, "orderID")

	subs, err := h.service.ListSubmissions(r.Context(), userID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "order")
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "only the creator and claimants can view submissions")
		default:
			core.JSONError(w, err)
		}
		return
	}

	core.OK(w, ToSubmissionResponseList(subs))
}

func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	orders, err := h.service.ListPlaced(r.Context(), userID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToOrderResponseList(orders))
}

func (h *Handler) ListMyClaims(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	orders, err := h.service.ListClaimed(r.Context(), userID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToOrderResponseList(orders))
}

func listParamsFromQuery(r *http.Request) (ListParams, error) {
	q := r.URL.Query()
	params := ListParams{}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return params, errors.New("page must be an integer")
		}
		params.Page = page
	}

	if v := q.Get("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return params, errors.New("page_size must be an integer")
		}
		params.PageSize = size
	}

	switch q.Get("status") {
	case "":
	case "open":
		params.OpenOnly = true
	case "unclaimed":
		params.OpenOnly = true
		params.UnclaimedOnly = true
	default:
		return params, errors.New("status must be open or unclaimed")
	}

	if v := q.Get("deadline_before"); v != "" {
		t, err := time.Parse(DeadlineLayout, v)
		if err != nil {
			return params, errors.New("deadline_before must be YYYY-MM-DD")
		}
		params.DeadlineBefore = &t
	}

	return params, nil
}
