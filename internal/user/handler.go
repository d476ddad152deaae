// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"

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
	r.Get("/users/check-name", h.CheckName)
	r.Get("/users/{userID}/name", h.GetUsername)
	r.Get("/images/{blobID}", h.GetImage)

	r.With(authenticator).Get("/users/me", h.GetMe)
	r.With(authenticator).Put("/users/me", h.UpdateMe)
	r.With(authenticator).Delete("/users/me", h.DeleteMe)
	r.With(authenticator).Post("/users/me/password-check", h.PasswordCheck)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	u, err := h.service.GetMe(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		case errors.Is(err, core.ErrDuplicateKey):
			core.Conflict(w, "username already taken")
		case errors.Is(err, core.ErrInvalidFormat):
			core.UnprocessableEntity(w, "profile picture must be a PNG")
		default:
			core.JSONError(w, err)
		}
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	err := h.service.DeleteAccount(r.Context(), userID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrUnauthorized):
			core.Unauthorized(w, "invalid password")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		default:
			core.JSONError(w, err)
		}
		return
	}

	core.NoContent(w)
}

func (h *Handler) PasswordCheck(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req PasswordCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	err := h.service.VerifyPassword(r.Context(), userID, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			core.Unauthorized(w, "invalid password")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) CheckName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		core.BadRequest(w, "name query parameter is required")
		return
	}

	exists, err := h.service.NameExists(r.Context(), name)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, NameCheckResponse{Exists: exists})
}

func (h *Handler) GetUsername(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	name, err := h.service.Username(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, UsernameResponse{Name: name})
}

func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	blobID := chi.URLParam(r, "blobID")

	data, err := h.service.Picture(r.Context(), blobID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "image")
			return
		}
		core.JSONError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	//nolint:errcheck // best-effort response write
	_, _ = w.Write(data)
}
