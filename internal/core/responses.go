// AngelaMos | 2026
// responses.go

package core

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type errorResponse struct {
	Error *AppError `json:"error"`
}

type paginatedResponse struct {
	Data       any `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if payload == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func OK(w http.ResponseWriter, payload any) {
	writeJSON(w, http.StatusOK, payload)
}

func Created(w http.ResponseWriter, payload any) {
	writeJSON(w, http.StatusCreated, payload)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Paginated(w http.ResponseWriter, data any, page, pageSize, total int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	writeJSON(w, http.StatusOK, paginatedResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	})
}

func BadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error: NewAppError(http.StatusBadRequest, "bad_request", message),
	})
}

func NotFound(w http.ResponseWriter, resource string) {
	writeJSON(w, http.StatusNotFound, errorResponse{
		Error: NewAppError(
			http.StatusNotFound,
			"not_found",
			resource+" not found",
		),
	})
}

func Conflict(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusConflict, errorResponse{
		Error: NewAppError(http.StatusConflict, "conflict", message),
	})
}

func Unauthorized(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{
		Error: UnauthorizedError(message),
	})
}

func Forbidden(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusForbidden, errorResponse{
		Error: ForbiddenError(message),
	})
}

func UnprocessableEntity(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error: NewAppError(
			http.StatusUnprocessableEntity,
			"unprocessable",
			message,
		),
	})
}

func ServiceUnavailable(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{
		Error: NewAppError(
			http.StatusServiceUnavailable,
			"unavailable",
			message,
		),
	})
}

func InternalServerError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: NewAppError(
			http.StatusInternalServerError,
			"internal",
			"internal server error",
		),
	})
}

// JSONError maps an error to its HTTP envelope. AppErrors pass through
// with their own status; sentinels get the standard mapping; anything
// unrecognized is logged and reported as a 500.
func JSONError(w http.ResponseWriter, err error) {
	if appErr, ok := IsAppError(err); ok {
		writeJSON(w, appErr.Status, errorResponse{Error: appErr})
		return
	}

	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidFormat):
		BadRequest(w, err.Error())
	case errors.Is(err, ErrNotFound):
		NotFound(w, "resource")
	case errors.Is(err, ErrDuplicateKey):
		Conflict(w, "resource already exists")
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenRevoked),
		errors.Is(err, ErrTokenInvalid):
		Unauthorized(w, "")
	case errors.Is(err, ErrForbidden):
		Forbidden(w, "")
	case errors.Is(err, ErrUnavailable):
		ServiceUnavailable(w, "service temporarily unavailable")
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w)
	}
}
