// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penward/marketplace/internal/user"
)

type fakeLister struct {
	lastParams user.ListParams
	users      []user.User
	total      int
}

func (f *fakeLister) List(
	_ context.Context,
	params user.ListParams,
) ([]user.User, int, error) {
	f.lastParams = params
	return f.users, f.total, nil
}

func passThrough(next http.Handler) http.Handler { return next }

func TestListUsersRoute(t *testing.T) {
	now := time.Now()
	lister := &fakeLister{
		users: []user.User{{
			ID:        "7f8b0a70-3c41-4a5a-9186-1b2d6a3e9f01",
			Name:      "wordsmith",
			Email:     "smith@example.com",
			Picture:   user.PictureDefault,
			CreatedAt: now,
			UpdatedAt: now,
		}},
		total: 1,
	}
	h := NewHandler(HandlerConfig{Users: lister})

	r := chi.NewRouter()
	h.RegisterRoutes(r, passThrough)

	req := httptest.NewRequest(
		http.MethodGet,
		"/admin/users?page=2&page_size=5&search=smith",
		nil,
	)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, lister.lastParams.Page)
	assert.Equal(t, 5, lister.lastParams.PageSize)
	assert.Equal(t, "smith", lister.lastParams.Search)

	var body struct {
		Data  []user.UserResponse `json:"data"`
		Page  int                 `json:"page"`
		Total int                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 1, body.Total)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "wordsmith", body.Data[0].Name)
}

func TestListUsersDefaultsPaging(t *testing.T) {
	lister := &fakeLister{}
	h := NewHandler(HandlerConfig{Users: lister})

	r := chi.NewRouter()
	h.RegisterRoutes(r, passThrough)

	rec := httptest.NewRecorder()
	r.ServeHTTP(
		rec,
		httptest.NewRequest(http.MethodGet, "/admin/users", nil),
	)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, lister.lastParams.Page)
	assert.Equal(t, 20, lister.lastParams.PageSize)
}
