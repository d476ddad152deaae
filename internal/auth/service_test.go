// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penward/marketplace/internal/config"
	"github.com/penward/marketplace/internal/core"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeUsers struct {
	byName map[string]*UserInfo
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byName: map[string]*UserInfo{}}
}

func (f *fakeUsers) Create(
	_ context.Context,
	name, email, passwordHash string,
) (*UserInfo, error) {
	if _, exists := f.byName[name]; exists {
		return nil, fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}

	u := &UserInfo{
		ID:           "user-" + name,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}
	f.byName[name] = u
	return u, nil
}

func (f *fakeUsers) GetByName(
	_ context.Context,
	name string,
) (*UserInfo, error) {
	u, ok := f.byName[name]
	if !ok {
		return nil, fmt.Errorf("get user by name: %w", core.ErrNotFound)
	}
	return u, nil
}

func (f *fakeUsers) UpdatePassword(
	_ context.Context,
	userID, passwordHash string,
) error {
	for _, u := range f.byName {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return fmt.Errorf("update password: %w", core.ErrNotFound)
}

func newTestService(t *testing.T) (*Service, *fakeUsers) {
	t.Helper()

	manager, err := NewSessionManager(config.SessionConfig{
		Secret: testSecret,
		Expire: time.Hour,
		Issuer: "marketplace-test",
	}, nil)
	require.NoError(t, err)

	users := newFakeUsers()
	return NewService(manager, users), users
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, users := newTestService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "wordsmith",
		Email:    "wordsmith@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "wordsmith", resp.Name)

	// The stored hash must not be the plaintext.
	stored := users.byName["wordsmith"]
	assert.NotEqual(t, "correct horse battery", stored.PasswordHash)
}

func TestRegisterDuplicateName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := RegisterRequest{
		Name:     "wordsmith",
		Email:    "wordsmith@example.com",
		Password: "correct horse battery",
	}

	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrNameExists)
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Name:     "wordsmith",
		Email:    "wordsmith@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{
		Name:     "wordsmith",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Name:     "wordsmith",
		Email:    "wordsmith@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{
		Name:     "wordsmith",
		Password: "wrong password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownName(t *testing.T) {
	svc, _ := newTestService(t)

	// Indistinguishable from a wrong password.
	_, err := svc.Login(context.Background(), LoginRequest{
		Name:     "nobody",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyTamperedToken(t *testing.T) {
	manager, err := NewSessionManager(config.SessionConfig{
		Secret: testSecret,
		Expire: time.Hour,
		Issuer: "marketplace-test",
	}, nil)
	require.NoError(t, err)

	token, _, err := manager.CreateSession("user-1")
	require.NoError(t, err)

	_, err = manager.VerifySession(context.Background(), token+".extra")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyExpiredToken(t *testing.T) {
	manager, err := NewSessionManager(config.SessionConfig{
		Secret: testSecret,
		Expire: -time.Minute,
		Issuer: "marketplace-test",
	}, nil)
	require.NoError(t, err)

	token, _, err := manager.CreateSession("user-1")
	require.NoError(t, err)

	_, err = manager.VerifySession(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifyWrongIssuer(t *testing.T) {
	signer, err := NewSessionManager(config.SessionConfig{
		Secret: testSecret,
		Expire: time.Hour,
		Issuer: "someone-else",
	}, nil)
	require.NoError(t, err)

	verifier, err := NewSessionManager(config.SessionConfig{
		Secret: testSecret,
		Expire: time.Hour,
		Issuer: "marketplace-test",
	}, nil)
	require.NoError(t, err)

	token, _, err := signer.CreateSession("user-1")
	require.NoError(t, err)

	_, err = verifier.VerifySession(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}
