// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/penward/marketplace/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNameExists         = errors.New("name already exists")
)

// UserInfo is the slice of the user record the auth flow needs.
type UserInfo struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
}

type UserProvider interface {
	Create(
		ctx context.Context,
		name, email, passwordHash string,
	) (*UserInfo, error)
	GetByName(ctx context.Context, name string) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	sessions *SessionManager
	users    UserProvider
}

func NewService(sessions *SessionManager, users UserProvider) *Service {
	return &Service{sessions: sessions, users: users}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Name, req.Email, passwordHash)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrNameExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.createAuthResponse(user)
}

// Login resolves the name to a user and verifies the password. Unknown
// names still burn an argon2id verification so response timing does not
// leak which half of the credential pair was wrong, and both failure modes
// collapse into ErrInvalidCredentials.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	user, err := s.users.GetByName(ctx, req.Name)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, user.ID, newHash)
	}

	return s.createAuthResponse(user)
}

func (s *Service) Logout(
	ctx context.Context,
	sessionID string,
	expiresAt time.Time,
) error {
	return s.sessions.RevokeSession(ctx, sessionID, expiresAt)
}

func (s *Service) createAuthResponse(user *UserInfo) (*AuthResponse, error) {
	token, expiresAt, err := s.sessions.CreateSession(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &AuthResponse{
		UserID:    user.ID,
		Name:      user.Name,
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	}, nil
}
