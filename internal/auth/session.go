// AngelaMos | 2026
// session.go

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/redis/go-redis/v9"

	"github.com/penward/marketplace/internal/config"
	"github.com/penward/marketplace/internal/core"
	"github.com/penward/marketplace/internal/middleware"
)

const revokedKeyPrefix = "revoked:session:"

// SessionManager signs and verifies HS256 session tokens and tracks
// revoked session ids in redis until their natural expiry.
type SessionManager struct {
	key    jwk.Key
	redis  *redis.Client
	config config.SessionConfig
}

func NewSessionManager(
	cfg config.SessionConfig,
	redisClient *redis.Client,
) (*SessionManager, error) {
	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("import session key: %w", err)
	}

	if setErr := key.Set(jwk.AlgorithmKey, jwa.HS256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return &SessionManager{
		key:    key,
		redis:  redisClient,
		config: cfg,
	}, nil
}

// CreateSession issues a signed token for userID. The jti doubles as the
// session id used for revocation.
func (m *SessionManager) CreateSession(
	userID string,
) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.config.Expire)

	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.config.Issuer).
		Subject(userID).
		IssuedAt(now).
		Expiration(expiresAt).
		NotBefore(now).
		Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.key))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return string(signed), expiresAt, nil
}

func (m *SessionManager) VerifySession(
	ctx context.Context,
	tokenString string,
) (*middleware.SessionClaims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify session: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify session: %w", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify session: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	sessionID, ok := token.JwtID()
	if !ok || sessionID == "" {
		return nil, fmt.Errorf(
			"verify session: missing session id: %w",
			core.ErrTokenInvalid,
		)
	}

	expiresAt, _ := token.Expiration()

	revoked, err := m.isRevoked(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("verify session: %w", core.ErrTokenRevoked)
	}

	return &middleware.SessionClaims{
		UserID:    subject,
		SessionID: sessionID,
		ExpiresAt: expiresAt,
	}, nil
}

// RevokeSession blacklists the session id until the token would have
// expired on its own.
func (m *SessionManager) RevokeSession(
	ctx context.Context,
	sessionID string,
	expiresAt time.Time,
) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	key := revokedKeyPrefix + sessionID
	if err := m.redis.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (m *SessionManager) isRevoked(
	ctx context.Context,
	sessionID string,
) (bool, error) {
	exists, err := m.redis.Exists(ctx, revokedKeyPrefix+sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}

	return exists > 0, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
