// AngelaMos | 2026
// dto.go

package auth

import "time"

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,alphanum,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Name     string `json:"name"     validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=128"`
}

type AuthResponse struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}
