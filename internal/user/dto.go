// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateProfileRequest struct {
	Name    *string `json:"name,omitempty"    validate:"omitempty,min=3,max=50,alphanum"`
	Picture *string `json:"picture,omitempty" validate:"omitempty,base64"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

type PasswordCheckRequest struct {
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NameCheckResponse struct {
	Exists bool `json:"exists"`
}

type UsernameResponse struct {
	Name string `json:"name"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Picture:   u.Picture,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
