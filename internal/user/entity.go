// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

// PictureDefault is the sentinel picture reference for accounts that have
// never uploaded an image.
const PictureDefault = "DEFAULT"

type User struct {
	ID           string    `db:"id"            json:"id"`
	Name         string    `db:"name"          json:"name"`
	Email        string    `db:"email"         json:"email"`
	PasswordHash string    `db:"password_hash" json:"password_hash"`
	Picture      string    `db:"picture"       json:"picture"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}

func (u *User) HasCustomPicture() bool {
	return u.Picture != PictureDefault
}
