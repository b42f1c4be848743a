package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	Role           string    `json:"role"`
	Initials       string    `json:"initials"`
	IsTempPassword bool      `json:"is_temp_password"`
	CreatedAt      time.Time `json:"created_at"`
}

type CreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Initials string `json:"initials"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token plus what the charting UI needs to
// know about the signed-in user.
type LoginResponse struct {
	Token               string `json:"token"`
	Username            string `json:"username"`
	Role                string `json:"role"`
	Initials            string `json:"initials"`
	PasswordResetNeeded bool   `json:"password_reset_needed"`
}

type ResetPasswordRequest struct {
	Username    string `json:"username"`
	NewPassword string `json:"new_password"`
}
