package dto

import (
	"time"

	"github.com/google/uuid"
)

// AnonymousSignInRequest creates a device-scoped anonymous identity. No
// email, no password: the browser keeps the returned token and that IS
// the account.
type AnonymousSignInRequest struct {
	DisplayName string `json:"display_name" validate:"omitempty,max=64"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	UserId    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
