package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserStatus string

const (
	UserRoleUser    UserRole = "user"
	UserRoleCreator UserRole = "creator"

	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// User is an anonymous browser identity. There is no email or password;
// the JWT issued at sign-in is the only handle to the account.
type User struct {
	Id          uuid.UUID
	DisplayName string
	Role        UserRole
	Status      UserStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastSeenAt  *time.Time
}
