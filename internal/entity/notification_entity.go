package entity

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a toast shown in the browser. Persisted so unread
// toasts survive a reload and replay on reconnect.
type Notification struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Type      string
	Title     string
	Body      string
	IsRead    bool
	CreatedAt time.Time
	ReadAt    *time.Time
}
