package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DisplayName string    `gorm:"type:varchar(64);not null;default:''"`
	Role        string    `gorm:"type:varchar(50);not null;default:'user'"`
	Status      string    `gorm:"type:varchar(50);not null;default:'active'"`
	LastSeenAt  *time.Time
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
