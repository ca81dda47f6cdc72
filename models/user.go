package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a Slack workspace member who can submit standups.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SlackID   string    `gorm:"size:32;uniqueIndex;not null" json:"user_id"`
	Username  string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}
