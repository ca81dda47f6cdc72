package models

import "time"

// Auth is an administrative API key. Only the bcrypt hash of the secret part is stored.
type Auth struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	KeyID     string    `gorm:"size:36;uniqueIndex;not null" json:"key_id"`
	KeyHash   string    `gorm:"size:255;not null" json:"-"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every model for migrations.
func All() []interface{} {
	return []interface{}{&User{}, &Team{}, &TeamMember{}, &Standup{}, &Submission{}, &Auth{}}
}
