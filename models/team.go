package models

import "time"

// Team groups users and owns at most one standup.
type Team struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeamMember is the user <-> team membership row.
type TeamMember struct {
	TeamID uint `gorm:"primaryKey;autoIncrement:false" json:"team_id"`
	UserID uint `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
}
