package models

import "time"

// Standup is a team's questionnaire. StandupBlocks holds the rendered modal definition as JSON.
type Standup struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TeamID         uint      `gorm:"uniqueIndex;not null" json:"team_id"`
	Name           string    `gorm:"size:128" json:"name"`
	Trigger        string    `gorm:"size:64;uniqueIndex;not null" json:"trigger"`
	Questions      []string  `gorm:"type:text;serializer:json" json:"questions"`
	IsActive       bool      `gorm:"not null" json:"is_active"`
	PublishChannel string    `gorm:"size:64;not null" json:"publish_channel"`
	StandupBlocks  string    `gorm:"type:text" json:"-"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
