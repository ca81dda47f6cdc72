package models

import "time"

// Answer pairs a question with the text a user entered for it.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Submission is one user's answers to a standup. Only one row per user, standup and day is kept;
// later completions on the same day overwrite Answers.
type Submission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_submission_user_standup_day,priority:1;not null" json:"user_id"`
	StandupID uint      `gorm:"index:idx_submission_user_standup_day,priority:2;not null" json:"standup_id"`
	Answers   []Answer  `gorm:"type:text;serializer:json" json:"answers"`
	CreatedAt time.Time `gorm:"index:idx_submission_user_standup_day,priority:3;index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
