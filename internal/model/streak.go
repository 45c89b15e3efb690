package model

import "time"

type Streak struct {
	ID               string    `json:"id"`
	ChildID          string    `json:"child_id"`
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	LastActivityDate string    `json:"last_activity_date"` // "YYYY-MM-DD" in the configured zone, empty if none
	Multiplier       float64   `json:"streak_multiplier"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
