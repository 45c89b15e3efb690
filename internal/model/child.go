package model

import "time"

type Child struct {
	ID              string    `json:"id"`
	ProfileID       *string   `json:"profile_id"`
	FamilyID        string    `json:"family_id"`
	Name            string    `json:"name"`
	Age             *int      `json:"age"`
	AvatarEmoji     string    `json:"avatar_emoji"`
	HasPIN          bool      `json:"has_pin"`
	TotalPoints     int       `json:"total_points"`
	AvailablePoints int       `json:"available_points"`
	CurrentLevel    int       `json:"current_level"`
	TotalXP         int       `json:"total_xp"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
