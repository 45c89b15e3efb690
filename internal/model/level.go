package model

import "time"

type Level struct {
	Level        int       `json:"level"`
	Title        string    `json:"title"`
	XPRequired   int       `json:"xp_required"`
	Icon         string    `json:"icon"`
	RewardPoints int       `json:"reward_points"`
	CreatedAt    time.Time `json:"created_at"`
}

type Achievement struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Icon             string    `json:"icon"`
	Category         string    `json:"category"` // streak, tasks, points, level, special
	RequirementType  string    `json:"requirement_type"`
	RequirementValue int       `json:"requirement_value"`
	XPReward         int       `json:"xp_reward"`
	PointsReward     int       `json:"points_reward"`
	CreatedAt        time.Time `json:"created_at"`
}

// Achievement requirement types.
const (
	RequireStreakDays     = "streak_days"
	RequireTasksCompleted = "tasks_completed"
	RequirePointsEarned   = "points_earned"
	RequireLevelReached   = "level_reached"
)

type ChildAchievement struct {
	ID            string    `json:"id"`
	ChildID       string    `json:"child_id"`
	AchievementID string    `json:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at"`
}
