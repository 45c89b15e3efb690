package model

import "time"

// Points log entry types.
const (
	PointsTaskComplete = "task_complete"
	PointsStreakBonus  = "streak_bonus"
	PointsLevelUp      = "level_up"
	PointsPurchase     = "purchase"
	PointsAdjustment   = "adjustment"
	PointsBonus        = "bonus"
)

// PointsLogEntry is an immutable ledger record. Replaying all entries for a
// child from zero reproduces every BalanceAfter and the child's current
// available balance.
type PointsLogEntry struct {
	ID           string    `json:"id"`
	ChildID      string    `json:"child_id"`
	Points       int       `json:"points"` // signed delta
	BalanceAfter int       `json:"balance_after"`
	Type         string    `json:"type"`
	Description  string    `json:"description"`
	TaskID       *string   `json:"task_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// EarningType reports whether positive entries of this type also count
// toward a child's lifetime total points. Adjustments count when positive
// so that the spendable balance can never exceed the lifetime total.
func EarningType(typ string) bool {
	switch typ {
	case PointsTaskComplete, PointsStreakBonus, PointsLevelUp, PointsBonus, PointsAdjustment:
		return true
	}
	return false
}
