package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/tidyroom/internal/model"
)

type StreakStore struct {
	db DB
}

func NewStreakStore(db DB) *StreakStore {
	return &StreakStore{db: db}
}

func scanStreak(scanner interface{ Scan(...any) error }) (*model.Streak, error) {
	var s model.Streak
	err := scanner.Scan(&s.ID, &s.ChildID, &s.CurrentStreak, &s.LongestStreak,
		&s.LastActivityDate, &s.Multiplier, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const streakCols = `id, child_id, current_streak, longest_streak, last_activity_date, streak_multiplier, created_at, updated_at`

func (s *StreakStore) GetByChild(childID string) (*model.Streak, error) {
	row := s.db.QueryRow(`SELECT `+streakCols+` FROM streaks WHERE child_id = ?`, childID)
	st, err := scanStreak(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}
	return st, nil
}

func (s *StreakStore) Update(st *model.Streak) error {
	_, err := s.db.Exec(
		`UPDATE streaks SET current_streak = ?, longest_streak = ?, last_activity_date = ?, streak_multiplier = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		st.CurrentStreak, st.LongestStreak, st.LastActivityDate, st.Multiplier, st.ID,
	)
	if err != nil {
		return fmt.Errorf("update streak: %w", err)
	}
	return nil
}
