package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/tidyroom/internal/model"
)

type LevelStore struct {
	db DB
}

func NewLevelStore(db DB) *LevelStore {
	return &LevelStore{db: db}
}

// List returns the level table ordered by level number ascending.
func (s *LevelStore) List() ([]model.Level, error) {
	rows, err := s.db.Query(`SELECT level, title, xp_required, icon, reward_points, created_at FROM levels ORDER BY level ASC`)
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	defer rows.Close()

	var levels []model.Level
	for rows.Next() {
		var l model.Level
		if err := rows.Scan(&l.Level, &l.Title, &l.XPRequired, &l.Icon, &l.RewardPoints, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan level: %w", err)
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

// --- Achievement methods ---

type AchievementStore struct {
	db DB
}

func NewAchievementStore(db DB) *AchievementStore {
	return &AchievementStore{db: db}
}

const achievementCols = `id, name, description, icon, category, requirement_type, requirement_value, xp_reward, points_reward, created_at`

func (s *AchievementStore) List() ([]model.Achievement, error) {
	rows, err := s.db.Query(`SELECT ` + achievementCols + ` FROM achievements ORDER BY requirement_type, requirement_value ASC`)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	var achievements []model.Achievement
	for rows.Next() {
		var a model.Achievement
		var category sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &category,
			&a.RequirementType, &a.RequirementValue, &a.XPReward, &a.PointsReward, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		a.Category = category.String
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// EarnedIDs returns the set of achievement ids a child has already earned.
func (s *AchievementStore) EarnedIDs(childID string) (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT achievement_id FROM child_achievements WHERE child_id = ?`, childID)
	if err != nil {
		return nil, fmt.Errorf("list earned achievements: %w", err)
	}
	defer rows.Close()

	earned := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan achievement id: %w", err)
		}
		earned[id] = true
	}
	return earned, rows.Err()
}

func (s *AchievementStore) ListEarned(childID string) ([]model.ChildAchievement, error) {
	rows, err := s.db.Query(
		`SELECT id, child_id, achievement_id, earned_at FROM child_achievements WHERE child_id = ? ORDER BY earned_at DESC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list earned achievements: %w", err)
	}
	defer rows.Close()

	var earned []model.ChildAchievement
	for rows.Next() {
		var ca model.ChildAchievement
		if err := rows.Scan(&ca.ID, &ca.ChildID, &ca.AchievementID, &ca.EarnedAt); err != nil {
			return nil, fmt.Errorf("scan earned achievement: %w", err)
		}
		earned = append(earned, ca)
	}
	return earned, rows.Err()
}

func (s *AchievementStore) InsertEarned(childID, achievementID string) error {
	_, err := s.db.Exec(
		`INSERT INTO child_achievements (id, child_id, achievement_id) VALUES (?, ?, ?)`,
		uuid.NewString(), childID, achievementID,
	)
	if err != nil {
		return fmt.Errorf("insert earned achievement: %w", err)
	}
	return nil
}
