package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/tidyroom/internal/model"
)

type RoomStore struct {
	db DB
}

func NewRoomStore(db DB) *RoomStore {
	return &RoomStore{db: db}
}

func scanRoom(scanner interface{ Scan(...any) error }) (*model.Room, error) {
	var r model.Room
	var themeID sql.NullString
	var lastCleaned sql.NullTime

	err := scanner.Scan(&r.ID, &r.ChildID, &themeID, &r.CleanlinessScore, &r.ZoneBed, &r.ZoneFloor,
		&r.ZoneDesk, &r.ZoneCloset, &r.ZoneGeneral, &lastCleaned, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if themeID.Valid {
		r.ThemeID = &themeID.String
	}
	if lastCleaned.Valid {
		t := lastCleaned.Time
		r.LastCleanedAt = &t
	}
	return &r, nil
}

const roomCols = `id, child_id, theme_id, cleanliness_score, zone_bed, zone_floor, zone_desk, zone_closet, zone_general, last_cleaned_at, created_at, updated_at`

func (s *RoomStore) GetByChild(childID string) (*model.Room, error) {
	row := s.db.QueryRow(`SELECT `+roomCols+` FROM rooms WHERE child_id = ?`, childID)
	r, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return r, nil
}

// UpdateScores writes all zone scores and the aggregate back to the row.
func (s *RoomStore) UpdateScores(r *model.Room) error {
	var lastCleaned sql.NullTime
	if r.LastCleanedAt != nil {
		lastCleaned = sql.NullTime{Time: r.LastCleanedAt.UTC(), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE rooms SET cleanliness_score = ?, zone_bed = ?, zone_floor = ?, zone_desk = ?, zone_closet = ?, zone_general = ?, last_cleaned_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		r.CleanlinessScore, r.ZoneBed, r.ZoneFloor, r.ZoneDesk, r.ZoneCloset, r.ZoneGeneral, lastCleaned, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update room scores: %w", err)
	}
	return nil
}

func (s *RoomStore) SetTheme(childID, themeID string) error {
	_, err := s.db.Exec(
		`UPDATE rooms SET theme_id = ?, updated_at = CURRENT_TIMESTAMP WHERE child_id = ?`,
		themeID, childID,
	)
	if err != nil {
		return fmt.Errorf("set room theme: %w", err)
	}
	return nil
}

// ListStaleChildIDs returns children whose rooms have had no cleaning
// activity since the cutoff, candidates for decay.
func (s *RoomStore) ListStaleChildIDs(cutoff time.Time) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT child_id FROM rooms WHERE (last_cleaned_at IS NULL OR last_cleaned_at < ?) AND cleanliness_score > 0`,
		cutoff.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list stale rooms: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan child id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
