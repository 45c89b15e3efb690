package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/tidyroom/internal/model"
)

type PointsStore struct {
	db DB
}

func NewPointsStore(db DB) *PointsStore {
	return &PointsStore{db: db}
}

func scanPointsEntry(scanner interface{ Scan(...any) error }) (*model.PointsLogEntry, error) {
	var e model.PointsLogEntry
	var taskID sql.NullString

	err := scanner.Scan(&e.ID, &e.ChildID, &e.Points, &e.BalanceAfter, &e.Type, &e.Description, &taskID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	if taskID.Valid {
		e.TaskID = &taskID.String
	}
	return &e, nil
}

const pointsCols = `id, child_id, points, balance_after, type, description, task_id, created_at`

// Insert appends an entry. Entries are never updated or deleted; the log is
// the audit trail for every balance change.
func (s *PointsStore) Insert(childID string, delta, balanceAfter int, typ, description string, taskID *string) (*model.PointsLogEntry, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO points_log (id, child_id, points, balance_after, type, description, task_id) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, childID, delta, balanceAfter, typ, description, nullStr(taskID),
	)
	if err != nil {
		return nil, fmt.Errorf("insert points entry: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+pointsCols+` FROM points_log WHERE id = ?`, id)
	return scanPointsEntry(row)
}

// ListByChild returns the newest entries first, up to limit (0 = all).
func (s *PointsStore) ListByChild(childID string, limit int) ([]model.PointsLogEntry, error) {
	query := `SELECT ` + pointsCols + ` FROM points_log WHERE child_id = ? ORDER BY rowid DESC`
	args := []any{childID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list points entries: %w", err)
	}
	defer rows.Close()

	var entries []model.PointsLogEntry
	for rows.Next() {
		e, err := scanPointsEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan points entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// History returns the full log oldest first, the order used for replay.
// Insertion order (rowid) breaks ties between entries written in the same
// transaction, where created_at stamps are identical.
func (s *PointsStore) History(childID string) ([]model.PointsLogEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+pointsCols+` FROM points_log WHERE child_id = ? ORDER BY rowid ASC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("points history: %w", err)
	}
	defer rows.Close()

	var entries []model.PointsLogEntry
	for rows.Next() {
		e, err := scanPointsEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan points entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
