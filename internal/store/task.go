package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/tidyroom/internal/model"
)

type TaskStore struct {
	db DB
}

func NewTaskStore(db DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var createdBy, templateID, photoURL, verifiedBy, rejectionReason sql.NullString
	var dueDate, completedAt, verifiedAt sql.NullTime
	var requiresVerification int

	err := scanner.Scan(&t.ID, &t.ChildID, &createdBy, &templateID, &t.Title, &t.Description,
		&t.Zone, &t.Points, &t.Difficulty, &t.Icon, &t.Frequency, &t.Status, &dueDate,
		&requiresVerification, &photoURL, &completedAt, &verifiedAt, &verifiedBy,
		&rejectionReason, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if createdBy.Valid {
		t.CreatedBy = &createdBy.String
	}
	if templateID.Valid {
		t.TemplateID = &templateID.String
	}
	if photoURL.Valid {
		t.VerificationPhotoURL = &photoURL.String
	}
	if verifiedBy.Valid {
		t.VerifiedBy = &verifiedBy.String
	}
	if rejectionReason.Valid {
		t.RejectionReason = &rejectionReason.String
	}
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	if completedAt.Valid {
		c := completedAt.Time
		t.CompletedAt = &c
	}
	if verifiedAt.Valid {
		v := verifiedAt.Time
		t.VerifiedAt = &v
	}
	t.RequiresVerification = requiresVerification != 0
	return &t, nil
}

const taskCols = `id, child_id, created_by, template_id, title, description, zone, points, difficulty, icon, frequency, status, due_date, requires_verification, verification_photo_url, completed_at, verified_at, verified_by, rejection_reason, created_at, updated_at`

func (s *TaskStore) Create(t *model.Task) (*model.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	var due sql.NullTime
	if t.DueDate != nil {
		due = sql.NullTime{Time: t.DueDate.UTC(), Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO tasks (id, child_id, created_by, template_id, title, description, zone, points, difficulty, icon, frequency, status, due_date, requires_verification)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', ?, ?)`,
		t.ID, t.ChildID, nullStr(t.CreatedBy), nullStr(t.TemplateID), t.Title, t.Description,
		t.Zone, t.Points, t.Difficulty, t.Icon, t.Frequency, due, boolInt(t.RequiresVerification),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetByID(t.ID)
}

func (s *TaskStore) GetByID(id string) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListByChild returns a child's tasks, optionally filtered by status.
func (s *TaskStore) ListByChild(childID, status string) ([]model.Task, error) {
	query := `SELECT ` + taskCols + ` FROM tasks WHERE child_id = ?`
	args := []any{childID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ListOverdue returns pending tasks whose due date has passed.
func (s *TaskStore) ListOverdue(now time.Time) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE status = 'pending' AND due_date IS NOT NULL AND due_date < ? ORDER BY due_date ASC`,
		now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// SetStatus writes status plus the stamps that belong to that transition.
func (s *TaskStore) SetStatus(t *model.Task) error {
	var photoURL, verifiedBy, rejectionReason sql.NullString
	var completedAt, verifiedAt sql.NullTime

	photoURL = nullStr(t.VerificationPhotoURL)
	verifiedBy = nullStr(t.VerifiedBy)
	rejectionReason = nullStr(t.RejectionReason)
	if t.CompletedAt != nil {
		completedAt = sql.NullTime{Time: t.CompletedAt.UTC(), Valid: true}
	}
	if t.VerifiedAt != nil {
		verifiedAt = sql.NullTime{Time: t.VerifiedAt.UTC(), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, verification_photo_url = ?, completed_at = ?, verified_at = ?, verified_by = ?, rejection_reason = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		t.Status, photoURL, completedAt, verifiedAt, verifiedBy, rejectionReason, t.ID,
	)
	if err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	return nil
}

// CountVerified counts a child's verified tasks, the progress counter for
// task achievements.
func (s *TaskStore) CountVerified(childID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE child_id = ? AND status = 'verified'`,
		childID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count verified tasks: %w", err)
	}
	return n, nil
}

func (s *TaskStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
