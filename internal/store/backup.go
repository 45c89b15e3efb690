package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BackupRecord tracks one off-site backup of the database file.
type BackupRecord struct {
	ID        string    `json:"id"`
	FamilyID  string    `json:"family_id"`
	Filename  string    `json:"filename"`
	S3Key     string    `json:"s3_key"`
	SizeBytes int64     `json:"size_bytes"`
	Status    string    `json:"status"` // pending, uploaded, failed
	CreatedAt time.Time `json:"created_at"`
}

type BackupStore struct {
	db DB
}

func NewBackupStore(db DB) *BackupStore {
	return &BackupStore{db: db}
}

const backupCols = `id, family_id, filename, s3_key, size_bytes, status, created_at`

func scanBackup(scanner interface{ Scan(...any) error }) (*BackupRecord, error) {
	var b BackupRecord
	err := scanner.Scan(&b.ID, &b.FamilyID, &b.Filename, &b.S3Key, &b.SizeBytes, &b.Status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *BackupStore) Create(familyID, filename, s3Key string) (*BackupRecord, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO backups (id, family_id, filename, s3_key) VALUES (?, ?, ?, ?)`,
		id, familyID, filename, s3Key,
	)
	if err != nil {
		return nil, fmt.Errorf("insert backup: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+backupCols+` FROM backups WHERE id = ?`, id)
	return scanBackup(row)
}

func (s *BackupStore) MarkUploaded(id string, sizeBytes int64) error {
	_, err := s.db.Exec(`UPDATE backups SET status = 'uploaded', size_bytes = ? WHERE id = ?`, sizeBytes, id)
	if err != nil {
		return fmt.Errorf("mark backup uploaded: %w", err)
	}
	return nil
}

func (s *BackupStore) MarkFailed(id string) error {
	_, err := s.db.Exec(`UPDATE backups SET status = 'failed' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark backup failed: %w", err)
	}
	return nil
}

// ListUploaded returns uploaded backups newest first.
func (s *BackupStore) ListUploaded(familyID string) ([]BackupRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+backupCols+` FROM backups WHERE family_id = ? AND status = 'uploaded' ORDER BY created_at DESC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var backups []BackupRecord
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		backups = append(backups, *b)
	}
	return backups, rows.Err()
}

func (s *BackupStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM backups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete backup: %w", err)
	}
	return nil
}

// LatestAt returns the creation time of the newest backup row, zero time if none.
func (s *BackupStore) LatestAt() (time.Time, error) {
	var t sql.NullTime
	err := s.db.QueryRow(`SELECT MAX(created_at) FROM backups WHERE status = 'uploaded'`).Scan(&t)
	if err != nil {
		return time.Time{}, fmt.Errorf("latest backup: %w", err)
	}
	if !t.Valid {
		return time.Time{}, nil
	}
	return t.Time, nil
}
