package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/tidyroom/internal/model"
)

type ChildStore struct {
	db DB
}

func NewChildStore(db DB) *ChildStore {
	return &ChildStore{db: db}
}

func scanChild(scanner interface{ Scan(...any) error }) (*model.Child, error) {
	var c model.Child
	var profileID sql.NullString
	var age sql.NullInt64
	var pinHash string

	err := scanner.Scan(&c.ID, &profileID, &c.FamilyID, &c.Name, &age, &c.AvatarEmoji, &pinHash,
		&c.TotalPoints, &c.AvailablePoints, &c.CurrentLevel, &c.TotalXP, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if profileID.Valid {
		c.ProfileID = &profileID.String
	}
	if age.Valid {
		a := int(age.Int64)
		c.Age = &a
	}
	c.HasPIN = pinHash != ""
	return &c, nil
}

const childCols = `id, profile_id, family_id, name, age, avatar_emoji, pin_hash, total_points, available_points, current_level, total_xp, created_at, updated_at`

// Create inserts a child along with its room and streak rows. Every child
// owns exactly one of each.
func (s *ChildStore) Create(familyID, name string, age *int, avatarEmoji string) (*model.Child, error) {
	id := uuid.NewString()
	var a sql.NullInt64
	if age != nil {
		a = sql.NullInt64{Int64: int64(*age), Valid: true}
	}
	if avatarEmoji == "" {
		avatarEmoji = "🙂"
	}

	_, err := s.db.Exec(
		`INSERT INTO children (id, family_id, name, age, avatar_emoji) VALUES (?, ?, ?, ?, ?)`,
		id, familyID, name, a, avatarEmoji,
	)
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}

	if _, err := s.db.Exec(
		`INSERT INTO rooms (id, child_id, theme_id) VALUES (?, ?, 'theme-classic')`,
		uuid.NewString(), id,
	); err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}

	if _, err := s.db.Exec(
		`INSERT INTO streaks (id, child_id) VALUES (?, ?)`,
		uuid.NewString(), id,
	); err != nil {
		return nil, fmt.Errorf("insert streak: %w", err)
	}

	return s.GetByID(id)
}

func (s *ChildStore) GetByID(id string) (*model.Child, error) {
	row := s.db.QueryRow(`SELECT `+childCols+` FROM children WHERE id = ?`, id)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

func (s *ChildStore) ListByFamily(familyID string) ([]model.Child, error) {
	rows, err := s.db.Query(
		`SELECT `+childCols+` FROM children WHERE family_id = ? ORDER BY created_at ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []model.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

// UpdateProgress writes the mutable economy counters back to the row.
func (s *ChildStore) UpdateProgress(c *model.Child) error {
	_, err := s.db.Exec(
		`UPDATE children SET total_points = ?, available_points = ?, current_level = ?, total_xp = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		c.TotalPoints, c.AvailablePoints, c.CurrentLevel, c.TotalXP, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update child progress: %w", err)
	}
	return nil
}

// LinkProfile attaches a login profile to a child, enabling PIN login.
func (s *ChildStore) LinkProfile(id, profileID string) error {
	_, err := s.db.Exec(
		`UPDATE children SET profile_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		profileID, id,
	)
	if err != nil {
		return fmt.Errorf("link profile: %w", err)
	}
	return nil
}

func (s *ChildStore) SetPIN(id, pinHash string) error {
	_, err := s.db.Exec(
		`UPDATE children SET pin_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		pinHash, id,
	)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

// GetPINHash returns the stored PIN hash for a child, or "" if none is set.
func (s *ChildStore) GetPINHash(id string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT pin_hash FROM children WHERE id = ?`, id).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get pin hash: %w", err)
	}
	return hash, nil
}

func (s *ChildStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM children WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	return nil
}
