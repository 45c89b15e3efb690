package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dukerupert/tidyroom/internal/model"
)

type FamilyStore struct {
	db DB
}

func NewFamilyStore(db DB) *FamilyStore {
	return &FamilyStore{db: db}
}

func scanFamily(scanner interface{ Scan(...any) error }) (*model.Family, error) {
	var f model.Family
	var createdBy sql.NullString

	err := scanner.Scan(&f.ID, &f.Name, &f.InviteCode, &createdBy, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if createdBy.Valid {
		f.CreatedBy = &createdBy.String
	}
	return &f, nil
}

const familyCols = `id, name, invite_code, created_by, created_at, updated_at`

func (s *FamilyStore) Create(name string, createdBy *string) (*model.Family, error) {
	id := uuid.NewString()
	code, err := newInviteCode()
	if err != nil {
		return nil, fmt.Errorf("invite code: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO families (id, name, invite_code, created_by) VALUES (?, ?, ?, ?)`,
		id, name, code, nullStr(createdBy),
	)
	if err != nil {
		return nil, fmt.Errorf("insert family: %w", err)
	}
	return s.GetByID(id)
}

// First returns the oldest family, nil if none exist yet. Self-hosted
// installs almost always have exactly one.
func (s *FamilyStore) First() (*model.Family, error) {
	row := s.db.QueryRow(`SELECT ` + familyCols + ` FROM families ORDER BY created_at, id LIMIT 1`)
	f, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first family: %w", err)
	}
	return f, nil
}

func (s *FamilyStore) GetByID(id string) (*model.Family, error) {
	row := s.db.QueryRow(`SELECT `+familyCols+` FROM families WHERE id = ?`, id)
	f, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}
	return f, nil
}

func (s *FamilyStore) GetByInviteCode(code string) (*model.Family, error) {
	row := s.db.QueryRow(`SELECT `+familyCols+` FROM families WHERE invite_code = ?`, code)
	f, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family by invite code: %w", err)
	}
	return f, nil
}

// newInviteCode generates a short human-shareable invite code.
func newInviteCode() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)), nil
}

// --- Profile methods ---

type ProfileStore struct {
	db DB
}

func NewProfileStore(db DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func scanProfile(scanner interface{ Scan(...any) error }) (*model.Profile, error) {
	var p model.Profile
	var isPrimary int
	var passwordHash string

	err := scanner.Scan(&p.ID, &p.FamilyID, &p.Email, &p.DisplayName, &p.Role, &isPrimary, &passwordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.IsPrimaryParent = isPrimary != 0
	p.HasPassword = passwordHash != ""
	return &p, nil
}

const profileCols = `id, family_id, email, display_name, role, is_primary_parent, password_hash, created_at, updated_at`

func (s *ProfileStore) Create(familyID, email, displayName, role, passwordHash string, isPrimary bool) (*model.Profile, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO profiles (id, family_id, email, display_name, role, is_primary_parent, password_hash) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, familyID, email, displayName, role, boolInt(isPrimary), passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProfileStore) GetByID(id string) (*model.Profile, error) {
	row := s.db.QueryRow(`SELECT `+profileCols+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *ProfileStore) GetByEmail(email string) (*model.Profile, error) {
	row := s.db.QueryRow(`SELECT `+profileCols+` FROM profiles WHERE email = ?`, email)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile by email: %w", err)
	}
	return p, nil
}

// GetPasswordHash returns the stored hash for a profile, or "" if none is set.
func (s *ProfileStore) GetPasswordHash(id string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT password_hash FROM profiles WHERE id = ?`, id).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get password hash: %w", err)
	}
	return hash, nil
}

func (s *ProfileStore) ListParents(familyID string) ([]model.Profile, error) {
	rows, err := s.db.Query(
		`SELECT `+profileCols+` FROM profiles WHERE family_id = ? AND role = 'parent' ORDER BY created_at ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list parents: %w", err)
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}
