package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/tidyroom/internal/model"
)

// CatalogStore reads the static theme and decoration catalog. Catalog items
// are seeded reference data and never mutated by gameplay.
type CatalogStore struct {
	db DB
}

func NewCatalogStore(db DB) *CatalogStore {
	return &CatalogStore{db: db}
}

const themeCols = `id, name, description, price, is_default, is_premium, colors, assets, unlock_level, created_at`

func scanTheme(scanner interface{ Scan(...any) error }) (*model.Theme, error) {
	var t model.Theme
	var isDefault, isPremium int

	err := scanner.Scan(&t.ID, &t.Name, &t.Description, &t.Price, &isDefault, &isPremium,
		&t.Colors, &t.Assets, &t.UnlockLevel, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	t.IsDefault = isDefault != 0
	t.IsPremium = isPremium != 0
	return &t, nil
}

func (s *CatalogStore) GetTheme(id string) (*model.Theme, error) {
	row := s.db.QueryRow(`SELECT `+themeCols+` FROM themes WHERE id = ?`, id)
	t, err := scanTheme(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get theme: %w", err)
	}
	return t, nil
}

func (s *CatalogStore) ListThemes() ([]model.Theme, error) {
	rows, err := s.db.Query(`SELECT ` + themeCols + ` FROM themes ORDER BY unlock_level ASC, price ASC`)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	var themes []model.Theme
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		themes = append(themes, *t)
	}
	return themes, rows.Err()
}

const decorationCols = `id, name, description, category, zone, price, is_premium, unlock_level, position_data, created_at`

func scanDecoration(scanner interface{ Scan(...any) error }) (*model.Decoration, error) {
	var d model.Decoration
	var isPremium int

	err := scanner.Scan(&d.ID, &d.Name, &d.Description, &d.Category, &d.Zone, &d.Price,
		&isPremium, &d.UnlockLevel, &d.PositionData, &d.CreatedAt)
	if err != nil {
		return nil, err
	}

	d.IsPremium = isPremium != 0
	return &d, nil
}

func (s *CatalogStore) GetDecoration(id string) (*model.Decoration, error) {
	row := s.db.QueryRow(`SELECT `+decorationCols+` FROM decorations WHERE id = ?`, id)
	d, err := scanDecoration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get decoration: %w", err)
	}
	return d, nil
}

func (s *CatalogStore) ListDecorations() ([]model.Decoration, error) {
	rows, err := s.db.Query(`SELECT ` + decorationCols + ` FROM decorations ORDER BY unlock_level ASC, price ASC`)
	if err != nil {
		return nil, fmt.Errorf("list decorations: %w", err)
	}
	defer rows.Close()

	var decorations []model.Decoration
	for rows.Next() {
		d, err := scanDecoration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decoration: %w", err)
		}
		decorations = append(decorations, *d)
	}
	return decorations, rows.Err()
}

// --- Task template methods ---

func (s *CatalogStore) GetTemplate(id string) (*model.TaskTemplate, error) {
	row := s.db.QueryRow(
		`SELECT id, title, description, zone, default_points, difficulty, icon, estimated_minutes, is_system, created_at FROM task_templates WHERE id = ?`,
		id,
	)
	var t model.TaskTemplate
	var isSystem int
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Zone, &t.DefaultPoints, &t.Difficulty,
		&t.Icon, &t.EstimatedMinutes, &isSystem, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	t.IsSystem = isSystem != 0
	return &t, nil
}

func (s *CatalogStore) ListTemplates() ([]model.TaskTemplate, error) {
	rows, err := s.db.Query(`SELECT id, title, description, zone, default_points, difficulty, icon, estimated_minutes, is_system, created_at FROM task_templates ORDER BY zone, title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.TaskTemplate
	for rows.Next() {
		var t model.TaskTemplate
		var isSystem int
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Zone, &t.DefaultPoints, &t.Difficulty,
			&t.Icon, &t.EstimatedMinutes, &isSystem, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		t.IsSystem = isSystem != 0
		templates = append(templates, t)
	}
	return templates, rows.Err()
}
