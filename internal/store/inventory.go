package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/tidyroom/internal/model"
)

type InventoryStore struct {
	db DB
}

func NewInventoryStore(db DB) *InventoryStore {
	return &InventoryStore{db: db}
}

func scanInventoryItem(scanner interface{ Scan(...any) error }) (*model.InventoryItem, error) {
	var item model.InventoryItem
	var isEquipped int

	err := scanner.Scan(&item.ID, &item.ChildID, &item.ItemID, &item.ItemType, &isEquipped, &item.Position, &item.PurchasedAt)
	if err != nil {
		return nil, err
	}

	item.IsEquipped = isEquipped != 0
	return &item, nil
}

const inventoryCols = `id, child_id, item_id, item_type, is_equipped, position, purchased_at`

func (s *InventoryStore) Insert(childID, itemID, itemType string) (*model.InventoryItem, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO inventory (id, child_id, item_id, item_type) VALUES (?, ?, ?, ?)`,
		id, childID, itemID, itemType,
	)
	if err != nil {
		return nil, fmt.Errorf("insert inventory item: %w", err)
	}
	return s.GetByID(id)
}

func (s *InventoryStore) GetByID(id string) (*model.InventoryItem, error) {
	row := s.db.QueryRow(`SELECT `+inventoryCols+` FROM inventory WHERE id = ?`, id)
	item, err := scanInventoryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

// GetByItem finds a child's ownership record for a catalog item, nil if the
// child does not own it.
func (s *InventoryStore) GetByItem(childID, itemID string) (*model.InventoryItem, error) {
	row := s.db.QueryRow(`SELECT `+inventoryCols+` FROM inventory WHERE child_id = ? AND item_id = ?`, childID, itemID)
	item, err := scanInventoryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

func (s *InventoryStore) ListByChild(childID string) ([]model.InventoryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+inventoryCols+` FROM inventory WHERE child_id = ? ORDER BY purchased_at DESC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ListEquipped returns a child's equipped items of the given type.
func (s *InventoryStore) ListEquipped(childID, itemType string) ([]model.InventoryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+inventoryCols+` FROM inventory WHERE child_id = ? AND item_type = ? AND is_equipped = 1`,
		childID, itemType,
	)
	if err != nil {
		return nil, fmt.Errorf("list equipped items: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *InventoryStore) SetEquipped(id string, equipped bool) error {
	_, err := s.db.Exec(`UPDATE inventory SET is_equipped = ? WHERE id = ?`, boolInt(equipped), id)
	if err != nil {
		return fmt.Errorf("set equipped: %w", err)
	}
	return nil
}

func (s *InventoryStore) SetPosition(id, position string) error {
	_, err := s.db.Exec(`UPDATE inventory SET position = ? WHERE id = ?`, position, id)
	if err != nil {
		return fmt.Errorf("set position: %w", err)
	}
	return nil
}
