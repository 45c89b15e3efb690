package model

import "time"

// Catalog item types for inventory records.
const (
	ItemTheme      = "theme"
	ItemDecoration = "decoration"
)

type Theme struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	IsDefault   bool      `json:"is_default"`
	IsPremium   bool      `json:"is_premium"`
	Colors      string    `json:"colors"` // JSON blob, opaque to the engine
	Assets      string    `json:"assets"` // JSON blob, opaque to the engine
	UnlockLevel int       `json:"unlock_level"`
	CreatedAt   time.Time `json:"created_at"`
}

// Decoration categories. Furniture and pets are zone-exclusive: only one
// may be equipped per zone at a time.
const (
	DecorWall      = "wall"
	DecorFurniture = "furniture"
	DecorAccessory = "accessory"
	DecorEffect    = "effect"
	DecorPet       = "pet"
)

type Decoration struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Zone         string    `json:"zone"` // a room zone or "any"
	Price        int       `json:"price"`
	IsPremium    bool      `json:"is_premium"`
	UnlockLevel  int       `json:"unlock_level"`
	PositionData string    `json:"position_data"` // JSON blob
	CreatedAt    time.Time `json:"created_at"`
}

// ZoneExclusive reports whether this decoration's category allows only a
// single equipped item per zone.
func (d *Decoration) ZoneExclusive() bool {
	return d.Category == DecorFurniture || d.Category == DecorPet
}

type InventoryItem struct {
	ID          string    `json:"id"`
	ChildID     string    `json:"child_id"`
	ItemID      string    `json:"item_id"`
	ItemType    string    `json:"item_type"`
	IsEquipped  bool      `json:"is_equipped"`
	Position    string    `json:"position"` // JSON blob
	PurchasedAt time.Time `json:"purchased_at"`
}
