package engine

import (
	"context"
	"fmt"

	"github.com/dukerupert/tidyroom/internal/model"
)

// PurchaseResult is the snapshot returned by Purchase.
type PurchaseResult struct {
	Item  *model.InventoryItem `json:"item"`
	Child *model.Child         `json:"child"`
}

// Purchase buys a catalog item with the child's spendable points. The debit
// and the ownership record land in one transaction; any check failing
// leaves both the ledger and the inventory untouched.
func (e *Engine) Purchase(ctx context.Context, caller Caller, childID, itemID, itemType string) (*PurchaseResult, error) {
	if itemType != model.ItemTheme && itemType != model.ItemDecoration {
		return nil, fmt.Errorf("item type %q: %w", itemType, ErrNotFound)
	}

	res := &PurchaseResult{}
	err := e.withChild(ctx, childID, func(s *txStores, events *[]Event) error {
		child, err := s.children.GetByID(childID)
		if err != nil {
			return err
		}
		if child == nil {
			return fmt.Errorf("child %s: %w", childID, ErrNotFound)
		}

		price, unlockLevel, name, err := catalogItem(s, itemID, itemType)
		if err != nil {
			return err
		}
		if child.CurrentLevel < unlockLevel {
			return fmt.Errorf("%s unlocks at level %d: %w", name, unlockLevel, ErrLevelLocked)
		}

		existing, err := s.inventory.GetByItem(childID, itemID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%s: %w", name, ErrAlreadyOwned)
		}

		if _, err := record(s, child, -price, model.PointsPurchase, fmt.Sprintf("Bought %s", name), nil); err != nil {
			return err
		}
		if err := s.children.UpdateProgress(child); err != nil {
			return err
		}

		item, err := s.inventory.Insert(childID, itemID, itemType)
		if err != nil {
			return err
		}

		*events = append(*events, Event{
			Type:     "item_purchased",
			FamilyID: child.FamilyID,
			ChildID:  childID,
			Extra:    map[string]any{"item_id": itemID, "item_type": itemType, "name": name, "balance": child.AvailablePoints},
		})
		res.Item = item
		res.Child = child
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Equip puts an owned item to use. Themes are exclusive per child: equipping
// one un-equips whatever theme was active and repaints the room. Decorations
// in zone-exclusive categories (furniture, pets) displace the previous
// holder of their zone.
func (e *Engine) Equip(ctx context.Context, caller Caller, childID, inventoryID string) (*model.InventoryItem, error) {
	var out *model.InventoryItem
	err := e.withChild(ctx, childID, func(s *txStores, events *[]Event) error {
		item, err := s.inventory.GetByID(inventoryID)
		if err != nil {
			return err
		}
		if item == nil || item.ChildID != childID {
			return fmt.Errorf("inventory %s: %w", inventoryID, ErrNotOwned)
		}

		switch item.ItemType {
		case model.ItemTheme:
			// Single-equipped-theme invariant.
			equipped, err := s.inventory.ListEquipped(childID, model.ItemTheme)
			if err != nil {
				return err
			}
			for _, other := range equipped {
				if other.ID == item.ID {
					continue
				}
				if err := s.inventory.SetEquipped(other.ID, false); err != nil {
					return err
				}
			}
			if err := s.rooms.SetTheme(childID, item.ItemID); err != nil {
				return err
			}

		case model.ItemDecoration:
			dec, err := s.catalog.GetDecoration(item.ItemID)
			if err != nil {
				return err
			}
			if dec == nil {
				return fmt.Errorf("decoration %s: %w", item.ItemID, ErrNotFound)
			}
			if dec.ZoneExclusive() {
				if err := unequipZoneRivals(s, childID, dec, item.ID); err != nil {
					return err
				}
			}
		}

		if err := s.inventory.SetEquipped(item.ID, true); err != nil {
			return err
		}
		item.IsEquipped = true

		child, err := s.children.GetByID(childID)
		if err != nil {
			return err
		}
		*events = append(*events, Event{
			Type:     "item_equipped",
			FamilyID: child.FamilyID,
			ChildID:  childID,
			Extra:    map[string]any{"item_id": item.ItemID, "item_type": item.ItemType},
		})
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Unequip removes a decoration from the room. Themes cannot be un-equipped,
// only replaced; a room always has a theme.
func (e *Engine) Unequip(ctx context.Context, caller Caller, childID, inventoryID string) (*model.InventoryItem, error) {
	var out *model.InventoryItem
	err := e.withChild(ctx, childID, func(s *txStores, events *[]Event) error {
		item, err := s.inventory.GetByID(inventoryID)
		if err != nil {
			return err
		}
		if item == nil || item.ChildID != childID {
			return fmt.Errorf("inventory %s: %w", inventoryID, ErrNotOwned)
		}
		if item.ItemType == model.ItemTheme {
			return fmt.Errorf("themes are replaced, not removed: %w", ErrInvalidTransition)
		}

		if err := s.inventory.SetEquipped(item.ID, false); err != nil {
			return err
		}
		item.IsEquipped = false
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// catalogItem loads price, unlock level, and display name for either item type.
func catalogItem(s *txStores, itemID, itemType string) (price, unlockLevel int, name string, err error) {
	if itemType == model.ItemTheme {
		theme, err := s.catalog.GetTheme(itemID)
		if err != nil {
			return 0, 0, "", err
		}
		if theme == nil {
			return 0, 0, "", fmt.Errorf("theme %s: %w", itemID, ErrNotFound)
		}
		return theme.Price, theme.UnlockLevel, theme.Name, nil
	}

	dec, err := s.catalog.GetDecoration(itemID)
	if err != nil {
		return 0, 0, "", err
	}
	if dec == nil {
		return 0, 0, "", fmt.Errorf("decoration %s: %w", itemID, ErrNotFound)
	}
	return dec.Price, dec.UnlockLevel, dec.Name, nil
}

// unequipZoneRivals clears other equipped decorations that occupy the same
// zone in the same exclusive category.
func unequipZoneRivals(s *txStores, childID string, dec *model.Decoration, keepID string) error {
	equipped, err := s.inventory.ListEquipped(childID, model.ItemDecoration)
	if err != nil {
		return err
	}
	for _, other := range equipped {
		if other.ID == keepID {
			continue
		}
		otherDec, err := s.catalog.GetDecoration(other.ItemID)
		if err != nil {
			return err
		}
		if otherDec == nil || otherDec.Category != dec.Category || otherDec.Zone != dec.Zone {
			continue
		}
		if err := s.inventory.SetEquipped(other.ID, false); err != nil {
			return err
		}
	}
	return nil
}
