package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/tidyroom/internal/auth"
	"github.com/dukerupert/tidyroom/internal/engine"
	"github.com/dukerupert/tidyroom/internal/model"
	"github.com/dukerupert/tidyroom/internal/store"
)

type ShopHandler struct {
	engine    *engine.Engine
	children  *store.ChildStore
	inventory *store.InventoryStore
	logger    *slog.Logger
}

func NewShopHandler(eng *engine.Engine, cs *store.ChildStore, is *store.InventoryStore, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{
		engine:    eng,
		children:  cs,
		inventory: is,
		logger:    logger,
	}
}

type purchaseRequest struct {
	ItemID   string `json:"item_id"`
	ItemType string `json:"item_type"`
}

// Purchase buys a catalog item for the {id} child, debiting their balance.
func (h *ShopHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ItemType != model.ItemTheme && req.ItemType != model.ItemDecoration {
		writeError(w, http.StatusBadRequest, "item_type must be theme or decoration")
		return
	}

	res, err := h.engine.Purchase(r.Context(), caller(r), child.ID, req.ItemID, req.ItemType)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *ShopHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}

	items, err := h.inventory.ListByChild(child.ID)
	if err != nil {
		h.logger.Error("list inventory", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ShopHandler) Equip(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}

	item, err := h.engine.Equip(r.Context(), caller(r), child.ID, r.PathValue("inv_id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ShopHandler) Unequip(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}

	item, err := h.engine.Unequip(r.Context(), caller(r), child.ID, r.PathValue("inv_id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type positionRequest struct {
	Position json.RawMessage `json:"position"`
}

// SetPosition saves where an equipped decoration sits in the room view.
// The position blob is opaque to the server.
func (h *ShopHandler) SetPosition(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}

	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	item, err := h.inventory.GetByID(r.PathValue("inv_id"))
	if err != nil {
		h.logger.Error("get inventory item", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if item == nil || item.ChildID != child.ID {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := h.inventory.SetPosition(item.ID, string(req.Position)); err != nil {
		h.logger.Error("set position", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ShopHandler) load(w http.ResponseWriter, r *http.Request) (*model.Child, bool) {
	child, err := h.children.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get child", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if child == nil || child.FamilyID != auth.FamilyID(r.Context()) {
		writeError(w, http.StatusNotFound, "child not found")
		return nil, false
	}
	return child, true
}
