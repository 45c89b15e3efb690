package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/tidyroom/internal/store"
)

// CatalogHandler serves the static game content: level curve, achievement
// definitions, and the store catalog.
type CatalogHandler struct {
	levels       *store.LevelStore
	achievements *store.AchievementStore
	catalog      *store.CatalogStore
	logger       *slog.Logger
}

func NewCatalogHandler(ls *store.LevelStore, as *store.AchievementStore, cat *store.CatalogStore, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		levels:       ls,
		achievements: as,
		catalog:      cat,
		logger:       logger,
	}
}

func (h *CatalogHandler) Levels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.levels.List()
	if err != nil {
		h.logger.Error("list levels", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, levels)
}

func (h *CatalogHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.achievements.List()
	if err != nil {
		h.logger.Error("list achievements", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, achievements)
}

func (h *CatalogHandler) Themes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.catalog.ListThemes()
	if err != nil {
		h.logger.Error("list themes", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, themes)
}

func (h *CatalogHandler) Decorations(w http.ResponseWriter, r *http.Request) {
	decorations, err := h.catalog.ListDecorations()
	if err != nil {
		h.logger.Error("list decorations", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, decorations)
}

func (h *CatalogHandler) Templates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.catalog.ListTemplates()
	if err != nil {
		h.logger.Error("list templates", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, templates)
}
