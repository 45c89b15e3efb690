package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/tidyroom/internal/auth"
	"github.com/dukerupert/tidyroom/internal/engine"
	"github.com/dukerupert/tidyroom/internal/model"
	"github.com/dukerupert/tidyroom/internal/store"
)

type ChildHandler struct {
	engine       *engine.Engine
	children     *store.ChildStore
	profiles     *store.ProfileStore
	rooms        *store.RoomStore
	streaks      *store.StreakStore
	points       *store.PointsStore
	achievements *store.AchievementStore
	logger       *slog.Logger
}

func NewChildHandler(eng *engine.Engine, cs *store.ChildStore, prs *store.ProfileStore, rs *store.RoomStore, ss *store.StreakStore, ps *store.PointsStore, as *store.AchievementStore, logger *slog.Logger) *ChildHandler {
	return &ChildHandler{
		engine:       eng,
		children:     cs,
		profiles:     prs,
		rooms:        rs,
		streaks:      ss,
		points:       ps,
		achievements: as,
		logger:       logger,
	}
}

type childRequest struct {
	Name        string `json:"name"`
	Age         *int   `json:"age"`
	AvatarEmoji string `json:"avatar_emoji"`
}

func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req childRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Age != nil && (*req.Age < 1 || *req.Age > 18) {
		writeError(w, http.StatusBadRequest, "age must be between 1 and 18")
		return
	}

	child, err := h.children.Create(auth.FamilyID(r.Context()), req.Name, req.Age, req.AvatarEmoji)
	if err != nil {
		h.logger.Error("create child", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, child)
}

func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	children, err := h.children.ListByFamily(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list children", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if children == nil {
		children = []model.Child{}
	}
	writeJSON(w, http.StatusOK, children)
}

// Get returns the child with their room, streak, and recent ledger in one
// payload, which is what the room screen renders from.
func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}

	room, err := h.rooms.GetByChild(child.ID)
	if err != nil {
		h.logger.Error("get room", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	streak, err := h.streaks.GetByChild(child.ID)
	if err != nil {
		h.logger.Error("get streak", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	recent, err := h.points.ListByChild(child.ID, 10)
	if err != nil {
		h.logger.Error("list points", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if recent == nil {
		recent = []model.PointsLogEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"child":         child,
		"room":          room,
		"streak":        streak,
		"recent_points": recent,
	})
}

func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.children.Delete(child.ID); err != nil {
		h.logger.Error("delete child", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Room returns the child's room with equipped items resolved client-side
// from the inventory endpoint.
func (h *ChildHandler) Room(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}
	room, err := h.rooms.GetByChild(child.ID)
	if err != nil {
		h.logger.Error("get room", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *ChildHandler) Streak(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}
	streak, err := h.streaks.GetByChild(child.ID)
	if err != nil {
		h.logger.Error("get streak", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, streak)
}

// Points returns the child's ledger, newest first. ?limit= caps the page.
func (h *ChildHandler) Points(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	entries, err := h.points.ListByChild(child.ID, limit)
	if err != nil {
		h.logger.Error("list points", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if entries == nil {
		entries = []model.PointsLogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *ChildHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}
	earned, err := h.achievements.ListEarned(child.ID)
	if err != nil {
		h.logger.Error("list earned achievements", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if earned == nil {
		earned = []model.ChildAchievement{}
	}
	writeJSON(w, http.StatusOK, earned)
}

type adjustRequest struct {
	Delta       int    `json:"delta"`
	Description string `json:"description"`
}

// Adjust applies a manual parent credit or debit to the child's balance.
func (h *ChildHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	updated, err := h.engine.Adjust(r.Context(), caller(r), child.ID, req.Delta, req.Description)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type childProfileRequest struct {
	Email string `json:"email"`
}

// CreateProfile gives a child their own login profile so PIN login works
// for them. Parents only.
func (h *ChildHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}
	if child.ProfileID != nil {
		writeError(w, http.StatusConflict, "child already has a profile")
		return
	}

	var req childProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	existing, err := h.profiles.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("profile lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	profile, err := h.profiles.Create(child.FamilyID, req.Email, child.Name, "child", "", false)
	if err != nil {
		h.logger.Error("create child profile", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.children.LinkProfile(child.ID, profile.ID); err != nil {
		h.logger.Error("link profile", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

type pinRequest struct {
	PIN string `json:"pin"`
}

func validPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// SetPIN stores a bcrypt hash of the child's 4-digit PIN. Parents only.
func (h *ChildHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !validPIN(req.PIN) {
		writeError(w, http.StatusBadRequest, "PIN must be exactly 4 digits")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash PIN", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.children.SetPIN(child.ID, string(hash)); err != nil {
		h.logger.Error("set PIN", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// VerifyPIN checks a submitted PIN against the stored hash. Used by the
// shared-tablet child switcher.
func (h *ChildHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	hash, err := h.children.GetPINHash(child.ID)
	if err != nil {
		h.logger.Error("get PIN hash", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if hash == "" {
		writeError(w, http.StatusConflict, "no PIN set")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)) != nil {
		writeError(w, http.StatusUnauthorized, "incorrect PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *ChildHandler) load(w http.ResponseWriter, r *http.Request) (*model.Child, bool) {
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
