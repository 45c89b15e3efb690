package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/tidyroom/internal/auth"
	"github.com/dukerupert/tidyroom/internal/middleware"
	"github.com/dukerupert/tidyroom/internal/store"
)

type AuthHandler struct {
	families *store.FamilyStore
	profiles *store.ProfileStore
	sessions *store.SessionStore
	children *store.ChildStore
	ttl      time.Duration
	logger   *slog.Logger
}

func NewAuthHandler(fs *store.FamilyStore, ps *store.ProfileStore, ss *store.SessionStore, cs *store.ChildStore, ttl time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		families: fs,
		profiles: ps,
		sessions: ss,
		children: cs,
		ttl:      ttl,
		logger:   logger,
	}
}

type registerRequest struct {
	FamilyName  string `json:"family_name"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// Register creates a family and its primary parent, then signs them in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.FamilyName = strings.TrimSpace(req.FamilyName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.FamilyName == "" || req.Email == "" || req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "family_name, email, and display_name are required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	existing, err := h.profiles.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	family, err := h.families.Create(req.FamilyName, nil)
	if err != nil {
		h.logger.Error("create family", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	profile, err := h.profiles.Create(family.ID, req.Email, req.DisplayName, "parent", string(hash), true)
	if err != nil {
		h.logger.Error("create profile", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.startSession(w, profile.ID, family.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"family": family, "profile": profile})
}

type joinRequest struct {
	InviteCode  string `json:"invite_code"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// Join adds another parent to an existing family via its invite code.
func (h *AuthHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.Email == "" || req.DisplayName == "" || req.InviteCode == "" {
		writeError(w, http.StatusBadRequest, "invite_code, email, and display_name are required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	family, err := h.families.GetByInviteCode(strings.ToUpper(strings.TrimSpace(req.InviteCode)))
	if err != nil {
		h.logger.Error("join lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "invite code not found")
		return
	}

	existing, err := h.profiles.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("join email lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	profile, err := h.profiles.Create(family.ID, req.Email, req.DisplayName, "parent", string(hash), false)
	if err != nil {
		h.logger.Error("create profile", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.startSession(w, profile.ID, family.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"family": family, "profile": profile})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	profile, err := h.profiles.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if profile == nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	hash, err := h.profiles.GetPasswordHash(profile.ID)
	if err != nil {
		h.logger.Error("login hash", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.startSession(w, profile.ID, profile.FamilyID)
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

type pinLoginRequest struct {
	ChildID string `json:"child_id"`
	PIN     string `json:"pin"`
}

// PinLogin signs a child in with their 4-digit PIN. The child must have a
// linked profile; shared-tablet kids without one stay behind the parent's
// session instead.
func (h *AuthHandler) PinLogin(w http.ResponseWriter, r *http.Request) {
	var req pinLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	child, err := h.children.GetByID(req.ChildID)
	if err != nil {
		h.logger.Error("pin login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if child == nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	hash, err := h.children.GetPINHash(child.ID)
	if err != nil {
		h.logger.Error("pin login hash", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if child.ProfileID == nil {
		writeError(w, http.StatusConflict, "child has no login profile")
		return
	}

	h.startSession(w, *child.ProfileID, child.FamilyID)
	writeJSON(w, http.StatusOK, map[string]any{"child": child})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.DeleteByToken(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me returns the authenticated profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetByID(auth.ProfileID(r.Context()))
	if err != nil || profile == nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	family, err := h.families.GetByID(profile.FamilyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile, "family": family})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, profileID, familyID string) {
	sess, err := h.sessions.Create(profileID, familyID, h.ttl)
	if err != nil {
		h.logger.Error("create session", "error", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
