package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dukerupert/tidyroom/internal/auth"
	"github.com/dukerupert/tidyroom/internal/engine"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps engine sentinel errors onto HTTP statuses. State
// conflicts are 409: the request was well-formed, the world just moved on.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, engine.ErrMissingEvidence), errors.Is(err, engine.ErrReasonRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrInvalidTransition),
		errors.Is(err, engine.ErrInsufficientBalance),
		errors.Is(err, engine.ErrLevelLocked),
		errors.Is(err, engine.ErrAlreadyOwned),
		errors.Is(err, engine.ErrNotOwned):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// caller builds the engine caller from the authenticated request.
func caller(r *http.Request) engine.Caller {
	ac, _ := auth.FromContext(r.Context())
	return engine.Caller{ProfileID: ac.ProfileID, Role: ac.Role}
}
