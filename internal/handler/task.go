package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/tidyroom/internal/auth"
	"github.com/dukerupert/tidyroom/internal/engine"
	"github.com/dukerupert/tidyroom/internal/model"
	"github.com/dukerupert/tidyroom/internal/store"
)

type TaskHandler struct {
	engine   *engine.Engine
	tasks    *store.TaskStore
	children *store.ChildStore
	catalog  *store.CatalogStore
	logger   *slog.Logger
}

func NewTaskHandler(eng *engine.Engine, ts *store.TaskStore, cs *store.ChildStore, cat *store.CatalogStore, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		engine:   eng,
		tasks:    ts,
		children: cs,
		catalog:  cat,
		logger:   logger,
	}
}

type taskRequest struct {
	ChildID              string     `json:"child_id"`
	TemplateID           *string    `json:"template_id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Zone                 string     `json:"zone"`
	Points               int        `json:"points"`
	Difficulty           string     `json:"difficulty"`
	Icon                 string     `json:"icon"`
	Frequency            string     `json:"frequency"`
	DueDate              *time.Time `json:"due_date"`
	RequiresVerification bool       `json:"requires_verification"`
}

func validDifficulty(d string) bool {
	return d == "easy" || d == "medium" || d == "hard"
}

func validFrequency(f string) bool {
	return f == "one_time" || f == "daily" || f == "weekly"
}

// Create assigns a new task, either from scratch or from a catalog
// template. Parents only (enforced by routing).
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	child, ok := h.familyChild(w, r, req.ChildID)
	if !ok {
		return
	}

	if req.TemplateID != nil {
		tmpl, err := h.catalog.GetTemplate(*req.TemplateID)
		if err != nil {
			h.logger.Error("get template", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if tmpl == nil {
			writeError(w, http.StatusNotFound, "template not found")
			return
		}
		if req.Title == "" {
			req.Title = tmpl.Title
		}
		if req.Description == "" {
			req.Description = tmpl.Description
		}
		if req.Zone == "" {
			req.Zone = tmpl.Zone
		}
		if req.Points == 0 {
			req.Points = tmpl.DefaultPoints
		}
		if req.Difficulty == "" {
			req.Difficulty = tmpl.Difficulty
		}
		if req.Icon == "" {
			req.Icon = tmpl.Icon
		}
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if !model.ValidZone(req.Zone) {
		writeError(w, http.StatusBadRequest, "zone must be one of bed, floor, desk, closet, general")
		return
	}
	if req.Points <= 0 {
		writeError(w, http.StatusBadRequest, "points must be positive")
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}
	if !validDifficulty(req.Difficulty) {
		writeError(w, http.StatusBadRequest, "difficulty must be easy, medium, or hard")
		return
	}
	if req.Frequency == "" {
		req.Frequency = "one_time"
	}
	if !validFrequency(req.Frequency) {
		writeError(w, http.StatusBadRequest, "frequency must be one_time, daily, or weekly")
		return
	}

	creator := auth.ProfileID(r.Context())
	task, err := h.tasks.Create(&model.Task{
		ChildID:              child.ID,
		CreatedBy:            &creator,
		TemplateID:           req.TemplateID,
		Title:                req.Title,
		Description:          req.Description,
		Zone:                 req.Zone,
		Points:               req.Points,
		Difficulty:           req.Difficulty,
		Icon:                 req.Icon,
		Frequency:            req.Frequency,
		DueDate:              req.DueDate,
		RequiresVerification: req.RequiresVerification,
	})
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// List returns tasks for ?child_id=, optionally filtered by ?status=.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	childID := r.URL.Query().Get("child_id")
	if childID == "" {
		writeError(w, http.StatusBadRequest, "child_id is required")
		return
	}
	child, ok := h.familyChild(w, r, childID)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListByChild(child.ID, r.URL.Query().Get("status"))
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, ok := h.familyTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task, ok := h.familyTask(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(task.ID); err != nil {
		h.logger.Error("delete task", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type completeRequest struct {
	PhotoURL string `json:"photo_url"`
}

// Complete marks the task done. Tasks that skip verification pay out here.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	task, ok := h.familyTask(w, r)
	if !ok {
		return
	}

	var req completeRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) // empty body is fine
	}

	res, err := h.engine.SubmitCompletion(r.Context(), caller(r), task.ID, req.PhotoURL)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *TaskHandler) Verify(w http.ResponseWriter, r *http.Request) {
	task, ok := h.familyTask(w, r)
	if !ok {
		return
	}

	res, err := h.engine.Verify(r.Context(), caller(r), task.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *TaskHandler) Reject(w http.ResponseWriter, r *http.Request) {
	task, ok := h.familyTask(w, r)
	if !ok {
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res, err := h.engine.Reject(r.Context(), caller(r), task.ID, req.Reason)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *TaskHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	task, ok := h.familyTask(w, r)
	if !ok {
		return
	}

	res, err := h.engine.Resubmit(r.Context(), caller(r), task.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// familyChild loads the child and checks it belongs to the caller's family.
func (h *TaskHandler) familyChild(w http.ResponseWriter, r *http.Request, childID string) (*model.Child, bool) {
	child, err := h.children.GetByID(childID)
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

// familyTask loads the {id} task and checks family ownership through its child.
func (h *TaskHandler) familyTask(w http.ResponseWriter, r *http.Request) (*model.Task, bool) {
	task, err := h.tasks.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return nil, false
	}
	if _, ok := h.familyChild(w, r, task.ChildID); !ok {
		return nil, false
	}
	return task, true
}
