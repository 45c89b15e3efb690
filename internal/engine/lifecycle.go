package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/tidyroom/internal/model"
)

// TaskResult is the snapshot returned by lifecycle operations. Child, Room,
// and Streak are populated only when the operation awarded points.
type TaskResult struct {
	Task    *model.Task    `json:"task"`
	Child   *model.Child   `json:"child,omitempty"`
	Room    *model.Room    `json:"room,omitempty"`
	Streak  *model.Streak  `json:"streak,omitempty"`
	Awarded int            `json:"awarded"`
	LevelUp bool           `json:"level_up"`
}

// SubmitCompletion moves a pending task to completed. Tasks that require
// verification must carry a photo reference and then wait for a parent;
// tasks that do not are verified in the same call, atomically.
func (e *Engine) SubmitCompletion(ctx context.Context, caller Caller, taskID, photoURL string) (*TaskResult, error) {
	task, err := e.taskChild(taskID)
	if err != nil {
		return nil, err
	}

	res := &TaskResult{}
	var lapsed bool
	err = e.withChild(ctx, task.ChildID, func(s *txStores, events *[]Event) error {
		t, err := s.tasks.GetByID(taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
		}

		now := e.now().UTC()

		// Lazy expiry: a pending task past its due date expires on access
		// instead of waiting for the sweep. Return nil so the expiry (and
		// any spawned next instance) commits; the caller still gets an
		// error, reported after the transaction lands.
		if t.Status == model.TaskPending && t.DueDate != nil && t.DueDate.Before(now) {
			lapsed = true
			return e.expireTask(s, events, t, now)
		}

		if t.Status != model.TaskPending {
			return fmt.Errorf("task %s is %s: %w", taskID, t.Status, ErrInvalidTransition)
		}
		if t.RequiresVerification && strings.TrimSpace(photoURL) == "" {
			return fmt.Errorf("task %s: %w", taskID, ErrMissingEvidence)
		}

		t.Status = model.TaskCompleted
		t.CompletedAt = &now
		if photoURL != "" {
			t.VerificationPhotoURL = &photoURL
		}
		if err := s.tasks.SetStatus(t); err != nil {
			return err
		}

		if !t.RequiresVerification {
			// No parent action needed: award in the same transaction.
			return e.verifyTask(s, events, t, caller.ProfileID, now, res)
		}

		child, err := s.children.GetByID(t.ChildID)
		if err != nil {
			return err
		}
		*events = append(*events, Event{
			Type:     "task_completed",
			FamilyID: child.FamilyID,
			ChildID:  t.ChildID,
			Extra:    map[string]any{"task_id": t.ID, "title": t.Title},
		})
		res.Task = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if lapsed {
		return nil, fmt.Errorf("task %s is past due: %w", taskID, ErrInvalidTransition)
	}
	return res, nil
}

// Verify confirms a completed task. Parents only. The point award, streak
// update, level recomputation, and room score change all land in one
// transaction; verifying a task twice fails without touching any of them.
func (e *Engine) Verify(ctx context.Context, caller Caller, taskID string) (*TaskResult, error) {
	if caller.Role != RoleParent {
		return nil, fmt.Errorf("verify: %w", ErrUnauthorized)
	}

	task, err := e.taskChild(taskID)
	if err != nil {
		return nil, err
	}

	res := &TaskResult{}
	err = e.withChild(ctx, task.ChildID, func(s *txStores, events *[]Event) error {
		t, err := s.tasks.GetByID(taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
		}
		if t.Status != model.TaskCompleted {
			return fmt.Errorf("task %s is %s: %w", taskID, t.Status, ErrInvalidTransition)
		}
		return e.verifyTask(s, events, t, caller.ProfileID, e.now().UTC(), res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Reject sends a completed task back. Parents only, reason required. No
// points move.
func (e *Engine) Reject(ctx context.Context, caller Caller, taskID, reason string) (*TaskResult, error) {
	if caller.Role != RoleParent {
		return nil, fmt.Errorf("reject: %w", ErrUnauthorized)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("reject: %w", ErrReasonRequired)
	}

	task, err := e.taskChild(taskID)
	if err != nil {
		return nil, err
	}

	res := &TaskResult{}
	err = e.withChild(ctx, task.ChildID, func(s *txStores, events *[]Event) error {
		t, err := s.tasks.GetByID(taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
		}
		if t.Status != model.TaskCompleted {
			return fmt.Errorf("task %s is %s: %w", taskID, t.Status, ErrInvalidTransition)
		}

		t.Status = model.TaskRejected
		t.RejectionReason = &reason
		if err := s.tasks.SetStatus(t); err != nil {
			return err
		}

		child, err := s.children.GetByID(t.ChildID)
		if err != nil {
			return err
		}
		*events = append(*events, Event{
			Type:     "task_rejected",
			FamilyID: child.FamilyID,
			ChildID:  t.ChildID,
			Extra:    map[string]any{"task_id": t.ID, "title": t.Title, "reason": reason},
		})
		res.Task = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Resubmit returns a rejected task to pending so the child can try again.
func (e *Engine) Resubmit(ctx context.Context, caller Caller, taskID string) (*TaskResult, error) {
	task, err := e.taskChild(taskID)
	if err != nil {
		return nil, err
	}

	res := &TaskResult{}
	err = e.withChild(ctx, task.ChildID, func(s *txStores, events *[]Event) error {
		t, err := s.tasks.GetByID(taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
		}
		if t.Status != model.TaskRejected {
			return fmt.Errorf("task %s is %s: %w", taskID, t.Status, ErrInvalidTransition)
		}

		t.Status = model.TaskPending
		t.RejectionReason = nil
		t.CompletedAt = nil
		t.VerificationPhotoURL = nil
		if err := s.tasks.SetStatus(t); err != nil {
			return err
		}
		res.Task = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// taskChild resolves a task's owning child outside the lock, so the right
// child mutex can be taken. The task is re-read inside the transaction.
func (e *Engine) taskChild(taskID string) (*model.Task, error) {
	t, err := newTxStores(e.db).tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	return t, nil
}

// verifyTask runs the whole award pipeline for one verified task: status
// stamp, streak update, scaled point award, XP and level recomputation,
// room zone improvement, achievement evaluation, and the next recurring
// instance. Caller has already checked the from-state.
func (e *Engine) verifyTask(s *txStores, events *[]Event, t *model.Task, verifierID string, now time.Time, res *TaskResult) error {
	t.Status = model.TaskVerified
	t.VerifiedAt = &now
	t.VerifiedBy = &verifierID
	if err := s.tasks.SetStatus(t); err != nil {
		return err
	}

	child, err := s.children.GetByID(t.ChildID)
	if err != nil {
		return err
	}
	if child == nil {
		return fmt.Errorf("child %s: %w", t.ChildID, ErrNotFound)
	}

	// Streak first: today's activity decides the multiplier for this award.
	streak, err := s.streaks.GetByChild(child.ID)
	if err != nil {
		return err
	}
	AdvanceStreak(streak, DayString(now, e.loc), e.loc)
	if err := s.streaks.Update(streak); err != nil {
		return err
	}

	base, bonus := ScaledAward(t.Points, streak.Multiplier)
	if _, err := record(s, child, base, model.PointsTaskComplete, t.Title, &t.ID); err != nil {
		return err
	}
	if bonus > 0 {
		desc := fmt.Sprintf("%d-day streak bonus", streak.CurrentStreak)
		if _, err := record(s, child, bonus, model.PointsStreakBonus, desc, &t.ID); err != nil {
			return err
		}
	}

	levelUp, err := e.applyXP(s, events, child, t.Points)
	if err != nil {
		return err
	}

	room, err := s.rooms.GetByChild(child.ID)
	if err != nil {
		return err
	}
	ImproveZone(room, t.Zone, ZoneDelta(t.Difficulty))
	room.LastCleanedAt = &now
	if err := s.rooms.UpdateScores(room); err != nil {
		return err
	}

	if err := e.evaluateAchievements(s, events, child, streak); err != nil {
		return err
	}

	if err := s.children.UpdateProgress(child); err != nil {
		return err
	}

	if err := e.spawnNext(s, t, now); err != nil {
		return err
	}

	*events = append(*events, Event{
		Type:     "task_verified",
		FamilyID: child.FamilyID,
		ChildID:  child.ID,
		Extra: map[string]any{
			"task_id":           t.ID,
			"title":             t.Title,
			"awarded":           base + bonus,
			"zone":              t.Zone,
			"cleanliness_score": room.CleanlinessScore,
		},
	})

	res.Task = t
	res.Child = child
	res.Room = room
	res.Streak = streak
	res.Awarded = base + bonus
	res.LevelUp = levelUp
	return nil
}

// applyXP adds XP and walks the child up the level table, recording a
// level-up bonus for every level gained.
func (e *Engine) applyXP(s *txStores, events *[]Event, child *model.Child, xp int) (bool, error) {
	if xp <= 0 {
		return false, nil
	}

	levels, err := s.levels.List()
	if err != nil {
		return false, err
	}

	child.TotalXP += xp
	newLevel := LevelFor(levels, child.TotalXP)
	leveled := false

	for _, l := range levels {
		if l.Level <= child.CurrentLevel || l.Level > newLevel.Level {
			continue
		}
		leveled = true
		if l.RewardPoints > 0 {
			desc := fmt.Sprintf("Reached level %d: %s", l.Level, l.Title)
			if _, err := record(s, child, l.RewardPoints, model.PointsLevelUp, desc, nil); err != nil {
				return false, err
			}
		}
		*events = append(*events, Event{
			Type:     "level_up",
			FamilyID: child.FamilyID,
			ChildID:  child.ID,
			Extra:    map[string]any{"level": l.Level, "title": l.Title},
		})
	}
	child.CurrentLevel = newLevel.Level
	return leveled, nil
}

// spawnNext creates the next pending instance of a recurring task.
func (e *Engine) spawnNext(s *txStores, t *model.Task, now time.Time) error {
	var interval time.Duration
	switch t.Frequency {
	case "daily":
		interval = 24 * time.Hour
	case "weekly":
		interval = 7 * 24 * time.Hour
	default:
		return nil
	}

	from := now
	if t.DueDate != nil && t.DueDate.After(now) {
		from = *t.DueDate
	}
	due := from.Add(interval)

	next := &model.Task{
		ChildID:              t.ChildID,
		CreatedBy:            t.CreatedBy,
		TemplateID:           t.TemplateID,
		Title:                t.Title,
		Description:          t.Description,
		Zone:                 t.Zone,
		Points:               t.Points,
		Difficulty:           t.Difficulty,
		Icon:                 t.Icon,
		Frequency:            t.Frequency,
		DueDate:              &due,
		RequiresVerification: t.RequiresVerification,
	}
	if _, err := s.tasks.Create(next); err != nil {
		return fmt.Errorf("spawn next task: %w", err)
	}
	return nil
}
