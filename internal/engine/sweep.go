package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/tidyroom/internal/model"
	"github.com/dukerupert/tidyroom/internal/store"
)

// Zone points lost per decay pass when a room sees no cleaning activity.
const decayAmount = 2

// How long a room can sit untouched before decay starts.
const decayAfter = 24 * time.Hour

// ExpireOverdue marks pending tasks whose due date has passed as expired and
// spawns the next instance of any recurring ones. Each task is handled under
// its child's lock, same as every other mutation. Returns the number expired.
func (e *Engine) ExpireOverdue(ctx context.Context) (int, error) {
	overdue, err := store.NewTaskStore(e.db).ListOverdue(e.now().UTC())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, t := range overdue {
		task := t
		var did bool
		err := e.withChild(ctx, task.ChildID, func(s *txStores, events *[]Event) error {
			// Re-check inside the transaction: the child may have completed
			// the task between the scan and the lock.
			cur, err := s.tasks.GetByID(task.ID)
			if err != nil {
				return err
			}
			if cur == nil || cur.Status != model.TaskPending {
				return nil
			}
			did = true
			return e.expireTask(s, events, cur, e.now().UTC())
		})
		if err != nil {
			e.logger.Error("expire task", "task_id", task.ID, "error", err)
			continue
		}
		if did {
			expired++
		}
	}
	return expired, nil
}

// expireTask moves one pending task to expired, with no award, and spawns
// the next recurring instance.
func (e *Engine) expireTask(s *txStores, events *[]Event, t *model.Task, now time.Time) error {
	t.Status = model.TaskExpired
	if err := s.tasks.SetStatus(t); err != nil {
		return err
	}
	if err := e.spawnNext(s, t, now); err != nil {
		return err
	}

	child, err := s.children.GetByID(t.ChildID)
	if err != nil {
		return err
	}
	*events = append(*events, Event{
		Type:     "task_expired",
		FamilyID: child.FamilyID,
		ChildID:  t.ChildID,
		Extra:    map[string]any{"task_id": t.ID, "title": t.Title},
	})
	return nil
}

// DecayRooms lowers zone scores for rooms with no recent cleaning activity.
// Runs under the same per-child serialization as score improvements, so a
// decay pass can never race a verification for the same child.
func (e *Engine) DecayRooms(ctx context.Context) (int, error) {
	cutoff := e.now().UTC().Add(-decayAfter)
	childIDs, err := store.NewRoomStore(e.db).ListStaleChildIDs(cutoff)
	if err != nil {
		return 0, err
	}

	decayed := 0
	for _, childID := range childIDs {
		id := childID
		var did bool
		err := e.withChild(ctx, id, func(s *txStores, events *[]Event) error {
			room, err := s.rooms.GetByChild(id)
			if err != nil {
				return err
			}
			if room == nil {
				return nil
			}
			// Re-check under the lock: a verify may have just cleaned.
			if room.LastCleanedAt != nil && room.LastCleanedAt.After(cutoff) {
				return nil
			}

			did = true
			DecayZones(room, decayAmount)
			if err := s.rooms.UpdateScores(room); err != nil {
				return err
			}

			child, err := s.children.GetByID(id)
			if err != nil {
				return err
			}
			*events = append(*events, Event{
				Type:     "room_decayed",
				FamilyID: child.FamilyID,
				ChildID:  id,
				Extra:    map[string]any{"cleanliness_score": room.CleanlinessScore},
			})
			return nil
		})
		if err != nil {
			e.logger.Error("decay room", "child_id", id, "error", err)
			continue
		}
		if did {
			decayed++
		}
	}
	return decayed, nil
}

// Adjust records a manual point correction by a parent. Negative deltas
// follow the same floor as purchases.
func (e *Engine) Adjust(ctx context.Context, caller Caller, childID string, delta int, description string) (*model.Child, error) {
	if caller.Role != RoleParent {
		return nil, fmt.Errorf("adjust: %w", ErrUnauthorized)
	}
	if description == "" {
		description = "Manual adjustment"
	}

	var out *model.Child
	err := e.withChild(ctx, childID, func(s *txStores, events *[]Event) error {
		child, err := s.children.GetByID(childID)
		if err != nil {
			return err
		}
		if child == nil {
			return fmt.Errorf("child %s: %w", childID, ErrNotFound)
		}

		if _, err := record(s, child, delta, model.PointsAdjustment, description, nil); err != nil {
			return err
		}
		if err := s.children.UpdateProgress(child); err != nil {
			return err
		}

		*events = append(*events, Event{
			Type:     "points_adjusted",
			FamilyID: child.FamilyID,
			ChildID:  childID,
			Extra:    map[string]any{"delta": delta, "balance": child.AvailablePoints},
		})
		out = child
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
