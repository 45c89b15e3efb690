package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dukerupert/tidyroom/internal/model"
	"github.com/dukerupert/tidyroom/internal/store"
)

// Caller identifies who is invoking an operation. Authentication happens
// upstream; the engine only checks the already-verified role against the
// operation.
type Caller struct {
	ProfileID string
	Role      string // "parent" or "child"
}

const (
	RoleParent = "parent"
	RoleChild  = "child"
)

// Event describes a state change worth telling dashboards about. Events are
// published only after the transaction that produced them commits.
type Event struct {
	Type     string         `json:"type"`
	FamilyID string         `json:"family_id"`
	ChildID  string         `json:"child_id"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// Sink receives committed events.
type Sink func(Event)

// Engine owns every lifecycle-mutating operation on the points economy.
// All operations for one child are serialized behind a per-child mutex and
// run in a single transaction, so balances, streaks, and room scores never
// see lost updates. Operations on different children proceed concurrently.
type Engine struct {
	db     *sql.DB
	loc    *time.Location
	logger *slog.Logger
	sink   Sink
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(db *sql.DB, loc *time.Location, logger *slog.Logger, sink Sink) *Engine {
	if sink == nil {
		sink = func(Event) {}
	}
	return &Engine{
		db:     db,
		loc:    loc,
		logger: logger,
		sink:   sink,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// SetClock replaces the time source; used by tests to control day rollover.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

func (e *Engine) childLock(childID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[childID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[childID] = l
	}
	return l
}

// txStores bundles the tx-scoped stores an operation works with.
type txStores struct {
	children     *store.ChildStore
	tasks        *store.TaskStore
	rooms        *store.RoomStore
	streaks      *store.StreakStore
	points       *store.PointsStore
	levels       *store.LevelStore
	achievements *store.AchievementStore
	catalog      *store.CatalogStore
	inventory    *store.InventoryStore
}

func newTxStores(tx store.DB) *txStores {
	return &txStores{
		children:     store.NewChildStore(tx),
		tasks:        store.NewTaskStore(tx),
		rooms:        store.NewRoomStore(tx),
		streaks:      store.NewStreakStore(tx),
		points:       store.NewPointsStore(tx),
		levels:       store.NewLevelStore(tx),
		achievements: store.NewAchievementStore(tx),
		catalog:      store.NewCatalogStore(tx),
		inventory:    store.NewInventoryStore(tx),
	}
}

// withChild serializes on the child, runs fn inside a transaction, and
// retries the whole operation on storage conflicts. fn must be safe to run
// again from scratch: nothing it wrote survives a failed attempt.
func (e *Engine) withChild(ctx context.Context, childID string, fn func(s *txStores, events *[]Event) error) error {
	lock := e.childLock(childID)
	lock.Lock()
	defer lock.Unlock()

	var events []Event
	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(10*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		events = events[:0]
		err := e.runTx(ctx, func(tx *sql.Tx) error {
			return fn(newTxStores(tx), &events)
		})
		if isBusy(err) {
			e.logger.Debug("storage conflict, retrying", "child_id", childID, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return err
	}

	for _, ev := range events {
		e.sink(ev)
	}
	return nil
}

func (e *Engine) runTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// isBusy reports whether err is a transient SQLite lock conflict.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// record appends a ledger entry and applies the delta to the child's
// balances. Negative deltas that would drive the spendable balance below
// zero fail before anything is written; earning types also bump the
// lifetime total, preserving available <= total.
func record(s *txStores, child *model.Child, delta int, typ, description string, taskID *string) (*model.PointsLogEntry, error) {
	newBalance := child.AvailablePoints + delta
	if newBalance < 0 {
		return nil, fmt.Errorf("%w: balance %d, delta %d", ErrInsufficientBalance, child.AvailablePoints, delta)
	}

	entry, err := s.points.Insert(child.ID, delta, newBalance, typ, description, taskID)
	if err != nil {
		return nil, err
	}

	child.AvailablePoints = newBalance
	if model.EarningType(typ) && delta > 0 {
		child.TotalPoints += delta
	}
	return entry, nil
}
