package store

import (
	"testing"
	"time"

	"github.com/dukerupert/tidyroom/internal/database"
	"github.com/dukerupert/tidyroom/internal/model"
)

func setupTaskTestDB(t *testing.T) (*TaskStore, *PointsStore, string) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// A second pooled connection to :memory: would open a separate empty database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	fam, err := NewFamilyStore(db).Create("Testers", nil)
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	child, err := NewChildStore(db).Create(fam.ID, "Ada", nil, "")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return NewTaskStore(db), NewPointsStore(db), child.ID
}

func newTestTask(childID string, points int) *model.Task {
	return &model.Task{
		ChildID:    childID,
		Title:      "Make bed",
		Zone:       model.ZoneBed,
		Points:     points,
		Difficulty: "easy",
		Frequency:  "one_time",
	}
}

func TestTaskCreateDefaultsToPending(t *testing.T) {
	ts, _, childID := setupTaskTestDB(t)

	task, err := ts.Create(newTestTask(childID, 50))
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != model.TaskPending {
		t.Errorf("status = %q, want %q", task.Status, model.TaskPending)
	}
	if task.ID == "" {
		t.Error("expected generated ID")
	}

	got, err := ts.GetByID(task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got == nil || got.Title != "Make bed" || got.Points != 50 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestTaskListByChildWithStatusFilter(t *testing.T) {
	ts, _, childID := setupTaskTestDB(t)

	a, _ := ts.Create(newTestTask(childID, 10))
	b, _ := ts.Create(newTestTask(childID, 20))

	b.Status = model.TaskVerified
	if err := ts.SetStatus(b); err != nil {
		t.Fatalf("set status: %v", err)
	}

	all, err := ts.ListByChild(childID, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(all))
	}

	pending, err := ts.ListByChild(childID, model.TaskPending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != a.ID {
		t.Errorf("pending filter returned wrong tasks")
	}
}

func TestTaskSetStatusPersistsLifecycleFields(t *testing.T) {
	ts, _, childID := setupTaskTestDB(t)

	task, _ := ts.Create(newTestTask(childID, 50))

	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	photo := "https://example.com/p.jpg"
	reason := "still socks under the bed"
	task.Status = model.TaskRejected
	task.CompletedAt = &now
	task.VerificationPhotoURL = &photo
	task.RejectionReason = &reason
	if err := ts.SetStatus(task); err != nil {
		t.Fatalf("set status: %v", err)
	}

	got, _ := ts.GetByID(task.ID)
	if got.Status != model.TaskRejected {
		t.Errorf("status = %q, want rejected", got.Status)
	}
	if got.VerificationPhotoURL == nil || *got.VerificationPhotoURL != photo {
		t.Errorf("photo = %v, want %q", got.VerificationPhotoURL, photo)
	}
	if got.RejectionReason == nil || *got.RejectionReason != reason {
		t.Errorf("reason = %v, want %q", got.RejectionReason, reason)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(now) {
		t.Errorf("completed at = %v, want %v", got.CompletedAt, now)
	}

	// Clearing nullable fields writes NULL, not stale values.
	task.Status = model.TaskPending
	task.CompletedAt = nil
	task.VerificationPhotoURL = nil
	task.RejectionReason = nil
	if err := ts.SetStatus(task); err != nil {
		t.Fatalf("clear status: %v", err)
	}
	got, _ = ts.GetByID(task.ID)
	if got.VerificationPhotoURL != nil || got.RejectionReason != nil || got.CompletedAt != nil {
		t.Errorf("nullable fields not cleared: %+v", got)
	}
}

func TestTaskListOverdue(t *testing.T) {
	ts, _, childID := setupTaskTestDB(t)

	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	overdue := newTestTask(childID, 10)
	overdue.DueDate = &past
	overdue, _ = ts.Create(overdue)

	upcoming := newTestTask(childID, 10)
	upcoming.DueDate = &future
	ts.Create(upcoming)

	undated := newTestTask(childID, 10)
	ts.Create(undated)

	got, err := ts.ListOverdue(now)
	if err != nil {
		t.Fatalf("list overdue: %v", err)
	}
	if len(got) != 1 || got[0].ID != overdue.ID {
		t.Errorf("overdue = %d tasks, want just the past-due one", len(got))
	}
}

func TestTaskCountVerified(t *testing.T) {
	ts, _, childID := setupTaskTestDB(t)

	for i := 0; i < 3; i++ {
		task, _ := ts.Create(newTestTask(childID, 10))
		if i < 2 {
			task.Status = model.TaskVerified
			ts.SetStatus(task)
		}
	}

	n, err := ts.CountVerified(childID)
	if err != nil {
		t.Fatalf("count verified: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestPointsLogOrderingAndHistory(t *testing.T) {
	_, ps, childID := setupTaskTestDB(t)

	entries := []struct {
		delta, balance int
		typ            string
	}{
		{50, 50, model.PointsTaskComplete},
		{-30, 20, model.PointsPurchase},
		{100, 120, model.PointsAdjustment},
	}
	for _, e := range entries {
		if _, err := ps.Insert(childID, e.delta, e.balance, e.typ, "", nil); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	// ListByChild is newest first and respects the limit.
	recent, err := ps.ListByChild(childID, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].Points != 100 || recent[1].Points != -30 {
		t.Errorf("wrong order: %+v", recent)
	}

	// History is oldest first, so balances replay forward.
	history, err := ps.History(childID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(history))
	}
	running := 0
	for _, e := range history {
		running += e.Points
		if e.BalanceAfter != running {
			t.Errorf("balance after %d = %d, want %d", e.Points, e.BalanceAfter, running)
		}
	}
}
