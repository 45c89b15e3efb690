package store

import (
	"testing"
	"time"

	"github.com/dukerupert/tidyroom/internal/database"
)

func setupChildTestDB(t *testing.T) (*ChildStore, *RoomStore, *StreakStore, string) {
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
	return NewChildStore(db), NewRoomStore(db), NewStreakStore(db), fam.ID
}

func TestChildCreateProvisionsRoomAndStreak(t *testing.T) {
	cs, rs, ss, famID := setupChildTestDB(t)

	age := 9
	child, err := cs.Create(famID, "Ada", &age, "🦖")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if child.Age == nil || *child.Age != 9 {
		t.Errorf("age = %v, want 9", child.Age)
	}
	if child.CurrentLevel != 1 {
		t.Errorf("current level = %d, want 1", child.CurrentLevel)
	}
	if child.TotalPoints != 0 || child.AvailablePoints != 0 || child.TotalXP != 0 {
		t.Errorf("new child should start from zero, got %+v", child)
	}

	room, err := rs.GetByChild(child.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if room == nil {
		t.Fatal("expected room row for new child")
	}
	if room.ThemeID == nil || *room.ThemeID != "theme-classic" {
		t.Errorf("theme = %v, want theme-classic", room.ThemeID)
	}
	if room.CleanlinessScore != 50 {
		t.Errorf("cleanliness = %d, want 50", room.CleanlinessScore)
	}

	streak, err := ss.GetByChild(child.ID)
	if err != nil {
		t.Fatalf("get streak: %v", err)
	}
	if streak == nil {
		t.Fatal("expected streak row for new child")
	}
	if streak.CurrentStreak != 0 || streak.Multiplier != 1.0 {
		t.Errorf("fresh streak = %+v", streak)
	}
}

func TestChildDefaultAvatar(t *testing.T) {
	cs, _, _, famID := setupChildTestDB(t)

	child, err := cs.Create(famID, "Ben", nil, "")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if child.AvatarEmoji == "" {
		t.Error("expected default avatar emoji")
	}
	if child.Age != nil {
		t.Errorf("age = %v, want nil", child.Age)
	}
}

func TestChildUpdateProgress(t *testing.T) {
	cs, _, _, famID := setupChildTestDB(t)

	child, _ := cs.Create(famID, "Ada", nil, "")
	child.TotalPoints = 120
	child.AvailablePoints = 80
	child.TotalXP = 150
	child.CurrentLevel = 2

	if err := cs.UpdateProgress(child); err != nil {
		t.Fatalf("update progress: %v", err)
	}

	got, err := cs.GetByID(child.ID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if got.TotalPoints != 120 || got.AvailablePoints != 80 || got.TotalXP != 150 || got.CurrentLevel != 2 {
		t.Errorf("progress not persisted: %+v", got)
	}
}

func TestChildPIN(t *testing.T) {
	cs, _, _, famID := setupChildTestDB(t)

	child, _ := cs.Create(famID, "Ada", nil, "")

	hash, err := cs.GetPINHash(child.ID)
	if err != nil {
		t.Fatalf("get pin hash: %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash before SetPIN, got %q", hash)
	}
	if child.HasPIN {
		t.Error("HasPIN should be false before SetPIN")
	}

	if err := cs.SetPIN(child.ID, "pin-hash"); err != nil {
		t.Fatalf("set pin: %v", err)
	}
	hash, _ = cs.GetPINHash(child.ID)
	if hash != "pin-hash" {
		t.Errorf("hash = %q, want %q", hash, "pin-hash")
	}
	got, _ := cs.GetByID(child.ID)
	if !got.HasPIN {
		t.Error("HasPIN should be true after SetPIN")
	}
}

func TestChildDeleteCascades(t *testing.T) {
	cs, rs, ss, famID := setupChildTestDB(t)

	child, _ := cs.Create(famID, "Ada", nil, "")
	if err := cs.Delete(child.ID); err != nil {
		t.Fatalf("delete child: %v", err)
	}

	if got, _ := cs.GetByID(child.ID); got != nil {
		t.Error("child should be gone")
	}
	if room, _ := rs.GetByChild(child.ID); room != nil {
		t.Error("room should cascade")
	}
	if streak, _ := ss.GetByChild(child.ID); streak != nil {
		t.Error("streak should cascade")
	}
}

func TestRoomUpdateScoresAndStaleList(t *testing.T) {
	cs, rs, _, famID := setupChildTestDB(t)

	child, _ := cs.Create(famID, "Ada", nil, "")
	room, _ := rs.GetByChild(child.ID)

	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	room.ZoneBed = 80
	room.ZoneFloor = 70
	room.CleanlinessScore = 62
	room.LastCleanedAt = &now
	if err := rs.UpdateScores(room); err != nil {
		t.Fatalf("update scores: %v", err)
	}

	got, _ := rs.GetByChild(child.ID)
	if got.ZoneBed != 80 || got.ZoneFloor != 70 || got.CleanlinessScore != 62 {
		t.Errorf("scores not persisted: %+v", got)
	}
	if got.LastCleanedAt == nil || !got.LastCleanedAt.Equal(now) {
		t.Errorf("last cleaned = %v, want %v", got.LastCleanedAt, now)
	}

	// Cleaned less than a day ago: not stale.
	stale, err := rs.ListStaleChildIDs(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("list stale: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("expected no stale rooms, got %v", stale)
	}

	// A cutoff after the last clean picks the room up.
	stale, _ = rs.ListStaleChildIDs(now.Add(time.Minute))
	if len(stale) != 1 || stale[0] != child.ID {
		t.Errorf("stale = %v, want [%s]", stale, child.ID)
	}
}

func TestRoomSetTheme(t *testing.T) {
	cs, rs, _, famID := setupChildTestDB(t)

	child, _ := cs.Create(famID, "Ada", nil, "")
	if err := rs.SetTheme(child.ID, "theme-space"); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	room, _ := rs.GetByChild(child.ID)
	if room.ThemeID == nil || *room.ThemeID != "theme-space" {
		t.Errorf("theme = %v, want theme-space", room.ThemeID)
	}
}

func TestStreakUpdate(t *testing.T) {
	cs, _, ss, famID := setupChildTestDB(t)

	child, _ := cs.Create(famID, "Ada", nil, "")
	streak, _ := ss.GetByChild(child.ID)

	streak.CurrentStreak = 4
	streak.LongestStreak = 6
	streak.LastActivityDate = "2026-03-02"
	streak.Multiplier = 1.25
	if err := ss.Update(streak); err != nil {
		t.Fatalf("update streak: %v", err)
	}

	got, _ := ss.GetByChild(child.ID)
	if got.CurrentStreak != 4 || got.LongestStreak != 6 || got.Multiplier != 1.25 {
		t.Errorf("streak not persisted: %+v", got)
	}
	if got.LastActivityDate != "2026-03-02" {
		t.Errorf("last activity = %q, want 2026-03-02", got.LastActivityDate)
	}
}
