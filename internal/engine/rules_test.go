package engine

import (
	"testing"
	"time"

	"github.com/dukerupert/tidyroom/internal/model"
)

func TestMultiplierFor(t *testing.T) {
	tests := []struct {
		streak int
		want   float64
	}{
		{0, 1.0},
		{1, 1.0},
		{2, 1.0},
		{3, 1.25},
		{6, 1.25},
		{7, 1.5},
		{13, 1.5},
		{14, 1.75},
		{29, 1.75},
		{30, 2.0},
		{365, 2.0},
	}
	for _, tt := range tests {
		if got := MultiplierFor(tt.streak); got != tt.want {
			t.Errorf("MultiplierFor(%d) = %v, want %v", tt.streak, got, tt.want)
		}
	}
}

func TestMultiplierMonotonic(t *testing.T) {
	prev := MultiplierFor(0)
	for streak := 1; streak <= 60; streak++ {
		cur := MultiplierFor(streak)
		if cur < prev {
			t.Fatalf("multiplier decreased at streak %d: %v < %v", streak, cur, prev)
		}
		prev = cur
	}
}

func TestAdvanceStreak(t *testing.T) {
	tests := []struct {
		name        string
		last        string
		current     int
		longest     int
		day         string
		wantCurrent int
		wantLongest int
	}{
		{"first activity", "", 0, 0, "2026-03-01", 1, 1},
		{"same day is idempotent", "2026-03-01", 4, 6, "2026-03-01", 4, 6},
		{"next day extends", "2026-03-01", 4, 6, "2026-03-02", 5, 6},
		{"next day sets new longest", "2026-03-01", 6, 6, "2026-03-02", 7, 7},
		{"two day gap resets", "2026-03-01", 9, 9, "2026-03-03", 1, 9},
		{"long gap resets", "2026-03-01", 9, 12, "2026-04-15", 1, 12},
		{"month rollover extends", "2026-02-28", 2, 2, "2026-03-01", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &model.Streak{
				CurrentStreak:    tt.current,
				LongestStreak:    tt.longest,
				LastActivityDate: tt.last,
			}
			AdvanceStreak(s, tt.day, time.UTC)

			if s.CurrentStreak != tt.wantCurrent {
				t.Errorf("current = %d, want %d", s.CurrentStreak, tt.wantCurrent)
			}
			if s.LongestStreak != tt.wantLongest {
				t.Errorf("longest = %d, want %d", s.LongestStreak, tt.wantLongest)
			}
			if s.LongestStreak < s.CurrentStreak {
				t.Errorf("longest %d < current %d", s.LongestStreak, s.CurrentStreak)
			}
			if s.Multiplier != MultiplierFor(s.CurrentStreak) {
				t.Errorf("multiplier = %v, want %v", s.Multiplier, MultiplierFor(s.CurrentStreak))
			}
		})
	}
}

func TestAdvanceStreakConsecutiveDays(t *testing.T) {
	s := &model.Streak{}
	day := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 10; i++ {
		AdvanceStreak(s, DayString(day, time.UTC), time.UTC)
		if s.CurrentStreak != i {
			t.Fatalf("after day %d: current = %d, want %d", i, s.CurrentStreak, i)
		}
		day = day.AddDate(0, 0, 1)
	}
	if s.LongestStreak != 10 {
		t.Errorf("longest = %d, want 10", s.LongestStreak)
	}
}

func TestLevelFor(t *testing.T) {
	levels := []model.Level{
		{Level: 1, XPRequired: 0},
		{Level: 2, XPRequired: 100},
		{Level: 3, XPRequired: 250},
	}

	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{10000, 3},
	}
	for _, tt := range tests {
		if got := LevelFor(levels, tt.xp); got.Level != tt.want {
			t.Errorf("LevelFor(%d) = %d, want %d", tt.xp, got.Level, tt.want)
		}
	}

	// Monotonic non-decreasing in xp.
	prev := 0
	for xp := 0; xp <= 300; xp++ {
		l := LevelFor(levels, xp).Level
		if l < prev {
			t.Fatalf("level decreased at xp %d: %d < %d", xp, l, prev)
		}
		prev = l
	}
}

func TestImproveZone(t *testing.T) {
	room := &model.Room{ZoneBed: 50, ZoneFloor: 50, ZoneDesk: 50, ZoneCloset: 50, ZoneGeneral: 50}

	ImproveZone(room, model.ZoneBed, 15)
	if room.ZoneBed != 65 {
		t.Errorf("zone_bed = %d, want 65", room.ZoneBed)
	}
	// (65+50+50+50+50)/5 = 53
	if room.CleanlinessScore != 53 {
		t.Errorf("cleanliness = %d, want 53", room.CleanlinessScore)
	}

	// Clamped at 100.
	ImproveZone(room, model.ZoneBed, 1000)
	if room.ZoneBed != 100 {
		t.Errorf("zone_bed = %d, want 100", room.ZoneBed)
	}
	// (100+50+50+50+50)/5 = 60
	if room.CleanlinessScore != 60 {
		t.Errorf("cleanliness = %d, want 60", room.CleanlinessScore)
	}
}

func TestAggregateIsRoundedMean(t *testing.T) {
	room := &model.Room{ZoneBed: 1, ZoneFloor: 0, ZoneDesk: 0, ZoneCloset: 0, ZoneGeneral: 0}
	ImproveZone(room, model.ZoneFloor, 1)
	// (1+1+0+0+0)/5 = 0.4 rounds to 0
	if room.CleanlinessScore != 0 {
		t.Errorf("cleanliness = %d, want 0", room.CleanlinessScore)
	}
	ImproveZone(room, model.ZoneDesk, 1)
	// 3/5 = 0.6 rounds to 1
	if room.CleanlinessScore != 1 {
		t.Errorf("cleanliness = %d, want 1", room.CleanlinessScore)
	}
}

func TestDecayZones(t *testing.T) {
	room := &model.Room{ZoneBed: 3, ZoneFloor: 1, ZoneDesk: 0, ZoneCloset: 50, ZoneGeneral: 100}
	DecayZones(room, 2)

	if room.ZoneBed != 1 || room.ZoneFloor != 0 || room.ZoneDesk != 0 {
		t.Errorf("low zones = %d/%d/%d, want 1/0/0", room.ZoneBed, room.ZoneFloor, room.ZoneDesk)
	}
	if room.ZoneCloset != 48 || room.ZoneGeneral != 98 {
		t.Errorf("high zones = %d/%d, want 48/98", room.ZoneCloset, room.ZoneGeneral)
	}
	// (1+0+0+48+98)/5 = 29.4 rounds to 29
	if room.CleanlinessScore != 29 {
		t.Errorf("cleanliness = %d, want 29", room.CleanlinessScore)
	}
}

func TestScaledAward(t *testing.T) {
	tests := []struct {
		points     int
		multiplier float64
		wantBase   int
		wantBonus  int
	}{
		{50, 1.0, 50, 0},
		{50, 1.25, 50, 13}, // 62.5 rounds to 63
		{100, 1.5, 100, 50},
		{10, 2.0, 10, 10},
		{0, 2.0, 0, 0},
	}
	for _, tt := range tests {
		base, bonus := ScaledAward(tt.points, tt.multiplier)
		if base != tt.wantBase || bonus != tt.wantBonus {
			t.Errorf("ScaledAward(%d, %v) = (%d, %d), want (%d, %d)",
				tt.points, tt.multiplier, base, bonus, tt.wantBase, tt.wantBonus)
		}
	}
}

func TestDayString(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 03:00 UTC on March 2 is still March 1 in New York.
	instant := time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC)
	if got := DayString(instant, ny); got != "2026-03-01" {
		t.Errorf("DayString in NY = %q, want 2026-03-01", got)
	}
	if got := DayString(instant, time.UTC); got != "2026-03-02" {
		t.Errorf("DayString in UTC = %q, want 2026-03-02", got)
	}
}
