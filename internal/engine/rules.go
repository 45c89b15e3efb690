package engine

import (
	"math"
	"time"

	"github.com/dukerupert/tidyroom/internal/model"
)

// Streak multiplier tiers. A longer run of consecutive active days scales
// task point awards. The step function never decreases with streak length.
func MultiplierFor(streak int) float64 {
	switch {
	case streak >= 30:
		return 2.0
	case streak >= 14:
		return 1.75
	case streak >= 7:
		return 1.5
	case streak >= 3:
		return 1.25
	default:
		return 1.0
	}
}

// DayString formats t as a calendar day in the canonical deployment zone.
// All streak comparisons use this single zone so that rollover is consistent
// no matter where a device is.
func DayString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// AdvanceStreak applies one day of activity to a streak in place.
//   - same day as the last activity: no change (re-entry is idempotent)
//   - exactly the next day: streak extends
//   - a gap of two or more days, or no prior activity: streak restarts at 1
//
// The multiplier is recomputed after every update and longest never drops.
func AdvanceStreak(s *model.Streak, day string, loc *time.Location) {
	if s.LastActivityDate == day {
		s.Multiplier = MultiplierFor(s.CurrentStreak)
		return
	}

	if s.LastActivityDate != "" && nextDay(s.LastActivityDate, loc) == day {
		s.CurrentStreak++
	} else {
		s.CurrentStreak = 1
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.LastActivityDate = day
	s.Multiplier = MultiplierFor(s.CurrentStreak)
}

func nextDay(day string, loc *time.Location) string {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format("2006-01-02")
}

// LevelFor returns the highest level whose XP threshold is at or below
// totalXP. The table is ordered ascending and always has a level 1 entry at
// zero XP, so a level always resolves.
func LevelFor(levels []model.Level, totalXP int) model.Level {
	best := levels[0]
	for _, l := range levels {
		if l.XPRequired <= totalXP {
			best = l
		} else {
			break
		}
	}
	return best
}

// Zone score deltas by task difficulty.
const (
	zoneDeltaEasy   = 10
	zoneDeltaMedium = 15
	zoneDeltaHard   = 20
)

// ZoneDelta returns how much a verified task improves its zone.
func ZoneDelta(difficulty string) int {
	switch difficulty {
	case "hard":
		return zoneDeltaHard
	case "medium":
		return zoneDeltaMedium
	default:
		return zoneDeltaEasy
	}
}

// ImproveZone raises one zone score and recomputes the aggregate.
func ImproveZone(room *model.Room, zone string, delta int) {
	room.SetZoneScore(zone, clampScore(room.ZoneScore(zone)+delta))
	recomputeAggregate(room)
}

// DecayZones lowers every zone by the given amount, modeling mess slowly
// accumulating while nothing gets cleaned.
func DecayZones(room *model.Room, amount int) {
	for _, zone := range model.Zones {
		room.SetZoneScore(zone, clampScore(room.ZoneScore(zone)-amount))
	}
	recomputeAggregate(room)
}

// recomputeAggregate sets the cleanliness score to the rounded mean of the
// five zone scores. The aggregate is never mutated independently.
func recomputeAggregate(room *model.Room) {
	sum := room.ZoneBed + room.ZoneFloor + room.ZoneDesk + room.ZoneCloset + room.ZoneGeneral
	room.CleanlinessScore = int(math.Round(float64(sum) / 5.0))
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ScaledAward splits a task award into its base points and the streak bonus
// on top. The total is the base scaled by the multiplier, rounded to the
// nearest point.
func ScaledAward(basePoints int, multiplier float64) (base, bonus int) {
	total := int(math.Round(float64(basePoints) * multiplier))
	return basePoints, total - basePoints
}
