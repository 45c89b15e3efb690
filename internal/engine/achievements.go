package engine

import (
	"fmt"

	"github.com/dukerupert/tidyroom/internal/model"
)

// evaluateAchievements grants every unearned achievement whose requirement
// the child now meets. Rewards can move the counters further (bonus points,
// XP that levels the child up), so evaluation loops until nothing new is
// earned. Each achievement is granted at most once, so the loop terminates.
func (e *Engine) evaluateAchievements(s *txStores, events *[]Event, child *model.Child, streak *model.Streak) error {
	all, err := s.achievements.List()
	if err != nil {
		return err
	}
	earned, err := s.achievements.EarnedIDs(child.ID)
	if err != nil {
		return err
	}

	verified, err := s.tasks.CountVerified(child.ID)
	if err != nil {
		return err
	}

	for {
		granted := false
		for _, a := range all {
			if earned[a.ID] || !meets(a, child, streak, verified) {
				continue
			}

			if err := s.achievements.InsertEarned(child.ID, a.ID); err != nil {
				return err
			}
			earned[a.ID] = true
			granted = true

			if a.PointsReward > 0 {
				desc := fmt.Sprintf("Achievement: %s", a.Name)
				if _, err := record(s, child, a.PointsReward, model.PointsBonus, desc, nil); err != nil {
					return err
				}
			}
			if a.XPReward > 0 {
				if _, err := e.applyXP(s, events, child, a.XPReward); err != nil {
					return err
				}
			}

			*events = append(*events, Event{
				Type:     "achievement_earned",
				FamilyID: child.FamilyID,
				ChildID:  child.ID,
				Extra:    map[string]any{"achievement_id": a.ID, "name": a.Name},
			})
		}
		if !granted {
			return nil
		}
	}
}

func meets(a model.Achievement, child *model.Child, streak *model.Streak, verifiedTasks int) bool {
	switch a.RequirementType {
	case model.RequireStreakDays:
		return streak.CurrentStreak >= a.RequirementValue
	case model.RequireTasksCompleted:
		return verifiedTasks >= a.RequirementValue
	case model.RequirePointsEarned:
		return child.TotalPoints >= a.RequirementValue
	case model.RequireLevelReached:
		return child.CurrentLevel >= a.RequirementValue
	default:
		return false
	}
}
