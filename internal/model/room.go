package model

import "time"

type Room struct {
	ID               string     `json:"id"`
	ChildID          string     `json:"child_id"`
	ThemeID          *string    `json:"theme_id"`
	CleanlinessScore int        `json:"cleanliness_score"`
	ZoneBed          int        `json:"zone_bed"`
	ZoneFloor        int        `json:"zone_floor"`
	ZoneDesk         int        `json:"zone_desk"`
	ZoneCloset       int        `json:"zone_closet"`
	ZoneGeneral      int        `json:"zone_general"`
	LastCleanedAt    *time.Time `json:"last_cleaned_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ZoneScore returns the score for the named zone.
func (r *Room) ZoneScore(zone string) int {
	switch zone {
	case ZoneBed:
		return r.ZoneBed
	case ZoneFloor:
		return r.ZoneFloor
	case ZoneDesk:
		return r.ZoneDesk
	case ZoneCloset:
		return r.ZoneCloset
	default:
		return r.ZoneGeneral
	}
}

// SetZoneScore sets the score for the named zone.
func (r *Room) SetZoneScore(zone string, score int) {
	switch zone {
	case ZoneBed:
		r.ZoneBed = score
	case ZoneFloor:
		r.ZoneFloor = score
	case ZoneDesk:
		r.ZoneDesk = score
	case ZoneCloset:
		r.ZoneCloset = score
	default:
		r.ZoneGeneral = score
	}
}
