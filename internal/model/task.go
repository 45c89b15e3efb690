package model

import "time"

// Task statuses. Verified and expired are terminal; rejected tasks may be
// resubmitted.
const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
	TaskVerified  = "verified"
	TaskRejected  = "rejected"
	TaskExpired   = "expired"
)

// Room zones.
const (
	ZoneBed     = "bed"
	ZoneFloor   = "floor"
	ZoneDesk    = "desk"
	ZoneCloset  = "closet"
	ZoneGeneral = "general"
)

// Zones lists all five room zones.
var Zones = []string{ZoneBed, ZoneFloor, ZoneDesk, ZoneCloset, ZoneGeneral}

type Task struct {
	ID                   string     `json:"id"`
	ChildID              string     `json:"child_id"`
	CreatedBy            *string    `json:"created_by"`
	TemplateID           *string    `json:"template_id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Zone                 string     `json:"zone"`
	Points               int        `json:"points"`
	Difficulty           string     `json:"difficulty"` // easy, medium, hard
	Icon                 string     `json:"icon"`
	Frequency            string     `json:"frequency"` // daily, weekly, one_time
	Status               string     `json:"status"`
	DueDate              *time.Time `json:"due_date"`
	RequiresVerification bool       `json:"requires_verification"`
	VerificationPhotoURL *string    `json:"verification_photo_url"`
	CompletedAt          *time.Time `json:"completed_at"`
	VerifiedAt           *time.Time `json:"verified_at"`
	VerifiedBy           *string    `json:"verified_by"`
	RejectionReason      *string    `json:"rejection_reason"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type TaskTemplate struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Zone             string    `json:"zone"`
	DefaultPoints    int       `json:"default_points"`
	Difficulty       string    `json:"difficulty"`
	Icon             string    `json:"icon"`
	EstimatedMinutes int       `json:"estimated_minutes"`
	IsSystem         bool      `json:"is_system"`
	CreatedAt        time.Time `json:"created_at"`
}

// ValidZone reports whether z is one of the five room zones.
func ValidZone(z string) bool {
	for _, zone := range Zones {
		if z == zone {
			return true
		}
	}
	return false
}
