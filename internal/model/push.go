package model

import "time"

type PushSubscription struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"p256dh_key"`
	AuthKey   string    `json:"auth_key"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}
