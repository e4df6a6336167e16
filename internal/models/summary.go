package models

import "time"

// SavedSummary is one persisted summary owned by a user.
// Tags keep the comma-joined wire format ("tag1,tag2") so they round-trip
// exactly as supplied.
type SavedSummary struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Title     string    `json:"title"`
	Body      string    `json:"summary"`
	Tags      string    `json:"tags"`
	CreatedAt time.Time `json:"date"`
}
