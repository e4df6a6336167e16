package models

import "time"

// ActivityEvent is a single entry of a user's activity log.
type ActivityEvent struct {
	EventID     string    `json:"event_id"`
	Username    string    `json:"username"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // LOGIN | LOGOUT | UPLOAD | TRANSCRIBE | SUMMARIZE | SAVE | DELETE | ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
