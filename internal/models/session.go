package models

import "time"

// Page is the top-level page a logged-in session is on.
type Page string

const (
	PageMain       Page = "main"
	PageTranscribe Page = "transcribe"
	PageReview     Page = "review"
)

// Phase is the sub-state of the transcribe page.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseTranscribing Phase = "transcribing"
	PhaseTranscribed  Phase = "transcribed"
	PhaseSummarizing  Phase = "summarizing"
	PhaseSummarized   Phase = "summarized"
	PhaseSaving       Phase = "saving"
)

// Session is the per-user mutable state tracked across interactions until
// logout. AudioPath points at the staged temporary artifact and is never
// exposed over the wire.
type Session struct {
	UserID             int       `json:"user_id"`
	Username           string    `json:"username"`
	Page               Page      `json:"page"`
	Phase              Phase     `json:"phase"`
	AudioName          string    `json:"audio_name,omitempty"`
	AudioPath          string    `json:"-"`
	Transcript         string    `json:"transcript,omitempty"`
	SentenceCount      int       `json:"sentence_count,omitempty"`
	RequestedSentences int       `json:"requested_sentences,omitempty"`
	Summary            string    `json:"summary,omitempty"`
	PendingSave        bool      `json:"pending_save"`
	UpdatedAt          time.Time `json:"updated_at"`
}
