package service

import (
	"context"
	"time"

	"audioscribe/internal/executor"
	"audioscribe/internal/models"
	"audioscribe/internal/repository"
)

// Principal identifies the authenticated user behind a request.
type Principal struct {
	UserID   int
	Username string
}

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (Principal, error)
}

// Session drives the page/phase state machine: upload → transcribe →
// summarize → save, with review and logout. Every mutating call returns the
// resulting session snapshot so callers can render it.
type Session interface {
	Begin(ctx context.Context, p Principal) models.Session
	Snapshot(p Principal) models.Session
	Upload(ctx context.Context, p Principal, filename string, data []byte) (models.Session, error)
	Transcribe(ctx context.Context, p Principal) (models.Session, error)
	Summarize(ctx context.Context, p Principal, sentences int) (models.Session, error)
	SaveSummary(ctx context.Context, p Principal, title, tags string) (models.Session, error)
	Review(ctx context.Context, p Principal) (models.Session, error)
	Back(ctx context.Context, p Principal) (models.Session, error)
	End(ctx context.Context, p Principal) error
}

// Library exposes read/delete access to a user's saved summaries.
type Library interface {
	List(ctx context.Context, username string) ([]models.SavedSummary, error)
	Delete(ctx context.Context, p Principal, id int64) error
}

// EventLog exposes the per-user activity log with filtering access.
type EventLog interface {
	List(ctx context.Context, username string, f LogFilter) ([]models.ActivityEvent, error)
}

// Janitor runs the background loop that reaps idle sessions and their
// temporary audio artifacts. Stop via context cancellation in main().
type Janitor interface {
	Run(ctx context.Context, tick time.Duration)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Authorization
	Session
	Library
	EventLog
	Janitor
}

// Config collects the per-service settings read from viper in main().
type Config struct {
	Auth       AuthConfig
	Session    SessionConfig
	Whisper    WhisperConfig
	Summarizer SummarizerConfig
}

// NewService wires the repository layer and the external ML collaborators
// into concrete services.
func NewService(repos *repository.Repository, exec executor.Executor, cfg Config) *Service {
	transcriber := NewWhisperTranscriber(exec, cfg.Whisper)
	summarizer := NewExtractiveSummarizer(exec, cfg.Summarizer)
	sessions := NewSessionService(repos.Summaries, repos.Events, transcriber, summarizer, cfg.Session)

	return &Service{
		Authorization: NewAuthService(repos.Auth, cfg.Auth),
		Session:       sessions,
		Library:       NewLibraryService(repos.Summaries, repos.Events),
		EventLog:      NewEventLogService(repos.Events),
		Janitor:       NewJanitorService(sessions, cfg.Session.IdleTTL),
	}
}
