package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"audioscribe/internal/models"
	"audioscribe/internal/repository"

	"github.com/google/uuid"
)

// Guard errors for session transitions.
var (
	ErrNoAudio           = errors.New("no audio uploaded")
	ErrNoTranscript      = errors.New("no transcript available")
	ErrNoSummary         = errors.New("no summary available")
	ErrInvalidTransition = errors.New("action not allowed from current page")
	ErrLengthOutOfRange  = errors.New("summary length out of range")
)

// minSentenceCount is the floor for the sentence estimate. A count of 0 or 1
// would make every ratio degenerate, so it is clamped to 2.
const minSentenceCount = 2

const retryBaseDelay = 500 * time.Millisecond

// SessionConfig carries staging and external-call settings.
type SessionConfig struct {
	TmpDir      string
	IdleTTL     time.Duration
	CallTimeout time.Duration
	MaxRetries  int
}

// SessionService owns every session mutation. Sessions are keyed by user id;
// a per-session mutex serializes interactions so one user never has two
// external calls in flight, while distinct users proceed concurrently.
type SessionService struct {
	summaryRepo repository.SummaryRepo
	eventRepo   repository.EventRepo
	transcriber Transcriber
	summarizer  Summarizer
	cfg         SessionConfig

	mu       sync.Mutex
	sessions map[int]*sessionEntry
}

type sessionEntry struct {
	mu sync.Mutex
	s  models.Session
}

func NewSessionService(summaryRepo repository.SummaryRepo, eventRepo repository.EventRepo, transcriber Transcriber, summarizer Summarizer, cfg SessionConfig) *SessionService {
	if cfg.TmpDir == "" {
		cfg.TmpDir = os.TempDir()
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 2 * time.Minute
	}
	return &SessionService{
		summaryRepo: summaryRepo,
		eventRepo:   eventRepo,
		transcriber: transcriber,
		summarizer:  summarizer,
		cfg:         cfg,
		sessions:    make(map[int]*sessionEntry),
	}
}

var _ Session = (*SessionService)(nil)

// Begin ensures a session exists for the principal and logs the login.
// Re-authenticating keeps an existing session untouched.
func (s *SessionService) Begin(ctx context.Context, p Principal) models.Session {
	e := s.entry(p)
	e.mu.Lock()
	defer e.mu.Unlock()

	s.appendEvent(ctx, p.Username, "LOGIN", "User signed in", nil)
	return e.s
}

// Snapshot returns the current session state without triggering any work.
func (s *SessionService) Snapshot(p Principal) models.Session {
	e := s.entry(p)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s
}

// Upload validates and stages an audio artifact, replacing any previous one.
// A new artifact invalidates the cached transcript and summary.
func (s *SessionService) Upload(ctx context.Context, p Principal, filename string, data []byte) (models.Session, error) {
	e := s.entry(p)
	e.mu.Lock()
	defer e.mu.Unlock()
	sess := &e.s

	if sess.Page != models.PageMain {
		return *sess, ErrInvalidTransition
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if len(data) == 0 || !supportedAudioExts[ext] {
		return *sess, ErrInvalidAudio
	}

	if err := os.MkdirAll(s.cfg.TmpDir, 0o755); err != nil {
		return *sess, fmt.Errorf("create staging dir: %w", err)
	}
	// uuid keeps concurrent sessions from colliding on names
	stagedPath := filepath.Join(s.cfg.TmpDir, uuid.NewString()+ext)
	if err := os.WriteFile(stagedPath, data, 0o600); err != nil {
		return *sess, fmt.Errorf("stage audio: %w", err)
	}

	s.releaseArtifact(sess)
	sess.AudioName = filename
	sess.AudioPath = stagedPath
	s.touch(sess)

	s.appendEvent(ctx, p.Username, "UPLOAD", "Audio uploaded: "+filename, map[string]any{
		"filename": filename,
		"bytes":    len(data),
	})
	return *sess, nil
}

// Transcribe enters the transcribe page and runs the speech-to-text
// collaborator at most once per staged artifact: a cached transcript
// short-circuits, so re-entering the page is free.
func (s *SessionService) Transcribe(ctx context.Context, p Principal) (models.Session, error) {
	e := s.entry(p)
	e.mu.Lock()
	defer e.mu.Unlock()
	sess := &e.s

	if sess.AudioPath == "" {
		return *sess, ErrNoAudio
	}

	sess.Page = models.PageTranscribe
	if sess.Transcript != "" {
		// Cached for the current artifact; no second service call.
		s.touch(sess)
		return *sess, nil
	}

	sess.Phase = models.PhaseTranscribing
	text, err := s.callWithRetry(ctx, func(cctx context.Context) (string, error) {
		return s.transcriber.Transcribe(cctx, sess.AudioPath)
	})
	if err != nil {
		// No state advance: the artifact is released and the user is back
		// on the main page.
		s.releaseArtifact(sess)
		sess.Page = models.PageMain
		s.touch(sess)
		s.appendEvent(ctx, p.Username, "ERROR", "Transcription failed", map[string]any{"err": err.Error()})
		return *sess, err
	}

	sess.Transcript = text
	sess.SentenceCount = estimateSentences(text)
	sess.RequestedSentences = sess.SentenceCount
	sess.Phase = models.PhaseTranscribed
	s.touch(sess)

	s.appendEvent(ctx, p.Username, "TRANSCRIBE", "Audio transcribed: "+sess.AudioName, map[string]any{
		"sentence_count": sess.SentenceCount,
		"chars":          len(text),
	})
	return *sess, nil
}

// Summarize condenses the cached transcript to the requested sentence count.
// The result is cached per (artifact, requested length); a failure stays on
// the error channel and is never stored as the summary.
func (s *SessionService) Summarize(ctx context.Context, p Principal, sentences int) (models.Session, error) {
	e := s.entry(p)
	e.mu.Lock()
	defer e.mu.Unlock()
	sess := &e.s

	if sess.Page != models.PageTranscribe {
		return *sess, ErrInvalidTransition
	}
	if sess.Transcript == "" {
		return *sess, ErrNoTranscript
	}
	if sentences < 1 || sentences > sess.SentenceCount {
		return *sess, fmt.Errorf("%w: want 1..%d, got %d", ErrLengthOutOfRange, sess.SentenceCount, sentences)
	}

	if sess.Summary != "" && sess.RequestedSentences == sentences {
		s.touch(sess)
		return *sess, nil
	}

	ratio := float64(sentences) / float64(sess.SentenceCount)
	if ratio > 1 {
		ratio = 1
	}

	sess.Phase = models.PhaseSummarizing
	summary, err := s.callWithRetry(ctx, func(cctx context.Context) (string, error) {
		return s.summarizer.Summarize(cctx, sess.Transcript, ratio)
	})
	if err != nil {
		sess.Phase = models.PhaseTranscribed
		s.touch(sess)
		s.appendEvent(ctx, p.Username, "ERROR", "Summarization failed", map[string]any{"err": err.Error()})
		return *sess, err
	}

	sess.Summary = summary
	sess.RequestedSentences = sentences
	sess.Phase = models.PhaseSummarized
	s.touch(sess)

	s.appendEvent(ctx, p.Username, "SUMMARIZE", "Transcript summarized", map[string]any{
		"requested_sentences": sentences,
		"ratio":               ratio,
	})
	return *sess, nil
}

// SaveSummary persists the cached summary under the given title/tags and
// returns to the summarized phase with the pending save cleared.
func (s *SessionService) SaveSummary(ctx context.Context, p Principal, title, tags string) (models.Session, error) {
	e := s.entry(p)
	e.mu.Lock()
	defer e.mu.Unlock()
	sess := &e.s

	if sess.Page != models.PageTranscribe || sess.Summary == "" {
		return *sess, ErrNoSummary
	}

	sess.Phase = models.PhaseSaving
	sess.PendingSave = true

	id, err := s.summaryRepo.Save(ctx, models.SavedSummary{
		Username: p.Username,
		Title:    title,
		Body:     sess.Summary,
		Tags:     tags,
	})

	sess.Phase = models.PhaseSummarized
	sess.PendingSave = false
	s.touch(sess)

	if err != nil {
		return *sess, fmt.Errorf("save summary: %w", err)
	}

	s.appendEvent(ctx, p.Username, "SAVE", "Summary saved: "+title, map[string]any{
		"summary_id": id,
		"title":      title,
	})
	return *sess, nil
}

// Review navigates from the main page to the saved-summaries page.
func (s *SessionService) Review(ctx context.Context, p Principal) (models.Session, error) {
	e := s.entry(p)
	e.mu.Lock()
	defer e.mu.Unlock()
	sess := &e.s

	if sess.Page != models.PageMain {
		return *sess, ErrInvalidTransition
	}
	sess.Page = models.PageReview
	s.touch(sess)
	return *sess, nil
}

// Back returns to the main page. Leaving the transcribe page releases the
// staged artifact and clears the transcript/summary; this is the only render
// path that deletes the temp file while a transcript is cached.
func (s *SessionService) Back(ctx context.Context, p Principal) (models.Session, error) {
	e := s.entry(p)
	e.mu.Lock()
	defer e.mu.Unlock()
	sess := &e.s

	if sess.Page == models.PageTranscribe {
		s.releaseArtifact(sess)
	}
	sess.Page = models.PageMain
	s.touch(sess)
	return *sess, nil
}

// End destroys the session: artifact released, all fields reset.
func (s *SessionService) End(ctx context.Context, p Principal) error {
	s.mu.Lock()
	e, ok := s.sessions[p.UserID]
	delete(s.sessions, p.UserID)
	s.mu.Unlock()

	if ok {
		e.mu.Lock()
		s.releaseArtifact(&e.s)
		e.mu.Unlock()
	}

	s.appendEvent(ctx, p.Username, "LOGOUT", "User signed out", nil)
	return nil
}

// ReapIdle releases sessions untouched for longer than olderThan and
// returns how many were removed.
func (s *SessionService) ReapIdle(olderThan time.Duration) int {
	cutoff := time.Now().UTC().Add(-olderThan)

	s.mu.Lock()
	stale := make(map[int]*sessionEntry)
	for id, e := range s.sessions {
		stale[id] = e
	}
	s.mu.Unlock()

	reaped := 0
	for id, e := range stale {
		e.mu.Lock()
		idle := e.s.UpdatedAt.Before(cutoff)
		if idle {
			s.releaseArtifact(&e.s)
		}
		e.mu.Unlock()

		if idle {
			s.mu.Lock()
			if s.sessions[id] == e {
				delete(s.sessions, id)
				reaped++
			}
			s.mu.Unlock()
		}
	}
	return reaped
}

// entry returns the session for a principal, creating defaults on first use.
func (s *SessionService) entry(p Principal) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[p.UserID]
	if !ok {
		e = &sessionEntry{s: models.Session{
			UserID:    p.UserID,
			Username:  p.Username,
			Page:      models.PageMain,
			Phase:     models.PhaseIdle,
			UpdatedAt: time.Now().UTC(),
		}}
		s.sessions[p.UserID] = e
	}
	return e
}

// releaseArtifact removes the staged temp file and clears every artifact
// derived from it. Callers hold the entry lock.
func (s *SessionService) releaseArtifact(sess *models.Session) {
	if sess.AudioPath != "" {
		_ = os.Remove(sess.AudioPath)
	}
	sess.AudioPath = ""
	sess.AudioName = ""
	sess.Transcript = ""
	sess.Summary = ""
	sess.SentenceCount = 0
	sess.RequestedSentences = 0
	sess.PendingSave = false
	sess.Phase = models.PhaseIdle
}

func (s *SessionService) touch(sess *models.Session) {
	sess.UpdatedAt = time.Now().UTC()
}

// callWithRetry runs an external call under the configured timeout, retrying
// transient failures (timeouts) with doubling backoff. Permanent failures
// return immediately.
func (s *SessionService) callWithRetry(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	backoff := retryBaseDelay
	var lastErr error

	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		cctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		out, err := call(cctx)
		cancel()

		if err == nil {
			return out, nil
		}
		lastErr = err
		if !errors.Is(err, ErrServiceTimeout) {
			break
		}
	}
	return "", lastErr
}

// appendEvent best-effort logs an activity entry; the log is advisory and
// never fails a user action.
func (s *SessionService) appendEvent(ctx context.Context, username, typ, msg string, meta map[string]any) {
	var m any
	if meta != nil {
		m = meta
	}
	_ = s.eventRepo.Append(ctx, models.ActivityEvent{
		Username:    username,
		Type:        typ,
		Description: msg,
		Metadata:    m,
	})
}

// estimateSentences counts terminal punctuation marks, clamped to at least 2.
func estimateSentences(text string) int {
	n := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
	if n <= 1 {
		return minSentenceCount
	}
	return n
}
