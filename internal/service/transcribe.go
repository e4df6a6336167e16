package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"audioscribe/internal/executor"
)

// Errors surfaced by the transcription path.
var (
	ErrInvalidAudio        = errors.New("invalid audio: empty or unsupported format")
	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrServiceTimeout      = errors.New("external service timed out")
)

// Transcriber converts a staged audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// WhisperConfig configures the whisper.cpp style CLI collaborator.
type WhisperConfig struct {
	BinaryPath string
	ModelPath  string
	Language   string
	Threads    int
}

// WhisperTranscriber shells out to a whisper CLI and captures the plain-text
// transcript from stdout.
type WhisperTranscriber struct {
	exec executor.Executor
	cfg  WhisperConfig
}

func NewWhisperTranscriber(exec executor.Executor, cfg WhisperConfig) *WhisperTranscriber {
	if cfg.Threads <= 0 {
		cfg.Threads = 4
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &WhisperTranscriber{exec: exec, cfg: cfg}
}

var _ Transcriber = (*WhisperTranscriber)(nil)

// Transcribe runs the whisper binary against the staged audio file.
// -nt suppresses timestamps so stdout is the bare transcript.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	args := []string{
		"-m", t.cfg.ModelPath,
		"-f", audioPath,
		"-nt",
		"-l", t.cfg.Language,
		"-t", strconv.Itoa(t.cfg.Threads),
	}

	out, err := t.exec.Execute(ctx, t.cfg.BinaryPath, args...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrServiceTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	text := strings.TrimSpace(out)
	if text == "" {
		// Decodable container but no speech content.
		return "", fmt.Errorf("%w: empty transcript", ErrTranscriptionFailed)
	}
	return text, nil
}

// supportedAudioExts are the accepted upload container formats.
var supportedAudioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".flac": true,
}
