package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"audioscribe/internal/executor"
)

// ErrSummarizationFailed covers both collaborator failures and legitimately
// empty results (very short inputs the summarizer cannot condense).
var ErrSummarizationFailed = errors.New("summarization failed")

// Summarizer condenses text to roughly ratio*sentences of the original.
// ratio is in (0, 1]; 1.0 is valid and means "keep everything".
type Summarizer interface {
	Summarize(ctx context.Context, text string, ratio float64) (string, error)
}

// SummarizerConfig configures the extractive summarizer CLI collaborator.
type SummarizerConfig struct {
	BinaryPath string
}

// ExtractiveSummarizer shells out to a summarizer binary, feeding the
// transcript on stdin and reading the condensed text from stdout.
type ExtractiveSummarizer struct {
	exec executor.Executor
	cfg  SummarizerConfig
}

func NewExtractiveSummarizer(exec executor.Executor, cfg SummarizerConfig) *ExtractiveSummarizer {
	return &ExtractiveSummarizer{exec: exec, cfg: cfg}
}

var _ Summarizer = (*ExtractiveSummarizer)(nil)

func (s *ExtractiveSummarizer) Summarize(ctx context.Context, text string, ratio float64) (string, error) {
	if ratio <= 0 || ratio > 1 {
		return "", fmt.Errorf("%w: ratio %v out of range (0,1]", ErrSummarizationFailed, ratio)
	}

	args := []string{"--ratio", strconv.FormatFloat(ratio, 'f', 4, 64)}

	out, err := s.exec.ExecuteWithInput(ctx, text, s.cfg.BinaryPath, args...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrServiceTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrSummarizationFailed, err)
	}

	summary := strings.TrimSpace(out)
	if summary == "" {
		return "", fmt.Errorf("%w: could not summarize input", ErrSummarizationFailed)
	}
	return summary, nil
}
