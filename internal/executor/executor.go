package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Executor runs external commands. The ML collaborators (speech-to-text,
// extractive summarizer) are driven through this interface so services stay
// testable without the binaries installed.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteWithInput(ctx context.Context, input string, name string, args ...string) (string, error)
}

type cmdRunner struct{}

// New returns an Executor backed by os/exec.
func New() Executor {
	return &cmdRunner{}
}

// Execute runs an external command and returns its stdout.
func (e *cmdRunner) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return e.run(ctx, nil, name, args...)
}

// ExecuteWithInput runs an external command feeding input on stdin.
func (e *cmdRunner) ExecuteWithInput(ctx context.Context, input string, name string, args ...string) (string, error) {
	return e.run(ctx, strings.NewReader(input), name, args...)
}

func (e *cmdRunner) run(ctx context.Context, stdin *strings.Reader, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Prefer the context error so callers can classify timeouts.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("command %q: %w", name, ctxErr)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("command %q failed: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("command %q failed: %w", name, err)
	}

	return stdout.String(), nil
}
