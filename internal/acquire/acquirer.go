// Package acquire downloads the audio track of a remote video into the
// working directory.
package acquire

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Audio is the result of a successful acquisition. Path points at an
// existing, non-empty file; ownership stays with the pipeline run that
// requested it.
type Audio struct {
	Path  string
	Title string
}

// Error reports a failed acquisition with the capability's own output
// as the cause.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("acquire %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Runner abstracts subprocess execution for testability.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// causeFromStderr condenses subprocess stderr into a one-line cause,
// preferring the last ERROR: line yt-dlp printed.
func causeFromStderr(stderr string, fallback error) error {
	lines := strings.Split(stderr, "\n")
	var lastError string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "ERROR:") {
			lastError = strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
	}

	if lastError != "" {
		return fmt.Errorf("%s: %w", lastError, fallback)
	}
	if trimmed := strings.TrimSpace(stderr); trimmed != "" {
		return fmt.Errorf("%s: %w", trimmed, fallback)
	}
	return fallback
}
