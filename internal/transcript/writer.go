// Package transcript persists transcription results as timestamped
// text artifacts.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// filenameTimeLayout sorts lexically in chronological order at
	// second resolution.
	filenameTimeLayout = "20060102_150405"
	headerTimeLayout   = "2006-01-02 15:04:05"
)

// WriteError reports a failure to persist an artifact.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write transcript %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Artifact describes a persisted transcript file.
type Artifact struct {
	Path      string
	Title     string
	CreatedAt time.Time
}

// Writer renders transcript artifacts into an output directory. The
// zero value is not usable; construct with NewWriter.
type Writer struct {
	now func() time.Time
}

func NewWriter() *Writer {
	return &Writer{now: time.Now}
}

// NewWriterAt pins the writer's clock, for deterministic filenames.
func NewWriterAt(now func() time.Time) *Writer {
	if now == nil {
		now = time.Now
	}
	return &Writer{now: now}
}

// Write persists text under outputDir as
// {timestamp}_{sanitized title}.txt. The artifact is written to a
// scratch path and renamed into place, so a failed write never leaves
// a partial file behind. An empty transcript is written as-is.
func (w *Writer) Write(text, title, outputDir string) (Artifact, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	createdAt := w.now()
	name := fmt.Sprintf("%s_%s.txt", createdAt.Format(filenameTimeLayout), SanitizeTitle(title))
	path := filepath.Join(outputDir, name)

	var body strings.Builder
	body.WriteString("Title: " + title + "\n")
	body.WriteString("Transcription Date: " + createdAt.Format(headerTimeLayout) + "\n")
	body.WriteString("\nTranscript:\n")
	body.WriteString(text)

	scratch := path + ".part"
	if err := os.WriteFile(scratch, []byte(body.String()), 0o644); err != nil {
		return Artifact{}, &WriteError{Path: path, Err: err}
	}

	if err := os.Rename(scratch, path); err != nil {
		_ = os.Remove(scratch)
		return Artifact{}, &WriteError{Path: path, Err: err}
	}

	return Artifact{Path: path, Title: title, CreatedAt: createdAt}, nil
}
