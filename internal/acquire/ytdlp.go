package acquire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTitle stands in when the source metadata has no title.
	DefaultTitle = "Untitled"

	audioCodec   = "mp3"
	audioQuality = "192K"
)

// YtDlp acquires audio through the yt-dlp executable, selecting the
// best available audio-only stream and transcoding it to a fixed
// codec and bitrate. Each call writes to a fresh run-scoped file, so
// concurrent runs against one working directory cannot collide.
type YtDlp struct {
	binary  string
	workDir string
	logger  *zap.Logger
	runner  Runner
	now     func() time.Time
}

// Options configures a YtDlp acquirer.
type Options struct {
	// Binary overrides the yt-dlp executable name or path.
	Binary string
	// WorkDir receives the intermediate audio files. Required.
	WorkDir string
	Logger  *zap.Logger
	// Runner overrides subprocess execution, for tests.
	Runner Runner
}

func NewYtDlp(opts Options) (*YtDlp, error) {
	if strings.TrimSpace(opts.WorkDir) == "" {
		return nil, errors.New("working directory is required")
	}

	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "yt-dlp"
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	runner := opts.Runner
	if runner == nil {
		runner = execRunner{}
	}

	return &YtDlp{
		binary:  binary,
		workDir: opts.WorkDir,
		logger:  logger,
		runner:  runner,
		now:     time.Now,
	}, nil
}

// Acquire downloads the audio track of sourceURL into the working
// directory and returns its path plus the video title. Any failure of
// the external capability comes back as *Error, never as a panic or a
// raw exec error.
func (y *YtDlp) Acquire(ctx context.Context, sourceURL string) (Audio, error) {
	if strings.TrimSpace(sourceURL) == "" {
		return Audio{}, &Error{Source: sourceURL, Err: errors.New("source reference is empty")}
	}

	audioPath := filepath.Join(y.workDir, fmt.Sprintf("audio-%d.%s", y.now().UnixNano(), audioCodec))
	args := y.buildArgs(sourceURL, audioPath)

	y.logger.Debug("running yt-dlp", zap.String("binary", y.binary), zap.Strings("args", args))
	started := y.now()

	stdout, stderr, err := y.runner.Run(ctx, y.binary, args...)
	if err != nil {
		if ctx.Err() != nil {
			return Audio{}, &Error{Source: sourceURL, Err: ctx.Err()}
		}
		return Audio{}, &Error{Source: sourceURL, Err: causeFromStderr(stderr, err)}
	}

	title := titleFromMetadata(stdout)
	y.logger.Info("audio acquired",
		zap.String("title", title),
		zap.String("path", audioPath),
		zap.Duration("elapsed", y.now().Sub(started)),
	)

	if err := validateAudioFile(audioPath); err != nil {
		return Audio{}, &Error{Source: sourceURL, Err: err}
	}

	return Audio{Path: audioPath, Title: title}, nil
}

// buildArgs assembles the yt-dlp invocation. Local and user configs
// are ignored so behavior stays deterministic across machines. The
// output template pins the extension to what the extract-audio
// postprocessor produces.
func (y *YtDlp) buildArgs(sourceURL, audioPath string) []string {
	template := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".%(ext)s"

	return []string{
		"--no-config",
		"--no-warnings",
		"--no-progress",
		"--print-json",
		"-f", "bestaudio/best",
		"--extract-audio",
		"--audio-format", audioCodec,
		"--audio-quality", audioQuality,
		"-o", template,
		sourceURL,
	}
}

// titleFromMetadata picks the title out of the JSON info line yt-dlp
// prints to stdout. Non-JSON noise lines are skipped.
func titleFromMetadata(stdout string) string {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") {
			continue
		}

		var meta struct {
			Title string `json:"title"`
		}
		if err := json.Unmarshal([]byte(line), &meta); err != nil {
			continue
		}
		if strings.TrimSpace(meta.Title) != "" {
			return meta.Title
		}
	}

	return DefaultTitle
}

func validateAudioFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("extracted audio missing: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("extracted audio is empty: %s", path)
	}
	return nil
}
