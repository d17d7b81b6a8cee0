// Package whisper runs speech-to-text inference through a whisper-cli
// executable.
package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/matt-chlorophyll/tubescribe/internal/audio"
	"github.com/matt-chlorophyll/tubescribe/internal/platform"
	"go.uber.org/zap"
)

// PrecisionMode selects the numeric representation used during
// inference. Reduced precision is the throughput-optimized mode of
// the accelerated path; general-purpose compute runs full precision.
type PrecisionMode int

const (
	PrecisionFull PrecisionMode = iota
	PrecisionReduced
)

func (m PrecisionMode) String() string {
	if m == PrecisionReduced {
		return "reduced"
	}
	return "full"
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

// Config configures a Transcriber.
type Config struct {
	// ModelPath is the ggml model file to load. Required; must exist.
	ModelPath string
	// Language is a language hint; empty or "auto" lets the model detect.
	Language string
	// Accelerator is the compute backend detected at startup.
	Accelerator platform.Accelerator
	// SilenceGate skips inference for near-silent audio.
	SilenceGate bool
	// SilenceThresholdDBFS is the RMS gate level; 0 uses the default.
	SilenceThresholdDBFS float64
	// Binary overrides whisper-cli resolution.
	Binary string
	// FFmpeg overrides the ffmpeg executable used for preprocessing.
	FFmpeg string
	// TempDir receives intermediate WAV and text files; empty means
	// the system temp dir.
	TempDir string
	Logger  *zap.Logger
	// Runner overrides subprocess execution, for tests.
	Runner Runner
}

const defaultSilenceThresholdDBFS = -65

// Transcriber is a reusable engine instance. Construction resolves
// the engine binary, validates the model, and pins the precision mode
// for the detected compute backend; all of that happens exactly once.
// A Transcriber is safe to reuse across sequential runs but does not
// support concurrent Transcribe calls.
type Transcriber struct {
	binary      string
	ffmpeg      string
	modelPath   string
	language    string
	tempDir     string
	accelerator platform.Accelerator
	precision   PrecisionMode
	silenceGate bool
	silenceDBFS float64
	logger      *zap.Logger
	runner      Runner
	now         func() time.Time
}

// NewTranscriber builds an engine for the given model. Any failure is
// an *InitError and the engine must not be used.
func NewTranscriber(cfg Config) (*Transcriber, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	modelPath := strings.TrimSpace(cfg.ModelPath)
	if modelPath == "" {
		return nil, &InitError{Err: errors.New("model path is required")}
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, &InitError{Err: fmt.Errorf("model weights unavailable: %w", err)}
	}

	runner := cfg.Runner
	binary := strings.TrimSpace(cfg.Binary)
	ffmpeg := strings.TrimSpace(cfg.FFmpeg)

	if runner == nil {
		runner = execRunner{}

		if binary == "" {
			resolved, err := resolveEngineBinary()
			if err != nil {
				return nil, &InitError{Err: err}
			}
			binary = resolved
		}

		if ffmpeg == "" {
			resolved, err := exec.LookPath("ffmpeg")
			if err != nil {
				return nil, &InitError{Err: fmt.Errorf("ffmpeg not found on PATH: %w", err)}
			}
			ffmpeg = resolved
		}
	}
	if binary == "" {
		binary = engineBinaryName()
	}
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	precision := PrecisionFull
	if cfg.Accelerator.Available() {
		precision = PrecisionReduced
	}

	threshold := cfg.SilenceThresholdDBFS
	if threshold == 0 {
		threshold = defaultSilenceThresholdDBFS
	}

	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	logger.Info("transcription engine ready",
		zap.String("model", modelPath),
		zap.String("accelerator", cfg.Accelerator.String()),
		zap.String("precision", precision.String()),
	)

	return &Transcriber{
		binary:      binary,
		ffmpeg:      ffmpeg,
		modelPath:   modelPath,
		language:    strings.TrimSpace(strings.ToLower(cfg.Language)),
		tempDir:     tempDir,
		accelerator: cfg.Accelerator,
		precision:   precision,
		silenceGate: cfg.SilenceGate,
		silenceDBFS: threshold,
		logger:      logger,
		runner:      runner,
		now:         time.Now,
	}, nil
}

// Precision reports the numeric mode pinned at construction.
func (t *Transcriber) Precision() PrecisionMode {
	return t.precision
}

// Accelerator reports the compute backend pinned at construction.
func (t *Transcriber) Accelerator() platform.Accelerator {
	return t.accelerator
}

// Transcribe converts the audio file at audioPath to text. A missing
// or unreadable input fails fast with MissingInput before anything is
// executed; preprocessing and inference failures come back as
// ModelFailure with the full underlying cause. An empty result is a
// valid transcription of silent audio, not an error. Cancellation via
// ctx takes effect between the conversion and inference steps;
// interrupting mid-inference is best-effort.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	audioPath = filepath.Clean(audioPath)
	if _, err := os.Stat(audioPath); err != nil {
		return "", &TranscriptionError{Kind: MissingInput, Err: err}
	}

	outBase := filepath.Join(t.tempDir, fmt.Sprintf("tubescribe-%d", t.now().UnixNano()))

	wavPath, err := t.preprocess(ctx, audioPath, outBase)
	if err != nil {
		return "", &TranscriptionError{Kind: ModelFailure, Err: err}
	}
	defer os.Remove(wavPath)

	if t.silenceGate {
		if silent := t.isSilent(wavPath); silent {
			return "", nil
		}
	}

	if err := ctx.Err(); err != nil {
		return "", &TranscriptionError{Kind: ModelFailure, Err: err}
	}

	text, err := t.infer(ctx, wavPath, outBase)
	if err != nil {
		return "", &TranscriptionError{Kind: ModelFailure, Err: err}
	}

	return text, nil
}

func (t *Transcriber) infer(ctx context.Context, wavPath, outBase string) (string, error) {
	txtPath := outBase + ".txt"

	args := []string{"-m", t.modelPath, "-f", wavPath, "-nt", "-otxt", "-of", outBase}
	if t.language != "" && t.language != "auto" {
		args = append(args, "-l", t.language)
	}
	switch t.precision {
	case PrecisionReduced:
		args = append(args, "-fa")
	default:
		args = append(args, "--no-gpu")
	}

	t.logger.Debug("running whisper engine", zap.String("engine", t.binary), zap.Strings("args", args))
	started := t.now()

	_, stderr, err := t.runner.Run(ctx, t.binary, args...)
	if err != nil {
		detail := strings.TrimSpace(stderr)
		if detail != "" {
			return "", fmt.Errorf("whisper inference failed: %s: %w", detail, err)
		}
		return "", fmt.Errorf("whisper inference failed: %w", err)
	}

	defer os.Remove(txtPath)
	content, err := os.ReadFile(txtPath)
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}

	t.logger.Info("transcription finished", zap.Duration("elapsed", t.now().Sub(started)))
	return strings.TrimSpace(string(content)), nil
}

// isSilent gates out near-silent audio. Analysis failures are logged
// and treated as audible so inference still gets a chance.
func (t *Transcriber) isSilent(wavPath string) bool {
	silent, metrics, err := audio.IsSilentWAV(wavPath, t.silenceDBFS)
	if err != nil {
		t.logger.Warn("silence analysis failed; transcribing anyway", zap.Error(err), zap.String("audio", wavPath))
		return false
	}

	if silent {
		t.logger.Info("audio considered silent; returning empty transcript",
			zap.String("audio", wavPath),
			zap.Float64("rms_dbfs", metrics.RMSdBFS),
			zap.Float64("peak_dbfs", metrics.PeakdBFS),
			zap.Float64("threshold_dbfs", t.silenceDBFS),
		)
	}

	return silent
}
