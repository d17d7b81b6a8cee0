// Package pipeline sequences acquisition, transcription, and artifact
// writing for one job at a time.
package pipeline

import (
	"context"
	"errors"
	"os"

	"github.com/matt-chlorophyll/tubescribe/internal/acquire"
	"github.com/matt-chlorophyll/tubescribe/internal/transcript"
	"go.uber.org/zap"
)

// Job is one request to transcribe one remote video. It lives for a
// single run and is never persisted.
type Job struct {
	SourceReference string
}

// Result is the terminal outcome of a successful run.
type Result struct {
	ArtifactPath string
	Title        string
	Text         string
}

// Acquirer produces a local audio file for a remote video reference.
type Acquirer interface {
	Acquire(ctx context.Context, source string) (acquire.Audio, error)
}

// Transcriber converts a local audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Writer persists a transcript artifact.
type Writer interface {
	Write(text, title, outputDir string) (transcript.Artifact, error)
}

// Config wires a Pipeline. All component fields are required.
type Config struct {
	Acquirer  Acquirer
	Engine    Transcriber
	Writer    Writer
	OutputDir string
	Logger    *zap.Logger
	// OnState is called on every state transition, for progress
	// reporting. Optional.
	OnState func(State)
}

// Pipeline runs the acquire → transcribe → write chain. One Pipeline
// handles one job per Run call and is not reentrant mid-run;
// concurrent jobs need separate Run calls, which is safe because the
// acquirer allocates run-scoped audio paths.
type Pipeline struct {
	acquirer  Acquirer
	engine    Transcriber
	writer    Writer
	outputDir string
	logger    *zap.Logger
	onState   func(State)
}

func New(cfg Config) (*Pipeline, error) {
	if cfg.Acquirer == nil {
		return nil, errors.New("pipeline: acquirer is required")
	}
	if cfg.Engine == nil {
		return nil, errors.New("pipeline: engine is required")
	}
	if cfg.Writer == nil {
		return nil, errors.New("pipeline: writer is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("pipeline: output directory is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		acquirer:  cfg.Acquirer,
		engine:    cfg.Engine,
		writer:    cfg.Writer,
		outputDir: cfg.OutputDir,
		logger:    logger,
		onState:   cfg.OnState,
	}, nil
}

// Run executes one job. On success the intermediate audio file is
// removed and the artifact path returned. On failure the run stops at
// the failing stage and reports it as a *StageError; the intermediate
// audio file, if it was created, is deliberately left on disk so the
// failure can be inspected. Cancellation is honored at stage
// boundaries; a stage already
// in flight finishes or fails on its own terms.
func (p *Pipeline) Run(ctx context.Context, job Job) (Result, error) {
	p.setState(StatePending)

	p.setState(StateAcquiring)
	audio, err := p.acquirer.Acquire(ctx, job.SourceReference)
	if err != nil {
		return p.fail(StageAcquisition, err)
	}

	// From here the run owns audio.Path until cleanup.
	p.logger.Debug("audio acquired", zap.String("path", audio.Path), zap.String("title", audio.Title))

	if err := ctx.Err(); err != nil {
		p.keepForInspection(audio.Path)
		return p.fail(StageTranscription, err)
	}

	p.setState(StateTranscribing)
	text, err := p.engine.Transcribe(ctx, audio.Path)
	if err != nil {
		p.keepForInspection(audio.Path)
		return p.fail(StageTranscription, err)
	}

	if err := ctx.Err(); err != nil {
		p.keepForInspection(audio.Path)
		return p.fail(StageWrite, err)
	}

	p.setState(StateWriting)
	artifact, err := p.writer.Write(text, audio.Title, p.outputDir)
	if err != nil {
		p.keepForInspection(audio.Path)
		return p.fail(StageWrite, err)
	}

	if err := os.Remove(audio.Path); err != nil {
		p.logger.Warn("failed to remove intermediate audio", zap.String("path", audio.Path), zap.Error(err))
	}

	p.setState(StateDone)
	p.logger.Info("transcript written", zap.String("artifact", artifact.Path), zap.String("title", artifact.Title))

	return Result{ArtifactPath: artifact.Path, Title: artifact.Title, Text: text}, nil
}

func (p *Pipeline) fail(stage Stage, cause error) (Result, error) {
	p.setState(StateFailed)
	p.logger.Warn("pipeline failed", zap.String("stage", string(stage)), zap.Error(cause))
	return Result{}, &StageError{Stage: stage, Err: cause}
}

func (p *Pipeline) keepForInspection(audioPath string) {
	p.logger.Info("keeping intermediate audio for inspection", zap.String("path", audioPath))
}

func (p *Pipeline) setState(state State) {
	p.logger.Debug("pipeline state", zap.String("state", state.String()))
	if p.onState != nil {
		p.onState(state)
	}
}
