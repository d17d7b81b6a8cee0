package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-chlorophyll/tubescribe/internal/acquire"
	"github.com/matt-chlorophyll/tubescribe/internal/clipboard"
	"github.com/matt-chlorophyll/tubescribe/internal/download"
	"github.com/matt-chlorophyll/tubescribe/internal/pipeline"
	"github.com/matt-chlorophyll/tubescribe/internal/platform"
	"github.com/matt-chlorophyll/tubescribe/internal/transcript"
	"github.com/matt-chlorophyll/tubescribe/internal/whisper"
	"github.com/matt-chlorophyll/tubescribe/internal/workspace"
	"go.uber.org/zap"
)

// runPipeline is the root command: one URL in, one transcript
// artifact path out.
func (a *appState) runPipeline(ctx context.Context, sourceURL string) error {
	buildEngineFn := a.buildEngineFn
	if buildEngineFn == nil {
		buildEngineFn = a.buildEngine
	}

	acquirerFn := a.acquirerFn
	if acquirerFn == nil {
		acquirerFn = a.buildAcquirer
	}

	copyFn := a.copyFn
	if copyFn == nil {
		copyFn = clipboard.CopyText
	}

	paths, err := workspace.Ensure(a.workDir)
	if err != nil {
		return &pipeline.StageError{Stage: pipeline.StageWorkspace, Err: err}
	}

	engine, err := buildEngineFn(ctx)
	if err != nil {
		return err
	}

	acquirer, err := acquirerFn(paths.Root)
	if err != nil {
		return err
	}

	progress := newStageProgress(a.progressEnabled())
	defer progress.stop()

	p, err := pipeline.New(pipeline.Config{
		Acquirer:  acquirer,
		Engine:    engine,
		Writer:    transcript.NewWriter(),
		OutputDir: paths.OutputDir,
		Logger:    a.log(),
		OnState:   progress.observe,
	})
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, pipeline.Job{SourceReference: sourceURL})
	progress.stop()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.outWriter(), result.ArtifactPath)

	if a.copyText {
		if err := copyFn(ctx, result.Text); err != nil {
			if errors.Is(err, clipboard.ErrUnavailable) {
				a.log().Warn("clipboard tool unavailable; transcript saved to file only")
				return nil
			}
			a.log().Warn("failed to copy transcript to clipboard", zap.Error(err))
			return nil
		}
		a.log().Info("transcript copied to clipboard")
	}

	return nil
}

// buildEngine constructs the transcriber once per process and reuses
// it for subsequent calls.
func (a *appState) buildEngine(ctx context.Context) (pipeline.Transcriber, error) {
	if a.engine != nil {
		return a.engine, nil
	}

	model, err := a.ensureModelAvailable(ctx)
	if err != nil {
		return nil, err
	}

	accelerator := platform.DetectAccelerator()
	a.log().Debug("compute backend detected", zap.String("accelerator", accelerator.String()))

	engine, err := whisper.NewTranscriber(whisper.Config{
		ModelPath:            model.Path,
		Language:             a.language,
		Accelerator:          accelerator,
		SilenceGate:          a.silenceGate,
		SilenceThresholdDBFS: a.silenceDBFS,
		Logger:               a.log(),
	})
	if err != nil {
		return nil, err
	}

	a.engine = engine
	return engine, nil
}

func (a *appState) buildAcquirer(workDir string) (pipeline.Acquirer, error) {
	return acquire.NewYtDlp(acquire.Options{
		Binary:  a.ytdlpPath,
		WorkDir: workDir,
		Logger:  a.log(),
	})
}

func (a *appState) ensureModelAvailable(ctx context.Context) (whisper.ResolvedModel, error) {
	modelDir, err := a.modelStorageDir()
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	resolved, err := whisper.ResolveModel(a.model, modelDir)
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	if !resolved.NeedsDownload {
		return resolved, nil
	}

	if !a.autoDownload {
		return whisper.ResolvedModel{}, fmt.Errorf("model %q is missing at %s; run `tubescribe setup --model %s` or use --auto-download=true", resolved.Name, resolved.Path, resolved.Name)
	}

	a.log().Info("model not found, downloading", zap.String("model", resolved.Name), zap.String("destination", resolved.Path))
	if err := download.DownloadFile(ctx, download.Options{
		URL:            resolved.URL,
		Destination:    resolved.Path,
		ExpectedSHA256: resolved.SHA256,
		NoProgress:     a.noProgress,
		Logger:         a.log(),
	}); err != nil {
		return whisper.ResolvedModel{}, fmt.Errorf("download model %q: %w", resolved.Name, err)
	}

	resolved.NeedsDownload = false
	return resolved, nil
}
