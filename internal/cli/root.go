package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matt-chlorophyll/tubescribe/internal/clipboard"
	"github.com/matt-chlorophyll/tubescribe/internal/logging"
	"github.com/matt-chlorophyll/tubescribe/internal/pipeline"
	"github.com/matt-chlorophyll/tubescribe/internal/platform"
	"github.com/matt-chlorophyll/tubescribe/internal/version"
	"github.com/matt-chlorophyll/tubescribe/internal/whisper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spf13/cobra"
)

type appState struct {
	verbose      bool
	jsonLogs     bool
	noProgress   bool
	model        string
	modelDir     string
	language     string
	autoDownload bool
	workDir      string
	ytdlpPath    string
	copyText     bool
	silenceGate  bool
	silenceDBFS  float64

	logger *zap.Logger
	out    io.Writer

	// engine caches the constructed transcriber; model loading is
	// expensive and the instance is reusable across sequential runs.
	engine *whisper.Transcriber

	buildEngineFn func(ctx context.Context) (pipeline.Transcriber, error)
	acquirerFn    func(workDir string) (pipeline.Acquirer, error)
	transcribeFn  func(ctx context.Context, audioPath string) (string, error)
	copyFn        func(ctx context.Context, value string) error
}

func NewRootCmd() *cobra.Command {
	app := &appState{
		model:        whisper.DefaultProfile,
		language:     "auto",
		autoDownload: true,
		workDir:      ".",
		silenceGate:  true,
		silenceDBFS:  -65,
		out:          os.Stdout,
	}
	app.buildEngineFn = app.buildEngine
	app.acquirerFn = app.buildAcquirer
	app.transcribeFn = app.transcribeAudio
	app.copyFn = clipboard.CopyText

	cmd := &cobra.Command{
		Use:           "tubescribe <video-url>",
		Short:         "Download a video's audio track and transcribe it to a timestamped text file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.language = sanitizeLanguage(app.language)
			app.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runPipeline(cmd.Context(), args[0])
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageAndModelDownloadFlags(cmd, app)
	bindWorkspaceFlags(cmd, app)
	bindSilenceFlags(cmd, app)
	cmd.Flags().BoolVar(&app.copyText, "copy", false, "Copy the transcript to the clipboard as well")

	cmd.AddCommand(newTranscribeCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.Flags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
}

func bindProgressFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func bindModelFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.model, "model", app.model, "Model profile (tiny|base|small|medium|large) or model file path")
	cmd.Flags().StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are stored")
}

func bindLanguageAndModelDownloadFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.language, "language", app.language, "Language code (auto|en|de|...) for transcription")
	cmd.Flags().BoolVar(&app.autoDownload, "auto-download", app.autoDownload, "Automatically download missing models")
}

func bindWorkspaceFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.workDir, "workdir", app.workDir, "Working directory; transcripts land in its output/ subdirectory")
	cmd.Flags().StringVar(&app.ytdlpPath, "ytdlp-path", app.ytdlpPath, "Path to the yt-dlp executable")
}

func bindSilenceFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.silenceGate, "silence-gate", app.silenceGate, "Detect near-silent audio and skip inference")
	cmd.Flags().Float64Var(&app.silenceDBFS, "silence-threshold-dbfs", app.silenceDBFS, "Silence gate threshold in dBFS")
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.modelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

func sanitizeLanguage(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if trimmed == "" {
		return "auto"
	}
	return trimmed
}
