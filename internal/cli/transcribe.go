package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/matt-chlorophyll/tubescribe/internal/transcript"
	"github.com/matt-chlorophyll/tubescribe/internal/workspace"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newTranscribeCmd transcribes an audio file that is already local,
// skipping the acquisition stage.
func newTranscribeCmd(app *appState) *cobra.Command {
	var (
		save  bool
		title string
	)

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a local audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transcribeFn := app.transcribeFn
			if transcribeFn == nil {
				transcribeFn = app.transcribeAudio
			}

			text, err := transcribeFn(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !save {
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}

			paths, err := workspace.Ensure(app.workDir)
			if err != nil {
				return err
			}

			if strings.TrimSpace(title) == "" {
				base := filepath.Base(args[0])
				title = strings.TrimSuffix(base, filepath.Ext(base))
			}

			artifact, err := transcript.NewWriter().Write(text, title, paths.OutputDir)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), artifact.Path)
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageAndModelDownloadFlags(cmd, app)
	bindSilenceFlags(cmd, app)
	cmd.Flags().BoolVar(&save, "save", false, "Write a transcript artifact instead of printing to stdout")
	cmd.Flags().StringVar(&title, "title", "", "Artifact title; defaults to the audio file name")
	cmd.Flags().StringVar(&app.workDir, "workdir", app.workDir, "Working directory; transcripts land in its output/ subdirectory")

	return cmd
}

func (a *appState) transcribeAudio(ctx context.Context, audioPath string) (string, error) {
	buildEngineFn := a.buildEngineFn
	if buildEngineFn == nil {
		buildEngineFn = a.buildEngine
	}

	engine, err := buildEngineFn(ctx)
	if err != nil {
		return "", err
	}

	a.log().Info("transcribing...", zap.String("audio", audioPath), zap.String("language", a.language))
	stopSpinner := startSpinner(a.progressEnabled(), "Transcribing")
	started := time.Now()

	text, err := engine.Transcribe(ctx, audioPath)
	stopSpinner()
	if err != nil {
		a.log().Warn("transcription failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return "", err
	}
	a.log().Info("transcription finished", zap.Duration("elapsed", time.Since(started)))

	return text, nil
}
