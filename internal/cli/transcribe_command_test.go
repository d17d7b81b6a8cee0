package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranscribeCommandPrintsTranscript(t *testing.T) {
	t.Parallel()

	out := new(bytes.Buffer)
	app := &appState{
		transcribeFn: func(_ context.Context, _ string) (string, error) {
			return "spoken words", nil
		},
	}

	cmd := newTranscribeCmd(app)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"/tmp/audio.mp3"})

	require.NoError(t, cmd.Execute())
	require.Equal(t, "spoken words\n", out.String())
}

func TestTranscribeCommandSaveWritesArtifact(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	out := new(bytes.Buffer)
	app := &appState{
		workDir: workDir,
		transcribeFn: func(_ context.Context, _ string) (string, error) {
			return "saved words", nil
		},
	}

	cmd := newTranscribeCmd(app)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--save", "--title", "My Clip", filepath.Join(workDir, "clip.mp3")})

	require.NoError(t, cmd.Execute())

	artifactPath := strings.TrimSpace(out.String())
	require.FileExists(t, artifactPath)
	require.Contains(t, filepath.Base(artifactPath), "My Clip")

	content, err := os.ReadFile(artifactPath)
	require.NoError(t, err)
	require.Contains(t, string(content), "Title: My Clip")
	require.True(t, strings.HasSuffix(string(content), "saved words"))
}

func TestTranscribeCommandDefaultsTitleToFileName(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	out := new(bytes.Buffer)
	app := &appState{
		workDir: workDir,
		transcribeFn: func(_ context.Context, _ string) (string, error) {
			return "x", nil
		},
	}

	cmd := newTranscribeCmd(app)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--save", "/recordings/standup meeting.mp3"})

	require.NoError(t, cmd.Execute())
	require.Contains(t, filepath.Base(strings.TrimSpace(out.String())), "standup meeting")
}

func TestTranscribeCommandRequiresExactlyOneArg(t *testing.T) {
	t.Parallel()

	cmd := newTranscribeCmd(&appState{})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{})

	require.Error(t, cmd.Execute())
}
