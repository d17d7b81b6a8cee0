package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matt-chlorophyll/tubescribe/internal/acquire"
	"github.com/matt-chlorophyll/tubescribe/internal/transcript"
	"github.com/stretchr/testify/require"
)

type mockAcquirer struct {
	calls int
	audio acquire.Audio
	err   error

	// createFile materializes the audio file so cleanup behavior is
	// observable on disk.
	createFile bool
}

func (m *mockAcquirer) Acquire(_ context.Context, _ string) (acquire.Audio, error) {
	m.calls++
	if m.err != nil {
		return acquire.Audio{}, m.err
	}
	if m.createFile {
		if err := os.WriteFile(m.audio.Path, []byte("audio-bytes"), 0o644); err != nil {
			return acquire.Audio{}, err
		}
	}
	return m.audio, nil
}

type mockEngine struct {
	calls int
	text  string
	err   error
}

func (m *mockEngine) Transcribe(_ context.Context, _ string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

type failingWriter struct {
	err error
}

func (w *failingWriter) Write(_, _, _ string) (transcript.Artifact, error) {
	return transcript.Artifact{}, w.err
}

type pipelineFixture struct {
	pipeline  *Pipeline
	acquirer  *mockAcquirer
	engine    *mockEngine
	outputDir string
	audioPath string
	states    []State
}

func newFixture(t *testing.T, acquirer *mockAcquirer, engine *mockEngine, writer Writer) *pipelineFixture {
	t.Helper()

	outputDir := t.TempDir()
	if writer == nil {
		writer = transcript.NewWriter()
	}

	fixture := &pipelineFixture{acquirer: acquirer, engine: engine, outputDir: outputDir}

	p, err := New(Config{
		Acquirer:  acquirer,
		Engine:    engine,
		Writer:    writer,
		OutputDir: outputDir,
		OnState:   func(s State) { fixture.states = append(fixture.states, s) },
	})
	require.NoError(t, err)

	fixture.pipeline = p
	return fixture
}

func newSuccessFixture(t *testing.T, title, text string) *pipelineFixture {
	t.Helper()

	audioPath := filepath.Join(t.TempDir(), "a.audio")
	acquirer := &mockAcquirer{
		audio:      acquire.Audio{Path: audioPath, Title: title},
		createFile: true,
	}

	fixture := newFixture(t, acquirer, &mockEngine{text: text}, nil)
	fixture.audioPath = audioPath
	return fixture
}

func TestRunProducesArtifactAndRemovesIntermediateAudio(t *testing.T) {
	t.Parallel()

	fixture := newSuccessFixture(t, "Demo Talk", "hello world")

	result, err := fixture.pipeline.Run(context.Background(), Job{SourceReference: "https://example.test/v/1"})
	require.NoError(t, err)
	require.FileExists(t, result.ArtifactPath)

	content, err := os.ReadFile(result.ArtifactPath)
	require.NoError(t, err)
	require.Contains(t, string(content), "Title: Demo Talk\n")
	require.True(t, strings.HasSuffix(string(content), "hello world"))

	require.NoFileExists(t, fixture.audioPath)
}

func TestRunWalksStatesInOrder(t *testing.T) {
	t.Parallel()

	fixture := newSuccessFixture(t, "Demo Talk", "hello world")

	_, err := fixture.pipeline.Run(context.Background(), Job{SourceReference: "https://example.test/v/1"})
	require.NoError(t, err)
	require.Equal(t,
		[]State{StatePending, StateAcquiring, StateTranscribing, StateWriting, StateDone},
		fixture.states,
	)
}

func TestRunAcquisitionFailureStopsBeforeEngine(t *testing.T) {
	t.Parallel()

	acquirer := &mockAcquirer{err: &acquire.Error{Source: "https://example.test/v/2", Err: errors.New("network timeout")}}
	engine := &mockEngine{text: "never"}
	fixture := newFixture(t, acquirer, engine, nil)

	_, err := fixture.pipeline.Run(context.Background(), Job{SourceReference: "https://example.test/v/2"})
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, StageAcquisition, stageErr.Stage)
	require.Contains(t, stageErr.Error(), "network timeout")

	require.Equal(t, 0, engine.calls)
	requireNoArtifacts(t, fixture.outputDir)
	require.Equal(t, StateFailed, fixture.states[len(fixture.states)-1])
}

func TestRunTranscriptionFailureKeepsAudioForInspection(t *testing.T) {
	t.Parallel()

	audioPath := filepath.Join(t.TempDir(), "a.audio")
	acquirer := &mockAcquirer{audio: acquire.Audio{Path: audioPath, Title: "Broken"}, createFile: true}
	engine := &mockEngine{err: errors.New("decode failed")}
	fixture := newFixture(t, acquirer, engine, nil)

	_, err := fixture.pipeline.Run(context.Background(), Job{SourceReference: "https://example.test/v/3"})
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, StageTranscription, stageErr.Stage)

	require.FileExists(t, audioPath)
	requireNoArtifacts(t, fixture.outputDir)
}

func TestRunWriteFailureKeepsAudioForInspection(t *testing.T) {
	t.Parallel()

	audioPath := filepath.Join(t.TempDir(), "a.audio")
	acquirer := &mockAcquirer{audio: acquire.Audio{Path: audioPath, Title: "Full Disk"}, createFile: true}
	writer := &failingWriter{err: &transcript.WriteError{Path: "/out/x.txt", Err: errors.New("no space left on device")}}
	fixture := newFixture(t, acquirer, &mockEngine{text: "words"}, writer)

	_, err := fixture.pipeline.Run(context.Background(), Job{SourceReference: "https://example.test/v/4"})
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, StageWrite, stageErr.Stage)
	require.Contains(t, stageErr.Error(), "no space left")

	require.FileExists(t, audioPath)
}

func TestRunCancelledBetweenAcquireAndTranscribe(t *testing.T) {
	t.Parallel()

	audioPath := filepath.Join(t.TempDir(), "a.audio")
	acquirer := &mockAcquirer{audio: acquire.Audio{Path: audioPath, Title: "Cancelled"}, createFile: true}
	engine := &mockEngine{text: "never"}
	fixture := newFixture(t, acquirer, engine, nil)

	// The mock acquirer ignores ctx, so a pre-cancelled context lands
	// exactly on the stage boundary check after acquisition.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fixture.pipeline.Run(ctx, Job{SourceReference: "https://example.test/v/5"})
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, StageTranscription, stageErr.Stage)
	require.Equal(t, 0, engine.calls)
	require.FileExists(t, audioPath)
}

func TestRunEmptyTranscriptIsSuccess(t *testing.T) {
	t.Parallel()

	fixture := newSuccessFixture(t, "Silent Clip", "")

	result, err := fixture.pipeline.Run(context.Background(), Job{SourceReference: "https://example.test/v/6"})
	require.NoError(t, err)
	require.FileExists(t, result.ArtifactPath)
	require.NoFileExists(t, fixture.audioPath)
}

func TestRunSequentialJobsReuseOnePipeline(t *testing.T) {
	t.Parallel()

	outputDir := t.TempDir()
	audioDir := t.TempDir()

	count := 0
	acquirer := acquirerFunc(func(context.Context, string) (acquire.Audio, error) {
		count++
		path := filepath.Join(audioDir, time.Now().Format("150405.000000000")+".audio")
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			return acquire.Audio{}, err
		}
		return acquire.Audio{Path: path, Title: "Job"}, nil
	})

	p, err := New(Config{
		Acquirer:  acquirer,
		Engine:    &mockEngine{text: "text"},
		Writer:    transcript.NewWriter(),
		OutputDir: outputDir,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := p.Run(context.Background(), Job{SourceReference: "https://example.test/v/7"})
		require.NoError(t, err)
	}
	require.Equal(t, 3, count)

	remaining, err := os.ReadDir(audioDir)
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestNewRejectsMissingComponents(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.Error(t, err)
}

type acquirerFunc func(ctx context.Context, source string) (acquire.Audio, error)

func (f acquirerFunc) Acquire(ctx context.Context, source string) (acquire.Audio, error) {
	return f(ctx, source)
}

func requireNoArtifacts(t *testing.T, outputDir string) {
	t.Helper()

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
