package whisper

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// modelSampleRate is the input representation whisper models expect:
// 16 kHz mono PCM.
const modelSampleRate = 16000

// preprocess converts the acquired audio into a 16 kHz mono WAV file
// next to outBase. The caller owns the returned path.
func (t *Transcriber) preprocess(ctx context.Context, audioPath, outBase string) (string, error) {
	wavPath := outBase + ".wav"

	args := []string{
		"-nostdin", "-hide_banner", "-loglevel", "error", "-y",
		"-i", audioPath,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", modelSampleRate),
		"-c:a", "pcm_s16le",
		wavPath,
	}

	_, stderr, err := t.runner.Run(ctx, t.ffmpeg, args...)
	if err != nil {
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			return "", fmt.Errorf("convert %s to model input: %w", filepath.Base(audioPath), err)
		}
		return "", fmt.Errorf("convert %s to model input: %s: %w", filepath.Base(audioPath), detail, err)
	}

	return wavPath, nil
}
