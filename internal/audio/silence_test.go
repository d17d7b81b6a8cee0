package audio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePCM16WAV(t *testing.T, samples []int16, sampleRate int) string {
	t.Helper()

	dataSize := len(samples) * 2
	fmtChunkSize := 16
	riffSize := 4 + (8 + fmtChunkSize) + (8 + dataSize)

	out := make([]byte, 12+8+fmtChunkSize+8+dataSize)
	off := 0

	copy(out[off:], "RIFF")
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(riffSize))
	off += 4
	copy(out[off:], "WAVE")
	off += 4

	copy(out[off:], "fmt ")
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(fmtChunkSize))
	off += 4
	binary.LittleEndian.PutUint16(out[off:], 1)
	off += 2
	binary.LittleEndian.PutUint16(out[off:], 1)
	off += 2
	binary.LittleEndian.PutUint32(out[off:], uint32(sampleRate))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(sampleRate*2))
	off += 4
	binary.LittleEndian.PutUint16(out[off:], 2)
	off += 2
	binary.LittleEndian.PutUint16(out[off:], 16)
	off += 2

	copy(out[off:], "data")
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(dataSize))
	off += 4

	for _, s := range samples {
		binary.LittleEndian.PutUint16(out[off:], uint16(s))
		off += 2
	}

	path := filepath.Join(t.TempDir(), "sample.wav")
	require.NoError(t, os.WriteFile(path, out, 0o644))
	return path
}

func toneSamples(amplitude float64, count int) []int16 {
	samples := make([]int16, count)
	for i := range samples {
		samples[i] = int16(amplitude * 32767.0 * math.Sin(float64(i)/8.0))
	}
	return samples
}

func TestIsSilentWAVDetectsDigitalSilence(t *testing.T) {
	t.Parallel()

	path := writePCM16WAV(t, make([]int16, 16000), 16000)
	silent, metrics, err := IsSilentWAV(path, -65)
	require.NoError(t, err)
	require.True(t, silent)
	require.True(t, math.IsInf(metrics.RMSdBFS, -1))
}

func TestIsSilentWAVDetectsLowLevelNoise(t *testing.T) {
	t.Parallel()

	path := writePCM16WAV(t, toneSamples(0.0001, 16000), 16000)
	silent, metrics, err := IsSilentWAV(path, -65)
	require.NoError(t, err)
	require.True(t, silent)
	require.LessOrEqual(t, metrics.RMSdBFS, -65.0)
}

func TestIsSilentWAVRejectsAudibleTone(t *testing.T) {
	t.Parallel()

	path := writePCM16WAV(t, toneSamples(0.5, 16000), 16000)
	silent, metrics, err := IsSilentWAV(path, -65)
	require.NoError(t, err)
	require.False(t, silent)
	require.Greater(t, metrics.PeakdBFS, -10.0)
}

func TestIsSilentWAVQuietBedWithLoudTransientIsAudible(t *testing.T) {
	t.Parallel()

	samples := toneSamples(0.00005, 16000)
	samples[8000] = 16000
	path := writePCM16WAV(t, samples, 16000)

	silent, _, err := IsSilentWAV(path, -65)
	require.NoError(t, err)
	require.False(t, silent)
}

func TestIsSilentWAVEmptyDataChunk(t *testing.T) {
	t.Parallel()

	path := writePCM16WAV(t, nil, 16000)
	silent, metrics, err := IsSilentWAV(path, -65)
	require.NoError(t, err)
	require.True(t, silent)
	require.Equal(t, int64(0), metrics.Samples)
}

func TestIsSilentWAVRejectsNonWAVContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "not.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not riff data"), 0o644))

	_, _, err := IsSilentWAV(path, -65)
	require.ErrorIs(t, err, ErrInvalidWAV)
}
