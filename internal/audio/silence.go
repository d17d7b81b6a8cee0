// Package audio analyzes WAV files for near-silence, so the engine
// can skip inference on audio that cannot contain speech.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

var (
	ErrUnsupportedWAV = errors.New("unsupported wav format")
	ErrInvalidWAV     = errors.New("invalid wav file")
)

// SilenceMetrics summarizes the measured signal level.
type SilenceMetrics struct {
	RMSdBFS  float64
	PeakdBFS float64
	Samples  int64
}

// IsSilentWAV reports whether the integer-PCM WAV at path is near
// silence. The RMS level must sit at or below thresholdDBFS and the
// peak within 6 dB of it, so a short loud transient still counts as
// audible. The preprocessing step only ever produces 8- or 16-bit
// PCM, which is all this parser accepts.
func IsSilentWAV(path string, thresholdDBFS float64) (bool, SilenceMetrics, error) {
	metrics, err := analyzeWAV(path)
	if err != nil {
		return false, SilenceMetrics{}, err
	}

	if metrics.Samples == 0 {
		return true, metrics, nil
	}

	peakGate := thresholdDBFS + 6
	return metrics.RMSdBFS <= thresholdDBFS && metrics.PeakdBFS <= peakGate, metrics, nil
}

func analyzeWAV(path string) (SilenceMetrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return SilenceMetrics{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	bitsPerSample, data, err := readPCMData(f)
	if err != nil {
		return SilenceMetrics{}, err
	}

	var (
		peak       float64
		sumSquares float64
		samples    int64
	)

	step := int(bitsPerSample / 8)
	for i := 0; i+step <= len(data); i += step {
		var value float64
		if bitsPerSample == 8 {
			value = (float64(data[i]) - 128.0) / 128.0
		} else {
			value = float64(int16(binary.LittleEndian.Uint16(data[i:]))) / 32768.0
		}

		if abs := math.Abs(value); abs > peak {
			peak = abs
		}
		sumSquares += value * value
		samples++
	}

	if samples == 0 {
		return SilenceMetrics{RMSdBFS: math.Inf(-1), PeakdBFS: math.Inf(-1)}, nil
	}

	rms := math.Sqrt(sumSquares / float64(samples))
	return SilenceMetrics{
		RMSdBFS:  amplitudeToDBFS(rms),
		PeakdBFS: amplitudeToDBFS(peak),
		Samples:  samples,
	}, nil
}

// readPCMData walks the RIFF chunks and returns the sample width and
// raw bytes of the data chunk.
func readPCMData(f *os.File) (uint16, []byte, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(f, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
		}
		return 0, nil, fmt.Errorf("read wav header: %w", err)
	}

	if string(header[:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return 0, nil, ErrInvalidWAV
	}

	var (
		bitsPerSample uint16
		data          []byte
		hasFmt        bool
		hasData       bool
	)

	for {
		chunkHeader := make([]byte, 8)
		if _, err := io.ReadFull(f, chunkHeader); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return 0, nil, fmt.Errorf("read wav chunk header: %w", err)
		}

		chunkID := string(chunkHeader[:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		// RIFF chunks are word-aligned.
		padded := int64(chunkSize)
		if chunkSize%2 != 0 {
			padded++
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return 0, nil, ErrInvalidWAV
			}

			buf := make([]byte, padded)
			if _, err := io.ReadFull(f, buf); err != nil {
				return 0, nil, fmt.Errorf("read wav fmt chunk: %w", err)
			}

			audioFormat := binary.LittleEndian.Uint16(buf[0:2])
			bitsPerSample = binary.LittleEndian.Uint16(buf[14:16])
			hasFmt = true

			if audioFormat != 1 || (bitsPerSample != 8 && bitsPerSample != 16) {
				return 0, nil, ErrUnsupportedWAV
			}
		case "data":
			data = make([]byte, padded)
			if _, err := io.ReadFull(f, data); err != nil {
				return 0, nil, fmt.Errorf("read wav data: %w", err)
			}
			data = data[:chunkSize]
			hasData = true
		default:
			if _, err := f.Seek(padded, io.SeekCurrent); err != nil {
				return 0, nil, fmt.Errorf("seek wav chunk %s: %w", chunkID, err)
			}
		}
	}

	if !hasFmt || !hasData {
		return 0, nil, ErrInvalidWAV
	}

	return bitsPerSample, data, nil
}

func amplitudeToDBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return math.Inf(-1)
	}
	return 20.0 * math.Log10(amplitude)
}
