package whisper

import "fmt"

// ErrorKind classifies transcription failures.
type ErrorKind int

const (
	// MissingInput means the audio path did not reference a readable
	// file; the model was never invoked.
	MissingInput ErrorKind = iota
	// ModelFailure means preprocessing or inference itself failed.
	// The full underlying cause is preserved for diagnosis.
	ModelFailure
)

func (k ErrorKind) String() string {
	switch k {
	case MissingInput:
		return "missing input"
	case ModelFailure:
		return "model failure"
	default:
		return "unknown"
	}
}

// TranscriptionError is a failed transcription attempt. It wraps the
// proximate cause and classifies it, so callers can distinguish a bad
// input path from a collapsed inference run.
type TranscriptionError struct {
	Kind ErrorKind
	Err  error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription %s: %v", e.Kind, e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// InitError is a fatal engine construction failure. An engine that
// failed to initialize must not be used.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("engine init: %v", e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
