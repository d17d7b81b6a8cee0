package pipeline

import "fmt"

// State is the orchestration-level progress of one run. Transitions
// are strictly linear with no branching back:
//
//	Pending → Acquiring → Transcribing → Writing → Done
//
// and any stage may instead end in Failed.
type State int

const (
	StatePending State = iota
	StateAcquiring
	StateTranscribing
	StateWriting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAcquiring:
		return "acquiring"
	case StateTranscribing:
		return "transcribing"
	case StateWriting:
		return "writing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Stage names the pipeline step a failure belongs to.
type Stage string

const (
	StageWorkspace     Stage = "workspace"
	StageAcquisition   Stage = "acquisition"
	StageTranscription Stage = "transcription"
	StageWrite         Stage = "write"
)

// StageError reports which stage terminated the run and why. The
// underlying cause is surfaced verbatim, never swallowed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
