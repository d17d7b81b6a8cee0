package cli

import (
	"errors"

	"github.com/matt-chlorophyll/tubescribe/internal/pipeline"
	"github.com/matt-chlorophyll/tubescribe/internal/whisper"
)

// Exit codes distinguish which part of the pipeline failed, so
// scripting callers can react without parsing error text.
const (
	ExitOK            = 0
	ExitUsage         = 1
	ExitWorkspace     = 2
	ExitAcquisition   = 3
	ExitTranscription = 4
	ExitWrite         = 5
	ExitEngineInit    = 6
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var initErr *whisper.InitError
	if errors.As(err, &initErr) {
		return ExitEngineInit
	}

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case pipeline.StageWorkspace:
			return ExitWorkspace
		case pipeline.StageAcquisition:
			return ExitAcquisition
		case pipeline.StageTranscription:
			return ExitTranscription
		case pipeline.StageWrite:
			return ExitWrite
		}
	}

	return ExitUsage
}
