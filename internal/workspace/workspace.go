// Package workspace resolves the directories one pipeline run works in.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// OutputDirName is the subdirectory of the working directory that
// receives transcript artifacts.
const OutputDirName = "output"

// Error reports a failure to prepare the working or output directory.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("workspace %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Paths holds the resolved absolute directories of a workspace.
type Paths struct {
	Root      string
	OutputDir string
}

// Ensure resolves baseDir to an absolute path and creates its output
// subdirectory if missing. Creation is idempotent and existing content
// is never touched.
func Ensure(baseDir string) (Paths, error) {
	if baseDir == "" {
		baseDir = "."
	}

	root, err := filepath.Abs(baseDir)
	if err != nil {
		return Paths{}, &Error{Path: baseDir, Err: err}
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return Paths{}, &Error{Path: root, Err: err}
	}

	outputDir := filepath.Join(root, OutputDirName)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Paths{}, &Error{Path: outputDir, Err: err}
	}

	return Paths{Root: root, OutputDir: outputDir}, nil
}
