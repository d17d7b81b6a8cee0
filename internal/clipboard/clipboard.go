// Package clipboard copies text to the system clipboard through
// whichever platform tool is installed.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// ErrUnavailable means no clipboard tool was found; callers may treat
// this as a soft failure.
var ErrUnavailable = errors.New("no clipboard command available")

const copyTimeout = 4 * time.Second

// tool is one clipboard command candidate. Tools that keep serving the
// selection for as long as they run (xclip) must be detached instead of
// awaited, or the copy would block forever.
type tool struct {
	name   string
	args   []string
	detach bool
}

func candidates() []tool {
	if runtime.GOOS == "darwin" {
		return []tool{{name: "pbcopy"}}
	}

	return []tool{
		{name: "wl-copy"},
		{name: "xclip", args: []string{"-selection", "clipboard", "-in", "-silent"}, detach: true},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
	}
}

// CopyText places value on the system clipboard.
func CopyText(ctx context.Context, value string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	selected, err := selectTool()
	if err != nil {
		return err
	}

	if selected.detach {
		return copyDetached(selected, value)
	}

	copyCtx, cancel := context.WithTimeout(ctx, copyTimeout)
	defer cancel()

	cmd := exec.CommandContext(copyCtx, selected.name, selected.args...)
	cmd.Stdin = strings.NewReader(value)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if runErr := cmd.Run(); runErr != nil {
		if errors.Is(copyCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("copy to clipboard timed out: %w", copyCtx.Err())
		}
		return fmt.Errorf("copy to clipboard: %w", runErr)
	}

	return nil
}

func selectTool() (tool, error) {
	for _, candidate := range candidates() {
		if _, err := exec.LookPath(candidate.name); err == nil {
			return candidate, nil
		}
	}
	return tool{}, ErrUnavailable
}

// copyDetached starts the tool, feeds it the value, and releases the
// process without waiting for it to exit.
func copyDetached(selected tool, value string) error {
	cmd := exec.Command(selected.name, selected.args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open clipboard stdin: %w", err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start clipboard command: %w", err)
	}

	if _, err := io.WriteString(stdin, value); err != nil {
		_ = stdin.Close()
		_ = cmd.Process.Kill()
		return fmt.Errorf("write clipboard data: %w", err)
	}

	if err := stdin.Close(); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("close clipboard stdin: %w", err)
	}

	_ = cmd.Process.Release()
	return nil
}
