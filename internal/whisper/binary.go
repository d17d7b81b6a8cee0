package whisper

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// envWhisperPath overrides engine binary resolution.
const envWhisperPath = "TUBESCRIBE_WHISPER_PATH"

// resolveEngineBinary locates the whisper-cli executable: env
// override first, then PATH, then well-known locations next to the
// tubescribe binary.
func resolveEngineBinary() (string, error) {
	if override := strings.TrimSpace(os.Getenv(envWhisperPath)); override != "" {
		if err := ensureExecutable(override); err != nil {
			return "", fmt.Errorf("%s is not executable: %w", envWhisperPath, err)
		}
		return override, nil
	}

	if found, err := exec.LookPath(engineBinaryName()); err == nil {
		return found, nil
	}

	selfExe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve tubescribe executable path: %w", err)
	}

	for _, candidate := range engineBinaryCandidates(selfExe) {
		if err := ensureExecutable(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s not found on PATH or near %s; install whisper.cpp or set %s", engineBinaryName(), selfExe, envWhisperPath)
}

func engineBinaryCandidates(selfExe string) []string {
	binDir := filepath.Dir(selfExe)
	engineName := engineBinaryName()

	return []string{
		filepath.Join(binDir, "..", "libexec", "whisper", engineName),
		filepath.Join(binDir, "libexec", "whisper", engineName),
		filepath.Join(binDir, engineName),
	}
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}
