package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Accelerator identifies the hardware-acceleration backend available
// for model inference on this host.
type Accelerator int

const (
	AcceleratorNone Accelerator = iota
	AcceleratorCUDA
	AcceleratorMetal
)

func (a Accelerator) String() string {
	switch a {
	case AcceleratorCUDA:
		return "cuda"
	case AcceleratorMetal:
		return "metal"
	default:
		return "none"
	}
}

// Available reports whether any accelerated compute path exists.
func (a Accelerator) Available() bool {
	return a != AcceleratorNone
}

// DetectAccelerator probes the host once for an accelerated compute
// backend. Apple silicon exposes Metal unconditionally; elsewhere an
// NVIDIA driver on the PATH signals CUDA.
func DetectAccelerator() Accelerator {
	return detectAcceleratorFor(runtime.GOOS, runtime.GOARCH, exec.LookPath)
}

func detectAcceleratorFor(goos, goarch string, lookPath func(string) (string, error)) Accelerator {
	if goos == "darwin" && goarch == "arm64" {
		return AcceleratorMetal
	}

	if _, err := lookPath("nvidia-smi"); err == nil {
		return AcceleratorCUDA
	}

	return AcceleratorNone
}

func NormalizeArch(arch string) string {
	switch arch {
	case "x86_64":
		return "amd64"
	case "aarch64":
		return "arm64"
	default:
		return arch
	}
}

// DefaultModelDirFor resolves where downloaded speech models live for
// the given OS conventions.
func DefaultModelDirFor(goos, homeDir, xdgDataHome string) (string, error) {
	dataDir, err := defaultDataDirFor(goos, homeDir, xdgDataHome)
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "models"), nil
}

// ResolveModelDir returns override when set, otherwise the platform
// default model directory.
func ResolveModelDir(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	return DefaultModelDirFor(runtime.GOOS, homeDir, os.Getenv("XDG_DATA_HOME"))
}

func defaultDataDirFor(goos, homeDir, xdgDataHome string) (string, error) {
	if homeDir == "" {
		return "", errors.New("home directory is empty")
	}

	switch goos {
	case "linux":
		if xdgDataHome != "" {
			return filepath.Join(xdgDataHome, "tubescribe"), nil
		}
		return filepath.Join(homeDir, ".local", "share", "tubescribe"), nil
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "tubescribe"), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", goos)
	}
}
