package version

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveVersionOutsideGitRepo(t *testing.T) {
	t.Parallel()

	git := func(args ...string) (string, error) {
		return "", errors.New("not a git repository")
	}

	require.Equal(t, "0.1.0", resolveVersion("0.1.0", git))
}

func TestResolveVersionOnReleaseTag(t *testing.T) {
	t.Parallel()

	git := func(args ...string) (string, error) {
		switch args[0] {
		case "rev-parse":
			return ".git", nil
		case "describe":
			return "v0.1.0", nil
		}
		return "", errors.New("unexpected git call")
	}

	require.Equal(t, "0.1.0", resolveVersion("0.1.0", git))
}

func TestResolveVersionAppendsSuffixBetweenTags(t *testing.T) {
	t.Parallel()

	git := func(args ...string) (string, error) {
		if args[0] == "rev-parse" {
			return ".git", nil
		}
		for _, arg := range args {
			if arg == "--exact-match" {
				return "", errors.New("no tag matches")
			}
		}
		return "v0.1.0-3-gabc1234", nil
	}

	require.Equal(t, "0.1.0-3-gabc1234", resolveVersion("0.1.0", git))
}

func TestResolveVersionEmptyBaseFallsBack(t *testing.T) {
	t.Parallel()

	git := func(args ...string) (string, error) {
		return "", errors.New("not a git repository")
	}

	require.Equal(t, "0.0.0", resolveVersion("", git))
}
