package main

import (
	"errors"
	"testing"

	"github.com/matt-chlorophyll/tubescribe/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestShouldPrintUsageHint(t *testing.T) {
	t.Parallel()

	require.False(t, shouldPrintUsageHint(nil))
	require.True(t, shouldPrintUsageHint(errors.New("unknown command \"bad\" for \"tubescribe\"")))
	require.True(t, shouldPrintUsageHint(errors.New("unknown flag: --badflag")))
	require.True(t, shouldPrintUsageHint(errors.New("accepts 1 arg(s), received 0")))
	require.False(t, shouldPrintUsageHint(errors.New("acquisition stage failed: network timeout")))
}

func TestHelpHintTarget(t *testing.T) {
	t.Parallel()

	root := cli.NewRootCmd()

	require.Equal(t, "tubescribe", helpHintTarget(nil, nil))
	require.Equal(t, "tubescribe", helpHintTarget(root, nil))
	require.Equal(t, "tubescribe", helpHintTarget(root, []string{"--badflag"}))
	require.Equal(t, "tubescribe", helpHintTarget(root, []string{"badcmd"}))
	require.Equal(t, "tubescribe transcribe", helpHintTarget(root, []string{"transcribe"}))
	require.Equal(t, "tubescribe transcribe", helpHintTarget(root, []string{"transcribe", "--save"}))
}
