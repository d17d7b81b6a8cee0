// Package logging builds the process-wide zap logger. All logs go to
// stderr; stdout stays reserved for command output.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects verbosity and output encoding.
type Options struct {
	// Verbose enables debug-level logs and stacktraces on warnings.
	Verbose bool
	// JSON emits one JSON object per line instead of the colored
	// console encoding.
	JSON bool
}

func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	var encoder zapcore.Encoder
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.TimeKey = ""
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encCfg.EncodeCaller = nil
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	sink := zapcore.Lock(os.Stderr)
	core := zapcore.NewCore(encoder, sink, zap.NewAtomicLevelAt(level))

	zapOpts := []zap.Option{zap.ErrorOutput(sink)}
	if opts.Verbose {
		zapOpts = append(zapOpts, zap.AddStacktrace(zapcore.WarnLevel))
	}

	return zap.New(core, zapOpts...), nil
}
