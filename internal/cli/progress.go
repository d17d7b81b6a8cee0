package cli

import (
	"os"
	"sync"
	"time"

	"github.com/matt-chlorophyll/tubescribe/internal/pipeline"
	"github.com/schollz/progressbar/v3"
)

type stopFunc func()

func startSpinner(enabled bool, description string) stopFunc {
	if !enabled {
		return func() {}
	}

	bar := progressbar.NewOptions(
		-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				_ = bar.Finish()
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stopCh)
			<-doneCh
		})
	}
}

// stageProgress renders one spinner per pipeline stage, swapping the
// description as the run advances.
type stageProgress struct {
	enabled bool
	current stopFunc
}

func newStageProgress(enabled bool) *stageProgress {
	return &stageProgress{enabled: enabled, current: func() {}}
}

func (p *stageProgress) observe(state pipeline.State) {
	p.current()

	switch state {
	case pipeline.StateAcquiring:
		p.current = startSpinner(p.enabled, "Downloading audio")
	case pipeline.StateTranscribing:
		p.current = startSpinner(p.enabled, "Transcribing")
	case pipeline.StateWriting:
		p.current = startSpinner(p.enabled, "Writing transcript")
	default:
		p.current = func() {}
	}
}

func (p *stageProgress) stop() {
	p.current()
	p.current = func() {}
}
