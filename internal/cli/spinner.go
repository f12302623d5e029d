package cli

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

const spinnerInterval = 100 * time.Millisecond

// withSpinner runs fn while a spinner labelled desc turns on w. The spinner
// line is cleared once fn returns.
func withSpinner(w io.Writer, desc string, fn func() error) error {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription("[cyan]"+desc+"[reset]"),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	err := fn()
	close(done)
	<-stopped
	_ = bar.Finish()
	return err
}
