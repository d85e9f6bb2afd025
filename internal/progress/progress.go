// Package progress renders terminal progress feedback for long
// running commands.
package progress

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/corpora-labs/corpora-cli/internal/core/ports/driven"
)

var barTheme = progressbar.Theme{
	Saucer:        "=",
	SaucerHead:    ">",
	SaucerPadding: " ",
	BarStart:      "[",
	BarEnd:        "]",
}

// Bar reports ingestion progress on stderr.
type Bar struct {
	description string
	bar         *progressbar.ProgressBar
}

var _ driven.ProgressReporter = (*Bar)(nil)

// New returns a reporter writing to stderr, or nil when disabled so
// callers can pass it straight to SetProgressReporter.
func New(enabled bool, description string) driven.ProgressReporter {
	if !enabled {
		return nil
	}
	return &Bar{description: description}
}

// Enabled reports whether stderr is an interactive terminal.
func Enabled() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (b *Bar) Start(total int) {
	if total <= 0 {
		return
	}
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(b.description),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(barTheme),
	)
}

func (b *Bar) Increment() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Add(1)
}

func (b *Bar) Finish() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Finish()
}

// Spinner shows an indeterminate spinner until the returned stop
// function is called. When disabled the stop function is a no-op.
func Spinner(enabled bool, description string) func() {
	if !enabled {
		return func() {}
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(9),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(10),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(barTheme),
	)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = bar.Add(1)
			case <-done:
				_ = bar.Finish()
				return
			}
		}
	}()
	return func() { close(done) }
}
