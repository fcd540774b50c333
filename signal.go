package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/codetester/codetester-go/internal/progress"
)

// exitProcess ends the process. Tests replace it.
var exitProcess = os.Exit

// foreground records whether the process is blocked reading from the
// terminal, and how to put the terminal back when that read is abandoned.
// A nil *foreground tracks nothing.
type foreground struct {
	mu      sync.Mutex
	reading bool
	restore func()
}

// begin marks the start of a foreground read. restore, when non-nil, undoes
// any terminal mode change the read makes.
func (f *foreground) begin(restore func()) {
	if f == nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.reading = true
	f.restore = restore
}

// end marks the read as finished.
func (f *foreground) end() {
	if f == nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.reading = false
	f.restore = nil
}

// interrupt restores the terminal of an in-progress read and reports
// whether there was one.
func (f *foreground) interrupt() bool {
	if f == nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.reading {
		return false
	}

	if f.restore != nil {
		f.restore()
	}

	return true
}

// shutdownContext returns a context that cancels on the first SIGINT/SIGTERM
// and force-exits on the second. The spinner is stopped on the first signal
// so the cursor is visible again whichever way the process ends. A prompt
// blocked on stdin never observes ctx, so a signal during a foreground read
// restores the terminal and exits at once.
func shutdownContext(parent context.Context, spinner *progress.Spinner, fg *foreground, logger *slog.Logger) context.Context {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			spinner.Stop()

			if fg.interrupt() {
				logger.Info("received signal while reading input, exiting", slog.String("signal", sig.String()))
				os.Stderr.WriteString("\n")
				exitProcess(1)

				return
			}

			logger.Info("received signal, cancelling", slog.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
			return
		}

		select {
		case sig := <-sigCh:
			logger.Warn("received second signal, forcing exit", slog.String("signal", sig.String()))
			fg.interrupt()
			exitProcess(1)
		case <-parent.Done():
			return
		}
	}()

	return ctx
}
