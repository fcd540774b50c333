// Package progress renders a single status line with a spinner while the
// CLI waits on the network. The spinner owns the terminal's current line;
// anything that reads from the terminal must run inside Paused so the
// repaint cannot race with the prompt echo.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/mattn/go-isatty"
)

// ANSI sequences used to manage the status line.
const (
	clearLine  = "\r\x1b[2K"
	hideCursor = "\x1b[?25l"
	showCursor = "\x1b[?25h"
)

// defaultInterval is the repaint period of the spinner.
const defaultInterval = 80 * time.Millisecond

// Spinner is a timer-driven status line. It is owned by the top-level
// command and handed to whatever performs slow operations.
type Spinner struct {
	w        io.Writer
	frames   []string
	interval time.Duration
	animate  bool

	mu      sync.Mutex
	message string
	frame   int
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// Option configures a Spinner.
type Option func(*Spinner)

// WithInterval sets the repaint period.
func WithInterval(d time.Duration) Option {
	return func(s *Spinner) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithAnimation forces animation on or off regardless of the writer.
func WithAnimation(on bool) Option {
	return func(s *Spinner) {
		s.animate = on
	}
}

// New creates a stopped spinner writing to w. Animation is enabled only when
// w is a terminal.
func New(w io.Writer, opts ...Option) *Spinner {
	s := &Spinner{
		w:        w,
		frames:   spinner.Line.Frames,
		interval: defaultInterval,
		animate:  isTerminal(w),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Update replaces the message shown next to the spinner.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
}

// Message returns the current message.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.message
}

// IsRunning reports whether the spinner has been started and not stopped.
func (s *Spinner) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// Start begins repainting the status line. Starting a running spinner is a
// no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.running = true

	if !s.animate {
		return
	}

	fmt.Fprint(s.w, hideCursor)

	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(s.stop, s.done)
}

// Stop cancels the timer, clears the status line and restores the cursor.
// No frame is painted after Stop returns.
func (s *Spinner) Stop() {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		return
	}

	s.running = false
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}

	close(stop)
	<-done

	s.mu.Lock()
	fmt.Fprint(s.w, clearLine+showCursor)
	s.mu.Unlock()
}

// Persist clears the status line and prints message, or the current spinner
// message when message is empty, on a line of its own. A running spinner
// keeps spinning below it.
func (s *Spinner) Persist(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message == "" {
		message = s.message
	}

	if s.animate {
		fmt.Fprint(s.w, clearLine)
	}

	fmt.Fprintln(s.w, message)
}

// Paused stops the spinner, runs fn, and restarts the spinner if it was
// running before. Every foreground read from the terminal goes through here.
func (s *Spinner) Paused(fn func() error) error {
	wasRunning := s.IsRunning()
	if wasRunning {
		s.Stop()
	}

	err := fn()

	if wasRunning {
		s.Start()
	}

	return err
}

func (s *Spinner) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.paint()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.paint()
		}
	}
}

func (s *Spinner) paint() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frame = (s.frame + 1) % len(s.frames)
	fmt.Fprintf(s.w, "%s%s %s", clearLine, s.frames[s.frame], s.message)
}
