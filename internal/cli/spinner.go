package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a one-line status on a terminal while a job runs. When
// the output is not a terminal it draws nothing, so piped and logged runs
// stay clean.
type Spinner struct {
	w    io.Writer
	live bool

	mu      sync.Mutex
	message string
	width   int // longest text drawn so far
	started time.Time

	ctx     context.Context
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
	running bool
}

// newSpinner returns a spinner on stderr that also stops when ctx ends.
func newSpinner(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		live:    isTerminal(w),
		message: message,
		ctx:     ctx,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Start begins the animation. It is a no-op off a terminal.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = time.Now()
	s.running = s.live
	s.mu.Unlock()
	if !s.live {
		return
	}

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-s.stop:
				return
			case <-ticker.C:
				fmt.Fprint(s.w, "\r"+s.line(i))
			}
		}
	}()
}

// Stop ends the animation and erases the status line. Repeated calls are
// fine.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.mu.Lock()
	running := s.running
	s.running = false
	s.mu.Unlock()
	if running {
		<-s.stopped
		s.clear()
	}
}

// SetMessage replaces the status text.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// line renders frame i, padded so a shorter message fully overwrites a
// longer one.
func (s *Spinner) line(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := s.message
	if d := time.Since(s.started); !s.started.IsZero() && d >= time.Second {
		text += fmt.Sprintf(" (%s)", d.Truncate(time.Second))
	}
	if len(text) > s.width {
		s.width = len(text)
	}
	frame := spinnerFrames[i%len(spinnerFrames)]
	return styleIconSpinner.Render(frame) + " " + StyleDim.Render(text) + strings.Repeat(" ", s.width-len(text))
}

func (s *Spinner) clear() {
	s.mu.Lock()
	n := s.width + 2
	s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", n))
}
