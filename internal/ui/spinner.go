package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner animates a loading indicator on a terminal line. It is the
// non-TUI counterpart of the App's phase indicator.
type Spinner struct {
	out    io.Writer
	frames []string
	every  time.Duration

	mu   sync.Mutex
	msg  string
	stop chan struct{}
	done chan struct{}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a stopped spinner writing to out.
func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{out: out, frames: spinnerFrames, every: 80 * time.Millisecond}
}

// Start shows msg. If the spinner is already running only the message
// changes.
func (s *Spinner) Start(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = msg
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
}

func (s *Spinner) loop(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()
	for i := 0; ; i++ {
		s.mu.Lock()
		frame := StyleChain.Render(s.frames[i%len(s.frames)])
		fmt.Fprintf(s.out, "\r%s  %s", frame, s.msg)
		s.mu.Unlock()

		select {
		case <-stop:
			fmt.Fprintf(s.out, "\r%-60s\r", "") // clear line
			return
		case <-ticker.C:
		}
	}
}

// Running reports whether the spinner is animating.
func (s *Spinner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// Stop halts the spinner and waits for the line to be cleared. Stopping a
// stopped spinner does nothing.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// StopWithMsg halts the spinner and prints a final message.
func (s *Spinner) StopWithMsg(msg string) {
	s.Stop()
	fmt.Fprintln(s.out, msg)
}
