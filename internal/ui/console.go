package ui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Mohsinsiddi/fundme/internal/notify"
	"github.com/Mohsinsiddi/fundme/internal/provider"
	"github.com/Mohsinsiddi/fundme/internal/session"
)

// ConsoleSink prints controller output for one-shot commands. Button
// labels become status lines and in-flight phases drive a spinner.
type ConsoleSink struct {
	mu     sync.Mutex
	out    io.Writer
	spin   *Spinner // nil when not animating
	msg    string   // spinner message for the current phase
	paused int      // approvals in progress
}

// NewConsoleSink writes to out. animate enables the spinner and should
// only be set when out is a terminal.
func NewConsoleSink(out io.Writer, animate bool) *ConsoleSink {
	s := &ConsoleSink{out: out}
	if animate {
		s.spin = NewSpinner(out)
	}
	return s
}

func (s *ConsoleSink) SetLabel(a session.Action, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopSpinner()
	fmt.Fprintln(s.out, Meta(buttonTitle(a)+" ›")+" "+Val(label))
}

func (s *ConsoleSink) Notify(kind notify.Kind, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopSpinner()
	fmt.Fprintln(s.out, Notice(kind, text))
}

func (s *ConsoleSink) Progress(a session.Action, p session.Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spin == nil {
		return
	}
	switch p {
	case session.Requesting:
		s.msg = buttonTitle(a) + ": waiting for the wallet…"
	case session.Confirming:
		s.msg = buttonTitle(a) + ": waiting for confirmation…"
	default:
		s.msg = ""
	}
	s.refresh()
}

// Guard wraps an approver that prompts on the same terminal so the
// spinner is held for as long as the prompt is open.
func (s *ConsoleSink) Guard(a provider.Approver) provider.Approver {
	return provider.ApproverFunc(func(ctx context.Context, req provider.ApprovalRequest) (bool, error) {
		s.hold(1)
		defer s.hold(-1)
		return a.Approve(ctx, req)
	})
}

func (s *ConsoleSink) hold(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused += delta
	s.refresh()
}

// refresh starts or stops the spinner to match msg and paused. Caller
// holds s.mu.
func (s *ConsoleSink) refresh() {
	if s.spin == nil {
		return
	}
	if s.msg == "" || s.paused > 0 {
		s.spin.Stop()
		return
	}
	s.spin.Start(s.msg)
}

func (s *ConsoleSink) stopSpinner() {
	s.msg = ""
	if s.spin != nil {
		s.spin.Stop()
	}
}
