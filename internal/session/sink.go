package session

import "github.com/Mohsinsiddi/fundme/internal/notify"

// Button labels set by the controller.
const (
	LabelConnected = "Connected"
	LabelInstall   = "Please install MetaMask"
)

// Action identifies one of the four user actions and the button bound to it.
type Action int

const (
	ActionConnect Action = iota
	ActionBalance
	ActionFund
	ActionWithdraw
)

func (a Action) String() string {
	switch a {
	case ActionConnect:
		return "connect"
	case ActionBalance:
		return "balance"
	case ActionFund:
		return "fund"
	case ActionWithdraw:
		return "withdraw"
	default:
		return "unknown"
	}
}

// Phase is where an action is in Idle → Requesting → (Confirming | Failed) → Idle.
type Phase int

const (
	Idle Phase = iota
	Requesting
	Confirming
	Failed
)

func (p Phase) String() string {
	switch p {
	case Requesting:
		return "requesting"
	case Confirming:
		return "confirming"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Sink is the UI surface the controller reports to.
type Sink interface {
	// SetLabel changes the text of the button bound to a.
	SetLabel(a Action, label string)
	// Notify shows one transient message.
	Notify(kind notify.Kind, text string)
	// Progress reports a phase change of a.
	Progress(a Action, p Phase)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) SetLabel(Action, string)    {}
func (NopSink) Notify(notify.Kind, string) {}
func (NopSink) Progress(Action, Phase)     {}
