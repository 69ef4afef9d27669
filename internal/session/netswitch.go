package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/fundme/internal/chain"
	"github.com/Mohsinsiddi/fundme/internal/provider"
	"github.com/rs/zerolog"
)

// SwitchState is a step of the network switch.
type SwitchState int

const (
	NotOnTarget SwitchState = iota
	Switching
	NeedsRegistration
	Registering
	Done
	SwitchFailed
)

func (s SwitchState) String() string {
	return [...]string{"not-on-target", "switching", "needs-registration", "registering", "done", "failed"}[s]
}

// SwitchFailurePolicy decides what Connect does when the wallet cannot be
// moved to the target network.
type SwitchFailurePolicy string

const (
	// PolicyAbort reports the failure and leaves the session unconnected.
	PolicyAbort SwitchFailurePolicy = "abort"
	// PolicyProceed marks the session connected anyway and warns once.
	PolicyProceed SwitchFailurePolicy = "proceed"
)

// ParseSwitchFailurePolicy reads a config value. Empty means PolicyAbort.
func ParseSwitchFailurePolicy(s string) (SwitchFailurePolicy, error) {
	switch p := SwitchFailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyAbort, nil
	case PolicyAbort, PolicyProceed:
		return p, nil
	default:
		return "", fmt.Errorf("unknown switch failure policy %q (want abort or proceed)", s)
	}
}

// switcher is the wallet surface the network switch needs.
type switcher interface {
	SwitchChain(ctx context.Context, id int64) error
	AddChain(ctx context.Context, n chain.Network) error
}

// networkSwitch moves the wallet to target. It runs
// NotOnTarget → Switching → (Done | NeedsRegistration) → Registering → (Done | Failed)
// and records every state it passes through.
type networkSwitch struct {
	wallet switcher
	target chain.Network
	log    zerolog.Logger
	trace  []SwitchState
}

func (s *networkSwitch) run(ctx context.Context) error {
	state := NotOnTarget
	var err error
	for {
		s.trace = append(s.trace, state)
		s.log.Debug().Stringer("state", state).Msg("network switch")

		switch state {
		case NotOnTarget:
			state = Switching

		case Switching:
			err = s.wallet.SwitchChain(ctx, s.target.ChainID)
			switch {
			case err == nil:
				state = Done
			case provider.IsUnrecognizedChain(err):
				state = NeedsRegistration
			default:
				err = classify(ErrSwitchFailed, err)
				state = SwitchFailed
			}

		case NeedsRegistration:
			state = Registering

		case Registering:
			// A successful registration also switches the wallet.
			if err = s.wallet.AddChain(ctx, s.target); err != nil {
				err = wrap(ErrRegistrationFailed, err)
				state = SwitchFailed
			} else {
				state = Done
			}

		case Done:
			return nil

		case SwitchFailed:
			return err
		}
	}
}
