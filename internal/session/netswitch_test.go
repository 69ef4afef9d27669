package session

import (
	"context"
	"testing"

	"github.com/Mohsinsiddi/fundme/internal/chain"
	"github.com/Mohsinsiddi/fundme/internal/provider"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSwitcher returns fixed errors and counts calls.
type scriptedSwitcher struct {
	switchErr, addErr error
	switches, adds    int
	added             chain.Network
}

func (s *scriptedSwitcher) SwitchChain(context.Context, int64) error {
	s.switches++
	return s.switchErr
}

func (s *scriptedSwitcher) AddChain(_ context.Context, n chain.Network) error {
	s.adds++
	s.added = n
	return s.addErr
}

func runSwitch(t *testing.T, w *scriptedSwitcher) ([]SwitchState, error) {
	t.Helper()
	sw := &networkSwitch{wallet: w, target: chain.Target(), log: zerolog.Nop()}
	err := sw.run(context.Background())
	return sw.trace, err
}

func TestSwitchStatesDirect(t *testing.T) {
	w := &scriptedSwitcher{}
	trace, err := runSwitch(t, w)
	require.NoError(t, err)
	assert.Equal(t, []SwitchState{NotOnTarget, Switching, Done}, trace)
	assert.Zero(t, w.adds)
}

func TestSwitchStatesRegistration(t *testing.T) {
	w := &scriptedSwitcher{switchErr: provider.Errorf(provider.CodeUnrecognizedChain, "unknown")}
	trace, err := runSwitch(t, w)
	require.NoError(t, err)
	assert.Equal(t, []SwitchState{NotOnTarget, Switching, NeedsRegistration, Registering, Done}, trace)
	assert.Equal(t, 1, w.adds)
	assert.Equal(t, chain.Target(), w.added)
}

func TestSwitchStatesRegistrationFailed(t *testing.T) {
	w := &scriptedSwitcher{
		switchErr: provider.Errorf(provider.CodeUnrecognizedChain, "unknown"),
		addErr:    provider.Errorf(provider.CodeInternal, "nope"),
	}
	trace, err := runSwitch(t, w)
	assert.ErrorIs(t, err, ErrRegistrationFailed)
	assert.Equal(t, []SwitchState{NotOnTarget, Switching, NeedsRegistration, Registering, SwitchFailed}, trace)
	assert.Equal(t, 1, w.switches, "no retry of the switch")
}

func TestSwitchStatesOtherFailure(t *testing.T) {
	w := &scriptedSwitcher{switchErr: provider.Errorf(provider.CodeChainDisconnected, "down")}
	trace, err := runSwitch(t, w)
	assert.ErrorIs(t, err, ErrSwitchFailed)
	assert.Equal(t, []SwitchState{NotOnTarget, Switching, SwitchFailed}, trace)
	assert.Zero(t, w.adds)
}

func TestSwitchStateString(t *testing.T) {
	assert.Equal(t, "needs-registration", NeedsRegistration.String())
	assert.Equal(t, "failed", SwitchFailed.String())
}

func TestParseSwitchFailurePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    SwitchFailurePolicy
		wantErr bool
	}{
		{"", PolicyAbort, false},
		{"abort", PolicyAbort, false},
		{" Proceed ", PolicyProceed, false},
		{"ignore", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSwitchFailurePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifySend(t *testing.T) {
	assert.ErrorIs(t, classifySend(provider.Errorf(4001, "denied")), ErrUserRejected)
	assert.ErrorIs(t, classifySend(provider.Errorf(3, "execution reverted")), ErrReverted)
	assert.ErrorIs(t, classifySend(provider.Errorf(-32000, "Transaction reverted without a reason")), ErrReverted)
	assert.ErrorIs(t, classifySend(provider.Errorf(-32000, "insufficient funds")), ErrProviderCall)
}
