package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func step(m tea.Model, keys ...tea.KeyMsg) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

var down = tea.KeyMsg{Type: tea.KeyDown}

func TestWizardLocalFlow(t *testing.T) {
	// local, proceed, fastest, then a wallet name typed in two bursts.
	m := step(initialWizard(),
		down, enter,
		down, enter,
		enter,
		runes("ops"), runes("x"), enter,
	).(wizardModel)

	assert.Equal(t, stepDone, m.step)
	assert.Equal(t, WizardResult{
		Provider:            "local",
		SwitchFailurePolicy: "proceed",
		RPCAlgorithm:        "fastest",
		Wallet:              "opsx",
	}, m.result)
}

func TestWizardRemoteSkipsEndpoint(t *testing.T) {
	m := step(initialWizard(), enter, enter, down, down, enter, enter).(wizardModel)
	assert.Equal(t, "remote", m.result.Provider)
	assert.Equal(t, "abort", m.result.SwitchFailurePolicy)
	assert.Equal(t, "failover", m.result.RPCAlgorithm)
	assert.Empty(t, m.result.Endpoint)
}

func TestWizardCancel(t *testing.T) {
	m := step(initialWizard(), tea.KeyMsg{Type: tea.KeyEsc}).(wizardModel)
	assert.True(t, m.cancelled)
}

func TestPickerStartsOnCurrentItem(t *testing.T) {
	items := []PickerItem{
		{Label: "a", Value: "a"},
		{Label: "b", Value: "b", Current: true},
		{Label: "c", Value: "c"},
	}
	m := step(newPicker("Wallets", items), down, enter).(pickerModel)
	if assert.NotNil(t, m.selected) {
		assert.Equal(t, "c", m.selected.Value)
	}
	assert.Contains(t, newPicker("Wallets", items).View(), "★")
}

func TestPickerCancel(t *testing.T) {
	m := step(newPicker("Wallets", []PickerItem{{Label: "a"}}), runes("q")).(pickerModel)
	assert.True(t, m.quitting)
	assert.Nil(t, m.selected)
}

func TestPickItemEmpty(t *testing.T) {
	_, err := PickItem("Wallets", nil)
	assert.ErrorIs(t, err, ErrNothingToPick)
}
