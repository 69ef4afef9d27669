package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WizardResult holds answers collected by the setup wizard.
type WizardResult struct {
	Provider            string
	SwitchFailurePolicy string
	RPCAlgorithm        string
	Endpoint            string // remote provider only
	Wallet              string // local provider only
}

// --- Bubble Tea model ---

type wizardStep int

const (
	stepProvider wizardStep = iota
	stepPolicy
	stepAlgorithm
	stepDetail
	stepDone
)

type wizardModel struct {
	step      wizardStep
	result    WizardResult
	cursor    int
	choices   []string
	input     string
	inputMode bool
	cancelled bool
}

var (
	providerChoices = []string{"remote", "local"}
	policyChoices   = []string{"abort", "proceed"}
	algoChoices     = []string{"fastest", "round-robin", "failover"}
)

func initialWizard() wizardModel {
	return wizardModel{step: stepProvider, choices: providerChoices}
}

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit

	case "up", "k":
		if !m.inputMode && m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if !m.inputMode && m.cursor < len(m.choices)-1 {
			m.cursor++
		}

	case "enter":
		if m.inputMode {
			m.applyInput()
		} else {
			m.applyChoice()
		}
		m.advance()

	case "backspace":
		if m.inputMode && len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}

	default:
		if m.inputMode && key.Type == tea.KeyRunes {
			m.input += string(key.Runes)
		}
	}

	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m *wizardModel) advance() {
	m.step++
	m.cursor = 0
	switch m.step {
	case stepPolicy:
		m.choices = policyChoices
	case stepAlgorithm:
		m.choices = algoChoices
	case stepDetail:
		m.choices = nil
		m.inputMode = true
		m.input = ""
	case stepDone:
		m.inputMode = false
	}
}

func (m *wizardModel) applyChoice() {
	if m.cursor >= len(m.choices) {
		return
	}
	choice := m.choices[m.cursor]
	switch m.step {
	case stepProvider:
		m.result.Provider = choice
	case stepPolicy:
		m.result.SwitchFailurePolicy = choice
	case stepAlgorithm:
		m.result.RPCAlgorithm = choice
	}
}

func (m *wizardModel) applyInput() {
	// Sanitize: strip whitespace and accidental brackets from paste.
	v := strings.Trim(strings.TrimSpace(m.input), "[]")
	if v == "" {
		return
	}
	if m.result.Provider == "local" {
		m.result.Wallet = v
	} else {
		m.result.Endpoint = v
	}
}

func (m wizardModel) View() string {
	var s string

	switch m.step {
	case stepProvider:
		s = renderMenu("Where does signing happen?", m.choices, m.cursor)
	case stepPolicy:
		s = renderMenu("If the wallet cannot switch to Sepolia:", m.choices, m.cursor)
	case stepAlgorithm:
		s = renderMenu("Select RPC algorithm:", m.choices, m.cursor)
	case stepDetail:
		if m.result.Provider == "local" {
			s = StyleTitle.Render("Local wallet") + "\n\n"
			s += StyleMeta.Render("Wallet name (or press Enter for the default wallet):") + "\n"
		} else {
			s = StyleTitle.Render("Remote wallet") + "\n\n"
			s += StyleMeta.Render("Wallet endpoint (or press Enter to keep the current one):") + "\n"
		}
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	case stepDone:
		s = Success("Setup complete!") + "\n"
	}

	return StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · Esc cancel")
	return s
}

// RunWizard launches the interactive setup wizard. It returns nil when the
// user cancels.
func RunWizard() (*WizardResult, error) {
	final, err := tea.NewProgram(initialWizard()).Run()
	if err != nil {
		return nil, fmt.Errorf("wizard error: %w", err)
	}
	m := final.(wizardModel)
	if m.cancelled {
		return nil, nil
	}
	return &m.result, nil
}
