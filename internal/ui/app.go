package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Mohsinsiddi/fundme/internal/chain"
	"github.com/Mohsinsiddi/fundme/internal/notify"
	"github.com/Mohsinsiddi/fundme/internal/provider"
	"github.com/Mohsinsiddi/fundme/internal/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
)

// Actions is what the App's buttons run. *session.Controller implements it.
type Actions interface {
	Connect(ctx context.Context) error
	Balance(ctx context.Context) (string, error)
	Fund(ctx context.Context, amount string) (common.Hash, error)
	Withdraw(ctx context.Context) (common.Hash, error)
}

// buttons in display order.
var buttons = []session.Action{
	session.ActionConnect,
	session.ActionBalance,
	session.ActionFund,
	session.ActionWithdraw,
}

const maxAmountLen = 32

// buttonTitle is a button's label before the controller sets one.
func buttonTitle(a session.Action) string {
	switch a {
	case session.ActionConnect:
		return "Connect"
	case session.ActionBalance:
		return "Get Balance"
	case session.ActionFund:
		return "Fund"
	case session.ActionWithdraw:
		return "Withdraw"
	default:
		return a.String()
	}
}

// --- messages ---

type labelMsg struct {
	action session.Action
	label  string
}

type noticeMsg struct {
	kind notify.Kind
	text string
}

type phaseMsg struct {
	action session.Action
	phase  session.Phase
}

type actionDoneMsg struct {
	action session.Action
	hash   common.Hash
	err    error
}

type approvalMsg struct {
	req   provider.ApprovalRequest
	reply chan bool
}

type expireMsg struct{}

type appTickMsg struct{}

func appTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return appTickMsg{} })
}

func expireAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return expireMsg{} })
}

// Bridge connects the controller and the local wallet to a running App.
// It is a session.Sink and a provider.Approver; both forward to the
// program once Attach has been called.
type Bridge struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

// Attach sets the program's Send. nil detaches.
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) emit(msg tea.Msg) bool {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()
	if send == nil {
		return false
	}
	send(msg)
	return true
}

func (b *Bridge) SetLabel(a session.Action, label string) { b.emit(labelMsg{a, label}) }

func (b *Bridge) Notify(kind notify.Kind, text string) { b.emit(noticeMsg{kind, text}) }

func (b *Bridge) Progress(a session.Action, p session.Phase) { b.emit(phaseMsg{a, p}) }

// Approve shows req as a modal and waits for the answer. Without a
// running App every request is denied.
func (b *Bridge) Approve(ctx context.Context, req provider.ApprovalRequest) (bool, error) {
	reply := make(chan bool, 1)
	if !b.emit(approvalMsg{req: req, reply: reply}) {
		return false, nil
	}
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case ok := <-reply:
		return ok, nil
	}
}

// App is the Bubble Tea model of the FundMe front end: four buttons, an
// amount input and a notification region.
type App struct {
	ctx      context.Context
	actions  Actions
	queue    *notify.Queue
	network  chain.Network
	contract common.Address

	labels   map[session.Action]string
	phases   map[session.Action]session.Phase
	focus    int
	amount   string
	lastTx   string
	pending  []approvalMsg
	shown    []notify.Handle
	frame    int
	flash    string
	quitting bool
}

// NewApp creates the model for the FundMe deployment at contract on network.
func NewApp(ctx context.Context, actions Actions, queue *notify.Queue, network chain.Network, contract common.Address) App {
	return App{
		ctx:      ctx,
		actions:  actions,
		queue:    queue,
		network:  network,
		contract: contract,
		labels:   make(map[session.Action]string),
		phases:   make(map[session.Action]session.Phase),
	}
}

func (m App) Init() tea.Cmd { return appTick() }

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if len(m.pending) > 0 {
			return m.answer(msg)
		}
		return m.key(msg)

	case labelMsg:
		m.labels[msg.action] = msg.label

	case phaseMsg:
		m.phases[msg.action] = msg.phase

	case noticeMsg:
		m.shown = append(m.shown, m.queue.Push(msg.kind, msg.text))
		return m, expireAfter(m.queue.TTL())

	case expireMsg:
		live := make(map[string]bool)
		for _, n := range m.queue.Active() {
			live[n.ID] = true
		}
		kept := m.shown[:0]
		for _, h := range m.shown {
			if live[h.ID()] {
				kept = append(kept, h)
			}
		}
		m.shown = kept

	case actionDoneMsg:
		m.phases[msg.action] = session.Idle
		if msg.err == nil && msg.hash != (common.Hash{}) {
			m.lastTx = msg.hash.Hex()
		}

	case approvalMsg:
		m.pending = append(m.pending, msg)

	case appTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, appTick()
	}
	return m, nil
}

func (m App) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	switch k := msg.String(); k {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "left", "h", "up", "k", "shift+tab":
		m.focus = (m.focus + len(buttons) - 1) % len(buttons)

	case "right", "l", "down", "j", "tab":
		m.focus = (m.focus + 1) % len(buttons)

	case "enter", " ":
		return m.trigger(buttons[m.focus])

	case "backspace":
		if r := []rune(m.amount); len(r) > 0 {
			m.amount = string(r[:len(r)-1])
		}

	case "o":
		switch u := m.network.TxURL(m.lastTx); {
		case m.lastTx == "":
			m.flash = "No transaction yet"
		case u == "":
			m.flash = "No explorer for " + m.network.Name
		default:
			openBrowser(u)
			m.flash = "Opening in browser…"
		}

	case "x":
		for _, h := range m.shown {
			h.Cancel()
		}
		m.shown = nil

	case "c":
		if m.lastTx == "" {
			m.flash = "No transaction yet"
		} else if err := copyToClipboard(m.lastTx); err != nil {
			m.flash = "Copy failed"
		} else {
			m.flash = "Copied: " + TruncateAddr(m.lastTx)
		}

	default:
		if isAmountKey(k) && len(m.amount) < maxAmountLen {
			m.amount += k
		}
	}
	return m, nil
}

func isAmountKey(k string) bool {
	return len(k) == 1 && (k[0] >= '0' && k[0] <= '9' || k[0] == '.')
}

// answer resolves the oldest approval request.
func (m App) answer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	head := m.pending[0]
	switch msg.String() {
	case "y", "Y":
		head.reply <- true
	case "n", "N", "esc":
		head.reply <- false
	case "ctrl+c":
		for _, p := range m.pending {
			p.reply <- false
		}
		m.pending = nil
		m.quitting = true
		return m, tea.Quit
	default:
		return m, nil
	}
	m.pending = m.pending[1:]
	return m, nil
}

// trigger starts action a unless it is already in flight. Different
// actions may run at the same time.
func (m App) trigger(a session.Action) (tea.Model, tea.Cmd) {
	if p := m.phases[a]; p != session.Idle {
		m.flash = buttonTitle(a) + " is already " + p.String()
		return m, nil
	}
	m.phases[a] = session.Requesting

	ctx, actions, amount := m.ctx, m.actions, m.amount
	return m, func() tea.Msg {
		done := actionDoneMsg{action: a}
		switch a {
		case session.ActionConnect:
			done.err = actions.Connect(ctx)
		case session.ActionBalance:
			_, done.err = actions.Balance(ctx)
		case session.ActionFund:
			done.hash, done.err = actions.Fund(ctx, amount)
		case session.ActionWithdraw:
			done.hash, done.err = actions.Withdraw(ctx)
		}
		return done
	}
}

func (m App) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder

	// ── Title ─────────────────────────────────────────────────────────────
	title := fmt.Sprintf("FundMe  ·  %s  ·  %s", m.network.Name, TruncateAddr(m.contract.Hex()))
	sb.WriteString(StyleTitle.Render(title) + "\n")

	// ── Buttons ───────────────────────────────────────────────────────────
	rendered := make([]string, len(buttons))
	for i, a := range buttons {
		rendered[i] = m.button(i, a)
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n")

	// ── Amount ────────────────────────────────────────────────────────────
	amount := StyleMeta.Render("enter an amount in " + m.network.Currency.Symbol)
	if m.amount != "" {
		amount = Val(m.amount)
	}
	sb.WriteString("  " + Meta("Amount to fund:") + " " + amount + StyleInfo.Render("█") + "\n\n")

	// ── Approval ──────────────────────────────────────────────────────────
	if len(m.pending) > 0 {
		req := m.pending[0].req
		sb.WriteString(DangerBox(KeyValueBlock(ApprovalTitle(req.Kind), DescribeApproval(req))) + "\n")
		sb.WriteString(StyleSuccess.Render("  [ y ] approve") + "   " + StyleError.Render("[ n ] reject") + "\n\n")
	}

	// ── Notifications ─────────────────────────────────────────────────────
	for _, n := range m.queue.Active() {
		sb.WriteString("  " + Notice(n.Kind, trimErr(n.Text, 120)) + "\n")
	}

	// ── Controls ──────────────────────────────────────────────────────────
	sb.WriteString("\n")
	if m.flash != "" {
		sb.WriteString(StyleWarning.Render("  " + m.flash))
	} else {
		sb.WriteString(appControls())
	}
	sb.WriteString("\n")
	return sb.String()
}

func (m App) button(i int, a session.Action) string {
	label, ok := m.labels[a]
	if !ok {
		label = buttonTitle(a)
	}
	switch p := m.phases[a]; p {
	case session.Requesting, session.Confirming:
		label += " " + spinnerFrames[m.frame] + " " + p.String()
	}
	if i == m.focus {
		return StyleButtonFocused.Render(label)
	}
	return StyleButton.Render(label)
}

func appControls() string {
	sep := StyleMeta.Render("   ")
	var sb strings.Builder
	sb.WriteString(StyleMeta.Render("[ ←→ ]") + StyleMeta.Render(" select"))
	sb.WriteString(sep)
	sb.WriteString(StyleInfo.Render("[ Enter ]") + StyleMeta.Render(" press"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ 0-9 . ]") + StyleMeta.Render(" amount"))
	sb.WriteString(sep)
	sb.WriteString(StyleInfo.Render("[ o ]") + StyleMeta.Render(" open tx"))
	sb.WriteString(sep)
	sb.WriteString(StyleWarning.Render("[ c ]") + StyleMeta.Render(" copy hash"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ x ]") + StyleMeta.Render(" dismiss"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ q ]") + StyleMeta.Render(" quit"))
	return sb.String()
}

// Run starts the App and blocks until the user quits or ctx is done.
func Run(ctx context.Context, app App, bridge *Bridge) error {
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(p.Send)
	defer bridge.Attach(nil)

	if _, err := p.Run(); err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}
