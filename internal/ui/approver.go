package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Mohsinsiddi/fundme/internal/chain"
	"github.com/Mohsinsiddi/fundme/internal/contract"
	"github.com/Mohsinsiddi/fundme/internal/provider"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Confirm prompts the user with a yes/no question. Returns true for yes.
func Confirm(prompt string) bool {
	ok, _ := NewPromptApprover(os.Stdin, os.Stdout).ask(context.Background(), StyleWarning.Render(prompt))
	return ok
}

// ConfirmDanger is like Confirm but styled with the error color (for destructive actions).
func ConfirmDanger(prompt string) bool {
	ok, _ := NewPromptApprover(os.Stdin, os.Stdout).ask(context.Background(), StyleError.Render("⚠ "+prompt))
	return ok
}

// PromptApprover asks on a terminal before the local wallet acts.
type PromptApprover struct {
	mu    sync.Mutex
	lines *lineReader
	out   io.Writer
}

// NewPromptApprover reads answers from in and writes prompts to out.
// Approvers on os.Stdin share one reader.
func NewPromptApprover(in io.Reader, out io.Writer) *PromptApprover {
	lines := stdinLines()
	if in != os.Stdin {
		lines = newLineReader(in)
	}
	return &PromptApprover{lines: lines, out: out}
}

// Approve implements provider.Approver.
func (p *PromptApprover) Approve(ctx context.Context, req provider.ApprovalRequest) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, KeyValueBlock(ApprovalTitle(req.Kind), DescribeApproval(req)))
	return p.ask(ctx, StyleWarning.Render("Approve?"))
}

// ask prints prompt and waits for a line. Anything but y/yes is a no.
// Lines typed before the prompt was shown are dropped.
func (p *PromptApprover) ask(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	asked := time.Now()

	lines := p.lines.next()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(p.out)
			return false, ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return false, nil
			}
			if l.at.Before(asked) {
				continue
			}
			if l.err != nil && l.text == "" {
				return false, nil
			}
			answer := strings.TrimSpace(strings.ToLower(l.text))
			return answer == "y" || answer == "yes", nil
		}
	}
}

// lineReader owns the only goroutine reading from in.
type lineReader struct {
	in   *bufio.Reader
	once sync.Once
	ch   chan inputLine
}

type inputLine struct {
	text string
	err  error
	at   time.Time
}

var stdinLines = sync.OnceValue(func() *lineReader { return newLineReader(os.Stdin) })

func newLineReader(in io.Reader) *lineReader {
	return &lineReader{in: bufio.NewReader(in), ch: make(chan inputLine)}
}

// next starts the reader on first use and returns its lines. The channel
// closes after the first read error.
func (r *lineReader) next() <-chan inputLine {
	r.once.Do(func() { go r.loop() })
	return r.ch
}

func (r *lineReader) loop() {
	defer close(r.ch)
	for {
		text, err := r.in.ReadString('\n')
		r.ch <- inputLine{text: text, err: err, at: time.Now()}
		if err != nil {
			return
		}
	}
}

// ApprovalTitle names what is being approved.
func ApprovalTitle(kind provider.ApprovalKind) string {
	switch kind {
	case provider.ApproveAccounts:
		return "Connect account"
	case provider.ApproveSwitch:
		return "Switch network"
	case provider.ApproveAddNetwork:
		return "Add network"
	case provider.ApproveTransaction:
		return "Send transaction"
	case provider.ApproveSign:
		return "Sign message"
	default:
		return string(kind)
	}
}

// DescribeApproval lists the facts a user needs to decide on req.
func DescribeApproval(req provider.ApprovalRequest) [][2]string {
	pairs := [][2]string{{"Account", req.Account.Hex()}}
	net := func() {
		pairs = append(pairs,
			[2]string{"Network", fmt.Sprintf("%s (%d)", req.Network.Name, req.Network.ChainID)})
	}

	switch req.Kind {
	case provider.ApproveSwitch:
		net()
	case provider.ApproveAddNetwork:
		net()
		pairs = append(pairs, [2]string{"Currency", req.Network.Currency.Symbol})
		if len(req.Network.RPCURLs) > 0 {
			pairs = append(pairs, [2]string{"RPC", req.Network.RPCURLs[0]})
		}
		if e := req.Network.Explorer(); e != "" {
			pairs = append(pairs, [2]string{"Explorer", e})
		}
	case provider.ApproveTransaction:
		net()
		pairs = append(pairs, describeTx(req)...)
	case provider.ApproveSign:
		pairs = append(pairs, [2]string{"Message", describeMessage(req.Message)})
	}
	return pairs
}

func describeTx(req provider.ApprovalRequest) [][2]string {
	var pairs [][2]string
	tx := req.Tx
	if tx == nil {
		return nil
	}
	to := "(contract creation)"
	if tx.To != nil {
		to = tx.To.Hex()
	}
	pairs = append(pairs, [2]string{"To", to})

	symbol := req.Network.Currency.Symbol
	value := "0.0"
	if tx.Value != nil {
		value = chain.FormatEther(tx.Value.ToInt())
	}
	pairs = append(pairs, [2]string{"Value", value + " " + symbol})

	if len(tx.Data) >= 4 {
		call := hexutil.Encode(tx.Data[:4])
		if m, ok := contract.Lookup(call); ok {
			call = m.Signature
		}
		pairs = append(pairs, [2]string{"Call", call})
	}
	if req.MaxCost != nil {
		pairs = append(pairs, [2]string{"Max cost", chain.FormatEther(req.MaxCost) + " " + symbol})
	}
	return pairs
}

func describeMessage(msg []byte) string {
	if utf8.Valid(msg) {
		return clip(string(msg), 60)
	}
	return clip(hexutil.Encode(msg), 60)
}
