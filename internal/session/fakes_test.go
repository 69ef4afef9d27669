package session

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/fundme/internal/chain"
	"github.com/Mohsinsiddi/fundme/internal/notify"
	"github.com/Mohsinsiddi/fundme/internal/provider"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
)

var testAccount = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

type call struct {
	method string
	params []any
}

// fakeWallet is an in-memory EIP-1193 wallet. Methods listed in errs fail
// with the given error; everything else behaves like a cooperative wallet.
type fakeWallet struct {
	mu       sync.Mutex
	chainID  int64
	accounts []common.Address
	balance  *big.Int
	status   uint64 // receipt status, 1 unless set
	pending  int    // receipt polls returning null before the receipt
	head     uint64
	errs     map[string]error
	calls    []call
	sent     []provider.TxRequest
}

func newFakeWallet(chainID int64) *fakeWallet {
	return &fakeWallet{
		chainID:  chainID,
		accounts: []common.Address{testAccount},
		balance:  new(big.Int),
		status:   1,
		head:     100,
		errs:     map[string]error{},
	}
}

func (w *fakeWallet) fail(method string, code int, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errs[method] = provider.Errorf(code, "%s", msg)
}

func (w *fakeWallet) count(method string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, c := range w.calls {
		if c.method == method {
			n++
		}
	}
	return n
}

func (w *fakeWallet) paramsOf(t *testing.T, method string) []any {
	t.Helper()
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range w.calls {
		if c.method == method {
			return c.params
		}
	}
	t.Fatalf("%s was not called", method)
	return nil
}

func (w *fakeWallet) Request(_ context.Context, method string, params ...any) (json.RawMessage, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, call{method, params})
	if err := w.errs[method]; err != nil {
		return nil, err
	}

	var res any
	switch method {
	case provider.MethodRequestAccounts, provider.MethodAccounts:
		res = w.accounts
	case provider.MethodChainID:
		res = hexutil.EncodeUint64(uint64(w.chainID))
	case provider.MethodSwitchChain, provider.MethodAddChain:
		raw, _ := json.Marshal(params[0])
		var p struct {
			ChainID string `json:"chainId"`
		}
		_ = json.Unmarshal(raw, &p)
		id, err := chain.ParseChainID(p.ChainID)
		if err != nil {
			return nil, provider.Errorf(provider.CodeInvalidParams, "%v", err)
		}
		w.chainID = id
	case provider.MethodGetBalance:
		res = (*hexutil.Big)(w.balance)
	case provider.MethodSendTransaction:
		raw, _ := json.Marshal(params[0])
		var tx provider.TxRequest
		if err := json.Unmarshal(raw, &tx); err != nil {
			return nil, err
		}
		w.sent = append(w.sent, tx)
		res = common.BigToHash(big.NewInt(int64(len(w.sent))))
	case provider.MethodGetReceipt:
		if w.pending > 0 {
			w.pending--
			break
		}
		res = map[string]any{
			"transactionHash": params[0],
			"status":          hexutil.Uint64(w.status),
			"blockNumber":     hexutil.Uint64(w.head),
			"gasUsed":         hexutil.Uint64(21000),
		}
	case provider.MethodBlockNumber:
		res = hexutil.Uint64(w.head)
	default:
		return nil, provider.Errorf(provider.CodeUnsupportedMethod, "unsupported %s", method)
	}
	return json.Marshal(res)
}

type note struct {
	kind notify.Kind
	text string
}

// recordingSink captures everything the controller reports.
type recordingSink struct {
	mu     sync.Mutex
	labels map[Action]string
	notes  []note
	phases map[Action][]Phase
}

func newRecordingSink() *recordingSink {
	return &recordingSink{labels: map[Action]string{}, phases: map[Action][]Phase{}}
}

func (s *recordingSink) SetLabel(a Action, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels[a] = label
}

func (s *recordingSink) Notify(kind notify.Kind, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, note{kind, text})
}

func (s *recordingSink) Progress(a Action, p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phases[a] = append(s.phases[a], p)
}

func (s *recordingSink) only(t *testing.T) note {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.notes, 1, "exactly one notification per action: %v", s.notes)
	return s.notes[0]
}

func (s *recordingSink) label(a Action) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.labels[a]
	return l, ok
}

// countingBinder wraps the real binding and counts how often it is used.
type countingBinder struct {
	mu    sync.Mutex
	binds int
}

func (b *countingBinder) bind(w *provider.Browser, addr common.Address, from *common.Address) Contract {
	b.mu.Lock()
	b.binds++
	b.mu.Unlock()
	return bindFundMe(w, addr, from)
}

func (b *countingBinder) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.binds
}

func ether(s string) *big.Int {
	v, err := chain.ParseEther(s)
	if err != nil {
		panic(fmt.Sprintf("bad ether literal %q: %v", s, err))
	}
	return v
}
