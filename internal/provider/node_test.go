package provider_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/fundme/internal/provider"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// handler answers one JSON-RPC method. Returning a non-nil *RPCError sends
// an error object instead of a result.
type handler func(params []json.RawMessage) (any, *provider.RPCError)

// fakeNode is an httptest JSON-RPC server with per-method handlers.
type fakeNode struct {
	srv *httptest.Server

	mu       sync.Mutex
	handlers map[string]handler
	calls    []string
	raw      []*types.Transaction
}

func newFakeNode(t *testing.T) *fakeNode {
	t.Helper()
	n := &fakeNode{handlers: make(map[string]handler)}
	n.srv = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.srv.Close)
	return n
}

func (n *fakeNode) URL() string { return n.srv.URL }

func (n *fakeNode) on(method string, h handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = h
}

// result registers a constant result for method.
func (n *fakeNode) result(method string, v any) {
	n.on(method, func([]json.RawMessage) (any, *provider.RPCError) { return v, nil })
}

func (n *fakeNode) fail(method string, code int, msg string) {
	n.on(method, func([]json.RawMessage) (any, *provider.RPCError) {
		return nil, &provider.RPCError{Code: code, Message: msg}
	})
}

func (n *fakeNode) called(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, m := range n.calls {
		if m == method {
			c++
		}
	}
	return c
}

func (n *fakeNode) sent() []*types.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*types.Transaction(nil), n.raw...)
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls = append(n.calls, req.Method)
	h, ok := n.handlers[req.Method]
	n.mu.Unlock()

	if req.Method == "eth_sendRawTransaction" && !ok {
		h, ok = n.acceptRaw, true
	}

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32601,"message":"method %s not found"}}`, req.ID, req.Method)
		return
	}
	res, rpcErr := h(req.Params)
	if rpcErr != nil {
		body, _ := json.Marshal(map[string]any{"code": rpcErr.Code, "message": rpcErr.Message})
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":%s}`, req.ID, body)
		return
	}
	body, _ := json.Marshal(res)
	fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, body)
}

// acceptRaw decodes a signed transaction, records it and returns its hash.
func (n *fakeNode) acceptRaw(params []json.RawMessage) (any, *provider.RPCError) {
	var hexTx string
	if len(params) == 0 || json.Unmarshal(params[0], &hexTx) != nil {
		return nil, &provider.RPCError{Code: -32602, Message: "missing tx"}
	}
	raw, err := hexutil.Decode(hexTx)
	if err != nil {
		return nil, &provider.RPCError{Code: -32602, Message: err.Error()}
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, &provider.RPCError{Code: -32602, Message: err.Error()}
	}
	n.mu.Lock()
	n.raw = append(n.raw, tx)
	n.mu.Unlock()
	return tx.Hash(), nil
}

// header returns a minimal block header accepted by go-ethereum's decoder.
func header(number uint64, baseFee string) map[string]any {
	zero32 := "0x" + strings.Repeat("0", 64)
	h := map[string]any{
		"parentHash":       zero32,
		"sha3Uncles":       zero32,
		"miner":            "0x0000000000000000000000000000000000000000",
		"stateRoot":        zero32,
		"transactionsRoot": zero32,
		"receiptsRoot":     zero32,
		"logsBloom":        "0x" + strings.Repeat("0", 512),
		"difficulty":       "0x0",
		"number":           fmt.Sprintf("0x%x", number),
		"gasLimit":         "0x1c9c380",
		"gasUsed":          "0x0",
		"timestamp":        "0x6553f100",
		"extraData":        "0x",
		"mixHash":          zero32,
		"nonce":            "0x0000000000000000",
	}
	if baseFee != "" {
		h["baseFeePerGas"] = baseFee
	}
	return h
}
