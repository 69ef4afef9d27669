package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"

	"github.com/Mohsinsiddi/fundme/internal/chain"
	fundrpc "github.com/Mohsinsiddi/fundme/internal/rpc"
	"github.com/Mohsinsiddi/fundme/internal/wallet"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"
)

// ApprovalKind says what the user is being asked to approve.
type ApprovalKind string

const (
	ApproveAccounts    ApprovalKind = "accounts"
	ApproveSwitch      ApprovalKind = "switch-network"
	ApproveAddNetwork  ApprovalKind = "add-network"
	ApproveTransaction ApprovalKind = "transaction"
	ApproveSign        ApprovalKind = "sign"
)

// ApprovalRequest is shown to the user before the local wallet acts.
type ApprovalRequest struct {
	Kind    ApprovalKind
	Account common.Address
	Network chain.Network
	Tx      *TxRequest
	MaxCost *big.Int // gas limit * fee cap + value, transactions only
	Message []byte
}

// Approver asks the user to confirm a wallet action.
type Approver interface {
	Approve(ctx context.Context, req ApprovalRequest) (bool, error)
}

// ApproverFunc adapts a function to Approver.
type ApproverFunc func(ctx context.Context, req ApprovalRequest) (bool, error)

// Approve implements Approver.
func (f ApproverFunc) Approve(ctx context.Context, req ApprovalRequest) (bool, error) {
	return f(ctx, req)
}

// NetworkStore persists the wallet's active chain and user-added networks.
type NetworkStore interface {
	SaveNetworks(active int64, added []chain.Network) error
}

// forwarded methods are answered by the active network's RPC node.
var forwarded = map[string]bool{
	MethodGetBalance:           true,
	MethodBlockNumber:          true,
	MethodGetReceipt:           true,
	MethodCall:                 true,
	"eth_estimateGas":          true,
	"eth_gasPrice":             true,
	"eth_maxPriorityFeePerGas": true,
	"eth_feeHistory":           true,
	"eth_getCode":              true,
	"eth_getTransactionByHash": true,
	"eth_getTransactionCount":  true,
	"eth_getBlockByNumber":     true,
	"eth_getStorageAt":         true,
}

// Local is an in-process wallet: it holds one signing account, a set of
// known networks and an active chain, and asks an Approver before exposing
// the account, changing networks or signing.
type Local struct {
	signer   *wallet.Signer
	approver Approver
	networks *chain.Registry
	store    NetworkStore
	algo     string
	log      zerolog.Logger

	mu         sync.Mutex
	active     int64
	authorized bool
	added      []chain.Network
	clients    map[int64]*rpc.Client
}

// LocalOption configures a Local provider.
type LocalOption func(*Local)

// WithApprover sets who confirms wallet actions. Without one every request
// needing approval is rejected.
func WithApprover(a Approver) LocalOption { return func(l *Local) { l.approver = a } }

// WithRegistry replaces the built-in network list.
func WithRegistry(r *chain.Registry) LocalOption { return func(l *Local) { l.networks = r } }

// WithActiveChain sets the chain the wallet starts on.
func WithActiveChain(id int64) LocalOption { return func(l *Local) { l.active = id } }

// WithAddedNetworks restores networks registered in an earlier session.
func WithAddedNetworks(nets []chain.Network) LocalOption {
	return func(l *Local) { l.added = append(l.added, nets...) }
}

// WithNetworkStore persists network changes.
func WithNetworkStore(s NetworkStore) LocalOption { return func(l *Local) { l.store = s } }

// WithRPCAlgorithm picks how the node of a multi-RPC network is chosen.
func WithRPCAlgorithm(algo string) LocalOption { return func(l *Local) { l.algo = algo } }

// WithLocalLogger sets the logger.
func WithLocalLogger(log zerolog.Logger) LocalOption { return func(l *Local) { l.log = log } }

// NewLocal creates a wallet provider that signs with s.
func NewLocal(s *wallet.Signer, opts ...LocalOption) *Local {
	l := &Local{
		signer:   s,
		approver: ApproverFunc(func(context.Context, ApprovalRequest) (bool, error) { return false, nil }),
		active:   1,
		log:      zerolog.Nop(),
		clients:  make(map[int64]*rpc.Client),
	}
	for _, o := range opts {
		o(l)
	}
	if l.networks == nil {
		l.networks = chain.NewDefaultRegistry()
	}
	valid := l.added[:0]
	for _, n := range l.added {
		if err := l.networks.Add(n); err != nil {
			l.log.Warn().Err(err).Int64("chain_id", n.ChainID).Msg("ignoring saved network")
			continue
		}
		valid = append(valid, n)
	}
	l.added = valid
	if !l.networks.Has(l.active) {
		l.log.Warn().Int64("chain_id", l.active).Msg("saved chain unknown, falling back to mainnet")
		l.active = 1
	}
	return l
}

// Address returns the wallet account.
func (l *Local) Address() common.Address { return l.signer.Address() }

// ActiveChain returns the active chain ID.
func (l *Local) ActiveChain() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Close drops cached RPC connections.
func (l *Local) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, c := range l.clients {
		c.Close()
		delete(l.clients, id)
	}
}

// Request implements Provider.
func (l *Local) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	l.log.Debug().Str("method", method).Msg("wallet request")

	var (
		result any
		err    error
	)
	switch method {
	case MethodRequestAccounts:
		result, err = l.requestAccounts(ctx)
	case MethodAccounts:
		result = l.accounts()
	case MethodChainID:
		result = hexutil.EncodeUint64(uint64(l.ActiveChain()))
	case "net_version":
		result = strconv.FormatInt(l.ActiveChain(), 10)
	case MethodSwitchChain:
		err = l.switchChain(ctx, params)
	case MethodAddChain:
		err = l.addChain(ctx, params)
	case MethodSendTransaction:
		result, err = l.sendTransaction(ctx, params)
	case MethodPersonalSign:
		result, err = l.personalSign(ctx, params)
	default:
		if !forwarded[method] {
			return nil, Errorf(CodeUnsupportedMethod, "method %s is not supported", method)
		}
		return l.forward(ctx, method, params)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

func (l *Local) requestAccounts(ctx context.Context) ([]common.Address, error) {
	l.mu.Lock()
	ok := l.authorized
	l.mu.Unlock()
	if !ok {
		if err := l.approve(ctx, ApprovalRequest{Kind: ApproveAccounts, Account: l.Address()}); err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.authorized = true
		l.mu.Unlock()
	}
	return []common.Address{l.Address()}, nil
}

func (l *Local) accounts() []common.Address {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.authorized {
		return []common.Address{}
	}
	return []common.Address{l.signer.Address()}
}

func (l *Local) switchChain(ctx context.Context, params []any) error {
	var p chain.SwitchChainParams
	if err := decodeParam(params, 0, &p); err != nil {
		return err
	}
	id, err := chain.ParseChainID(p.ChainID)
	if err != nil {
		return Errorf(CodeInvalidParams, "%v", err)
	}
	net, err := l.networks.Get(id)
	if err != nil {
		return Errorf(CodeUnrecognizedChain,
			"Unrecognized chain ID %q. Try adding the chain using wallet_addEthereumChain first.", p.ChainID)
	}
	if id == l.ActiveChain() {
		return nil
	}
	if err := l.approve(ctx, ApprovalRequest{Kind: ApproveSwitch, Account: l.Address(), Network: net}); err != nil {
		return err
	}
	l.setActive(id, nil)
	return nil
}

func (l *Local) addChain(ctx context.Context, params []any) error {
	var p chain.AddChainParams
	if err := decodeParam(params, 0, &p); err != nil {
		return err
	}
	net, err := p.Network()
	if err != nil {
		return Errorf(CodeInvalidParams, "%v", err)
	}
	if l.networks.Has(net.ChainID) {
		return l.switchChain(ctx, []any{chain.SwitchChainParams{ChainID: net.HexChainID()}})
	}
	if err := l.approve(ctx, ApprovalRequest{Kind: ApproveAddNetwork, Account: l.Address(), Network: net}); err != nil {
		return err
	}
	if err := l.networks.Add(net); err != nil {
		return Errorf(CodeInvalidParams, "%v", err)
	}
	l.log.Info().Int64("chain_id", net.ChainID).Str("name", net.Name).Msg("network added")
	l.setActive(net.ChainID, &net)
	return nil
}

// setActive switches chains and persists the change. added is non-nil when
// the chain was just registered.
func (l *Local) setActive(id int64, added *chain.Network) {
	l.mu.Lock()
	l.active = id
	if added != nil {
		l.added = append(l.added, *added)
	}
	saved := append([]chain.Network(nil), l.added...)
	l.mu.Unlock()

	l.log.Info().Int64("chain_id", id).Msg("active network changed")
	if l.store == nil {
		return
	}
	if err := l.store.SaveNetworks(id, saved); err != nil {
		l.log.Warn().Err(err).Msg("saving networks")
	}
}

func (l *Local) sendTransaction(ctx context.Context, params []any) (common.Hash, error) {
	l.mu.Lock()
	authorized, chainID := l.authorized, l.active
	l.mu.Unlock()
	if !authorized {
		return common.Hash{}, Errorf(CodeUnauthorized, "account access has not been granted")
	}

	var req TxRequest
	if err := decodeParam(params, 0, &req); err != nil {
		return common.Hash{}, err
	}
	if req.From != l.Address() {
		return common.Hash{}, Errorf(CodeInvalidParams, "from %s is not the wallet account", req.From.Hex())
	}

	net, err := l.networks.Get(chainID)
	if err != nil {
		return common.Hash{}, Errorf(CodeChainDisconnected, "%v", err)
	}
	rc, err := l.client(ctx, net)
	if err != nil {
		return common.Hash{}, err
	}
	ec := ethclient.NewClient(rc)

	tx, err := l.buildTx(ctx, ec, big.NewInt(chainID), req)
	if err != nil {
		return common.Hash{}, fromRPC(err)
	}

	cost := new(big.Int).Mul(new(big.Int).SetUint64(tx.Gas()), tx.GasFeeCap())
	cost.Add(cost, tx.Value())
	if err := l.approve(ctx, ApprovalRequest{
		Kind: ApproveTransaction, Account: req.From, Network: net, Tx: &req, MaxCost: cost,
	}); err != nil {
		return common.Hash{}, err
	}

	signed, err := l.signer.SignTx(tx, big.NewInt(chainID))
	if err != nil {
		return common.Hash{}, Errorf(CodeInternal, "%v", err)
	}
	if err := ec.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fromRPC(err)
	}
	l.log.Info().Str("hash", signed.Hash().Hex()).Uint64("nonce", tx.Nonce()).Msg("transaction sent")
	return signed.Hash(), nil
}

// buildTx fills nonce, gas and fees. Chains without a base fee get a legacy
// transaction.
func (l *Local) buildTx(ctx context.Context, ec *ethclient.Client, chainID *big.Int, req TxRequest) (*types.Transaction, error) {
	from := req.From
	value := new(big.Int)
	if req.Value != nil {
		value = req.Value.ToInt()
	}

	nonce, err := ec.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}

	var gas uint64
	if req.Gas != nil {
		gas = uint64(*req.Gas)
	} else {
		gas, err = ec.EstimateGas(ctx, ethereum.CallMsg{From: from, To: req.To, Value: value, Data: req.Data})
		if err != nil {
			return nil, fmt.Errorf("estimating gas: %w", err)
		}
	}

	head, err := ec.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("getting head: %w", err)
	}
	if head.BaseFee == nil {
		price, err := ec.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting gas price: %w", err)
		}
		return types.NewTx(&types.LegacyTx{
			Nonce: nonce, GasPrice: price, Gas: gas, To: req.To, Value: value, Data: req.Data,
		}), nil
	}

	tip, err := ec.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting tip: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        req.To,
		Value:     value,
		Data:      req.Data,
	}), nil
}

func (l *Local) personalSign(ctx context.Context, params []any) (hexutil.Bytes, error) {
	var msgParam string
	if err := decodeParam(params, 0, &msgParam); err != nil {
		return nil, err
	}
	var addr common.Address
	if err := decodeParam(params, 1, &addr); err != nil {
		return nil, err
	}
	if addr != l.Address() {
		return nil, Errorf(CodeUnauthorized, "address %s is not the wallet account", addr.Hex())
	}

	msg := []byte(msgParam)
	if strings.HasPrefix(msgParam, "0x") {
		if b, err := hexutil.Decode(msgParam); err == nil {
			msg = b
		}
	}
	if err := l.approve(ctx, ApprovalRequest{Kind: ApproveSign, Account: addr, Message: msg}); err != nil {
		return nil, err
	}
	sig, err := l.signer.SignMessage(msg)
	if err != nil {
		return nil, Errorf(CodeInternal, "%v", err)
	}
	return sig, nil
}

func (l *Local) forward(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	net, err := l.networks.Get(l.ActiveChain())
	if err != nil {
		return nil, Errorf(CodeChainDisconnected, "%v", err)
	}
	c, err := l.client(ctx, net)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := c.CallContext(ctx, &out, method, params...); err != nil {
		return nil, fromRPC(err)
	}
	return out, nil
}

// client returns a cached connection to net's best RPC endpoint.
func (l *Local) client(ctx context.Context, net chain.Network) (*rpc.Client, error) {
	l.mu.Lock()
	c, ok := l.clients[net.ChainID]
	l.mu.Unlock()
	if ok {
		return c, nil
	}

	url, err := fundrpc.SelectBest(ctx, net, l.algo)
	if err != nil {
		return nil, Errorf(CodeChainDisconnected, "%s: %v", net.Name, err)
	}
	c, err = rpc.DialContext(ctx, url)
	if err != nil {
		return nil, Errorf(CodeChainDisconnected, "dialing %s: %v", url, err)
	}
	l.log.Debug().Int64("chain_id", net.ChainID).Str("rpc", url).Msg("rpc selected")

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.clients[net.ChainID]; ok {
		c.Close()
		return existing, nil
	}
	l.clients[net.ChainID] = c
	return c, nil
}

// approve maps a denial to a 4001 error.
func (l *Local) approve(ctx context.Context, req ApprovalRequest) error {
	ok, err := l.approver.Approve(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return Errorf(CodeUserRejected, "approval failed: %v", err)
	}
	if !ok {
		return Errorf(CodeUserRejected, "User rejected the request.")
	}
	return nil
}
