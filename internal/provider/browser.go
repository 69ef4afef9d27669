package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/fundme/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TxRequest is the eth_sendTransaction parameter. The wallet fills in
// nonce, gas and fees when they are omitted.
type TxRequest struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
}

// Receipt is the subset of a transaction receipt the front end reads.
type Receipt struct {
	TxHash      common.Hash    `json:"transactionHash"`
	Status      hexutil.Uint64 `json:"status"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	GasUsed     hexutil.Uint64 `json:"gasUsed"`
}

// Succeeded reports whether the transaction executed without reverting.
func (r *Receipt) Succeeded() bool { return r.Status == 1 }

// Browser wraps a Provider with typed helpers, the way a browser-side
// contract library wraps the injected wallet object.
type Browser struct {
	p Provider
}

// NewBrowser wraps p.
func NewBrowser(p Provider) *Browser { return &Browser{p: p} }

// RequestAccounts asks the wallet for account access and returns the
// authorized accounts.
func (b *Browser) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	return b.accounts(ctx, MethodRequestAccounts)
}

// Accounts returns the accounts the wallet has already authorized.
func (b *Browser) Accounts(ctx context.Context) ([]common.Address, error) {
	return b.accounts(ctx, MethodAccounts)
}

// ChainID returns the wallet's active chain.
func (b *Browser) ChainID(ctx context.Context) (int64, error) {
	var hex string
	if err := b.call(ctx, &hex, MethodChainID); err != nil {
		return 0, err
	}
	return chain.ParseChainID(hex)
}

// SwitchChain asks the wallet to make id the active chain.
func (b *Browser) SwitchChain(ctx context.Context, id int64) error {
	_, err := b.p.Request(ctx, MethodSwitchChain, chain.SwitchChainParams{
		ChainID: hexutil.EncodeUint64(uint64(id)),
	})
	return err
}

// AddChain asks the wallet to register n. Wallets switch to it on success.
func (b *Browser) AddChain(ctx context.Context, n chain.Network) error {
	_, err := b.p.Request(ctx, MethodAddChain, n.AddChainParams())
	return err
}

// BalanceAt returns the latest native balance of addr in wei.
func (b *Browser) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	var bal hexutil.Big
	if err := b.call(ctx, &bal, MethodGetBalance, addr, "latest"); err != nil {
		return nil, err
	}
	return bal.ToInt(), nil
}

// BlockNumber returns the wallet's view of the chain head.
func (b *Browser) BlockNumber(ctx context.Context) (uint64, error) {
	var n hexutil.Uint64
	if err := b.call(ctx, &n, MethodBlockNumber); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// Call runs a read-only contract call against the latest block.
func (b *Browser) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	var out hexutil.Bytes
	msg := map[string]any{"to": to, "data": hexutil.Bytes(data)}
	if err := b.call(ctx, &out, MethodCall, msg, "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

// SendTransaction hands tx to the wallet for signing and broadcast.
func (b *Browser) SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error) {
	var h common.Hash
	if err := b.call(ctx, &h, MethodSendTransaction, tx); err != nil {
		return common.Hash{}, err
	}
	return h, nil
}

// TransactionReceipt returns the receipt for hash, or nil, nil while the
// transaction is still pending.
func (b *Browser) TransactionReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	raw, err := b.p.Request(ctx, MethodGetReceipt, hash)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, nil
	}
	var r Receipt
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("parsing receipt: %w", err)
	}
	return &r, nil
}

func (b *Browser) accounts(ctx context.Context, method string) ([]common.Address, error) {
	var accts []common.Address
	if err := b.call(ctx, &accts, method); err != nil {
		return nil, err
	}
	return accts, nil
}

func (b *Browser) call(ctx context.Context, out any, method string, params ...any) error {
	raw, err := b.p.Request(ctx, method, params...)
	if err != nil {
		return err
	}
	if isNull(raw) {
		return fmt.Errorf("%s: empty result", method)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: parsing result: %w", method, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
