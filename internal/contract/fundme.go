// Package contract binds the FundMe contract: funding, withdrawal, balance
// reads and confirmation waits, all through the wallet provider.
package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/fundme/internal/provider"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DefaultAddress is where the FundMe contract is deployed unless configured.
const DefaultAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

// FundTag is the fixed tag argument of fund().
const FundTag = 2

// NullAddress is the fixed delegate argument of fund().
var NullAddress = common.Address{}

var (
	// ErrReverted is returned when a transaction executes but fails.
	ErrReverted = errors.New("transaction reverted")
	// ErrNoSigner is returned when a write is attempted without an account.
	ErrNoSigner = errors.New("no signing account")
)

const fundMeABIJSON = `[
  {"type":"function","name":"fund","stateMutability":"payable",
   "inputs":[{"name":"tag","type":"uint256"},{"name":"delegate","type":"address"}],"outputs":[]},
  {"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"getOwner","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"getFunder","stateMutability":"view",
   "inputs":[{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"address"}]}
]`

// ABI is the parsed FundMe interface.
var ABI = mustParseABI(fundMeABIJSON)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("contract: parsing FundMe ABI: %v", err))
	}
	return parsed
}

// Backend is what the binding needs from the wallet. *provider.Browser
// implements it.
type Backend interface {
	BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error)
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	SendTransaction(ctx context.Context, tx provider.TxRequest) (common.Hash, error)
	ReceiptBackend
}

// FundMe is a binding to one deployed FundMe contract.
type FundMe struct {
	address common.Address
	backend Backend
	from    *common.Address
}

// NewFundMe binds the contract at address. The binding is read-only until
// WithSigner is called.
func NewFundMe(address common.Address, backend Backend) *FundMe {
	return &FundMe{address: address, backend: backend}
}

// WithSigner returns a copy of f that sends transactions from account.
func (f *FundMe) WithSigner(account common.Address) *FundMe {
	c := *f
	c.from = &account
	return &c
}

// Address returns the bound contract address.
func (f *FundMe) Address() common.Address { return f.address }

// Balance returns the contract's native balance in wei.
func (f *FundMe) Balance(ctx context.Context) (*big.Int, error) {
	return f.backend.BalanceAt(ctx, f.address)
}

// Fund calls fund(tag, delegate) sending value wei and returns the tx hash.
func (f *FundMe) Fund(ctx context.Context, tag *big.Int, delegate common.Address, value *big.Int) (common.Hash, error) {
	return f.transact(ctx, value, "fund", tag, delegate)
}

// Withdraw calls withdraw() and returns the tx hash.
func (f *FundMe) Withdraw(ctx context.Context) (common.Hash, error) {
	return f.transact(ctx, nil, "withdraw")
}

// Owner calls getOwner().
func (f *FundMe) Owner(ctx context.Context) (common.Address, error) {
	return f.callAddress(ctx, "getOwner")
}

// Funder calls getFunder(index).
func (f *FundMe) Funder(ctx context.Context, index uint64) (common.Address, error) {
	return f.callAddress(ctx, "getFunder", new(big.Int).SetUint64(index))
}

func (f *FundMe) transact(ctx context.Context, value *big.Int, method string, args ...any) (common.Hash, error) {
	if f.from == nil {
		return common.Hash{}, ErrNoSigner
	}
	data, err := ABI.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("packing %s: %w", method, err)
	}
	tx := provider.TxRequest{From: *f.from, To: &f.address, Data: data}
	if value != nil {
		tx.Value = (*hexutil.Big)(value)
	}
	return f.backend.SendTransaction(ctx, tx)
}

func (f *FundMe) callAddress(ctx context.Context, method string, args ...any) (common.Address, error) {
	data, err := ABI.Pack(method, args...)
	if err != nil {
		return common.Address{}, fmt.Errorf("packing %s: %w", method, err)
	}
	out, err := f.backend.Call(ctx, f.address, data)
	if err != nil {
		return common.Address{}, err
	}
	vals, err := ABI.Unpack(method, out)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpacking %s: %w", method, err)
	}
	addr, ok := vals[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unpacking %s: unexpected %T", method, vals[0])
	}
	return addr, nil
}
