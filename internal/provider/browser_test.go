package provider_test

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/fundme/internal/chain"
	"github.com/Mohsinsiddi/fundme/internal/provider"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	params []any
}

// scripted is a Provider answering from fixed raw results.
type scripted struct {
	results map[string]string
	errs    map[string]error
	calls   []recorded
}

func (s *scripted) Request(_ context.Context, method string, params ...any) (json.RawMessage, error) {
	s.calls = append(s.calls, recorded{method, params})
	if err := s.errs[method]; err != nil {
		return nil, err
	}
	res, ok := s.results[method]
	if !ok {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(res), nil
}

func TestBrowserChainID(t *testing.T) {
	p := &scripted{results: map[string]string{provider.MethodChainID: `"0xaa36a7"`}}
	id, err := provider.NewBrowser(p).ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(11155111), id)
}

func TestBrowserRequestAccounts(t *testing.T) {
	p := &scripted{results: map[string]string{
		provider.MethodRequestAccounts: `["0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"]`,
	}}
	accts, err := provider.NewBrowser(p).RequestAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accts, 1)
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), accts[0])
}

func TestBrowserSwitchChainParams(t *testing.T) {
	p := &scripted{}
	require.NoError(t, provider.NewBrowser(p).SwitchChain(context.Background(), 11155111))

	require.Len(t, p.calls, 1)
	assert.Equal(t, provider.MethodSwitchChain, p.calls[0].method)
	raw, err := json.Marshal(p.calls[0].params[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"chainId":"0xaa36a7"}`, string(raw))
}

func TestBrowserAddChainParams(t *testing.T) {
	p := &scripted{}
	require.NoError(t, provider.NewBrowser(p).AddChain(context.Background(), chain.Target()))

	require.Len(t, p.calls, 1)
	raw, err := json.Marshal(p.calls[0].params[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"chainId": "0xaa36a7",
		"chainName": "Sepolia Testnet",
		"nativeCurrency": {"name": "Sepolia Ether", "symbol": "SEP", "decimals": 18},
		"rpcUrls": ["https://rpc.sepolia.org"],
		"blockExplorerUrls": ["https://sepolia.etherscan.io"]
	}`, string(raw))
}

func TestBrowserBalanceAt(t *testing.T) {
	p := &scripted{results: map[string]string{provider.MethodGetBalance: `"0x14d1120d7b160000"`}}
	addr := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

	bal, err := provider.NewBrowser(p).BalanceAt(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", bal.String())
	assert.Equal(t, []any{addr, "latest"}, p.calls[0].params)
}

func TestBrowserBalanceEmptyResult(t *testing.T) {
	_, err := provider.NewBrowser(&scripted{}).BalanceAt(context.Background(), common.Address{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty result")
}

func TestBrowserSendTransaction(t *testing.T) {
	hash := "0xab" + strings.Repeat("0", 62)
	p := &scripted{results: map[string]string{provider.MethodSendTransaction: `"` + hash + `"`}}
	to := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

	got, err := provider.NewBrowser(p).SendTransaction(context.Background(), provider.TxRequest{
		From:  common.HexToAddress("0x01"),
		To:    &to,
		Value: (*hexutil.Big)(big.NewInt(1)),
		Data:  hexutil.Bytes{0x3c, 0xcf, 0xd6, 0x0b},
	})
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash(hash), got)

	raw, err := json.Marshal(p.calls[0].params[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"from": "0x0000000000000000000000000000000000000001",
		"to": "0x5fbdb2315678afecb367f032d93f642f64180aa3",
		"value": "0x1",
		"data": "0x3ccfd60b"
	}`, string(raw))
}

func TestBrowserReceiptPending(t *testing.T) {
	r, err := provider.NewBrowser(&scripted{}).TransactionReceipt(context.Background(), common.Hash{})
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestBrowserReceipt(t *testing.T) {
	p := &scripted{results: map[string]string{provider.MethodGetReceipt: `{
		"transactionHash": "0x0000000000000000000000000000000000000000000000000000000000000001",
		"status": "0x0",
		"blockNumber": "0x10",
		"gasUsed": "0x5208"
	}`}}
	r, err := provider.NewBrowser(p).TransactionReceipt(context.Background(), common.Hash{})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.False(t, r.Succeeded())
	assert.Equal(t, uint64(16), uint64(r.BlockNumber))
	assert.Equal(t, uint64(21000), uint64(r.GasUsed))
}

func TestBrowserPassesErrorsThrough(t *testing.T) {
	p := &scripted{errs: map[string]error{provider.MethodRequestAccounts: provider.Errorf(4001, "rejected")}}
	_, err := provider.NewBrowser(p).RequestAccounts(context.Background())
	assert.True(t, provider.IsUserRejected(err))
}
