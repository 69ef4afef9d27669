package chain

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// ErrInvalidNetwork is returned when a network descriptor is incomplete.
var ErrInvalidNetwork = errors.New("invalid network descriptor")

// NativeCurrency describes a chain's native coin.
type NativeCurrency struct {
	Name     string `json:"name"     mapstructure:"name"`
	Symbol   string `json:"symbol"   mapstructure:"symbol"`
	Decimals int    `json:"decimals" mapstructure:"decimals"`
}

// Network holds everything a wallet needs to register and use an EVM chain.
type Network struct {
	ChainID      int64          `json:"chain_id"      mapstructure:"chain_id"`
	Name         string         `json:"name"          mapstructure:"name"`
	Currency     NativeCurrency `json:"currency"      mapstructure:"currency"`
	RPCURLs      []string       `json:"rpc_urls"      mapstructure:"rpc_urls"`
	ExplorerURLs []string       `json:"explorer_urls" mapstructure:"explorer_urls"`
}

// Sepolia is the network the front end is hard-wired to.
var Sepolia = Network{
	ChainID: 11155111,
	Name:    "Sepolia Testnet",
	Currency: NativeCurrency{
		Name:     "Sepolia Ether",
		Symbol:   "SEP",
		Decimals: 18,
	},
	RPCURLs:      []string{"https://rpc.sepolia.org"},
	ExplorerURLs: []string{"https://sepolia.etherscan.io"},
}

// Target returns a copy of the fixed target network descriptor.
func Target() Network {
	n := Sepolia
	n.RPCURLs = slices.Clone(Sepolia.RPCURLs)
	n.ExplorerURLs = slices.Clone(Sepolia.ExplorerURLs)
	return n
}

// HexChainID returns the chain ID as a 0x-prefixed quantity, e.g. "0xaa36a7".
func (n Network) HexChainID() string {
	return hexutil.EncodeUint64(uint64(n.ChainID))
}

// Explorer returns the first explorer URL, or "" if none.
func (n Network) Explorer() string {
	if len(n.ExplorerURLs) == 0 {
		return ""
	}
	return strings.TrimRight(n.ExplorerURLs[0], "/")
}

// TxURL links a transaction hash on the network's explorer.
func (n Network) TxURL(hash string) string {
	if e := n.Explorer(); e != "" {
		return e + "/tx/" + hash
	}
	return ""
}

// Validate checks the fields a wallet requires before registering a network.
func (n Network) Validate() error {
	switch {
	case n.ChainID <= 0:
		return fmt.Errorf("%w: chain id must be positive", ErrInvalidNetwork)
	case strings.TrimSpace(n.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidNetwork)
	case len(n.RPCURLs) == 0:
		return fmt.Errorf("%w: at least one rpc url is required", ErrInvalidNetwork)
	case n.Currency.Symbol == "":
		return fmt.Errorf("%w: native currency symbol is required", ErrInvalidNetwork)
	case n.Currency.Decimals != 18:
		return fmt.Errorf("%w: native currency must have 18 decimals, got %d", ErrInvalidNetwork, n.Currency.Decimals)
	}
	return nil
}

// SwitchChainParams is the single parameter of wallet_switchEthereumChain.
type SwitchChainParams struct {
	ChainID string `json:"chainId"`
}

// AddChainParams is the single parameter of wallet_addEthereumChain (EIP-3085).
type AddChainParams struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls,omitempty"`
}

// AddChainParams renders the descriptor in the EIP-3085 wire shape.
func (n Network) AddChainParams() AddChainParams {
	return AddChainParams{
		ChainID:           n.HexChainID(),
		ChainName:         n.Name,
		NativeCurrency:    n.Currency,
		RPCURLs:           slices.Clone(n.RPCURLs),
		BlockExplorerURLs: slices.Clone(n.ExplorerURLs),
	}
}

// Network converts EIP-3085 parameters back into a descriptor.
func (p AddChainParams) Network() (Network, error) {
	id, err := ParseChainID(p.ChainID)
	if err != nil {
		return Network{}, err
	}
	n := Network{
		ChainID:      id,
		Name:         p.ChainName,
		Currency:     p.NativeCurrency,
		RPCURLs:      slices.Clone(p.RPCURLs),
		ExplorerURLs: slices.Clone(p.BlockExplorerURLs),
	}
	return n, n.Validate()
}

// ParseChainID accepts a 0x-prefixed hex quantity or a decimal string.
func ParseChainID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty chain id")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := hexutil.DecodeUint64(strings.ToLower(s))
		if err != nil {
			return 0, fmt.Errorf("invalid chain id %q: %w", s, err)
		}
		return int64(v), nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", s, err)
	}
	return v, nil
}

// Registry is the set of networks a wallet knows about, keyed by chain ID.
type Registry struct {
	mu   sync.RWMutex
	byID map[int64]Network
	// order keeps All() stable for display.
	order []int64
}

// NewRegistry returns a registry seeded with the given networks.
func NewRegistry(nets ...Network) *Registry {
	r := &Registry{byID: make(map[int64]Network, len(nets))}
	for _, n := range nets {
		r.put(n)
	}
	return r
}

// NewDefaultRegistry returns the networks a fresh wallet ships with.
// The target testnet is deliberately absent; it has to be registered.
func NewDefaultRegistry() *Registry {
	return NewRegistry(builtinNetworks()...)
}

// Add registers or replaces a network after validating it.
func (r *Registry) Add(n Network) error {
	if err := n.Validate(); err != nil {
		return err
	}
	r.put(n)
	return nil
}

// Get finds a network by chain ID.
func (r *Registry) Get(id int64) (Network, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.byID[id]
	if !ok {
		return Network{}, ErrChainNotFound
	}
	return n, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id int64) bool {
	_, err := r.Get(id)
	return err == nil
}

// All returns every network in insertion order.
func (r *Registry) All() []Network {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Network, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

func (r *Registry) put(n Network) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[n.ChainID]; !exists {
		r.order = append(r.order, n.ChainID)
	}
	r.byID[n.ChainID] = n
}

// --- chain data ---

func builtinNetworks() []Network {
	eth := NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18}
	return []Network{
		{
			ChainID: 1, Name: "Ethereum Mainnet", Currency: eth,
			RPCURLs:      []string{"https://eth.llamarpc.com", "https://ethereum-rpc.publicnode.com"},
			ExplorerURLs: []string{"https://etherscan.io"},
		},
		{
			ChainID: 8453, Name: "Base", Currency: eth,
			RPCURLs:      []string{"https://mainnet.base.org", "https://base.llamarpc.com"},
			ExplorerURLs: []string{"https://basescan.org"},
		},
		{
			ChainID: 10, Name: "OP Mainnet", Currency: eth,
			RPCURLs:      []string{"https://mainnet.optimism.io", "https://optimism.llamarpc.com"},
			ExplorerURLs: []string{"https://optimistic.etherscan.io"},
		},
		{
			ChainID: 42161, Name: "Arbitrum One", Currency: eth,
			RPCURLs:      []string{"https://arb1.arbitrum.io/rpc", "https://arbitrum.llamarpc.com"},
			ExplorerURLs: []string{"https://arbiscan.io"},
		},
	}
}
