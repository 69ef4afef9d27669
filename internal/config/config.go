package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Mohsinsiddi/fundme/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

const (
	defaultProvider        = "remote"
	defaultEndpoint        = "http://127.0.0.1:1248"
	defaultContract        = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	defaultSwitchPolicy    = "abort"
	defaultNotificationTTL = 5
	defaultPollInterval    = 2
	defaultAlgorithm       = "fastest"
	defaultActiveChain     = 1

	configFile  = "config.json"
	walletsFile = "wallets.json"

	// EnvPrefix prefixes environment overrides, e.g. FUNDME_ENDPOINT.
	EnvPrefix = "FUNDME"
)

// ErrUnknownKey is returned by Set and Get for keys the config does not have.
var ErrUnknownKey = errors.New("unknown config key")

// Load reads config from dir (or creates defaults). dir defaults to
// ~/.fundme. Environment variables prefixed with FUNDME_ override the file.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".fundme")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	path := filepath.Join(dir, configFile)
	file, err := readConfig(path, false)
	if err != nil {
		return nil, err
	}
	cfg, err := readConfig(path, true)
	if err != nil {
		return nil, err
	}
	for _, c := range []*Config{file, cfg} {
		if !common.IsHexAddress(c.ContractAddress) {
			return nil, fmt.Errorf("contract_address: %q is not an address", c.ContractAddress)
		}
	}

	cfg.configDir = dir
	cfg.persisted = file
	cfg.remember()
	return cfg, nil
}

// readConfig unmarshals path over the defaults. withEnv layers FUNDME_
// variables on top; the file-only view is what Save merges into.
func readConfig(path string, withEnv bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("json")
	v.SetConfigFile(path)
	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Networks == nil {
		cfg.Networks = []chain.Network{}
	}
	return cfg, nil
}

// Save writes the config to disk. Only keys changed since Load, plus the
// keys named in force, are written; environment overrides stay out of the
// file.
func (c *Config) Save(force ...string) error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}

	out := &Config{}
	if c.persisted != nil {
		snap := c.persisted.snapshot()
		out = &snap
	}
	for _, k := range Keys() {
		cur, _ := c.Get(k)
		was := ""
		if c.loaded != nil {
			was, _ = c.loaded.Get(k)
		}
		if cur == was && !slices.Contains(force, k) && c.persisted != nil {
			continue
		}
		if err := out.assign(k, cur); err != nil {
			return err
		}
	}
	out.Networks = slices.Clone(c.Networks)
	if out.Networks == nil {
		out.Networks = []chain.Network{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600); err != nil {
		return err
	}
	c.persisted = out
	c.remember()
	return nil
}

// SaveNetworks records the local wallet's active chain and the networks
// added to it, then saves.
func (c *Config) SaveNetworks(active int64, added []chain.Network) error {
	c.ActiveChainID = active
	c.Networks = slices.Clone(added)
	return c.Save("active_chain_id")
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is where wallet metadata is kept.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// NotificationDuration is NotificationTTL as a duration.
func (c *Config) NotificationDuration() time.Duration {
	return time.Duration(c.NotificationTTL) * time.Second
}

// PollDuration is PollInterval as a duration.
func (c *Config) PollDuration() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

// Contract returns the configured FundMe address.
func (c *Config) Contract() common.Address {
	return common.HexToAddress(c.ContractAddress)
}

// Keys lists the keys Get and Set accept.
func Keys() []string {
	keys := []string{
		"provider", "endpoint", "wallet", "contract_address",
		"switch_failure_policy", "notification_ttl", "poll_interval",
		"rpc_algorithm", "active_chain_id",
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "provider":
		return c.Provider, nil
	case "endpoint":
		return c.Endpoint, nil
	case "wallet":
		return c.Wallet, nil
	case "contract_address":
		return c.ContractAddress, nil
	case "switch_failure_policy":
		return c.SwitchFailurePolicy, nil
	case "notification_ttl":
		return strconv.Itoa(c.NotificationTTL), nil
	case "poll_interval":
		return strconv.Itoa(c.PollInterval), nil
	case "rpc_algorithm":
		return c.RPCAlgorithm, nil
	case "active_chain_id":
		return strconv.FormatInt(c.ActiveChainID, 10), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set validates value and assigns it to key. It does not save.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "provider":
		return setEnum(&c.Provider, key, value, providerModes)
	case "endpoint":
		c.Endpoint = value
	case "wallet":
		c.Wallet = value
	case "contract_address":
		if !common.IsHexAddress(value) {
			return fmt.Errorf("%s: %q is not an address", key, value)
		}
		c.ContractAddress = common.HexToAddress(value).Hex()
	case "switch_failure_policy":
		return setEnum(&c.SwitchFailurePolicy, key, value, switchPolicies)
	case "notification_ttl":
		return setSeconds(&c.NotificationTTL, key, value)
	case "poll_interval":
		return setSeconds(&c.PollInterval, key, value)
	case "rpc_algorithm":
		return setEnum(&c.RPCAlgorithm, key, value, rpcAlgorithms)
	case "active_chain_id":
		id, err := chain.ParseChainID(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.ActiveChainID = id
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// --- helpers ---

// snapshot copies the exported settings.
func (c *Config) snapshot() Config {
	return Config{
		Provider:            c.Provider,
		Endpoint:            c.Endpoint,
		Wallet:              c.Wallet,
		ContractAddress:     c.ContractAddress,
		SwitchFailurePolicy: c.SwitchFailurePolicy,
		NotificationTTL:     c.NotificationTTL,
		PollInterval:        c.PollInterval,
		RPCAlgorithm:        c.RPCAlgorithm,
		ActiveChainID:       c.ActiveChainID,
		Networks:            slices.Clone(c.Networks),
	}
}

// remember records the current settings as the baseline Save diffs against.
func (c *Config) remember() {
	snap := c.snapshot()
	c.loaded = &snap
}

// assign stores a value that already passed Set, or came from a loaded
// config, without re-validating it.
func (c *Config) assign(key, value string) error {
	switch key {
	case "notification_ttl":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.NotificationTTL = n
	case "poll_interval":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.PollInterval = n
	case "active_chain_id":
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.ActiveChainID = id
	case "provider":
		c.Provider = value
	case "endpoint":
		c.Endpoint = value
	case "wallet":
		c.Wallet = value
	case "contract_address":
		c.ContractAddress = value
	case "switch_failure_policy":
		c.SwitchFailurePolicy = value
	case "rpc_algorithm":
		c.RPCAlgorithm = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", defaultProvider)
	v.SetDefault("endpoint", defaultEndpoint)
	v.SetDefault("wallet", "")
	v.SetDefault("contract_address", defaultContract)
	v.SetDefault("switch_failure_policy", defaultSwitchPolicy)
	v.SetDefault("notification_ttl", defaultNotificationTTL)
	v.SetDefault("poll_interval", defaultPollInterval)
	v.SetDefault("rpc_algorithm", defaultAlgorithm)
	v.SetDefault("active_chain_id", defaultActiveChain)
	v.SetDefault("networks", []chain.Network{})
}

func setEnum(dst *string, key, value string, allowed []string) error {
	value = strings.ToLower(value)
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("%s: %q is not one of %s", key, value, strings.Join(allowed, ", "))
	}
	*dst = value
	return nil
}

func setSeconds(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fmt.Errorf("%s: %q is not a positive number of seconds", key, value)
	}
	*dst = n
	return nil
}
