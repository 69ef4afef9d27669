package config

import "github.com/Mohsinsiddi/fundme/internal/chain"

// Config holds all fundme configuration.
type Config struct {
	Provider            string          `json:"provider"              mapstructure:"provider"` // "remote" | "local"
	Endpoint            string          `json:"endpoint"              mapstructure:"endpoint"`
	Wallet              string          `json:"wallet"                mapstructure:"wallet"`
	ContractAddress     string          `json:"contract_address"      mapstructure:"contract_address"`
	SwitchFailurePolicy string          `json:"switch_failure_policy" mapstructure:"switch_failure_policy"` // "abort" | "proceed"
	NotificationTTL     int             `json:"notification_ttl"      mapstructure:"notification_ttl"`      // seconds
	PollInterval        int             `json:"poll_interval"         mapstructure:"poll_interval"`         // seconds
	RPCAlgorithm        string          `json:"rpc_algorithm"         mapstructure:"rpc_algorithm"`         // "fastest" | "round-robin" | "failover"
	ActiveChainID       int64           `json:"active_chain_id"       mapstructure:"active_chain_id"`
	Networks            []chain.Network `json:"networks"              mapstructure:"networks"`

	// internal: config dir path used for Save()
	configDir string
	// persisted is the file-only view; loaded is c as of the last Load or Save.
	persisted *Config
	loaded    *Config
}
