package config

import "time"

// Timeouts used by cmd.
const (
	RPCSelectTimeout = 10 * time.Second // BestEVM benchmark / RPC selection
	DetectTimeout    = 5 * time.Second  // provider detection at startup
	QueryTimeout     = 30 * time.Second // read-only actions such as balance
)

// Allowed values for enumerated keys.
var (
	providerModes  = []string{"remote", "local"}
	switchPolicies = []string{"abort", "proceed"}
	rpcAlgorithms  = []string{"fastest", "round-robin", "failover"}
)
