package rpc

import (
	"context"

	"github.com/Mohsinsiddi/fundme/internal/chain"
)

// SelectBest picks the RPC URL the wallet should use for net. algorithm is a
// config string; empty or unknown values mean "fastest".
//
// Returns ErrNoHealthyRPC when the network lists no URLs or all of them fail.
func SelectBest(ctx context.Context, net chain.Network, algorithm string) (string, error) {
	return BestEVM(ctx, net.RPCURLs, ParseAlgorithm(algorithm))
}
