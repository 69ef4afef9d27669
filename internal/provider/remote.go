package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

// DefaultRemoteEndpoint is where desktop wallets such as Frame listen.
const DefaultRemoteEndpoint = "http://127.0.0.1:1248"

// Remote forwards every request to an external wallet over JSON-RPC.
type Remote struct {
	endpoint string
	client   *rpc.Client
}

// DialRemote connects to a wallet endpoint (http, ws or ipc).
func DialRemote(ctx context.Context, endpoint string) (*Remote, error) {
	c, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dialing wallet %s: %w", endpoint, err)
	}
	return &Remote{endpoint: endpoint, client: c}, nil
}

// Request implements Provider.
func (r *Remote) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := r.client.CallContext(ctx, &out, method, params...); err != nil {
		return nil, fromRPC(err)
	}
	return out, nil
}

// Endpoint returns the dialed URL.
func (r *Remote) Endpoint() string { return r.endpoint }

// Close releases the underlying connection.
func (r *Remote) Close() { r.client.Close() }
