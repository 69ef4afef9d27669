package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mohsinsiddi/fundme/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evmRPCServer answers eth_blockNumber with block.
func evmRPCServer(t *testing.T, block uint64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":"0x%x"}`, req.ID, block)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ---------------------------------------------------------------------------
// ResultsToEndpoints
// ---------------------------------------------------------------------------

func TestResultsToEndpointsEmpty(t *testing.T) {
	out := ResultsToEndpoints(nil)
	assert.Empty(t, out)

	out2 := ResultsToEndpoints([]BenchmarkResult{})
	assert.Empty(t, out2)
}

func TestResultsToEndpointsHealthy(t *testing.T) {
	results := []BenchmarkResult{
		{URL: "https://rpc1.example.com", Latency: 50 * time.Millisecond, BlockNumber: 100, Err: nil},
	}
	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, 1)

	ep := endpoints[0]
	assert.Equal(t, "https://rpc1.example.com", ep.URL)
	assert.Equal(t, 50*time.Millisecond, ep.Latency)
	assert.Equal(t, uint64(100), ep.BlockNumber)
	assert.True(t, ep.Healthy)
	assert.True(t, ep.Checked)
}

func TestResultsToEndpointsUnhealthy(t *testing.T) {
	results := []BenchmarkResult{
		{URL: "https://dead.rpc.example.com", Err: errors.New("connection refused")},
	}
	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, 1)

	ep := endpoints[0]
	assert.False(t, ep.Healthy)
	assert.True(t, ep.Checked, "Checked must always be true after ResultsToEndpoints")
}

func TestResultsToEndpointsMixed(t *testing.T) {
	results := []BenchmarkResult{
		{URL: "https://rpc1.example.com", Err: nil},
		{URL: "https://rpc2.example.com", Err: errors.New("timeout")},
		{URL: "https://rpc3.example.com", Err: nil},
	}
	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, 3)

	assert.True(t, endpoints[0].Healthy)
	assert.False(t, endpoints[1].Healthy)
	assert.True(t, endpoints[2].Healthy)

	// All must have Checked=true.
	for _, ep := range endpoints {
		assert.True(t, ep.Checked)
	}
}

func TestResultsToEndpointsPreservesOrder(t *testing.T) {
	urls := []string{"https://a.com", "https://b.com", "https://c.com"}
	results := make([]BenchmarkResult, len(urls))
	for i, u := range urls {
		results[i] = BenchmarkResult{URL: u}
	}

	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, len(urls))
	for i, u := range urls {
		assert.Equal(t, u, endpoints[i].URL, "order must be preserved at index %d", i)
	}
}

func TestResultsToEndpointsPreservesLatency(t *testing.T) {
	results := []BenchmarkResult{
		{URL: "https://fast.rpc", Latency: 10 * time.Millisecond},
		{URL: "https://slow.rpc", Latency: 500 * time.Millisecond},
	}
	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, 2)

	assert.Equal(t, 10*time.Millisecond, endpoints[0].Latency)
	assert.Equal(t, 500*time.Millisecond, endpoints[1].Latency)
}

func TestResultsToEndpointsCheckedAlwaysTrue(t *testing.T) {
	// Even for zero-value results, Checked must be true.
	results := []BenchmarkResult{{}, {}, {}}
	endpoints := ResultsToEndpoints(results)
	for _, ep := range endpoints {
		assert.True(t, ep.Checked)
	}
}

// ---------------------------------------------------------------------------
// BenchmarkEVM / BestEVM / SelectBest
// ---------------------------------------------------------------------------

func TestBenchmarkEVMMixed(t *testing.T) {
	up := evmRPCServer(t, 42)
	down := "http://127.0.0.1:19995"

	results := BenchmarkEVM(context.Background(), []string{down, up.URL})
	require.Len(t, results, 2)

	assert.Equal(t, down, results[0].URL)
	assert.Error(t, results[0].Err)
	assert.Equal(t, up.URL, results[1].URL)
	require.NoError(t, results[1].Err)
	assert.Equal(t, uint64(42), results[1].BlockNumber)
}

func TestBestEVMSkipsDeadEndpoint(t *testing.T) {
	up := evmRPCServer(t, 7)

	url, err := BestEVM(context.Background(), []string{"http://127.0.0.1:19996", up.URL}, AlgorithmFailover)
	require.NoError(t, err)
	assert.Equal(t, up.URL, url)
}

func TestBestEVMSingleURL(t *testing.T) {
	// A single URL is returned without a network call.
	url, err := BestEVM(context.Background(), []string{"https://only.rpc.example.com"}, AlgorithmFastest)
	require.NoError(t, err)
	assert.Equal(t, "https://only.rpc.example.com", url)
}

func TestBestEVMNoURLs(t *testing.T) {
	_, err := BestEVM(context.Background(), []string{}, AlgorithmFastest)
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
}

func TestSelectBestUsesNetworkURLs(t *testing.T) {
	up := evmRPCServer(t, 9)
	net := chain.Target()
	net.RPCURLs = []string{"http://127.0.0.1:19997", up.URL}

	url, err := SelectBest(context.Background(), net, "")
	require.NoError(t, err)
	assert.Equal(t, up.URL, url)

	net.RPCURLs = nil
	_, err = SelectBest(context.Background(), net, "failover")
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
}
