// Package rpc chooses which RPC endpoint of a network the wallet talks to.
package rpc

import (
	"errors"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
)

// ParseAlgorithm maps a config string to an Algorithm, defaulting to fastest.
func ParseAlgorithm(s string) Algorithm {
	switch a := Algorithm(s); a {
	case AlgorithmRoundRobin, AlgorithmFailover:
		return a
	default:
		return AlgorithmFastest
	}
}

// Endpoint represents a single RPC endpoint with its measured attributes.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool // meaningful only when Checked == true
	Checked     bool
}

// eligible reports whether e may be picked.
func (e *Endpoint) eligible() bool { return !e.Checked || e.Healthy }

// Picker selects an RPC endpoint according to the configured algorithm.
// Every Pick scores the endpoints it is given; callers keep the dialed
// client, not the pick. It is safe for concurrent use.
type Picker struct {
	algo    Algorithm
	mu      sync.Mutex
	rrIndex int
}

// NewPicker creates a new Picker with the given algorithm.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo}
}

// Pick selects an endpoint from the provided list according to the algorithm.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	candidates := eligible(endpoints)
	if len(candidates) == 0 {
		return nil, ErrNoHealthyRPC
	}

	switch p.algo {
	case AlgorithmRoundRobin:
		idx := p.rrIndex % len(candidates)
		p.rrIndex = (idx + 1) % len(candidates)
		return candidates[idx], nil
	case AlgorithmFailover:
		return candidates[0], nil
	default:
		return fastest(candidates)
	}
}

// fastest scores fresh candidates by latency and block recency.
func fastest(candidates []*Endpoint) (*Endpoint, error) {
	var best uint64
	for _, e := range candidates {
		best = max(best, e.BlockNumber)
	}

	var winner *Endpoint
	var bestScore float64
	for _, e := range candidates {
		if best > 0 && best-e.BlockNumber > staleBlockThreshold {
			continue
		}
		if s := score(e, best); winner == nil || s > bestScore {
			winner, bestScore = e, s
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}
	return winner, nil
}

// score: higher is better. Latency dominates; each block behind costs a point.
func score(e *Endpoint, best uint64) float64 {
	var s float64
	if ms := e.Latency.Milliseconds(); ms > 0 {
		s += 1000.0 / float64(ms)
	}
	if best > 0 {
		s += float64(10 - (best - e.BlockNumber))
	}
	return s
}

func eligible(endpoints []Endpoint) []*Endpoint {
	out := make([]*Endpoint, 0, len(endpoints))
	for i := range endpoints {
		if endpoints[i].eligible() {
			out = append(out, &endpoints[i])
		}
	}
	return out
}
