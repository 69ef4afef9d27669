package provider

import (
	"context"
	"time"

	"github.com/Mohsinsiddi/fundme/internal/wallet"
	"github.com/rs/zerolog"
)

// Mode selects where the wallet capability comes from.
type Mode string

const (
	ModeRemote Mode = "remote"
	ModeLocal  Mode = "local"
)

const probeTimeout = 3 * time.Second

// Settings describes how to find the wallet capability.
type Settings struct {
	Mode     Mode
	Endpoint string // remote mode
	Wallets  *wallet.Manager
	Wallet   string // local mode; empty means the default wallet
	Local    []LocalOption
	Logger   zerolog.Logger
}

// Detect returns the configured wallet capability, or nil when none is
// available: the remote endpoint does not answer, or there is no wallet
// to sign with.
func Detect(ctx context.Context, s Settings) Provider {
	switch s.Mode {
	case ModeLocal:
		if p := detectLocal(s); p != nil {
			return p
		}
	default:
		if p := detectRemote(ctx, s); p != nil {
			return p
		}
	}
	return nil
}

func detectRemote(ctx context.Context, s Settings) *Remote {
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultRemoteEndpoint
	}
	log := s.Logger.With().Str("endpoint", endpoint).Logger()

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	r, err := DialRemote(probeCtx, endpoint)
	if err != nil {
		log.Debug().Err(err).Msg("no wallet")
		return nil
	}
	// A JSON-RPC error still means a wallet is answering.
	if _, err := r.Request(probeCtx, MethodChainID); err != nil && Code(err) == 0 {
		log.Debug().Err(err).Msg("wallet not responding")
		r.Close()
		return nil
	}
	log.Debug().Msg("wallet found")
	return r
}

func detectLocal(s Settings) *Local {
	if s.Wallets == nil {
		return nil
	}
	w, err := s.Wallets.Resolve(s.Wallet)
	if err != nil {
		s.Logger.Debug().Err(err).Str("wallet", s.Wallet).Msg("no signing wallet")
		return nil
	}
	signer := wallet.NewSigner(w, s.Wallets.Keystore())
	opts := append([]LocalOption{WithLocalLogger(s.Logger)}, s.Local...)
	s.Logger.Debug().Str("wallet", w.Name).Str("address", w.Address).Msg("local wallet ready")
	return NewLocal(signer, opts...)
}

// Release closes p if it holds connections.
func Release(p Provider) {
	if c, ok := p.(interface{ Close() }); ok {
		c.Close()
	}
}
