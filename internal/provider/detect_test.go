package provider_test

import (
	"context"
	"testing"

	"github.com/Mohsinsiddi/fundme/internal/provider"
	"github.com/Mohsinsiddi/fundme/internal/wallet"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectRemoteUnreachable(t *testing.T) {
	p := provider.Detect(context.Background(), provider.Settings{
		Mode:     provider.ModeRemote,
		Endpoint: "http://127.0.0.1:19992",
		Logger:   zerolog.Nop(),
	})
	assert.Nil(t, p)
}

func TestDetectRemoteAnswering(t *testing.T) {
	node := newFakeNode(t)
	node.result(provider.MethodChainID, "0x1")

	p := provider.Detect(context.Background(), provider.Settings{Mode: provider.ModeRemote, Endpoint: node.URL()})
	require.NotNil(t, p)
	defer provider.Release(p)

	r, ok := p.(*provider.Remote)
	require.True(t, ok)
	assert.Equal(t, node.URL(), r.Endpoint())
}

func TestDetectRemoteErrorStillPresent(t *testing.T) {
	node := newFakeNode(t)
	node.fail(provider.MethodChainID, provider.CodeUnauthorized, "locked")

	p := provider.Detect(context.Background(), provider.Settings{Endpoint: node.URL()})
	require.NotNil(t, p, "a JSON-RPC error means a wallet is listening")
	provider.Release(p)
}

func TestDetectLocalWithoutWallet(t *testing.T) {
	assert.Nil(t, provider.Detect(context.Background(), provider.Settings{Mode: provider.ModeLocal}))

	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	assert.Nil(t, provider.Detect(context.Background(), provider.Settings{Mode: provider.ModeLocal, Wallets: mgr}))
}

func TestDetectLocalWithWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore(), wallet.WithKeystore(wallet.NewInMemoryKeystore()))
	_, err := mgr.AddWithKey("anvil", anvilKey)
	require.NoError(t, err)

	p := provider.Detect(context.Background(), provider.Settings{Mode: provider.ModeLocal, Wallets: mgr})
	require.NotNil(t, p)

	l, ok := p.(*provider.Local)
	require.True(t, ok)
	assert.Equal(t, anvilAddr, l.Address().Hex())
}
