package wallet

import (
	"math/big"
	"testing"

	"github.com/99designs/keyring"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0. Never fund on mainnet.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// testKeystore returns a file-backed Keystore isolated to a temp directory.
// Using the FileBackend avoids OS keychain prompts in CI.
func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "fundme-test",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: func(string) (string, error) { return "testpass", nil },
	})
	require.NoError(t, err)
	return &Keystore{ring: ring}
}

func signingWallet(ref string) *Wallet {
	return &Wallet{Name: "w", Address: testSignerAddr, KeyRef: ref}
}

func sampleTx() *types.Transaction {
	to := common.HexToAddress("0x0000000000000000000000000000000000000001")
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(11155111),
		Nonce:     0,
		GasTipCap: big.NewInt(1e9),
		GasFeeCap: big.NewInt(2e9),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(1e18),
	})
}

// ---------------------------------------------------------------------------
// Signer.SignTx
// ---------------------------------------------------------------------------

func TestSignerAddress(t *testing.T) {
	s := NewSigner(signingWallet(""), NewInMemoryKeystore())
	assert.Equal(t, common.HexToAddress(testSignerAddr), s.Address())
}

func TestSignTxKeyNotFound(t *testing.T) {
	s := NewSigner(signingWallet("fundme.missing"), NewInMemoryKeystore())
	_, err := s.SignTx(sampleTx(), big.NewInt(11155111))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving key")
}

func TestSignTxSenderRecovers(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("w", testPrivKeyHex)
	require.NoError(t, err)

	chainID := big.NewInt(11155111)
	signed, err := NewSigner(signingWallet(ref), ks).SignTx(sampleTx(), chainID)
	require.NoError(t, err)

	from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), from)
}

func TestSignTxRejectsMismatchedKey(t *testing.T) {
	ks := NewInMemoryKeystore()
	// Anvil account #1 stored under a wallet that claims account #0's address.
	ref, _ := ks.Store("w", "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d")

	_, err := NewSigner(signingWallet(ref), ks).SignTx(sampleTx(), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestSignTxWithFileKeystore(t *testing.T) {
	ks := testKeystore(t)
	ref, err := ks.Store("filewal", "0x"+testPrivKeyHex)
	require.NoError(t, err)

	signed, err := NewSigner(signingWallet(ref), ks).SignTx(sampleTx(), big.NewInt(11155111))
	require.NoError(t, err)
	raw, err := signed.MarshalBinary()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

// ---------------------------------------------------------------------------
// SignMessage / VerifyMessage
// ---------------------------------------------------------------------------

func TestSignMessageRoundTrip(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("w", testPrivKeyHex)

	msg := []byte("hello fundme")
	sig, err := NewSigner(signingWallet(ref), ks).SignMessage(msg)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	addr, err := VerifyMessage(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), addr)
}

func TestVerifyMessageBadLength(t *testing.T) {
	_, err := VerifyMessage([]byte("x"), make([]byte, 64))
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Keystore
// ---------------------------------------------------------------------------

func TestKeystoreStoreAndRetrieve(t *testing.T) {
	t.Setenv(KeyEnvVar, "")
	ks := testKeystore(t)
	ref, err := ks.Store("alice", "0xAbC")
	require.NoError(t, err)
	assert.Equal(t, "fundme.alice", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "AbC", got)
}

func TestKeystoreRetrieveEnvVarOverride(t *testing.T) {
	t.Setenv(KeyEnvVar, "  0x"+testPrivKeyHex+"  ")

	ks := &Keystore{ring: nil}
	got, err := ks.Retrieve("fundme.any-ref")
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)
}

func TestKeystoreNilRing(t *testing.T) {
	t.Setenv(KeyEnvVar, "")
	ks := &Keystore{ring: nil}

	_, err := ks.Store("x", "y")
	assert.Error(t, err)
	_, err = ks.Retrieve("fundme.x")
	assert.Error(t, err)
	assert.NoError(t, ks.Delete("fundme.x"))
}

func TestInMemoryKeystore(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("k", "0xfirst")
	require.NoError(t, err)
	_, _ = ks.Store("k", "second")

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.Error(t, err)
}

func TestNormaliseHexKey(t *testing.T) {
	assert.Equal(t, "abc123", normaliseHexKey("0xabc123"))
	assert.Equal(t, "abc123", normaliseHexKey("0Xabc123"))
	assert.Equal(t, "abc", normaliseHexKey("  0xabc  "))
	assert.Equal(t, "", normaliseHexKey("0x"))
	assert.Equal(t, "", normaliseHexKey(""))
}
