package chain_test

import (
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/fundme/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wei(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad test value " + s)
	}
	return v
}

// ---------------------------------------------------------------------------
// ParseEther
// ---------------------------------------------------------------------------

func TestParseEther(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.5", "1500000000000000000"},
		{"1", "1000000000000000000"},
		{"0", "0"},
		{"0.0", "0"},
		{".5", "500000000000000000"},
		{"2.", "2000000000000000000"},
		{"  0.1  ", "100000000000000000"},
		{"0.000000000000000001", "1"},
		{"1.500000000000000000000", "1500000000000000000"}, // trailing zeros beyond 18 are fine
		{"123456789.123456789", "123456789123456789000000000"},
		{"-1", "-1000000000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := chain.ParseEther(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseEtherIsExact(t *testing.T) {
	// 1.5 × 10^18 exactly, no float rounding.
	got, err := chain.ParseEther("1.5")
	require.NoError(t, err)
	want := new(big.Int).Mul(big.NewInt(15), new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil))
	assert.Equal(t, 0, got.Cmp(want))
}

func TestParseEtherRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", " ", ".", "-", "abc", "1.2.3", "1e18", "0x10", "1,5", "--1", "1.0000000000000000001"} {
		t.Run(in, func(t *testing.T) {
			_, err := chain.ParseEther(in)
			assert.ErrorIs(t, err, chain.ErrInvalidAmount)
		})
	}
}

func TestParseUnitsSixDecimals(t *testing.T) {
	got, err := chain.ParseUnits("12.34", 6)
	require.NoError(t, err)
	assert.Equal(t, "12340000", got.String())
}

// ---------------------------------------------------------------------------
// FormatEther
// ---------------------------------------------------------------------------

func TestFormatEther(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.0"},
		{"1", "0.000000000000000001"},
		{"1000000000000000000", "1.0"},
		{"1500000000000000000", "1.5"},
		{"123456789000000000000", "123.456789"},
		{"100000000000000000", "0.1"},
		{"-2500000000000000000", "-2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, chain.FormatEther(wei(tt.in)))
		})
	}
}

func TestFormatEtherNil(t *testing.T) {
	assert.Equal(t, "0.0", chain.FormatEther(nil))
}

func TestFormatUnitsZeroDecimals(t *testing.T) {
	assert.Equal(t, "42.0", chain.FormatUnits(big.NewInt(42), 0))
}

func TestParseFormatInverse(t *testing.T) {
	for _, s := range []string{"0.0", "1.5", "0.000000000000000001", "987654.321"} {
		v, err := chain.ParseEther(s)
		require.NoError(t, err)
		assert.Equal(t, s, chain.FormatEther(v))
	}
}
