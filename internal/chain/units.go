package chain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// EtherDecimals is the number of decimals of every EVM native currency.
const EtherDecimals = 18

// ErrInvalidAmount is returned for malformed decimal amounts.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseEther converts a decimal ether string ("1.5") to wei.
func ParseEther(s string) (*big.Int, error) { return ParseUnits(s, EtherDecimals) }

// FormatEther renders wei as a decimal ether string ("1.5", "0.0").
func FormatEther(wei *big.Int) string { return FormatUnits(wei, EtherDecimals) }

// ParseUnits converts a decimal string into an integer of the smallest unit.
// The conversion is exact: more fractional digits than decimals is an error
// rather than a silent truncation.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	orig := s
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, orig)
	}
	if hasDot && strings.Contains(frac, ".") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, orig)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, orig)
	}

	frac = strings.TrimRight(frac, "0")
	if len(frac) > decimals {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, orig, decimals)
	}

	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, orig)
	}
	if neg {
		v.Neg(v)
	}
	return v, nil
}

// FormatUnits renders v (in the smallest unit) as a decimal string with
// trailing zeros trimmed and at least one fractional digit.
func FormatUnits(v *big.Int, decimals int) string {
	if v == nil {
		v = new(big.Int)
	}
	neg := v.Sign() < 0
	digits := new(big.Int).Abs(v).String()
	if decimals <= 0 {
		if neg {
			return "-" + digits + ".0"
		}
		return digits + ".0"
	}

	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}
	whole := digits[:len(digits)-decimals]
	frac := strings.TrimRight(digits[len(digits)-decimals:], "0")
	if frac == "" {
		frac = "0"
	}

	out := whole + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
