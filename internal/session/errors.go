package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/fundme/internal/provider"
)

// Action errors. Each is wrapped together with the provider cause, so both
// errors.Is(err, ErrX) and provider.Code(err) work on the result.
var (
	ErrProviderAbsent     = errors.New("wallet provider absent")
	ErrUserRejected       = errors.New("user rejected request")
	ErrSwitchFailed       = errors.New("network switch failed")
	ErrRegistrationFailed = errors.New("network registration failed")
	ErrQueryFailed        = errors.New("query failed")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrWrongNetwork       = errors.New("wallet is on the wrong network")
	ErrReverted           = errors.New("transaction reverted")
	ErrConfirmationFailed = errors.New("confirmation wait failed")
	ErrProviderCall       = errors.New("provider call failed")
)

// wrap joins a category with its cause.
func wrap(category, cause error) error {
	if cause == nil {
		return category
	}
	return fmt.Errorf("%w: %w", category, cause)
}

// classify maps a provider error to its category, preferring user
// rejection over fallback.
func classify(fallback, err error) error {
	if provider.IsUserRejected(err) {
		return wrap(ErrUserRejected, err)
	}
	return wrap(fallback, err)
}

// classifySend maps an eth_sendTransaction failure. Wallets report a revert
// found during gas estimation with code 3 or an "execution reverted" message.
func classifySend(err error) error {
	switch {
	case provider.IsUserRejected(err):
		return wrap(ErrUserRejected, err)
	case provider.Code(err) == 3, strings.Contains(strings.ToLower(err.Error()), "revert"):
		return wrap(ErrReverted, err)
	default:
		return wrap(ErrProviderCall, err)
	}
}
