// Package provider models the wallet capability the front end talks to: an
// EIP-1193 style request function plus the error codes wallets return.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

// EIP-1193 and EIP-3085/3326 error codes.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeChainDisconnected = 4901
	CodeUnrecognizedChain = 4902

	CodeInvalidParams = -32602
	CodeInternal      = -32603
)

// Methods used by the front end.
const (
	MethodRequestAccounts = "eth_requestAccounts"
	MethodAccounts        = "eth_accounts"
	MethodChainID         = "eth_chainId"
	MethodSwitchChain     = "wallet_switchEthereumChain"
	MethodAddChain        = "wallet_addEthereumChain"
	MethodSendTransaction = "eth_sendTransaction"
	MethodGetBalance      = "eth_getBalance"
	MethodBlockNumber     = "eth_blockNumber"
	MethodGetReceipt      = "eth_getTransactionReceipt"
	MethodCall            = "eth_call"
	MethodPersonalSign    = "personal_sign"
)

// Provider is the wallet capability. Params are JSON-encoded positionally.
type Provider interface {
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// RPCError is a provider error carrying an EIP-1193 code.
type RPCError struct {
	Code    int
	Message string
	Data    any
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// Errorf builds an RPCError.
func Errorf(code int, format string, args ...any) *RPCError {
	return &RPCError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Code extracts the provider error code from err, or 0 if it carries none.
func Code(err error) int {
	var re *RPCError
	if errors.As(err, &re) {
		return re.Code
	}
	var ge rpc.Error
	if errors.As(err, &ge) {
		return ge.ErrorCode()
	}
	return 0
}

// IsUserRejected reports whether the user declined the request in the wallet.
func IsUserRejected(err error) bool { return Code(err) == CodeUserRejected }

// IsUnrecognizedChain reports whether the wallet does not know the chain.
func IsUnrecognizedChain(err error) bool { return Code(err) == CodeUnrecognizedChain }

// fromRPC converts a go-ethereum rpc error into an RPCError, keeping the
// code and data. Transport errors are returned unchanged.
func fromRPC(err error) error {
	if err == nil {
		return nil
	}
	var ge rpc.Error
	if !errors.As(err, &ge) {
		return err
	}
	re := &RPCError{Code: ge.ErrorCode(), Message: ge.Error()}
	var de rpc.DataError
	if errors.As(err, &de) {
		re.Data = de.ErrorData()
	}
	return re
}

// decodeParam unmarshals params[i] into v by round-tripping through JSON,
// so callers may pass structs, maps or raw messages.
func decodeParam(params []any, i int, v any) error {
	if i >= len(params) {
		return Errorf(CodeInvalidParams, "missing parameter %d", i)
	}
	raw, err := json.Marshal(params[i])
	if err != nil {
		return Errorf(CodeInvalidParams, "encoding parameter %d: %v", i, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return Errorf(CodeInvalidParams, "decoding parameter %d: %v", i, err)
	}
	return nil
}
