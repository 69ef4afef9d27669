package contract

import (
	"encoding/hex"
	"sort"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Selector computes the 4-byte function selector of a signature such as
// "fund(uint256,address)", returned as 0x-prefixed hex. Parameter names are
// ignored.
func Selector(signature string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(NormalizeSignature(signature)))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// NormalizeSignature removes parameter names, keeping only types.
// "fund(uint256 tag, address delegate)" → "fund(uint256,address)"
func NormalizeSignature(sig string) string {
	sig = strings.TrimSpace(sig)
	open := strings.Index(sig, "(")
	if open < 0 || !strings.HasSuffix(sig, ")") {
		return sig
	}

	name := strings.TrimSpace(sig[:open])
	var types []string
	for _, p := range strings.Split(sig[open+1:len(sig)-1], ",") {
		// Take only the first word (the type), skip the name.
		if parts := strings.Fields(p); len(parts) > 0 {
			types = append(types, parts[0])
		}
	}
	return name + "(" + strings.Join(types, ",") + ")"
}

// Method is one ABI entry point with its selector.
type Method struct {
	Name       string
	Signature  string
	Selector   string
	Mutability string
}

// Methods lists the FundMe entry points sorted by name.
func Methods() []Method {
	out := make([]Method, 0, len(ABI.Methods))
	for _, m := range ABI.Methods {
		out = append(out, Method{
			Name:       m.Name,
			Signature:  m.Sig,
			Selector:   Selector(m.Sig),
			Mutability: m.StateMutability,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup finds the FundMe method with the given selector.
func Lookup(selector string) (Method, bool) {
	selector = strings.ToLower(selector)
	for _, m := range Methods() {
		if m.Selector == selector {
			return m, true
		}
	}
	return Method{}, false
}
