// Package address validates wallet identifiers against a chain address policy.
package address

import (
	"fmt"
	"strings"
	"unicode"

	"filippo.io/edwards25519"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

// Policy selects how strictly wallet identifiers are checked.
type Policy string

const (
	// PolicyAny accepts any non-empty identifier without control characters
	// (wallets are opaque).
	PolicyAny Policy = "any"
	// PolicyEVM requires a 0x-prefixed 20-byte hex address.
	PolicyEVM Policy = "evm"
	// PolicySolana requires a base58 32-byte ed25519 public key.
	PolicySolana Policy = "solana"
)

// ParsePolicy parses a policy name. Empty string means PolicyAny.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyAny, nil
	case PolicyAny, PolicyEVM, PolicySolana:
		return p, nil
	default:
		return "", fmt.Errorf("unknown address policy %q", s)
	}
}

// Validate returns a human readable reason when wallet does not satisfy the
// policy, or "" when it does.
func (p Policy) Validate(wallet string) string {
	if strings.TrimSpace(wallet) == "" {
		return "empty wallet identifier"
	}
	if strings.IndexFunc(wallet, unicode.IsControl) >= 0 {
		return "control character in wallet identifier"
	}

	switch p {
	case PolicyEVM:
		if !common.IsHexAddress(wallet) || !(strings.HasPrefix(wallet, "0x") || strings.HasPrefix(wallet, "0X")) {
			return "not an EVM hex address"
		}
	case PolicySolana:
		return validateSolana(wallet)
	}
	return ""
}

// validateSolana accepts only user keys: 32 bytes that decode to a point on
// the ed25519 curve. Program derived addresses are off-curve and cannot own
// lending positions directly.
func validateSolana(wallet string) string {
	decoded, err := base58.Decode(wallet)
	if err != nil {
		return "not base58"
	}
	if len(decoded) != 32 {
		return fmt.Sprintf("expected 32 bytes, got %d", len(decoded))
	}
	if _, err := new(edwards25519.Point).SetBytes(decoded); err != nil {
		return "not on ed25519 curve"
	}
	return ""
}
