// Package cryptoutil holds small helpers shared by config validation and
// the audit signer.
package cryptoutil

import (
	"encoding/hex"
	"fmt"
)

// IsHexString reports whether s consists entirely of hexadecimal characters
// (0-9, a-f, A-F). It returns true for an empty string; callers should check
// length separately when a minimum size is required.
func IsHexString(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

// ResolveKey interprets key as raw bytes or hex and enforces a minimum
// decoded length. A string of 2*min or more even hex characters is decoded;
// anything else is taken as raw bytes. min is in bytes.
func ResolveKey(key string, min int) ([]byte, error) {
	if len(key) >= 2*min && len(key)%2 == 0 && IsHexString(key) {
		decoded, err := hex.DecodeString(key)
		if err != nil {
			return nil, fmt.Errorf("key hex decode: %w", err)
		}
		if len(decoded) < min {
			return nil, fmt.Errorf("key hex must decode to at least %d bytes (got %d)", min, len(decoded))
		}
		return decoded, nil
	}
	if len(key) < min {
		return nil, fmt.Errorf("key must be at least %d bytes (got %d)", min, len(key))
	}
	return []byte(key), nil
}
