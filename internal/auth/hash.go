// Package auth implements the dashboard credential gate. Credentials are
// unsalted SHA-256 digests used as lookup keys, not a security boundary.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash returns the lowercase hex SHA-256 digest of s.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// normalizeDigest validates a hex SHA-256 digest and lowercases it.
func normalizeDigest(d string) (string, error) {
	d = strings.ToLower(strings.TrimSpace(d))
	if len(d) != sha256.Size*2 {
		return "", fmt.Errorf("digest must have %d hex characters, got %d", sha256.Size*2, len(d))
	}
	if _, err := hex.DecodeString(d); err != nil {
		return "", fmt.Errorf("invalid hex digest: %w", err)
	}
	return d, nil
}
