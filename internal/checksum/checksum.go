// Package checksum fingerprints note text so the index can tell whether a
// note changed since it was last indexed.
package checksum

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

const prefix = "sha256:"

// Sum returns the fingerprint of data, labelled with its algorithm.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return prefix + hex.EncodeToString(h[:])
}

// Matches reports whether stored is the fingerprint of data. Values without
// the current label never match and get recomputed.
func Matches(stored string, data []byte) bool {
	if !strings.HasPrefix(stored, prefix) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(Sum(data))) == 1
}
