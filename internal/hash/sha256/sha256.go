// Package sha256 derives stable fingerprints and digit strings from content.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strings"
)

// Hasher implements output.Hasher and normalize.DigitSource using SHA-256.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash hashes the input and returns a hex digest.
func (h *Hasher) Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Digits returns n decimal digits derived from seed. The same seed always
// yields the same digits.
func (h *Hasher) Digits(seed string, n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	counter := byte(0)
	for b.Len() < n {
		sum := sha256.Sum256(append([]byte(seed), counter))
		b.WriteString(new(big.Int).SetBytes(sum[:]).String())
		counter++
	}
	return b.String()[:n]
}
