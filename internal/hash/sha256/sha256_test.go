// Package sha256 includes tests for the SHA-256 fingerprint helpers.
package sha256

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHasherHashDeterministic ensures repeated hashing yields the same digest.
func TestHasherHashDeterministic(t *testing.T) {
	t.Parallel()

	h := New()
	got := h.Hash([]byte("hello world"))
	require.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", got)
	require.Equal(t, got, h.Hash([]byte("hello world")))
}

// TestHasherDigits checks length, digit-only output and stability per seed.
func TestHasherDigits(t *testing.T) {
	t.Parallel()

	h := New()
	for _, n := range []int{1, 6, 8, 100} {
		got := h.Digits("roma-angelholm", n)
		require.Len(t, got, n)
		for _, r := range got {
			require.True(t, r >= '0' && r <= '9', "non-digit %q in %s", r, got)
		}
		require.Equal(t, got, h.Digits("roma-angelholm", n))
	}
	require.NotEqual(t, h.Digits("roma-angelholm", 8), h.Digits("roma-lund", 8))
	require.Empty(t, h.Digits("x", 0))
}
