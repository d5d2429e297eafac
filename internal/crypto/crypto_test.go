package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func TestSealer_SealOpen(t *testing.T) {
	s, err := NewSealer(testKey)
	require.NoError(t, err)

	sealed, err := s.Seal("9876543210")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "9876543210")

	again, err := s.Seal("9876543210")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", plain)
}

func TestSealer_EmptyPassesThrough(t *testing.T) {
	s, err := NewSealer(testKey)
	require.NoError(t, err)

	sealed, err := s.Seal("")
	require.NoError(t, err)
	assert.Empty(t, sealed)

	plain, err := s.Open("")
	require.NoError(t, err)
	assert.Empty(t, plain)
}

func TestSealer_RejectsTampering(t *testing.T) {
	s, err := NewSealer(testKey)
	require.NoError(t, err)

	sealed, err := s.Seal("9876543211")
	require.NoError(t, err)

	tampered := []byte(sealed)
	tampered[len(tampered)/2] ^= 0x01
	_, err = s.Open(string(tampered))
	assert.ErrorIs(t, err, ErrMalformedSeal)

	_, err = s.Open("c2hvcnQ=")
	assert.ErrorIs(t, err, ErrMalformedSeal)
}

func TestNewSealer_KeyLength(t *testing.T) {
	_, err := NewSealer("c2hvcnQ=")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = NewSealer("")
	assert.Error(t, err)
}
