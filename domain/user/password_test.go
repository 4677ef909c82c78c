package user

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"userdir-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHasher_RequiresSaltMaterial(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		suffix string
	}{
		{"missing both", "", ""},
		{"missing prefix", "", "tail"},
		{"missing suffix", "head", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHasher(tt.prefix, tt.suffix)
			require.Error(t, err)
			assert.True(t, errors.IsHashingUnavailable(err))
		})
	}
}

func TestHasher_HashMatchesSaltedDigest(t *testing.T) {
	h, err := NewHasher("head", "tail")
	require.NoError(t, err)

	got, err := h.Hash("secret")
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("head" + "secret" + "tail"))
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
}

func TestHasher_Verify(t *testing.T) {
	h, err := NewHasher("head", "tail")
	require.NoError(t, err)

	stored, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, h.Verify(stored, "correct horse battery staple"))
	assert.False(t, h.Verify(stored, "wrong password"))
	assert.False(t, h.Verify(stored, ""))
}

func TestHasher_NilGuards(t *testing.T) {
	var h *Hasher

	_, err := h.Hash("anything")
	require.Error(t, err)
	assert.True(t, errors.IsHashingUnavailable(err))
	assert.False(t, h.Verify("stored", "anything"))
}
