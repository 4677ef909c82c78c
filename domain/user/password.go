package user

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"userdir-backend/pkg/errors"
)

// Hasher computes the one-way password digest used at rest:
// SHA-256 over saltPrefix || plaintext || saltSuffix, hex encoded.
//
// Salt material is process-wide configuration, loaded once at startup and
// immutable afterwards. Missing salt material is a hard startup failure; the
// guard in Hash covers directly constructed instances.
type Hasher struct {
	saltPrefix string
	saltSuffix string
}

// NewHasher creates a Hasher. Both salt parts must be present.
func NewHasher(saltPrefix, saltSuffix string) (*Hasher, error) {
	if saltPrefix == "" || saltSuffix == "" {
		return nil, errors.NewHashingUnavailableError()
	}
	return &Hasher{saltPrefix: saltPrefix, saltSuffix: saltSuffix}, nil
}

// Hash returns the salted digest of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if h == nil || h.saltPrefix == "" || h.saltSuffix == "" {
		return "", errors.NewHashingUnavailableError()
	}
	sum := sha256.Sum256([]byte(h.saltPrefix + plaintext + h.saltSuffix))
	return hex.EncodeToString(sum[:]), nil
}

// Verify compares the stored hash against the hash of candidate under the
// current salt configuration. Pure; no store access.
func (h *Hasher) Verify(storedHash, candidate string) bool {
	computed, err := h.Hash(candidate)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(computed)) == 1
}
