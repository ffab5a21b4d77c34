package security

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Key purposes; each gets an independent key derived from the application secret
const (
	PurposeSession = "namegame session v1"
	PurposeCSRF    = "namegame csrf v1"
)

// Keyring derives per-purpose keys from one application secret
type Keyring struct {
	secret []byte
}

// NewKeyring creates a keyring over secret. An empty secret is replaced by a
// random one, so tokens issued before a restart stop validating.
func NewKeyring(secret string) (*Keyring, error) {
	if secret != "" {
		return &Keyring{secret: []byte(secret)}, nil
	}
	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	return &Keyring{secret: random}, nil
}

// Derive returns a 32-byte key for purpose
func (k *Keyring) Derive(purpose string) []byte {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, k.secret, nil, []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf only fails past 255 blocks of output
		panic(err)
	}
	return key
}
