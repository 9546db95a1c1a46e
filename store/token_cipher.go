package store

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrBadCipherKey indicates a sealing key of the wrong length.
var ErrBadCipherKey = errors.New("token cipher key must be 32 bytes")

const sealedPrefix = "enc:"

// TokenCipher seals OAuth tokens before they reach the database. With no key
// it is a passthrough, so deployments opt in by configuring one.
type TokenCipher struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
		NonceSize() int
	}
}

// NoopTokenCipher returns a passthrough cipher.
func NoopTokenCipher() *TokenCipher {
	return &TokenCipher{}
}

// NewTokenCipher creates a cipher from a 32-byte key.
func NewTokenCipher(key []byte) (*TokenCipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrBadCipherKey
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &TokenCipher{aead: aead}, nil
}

// Seal encrypts a token for storage. Empty tokens pass through so cleared
// credentials stay recognizably empty in the database.
func (c *TokenCipher) Seal(token string) (string, error) {
	if c.aead == nil || token == "" {
		return token, nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(token), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a stored token. Values without the sealed prefix are
// returned as-is, which keeps rows written before sealing was enabled
// readable.
func (c *TokenCipher) Open(stored string) (string, error) {
	if c.aead == nil || stored == "" {
		return stored, nil
	}
	if len(stored) < len(sealedPrefix) || stored[:len(sealedPrefix)] != sealedPrefix {
		return stored, nil
	}
	raw, err := base64.StdEncoding.DecodeString(stored[len(sealedPrefix):])
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed token: %w", err)
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns {
		return "", errors.New("sealed token too short")
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed token: %w", err)
	}
	return string(plain), nil
}
