// Package crypto seals personal data (phone numbers) before it is written to
// Firestore, so the users collection never holds it in the clear.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var (
	ErrInvalidKey    = errors.New("encryption key must be 32 bytes (AES-256) after base64 decoding")
	ErrMalformedSeal = errors.New("sealed value is malformed")
)

// DecodeKey decodes a base64 AES-256 key.
func DecodeKey(keyBase64 string) ([]byte, error) {
	if keyBase64 == "" {
		return nil, errors.New("encryption key is empty")
	}
	key, err := base64.StdEncoding.DecodeString(keyBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key from base64: %w", err)
	}
	if len(key) != 32 {
		return nil, ErrInvalidKey
	}
	return key, nil
}

// Sealer encrypts and decrypts short strings with AES-256-GCM.
// Output is base64(nonce || ciphertext || tag).
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer from a base64 key.
func NewSealer(keyBase64 string) (*Sealer, error) {
	key, err := DecodeKey(keyBase64)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plainText. Empty input seals to empty output.
func (s *Sealer) Seal(plainText string) (string, error) {
	if plainText == "" {
		return "", nil
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedSeal, err)
	}
	n := s.aead.NonceSize()
	if len(raw) < n+s.aead.Overhead() {
		return "", ErrMalformedSeal
	}
	plain, err := s.aead.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedSeal, err)
	}
	return string(plain), nil
}
