package storage

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealedKeyInfo = "sharedstore-at-rest-v1"

// ErrCorrupted is returned when a sealed value fails authentication.
var ErrCorrupted = errors.New("storage: sealed value corrupted")

// SealedStore encrypts values before handing them to an inner Store.
//
// Each value is sealed with XChaCha20-Poly1305 under a key derived from the
// configured secret. The item key is bound as additional data so a value
// cannot be moved to another key undetected.
type SealedStore struct {
	inner Store
	aead  cipher.AEAD
}

// NewSealedStore wraps inner with at-rest encryption keyed by secret.
func NewSealedStore(inner Store, secret []byte) (*SealedStore, error) {
	if len(secret) == 0 {
		return nil, errors.New("storage: encryption key is empty")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(sealedKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("storage: derive key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("storage: init cipher: %w", err)
	}

	return &SealedStore{inner: inner, aead: aead}, nil
}

// GetItem returns the decrypted value stored under key.
func (s *SealedStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	sealed, ok, err := s.inner.GetItem(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s", ErrCorrupted, key)
	}
	ns := s.aead.NonceSize()
	if len(raw) < ns+s.aead.Overhead() {
		return "", false, fmt.Errorf("%w: %s", ErrCorrupted, key)
	}

	plain, err := s.aead.Open(nil, raw[:ns], raw[ns:], []byte(key))
	if err != nil {
		return "", false, fmt.Errorf("%w: %s", ErrCorrupted, key)
	}
	return string(plain), true, nil
}

// SetItem encrypts value and stores it under key.
func (s *SealedStore) SetItem(ctx context.Context, key, value string) error {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(value)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("storage: generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return s.inner.SetItem(ctx, key, base64.StdEncoding.EncodeToString(sealed))
}

// RemoveItem deletes key from the inner store.
func (s *SealedStore) RemoveItem(ctx context.Context, key string) error {
	return s.inner.RemoveItem(ctx, key)
}

// Close closes the inner store.
func (s *SealedStore) Close() error {
	return s.inner.Close()
}
