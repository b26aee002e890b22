package middleware

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/docflows/pkg/ports"
)

// envelopePrefix marks the data of an encrypted document.
var envelopePrefix = []byte("docflows:enc:v1:")

// ErrNotEncrypted is returned when a store behind the encryption middleware
// holds a plain document.
var ErrNotEncrypted = errors.New("document is missing its encryption envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new documents.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt a
	// document, so keys can be rotated without republishing first.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.SpecStore
	config EncryptionConfig
}

// watchableEncryption forwards Watch to a store that supports it.
type watchableEncryption struct {
	*encryptionMiddleware
	watch ports.Watchable
}

func (w *watchableEncryption) Watch(ctx context.Context) (<-chan struct{}, error) {
	return w.watch.Watch(ctx)
}

// NewEncryptionMiddleware creates a middleware that seals document data with
// AES-GCM before it reaches the store and opens it on the way back.
// The document format travels in clear.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, fmt.Errorf("active key must be 32 bytes (AES-256), got %d", len(config.ActiveKey))
	}
	for i, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("fallback key %d must be 32 bytes (AES-256), got %d", i, len(k))
		}
	}
	return func(next ports.SpecStore) ports.SpecStore {
		m := &encryptionMiddleware{next: next, config: config}
		if w, ok := next.(ports.Watchable); ok {
			return &watchableEncryption{encryptionMiddleware: m, watch: w}
		}
		return m
	}, nil
}

// ParseKey decodes a base64 AES-256 key.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid encryption key: want 32 bytes, got %d", len(key))
	}
	return key, nil
}

func (m *encryptionMiddleware) Workflows(ctx context.Context) (ports.Document, error) {
	doc, err := m.next.Workflows(ctx)
	if err != nil {
		return doc, err
	}
	return m.open(doc)
}

func (m *encryptionMiddleware) Checks(ctx context.Context) (ports.Document, error) {
	doc, err := m.next.Checks(ctx)
	if err != nil {
		return doc, err
	}
	return m.open(doc)
}

func (m *encryptionMiddleware) PublishWorkflows(ctx context.Context, doc ports.Document) error {
	sealed, err := m.seal(doc)
	if err != nil {
		return err
	}
	return m.next.PublishWorkflows(ctx, sealed)
}

func (m *encryptionMiddleware) PublishChecks(ctx context.Context, doc ports.Document) error {
	sealed, err := m.seal(doc)
	if err != nil {
		return err
	}
	return m.next.PublishChecks(ctx, sealed)
}

func (m *encryptionMiddleware) seal(doc ports.Document) (ports.Document, error) {
	ciphertext, err := encrypt(doc.Data, m.config.ActiveKey)
	if err != nil {
		return ports.Document{}, fmt.Errorf("failed to encrypt document: %w", err)
	}
	data := make([]byte, len(envelopePrefix)+base64.StdEncoding.EncodedLen(len(ciphertext)))
	copy(data, envelopePrefix)
	base64.StdEncoding.Encode(data[len(envelopePrefix):], ciphertext)
	return ports.Document{Data: data, Format: doc.Format}, nil
}

func (m *encryptionMiddleware) open(doc ports.Document) (ports.Document, error) {
	encoded, ok := bytes.CutPrefix(bytes.TrimSpace(doc.Data), envelopePrefix)
	if !ok {
		return ports.Document{}, ErrNotEncrypted
	}
	ciphertext := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(ciphertext, encoded)
	if err != nil {
		return ports.Document{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	// Try Active, then Fallback
	plain, err := decryptWithRotation(ciphertext[:n], m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return ports.Document{}, fmt.Errorf("failed to decrypt document: %w", err)
	}
	return ports.Document{Data: plain, Format: doc.Format}, nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
