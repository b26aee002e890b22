package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/docflows/pkg/adapters/memory"
	"github.com/aretw0/docflows/pkg/adapters/redis"
	"github.com/aretw0/docflows/pkg/persistence/middleware"
	"github.com/aretw0/docflows/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.SpecStore, cfg middleware.EncryptionConfig) ports.SpecStore {
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunSpecStoreContract(t, encrypted(t, memory.New(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.New()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	doc := ports.Document{Data: []byte(`{"Secret": {"states": []}}`), Format: ports.FormatJSON}
	require.NoError(t, secure.PublishWorkflows(ctx, doc))

	stored, err := underlying.Workflows(ctx)
	require.NoError(t, err)
	assert.NotContains(t, string(stored.Data), "Secret")
	assert.Equal(t, ports.FormatJSON, stored.Format)

	loaded, err := secure.Workflows(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)

	_, err = secure.Checks(ctx)
	assert.ErrorIs(t, err, ports.ErrNotConfigured)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.New()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	storeOld := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, storeOld.PublishChecks(ctx, ports.Document{Data: []byte("old: x"), Format: ports.FormatYAML}))

	storeNew := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	doc, err := storeNew.Checks(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old: x", string(doc.Data))

	require.NoError(t, storeNew.PublishChecks(ctx, ports.Document{Data: []byte("new: x"), Format: ports.FormatYAML}))
	_, err = storeOld.Checks(ctx)
	assert.Error(t, err, "a document sealed with the new key must not open with the old one")
}

func TestEncryptionMiddleware_PlainDocument(t *testing.T) {
	underlying := memory.NewWithDocuments(ports.Document{Data: []byte("{}"), Format: ports.FormatJSON}, ports.Document{})
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	_, err := secure.Workflows(context.Background())
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}

func TestEncryptionMiddleware_KeepsWatch(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := middleware.EncryptionConfig{ActiveKey: generateKey(t)}

	_, ok := encrypted(t, redis.New(mr.Addr(), "", 0), cfg).(ports.Watchable)
	assert.True(t, ok, "a watchable store stays watchable")

	_, ok = encrypted(t, memory.New(), cfg).(ports.Watchable)
	assert.False(t, ok)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	got, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.ParseKey("not base64!")
	assert.Error(t, err)
	_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}
