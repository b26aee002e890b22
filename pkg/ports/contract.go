package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSpecStoreContract runs a suite of tests to verify that a SpecStore
// implementation adheres to the interface contract. The store must start empty.
func RunSpecStoreContract(t *testing.T, store SpecStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Empty Store", func(t *testing.T) {
		_, err := store.Workflows(ctx)
		assert.ErrorIs(t, err, ErrNotConfigured)

		_, err = store.Checks(ctx)
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("Publish and Read Workflows", func(t *testing.T) {
		doc := Document{Data: []byte(`{"Flow":{"states":["a"],"transitions":[],"initial_state":"a"}}`), Format: FormatJSON}
		require.NoError(t, store.PublishWorkflows(ctx, doc))

		got, err := store.Workflows(ctx)
		require.NoError(t, err)
		assert.Equal(t, doc.Format, got.Format)
		assert.Equal(t, string(doc.Data), string(got.Data))
	})

	t.Run("Publish and Read Checks", func(t *testing.T) {
		doc := Document{Data: []byte("- name: ok\n  expression: \"true\"\n"), Format: FormatYAML}
		require.NoError(t, store.PublishChecks(ctx, doc))

		got, err := store.Checks(ctx)
		require.NoError(t, err)
		assert.Equal(t, FormatYAML, got.Format)
		assert.Equal(t, string(doc.Data), string(got.Data))
	})

	t.Run("Overwrite", func(t *testing.T) {
		doc := Document{Data: []byte(`{}`), Format: FormatJSON}
		require.NoError(t, store.PublishWorkflows(ctx, doc))

		got, err := store.Workflows(ctx)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(got.Data))
	})
}
