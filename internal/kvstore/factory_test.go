package kvstore

import (
	"context"
	"testing"

	"pixelgate/internal/config"
	"pixelgate/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	logger := logging.Discard()

	t.Run("Memory Default", func(t *testing.T) {
		b, err := Open(config.Config{}, logger)
		require.NoError(t, err)
		assert.Equal(t, DriverMemory, b.Driver)
		assert.NoError(t, b.Store.UpsertItems(context.Background(), []Item{{Key: "k", Value: 1}}))
		assert.NoError(t, b.Close())
	})

	t.Run("REST Without Credentials", func(t *testing.T) {
		b, err := Open(config.Config{StoreDriver: DriverREST}, logger)
		require.NoError(t, err)
		err = b.Store.UpsertItems(context.Background(), []Item{{Key: "k", Value: 1}})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("REST Bad Write URL", func(t *testing.T) {
		_, err := Open(config.Config{StoreDriver: DriverREST, EdgeConfigRestURL: "::bad"}, logger)
		assert.Error(t, err)
	})

	t.Run("SQLite", func(t *testing.T) {
		b, err := Open(config.Config{StoreDriver: DriverSQL, DatabaseURL: "sqlite://" + t.TempDir() + "/cfg.db"}, logger)
		require.NoError(t, err)
		defer b.Close()
		assert.NotNil(t, b.DB)

		require.NoError(t, b.Store.UpsertItems(context.Background(), []Item{{Key: "k", Value: "v"}}))
		var got string
		found, err := b.Store.ReadValue(context.Background(), "k", &got)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "v", got)
	})

	t.Run("Unknown Driver", func(t *testing.T) {
		_, err := Open(config.Config{StoreDriver: "etcd"}, logger)
		assert.ErrorContains(t, err, "unsupported config store driver")
	})
}
