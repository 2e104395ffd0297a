package services

import (
	"context"
	"testing"
	"time"

	"pixelgate/internal/logging"
	"pixelgate/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestAuditService(t *testing.T) {
	logger := logging.Discard()

	t.Run("Log Action", func(t *testing.T) {
		db := setupTestDB(t)
		service := NewAuditService(db, logger)
		require.NoError(t, service.Migrate())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go service.Start(ctx)

		service.LogAction(ActionUpsertPixel, "pixel", "px-1", map[string]string{"label": "Main"}, "127.0.0.1")

		var entry models.AuditLog
		assert.Eventually(t, func() bool {
			return db.First(&entry).Error == nil
		}, time.Second, 10*time.Millisecond)
		assert.Equal(t, ActionUpsertPixel, entry.Action)
		assert.Equal(t, "pixel", entry.EntityType)
		assert.Equal(t, "px-1", entry.EntityID)
		assert.Contains(t, entry.Details, "Main")
	})

	t.Run("Drains On Stop", func(t *testing.T) {
		db := setupTestDB(t)
		service := NewAuditService(db, logger)
		require.NoError(t, service.Migrate())

		for i := 0; i < 5; i++ {
			service.LogAction(ActionDeleteProduct, "product", "p", nil, "ip")
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		service.Start(ctx)

		var count int64
		require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
		assert.Equal(t, int64(5), count)
	})

	t.Run("Channel Full", func(t *testing.T) {
		service := NewAuditService(nil, logger)
		for i := 0; i < auditChannelCapacity; i++ {
			service.LogAction("ACTION", "pixel", "ID", nil, "IP")
		}
		service.LogAction("DROP", "pixel", "ID", nil, "IP")
		assert.Len(t, service.entries, auditChannelCapacity)
	})

	t.Run("Logger Only", func(t *testing.T) {
		service := NewAuditService(nil, logger)
		assert.NoError(t, service.Migrate())

		service.LogAction(ActionUpdateAppearance, "appearance", "", nil, "IP")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		service.Start(ctx)
		assert.Empty(t, service.entries)
	})

	t.Run("DB Error", func(t *testing.T) {
		db := setupTestDB(t)
		service := NewAuditService(db, logger)

		// No table: the write fails and is only logged.
		service.LogAction(ActionDeletePixel, "pixel", "ID", nil, "IP")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		service.Start(ctx)
		assert.Empty(t, service.entries)
	})
}
