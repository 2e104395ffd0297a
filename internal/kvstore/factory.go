package kvstore

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"pixelgate/internal/config"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	DriverREST   = "rest"
	DriverRedis  = "redis"
	DriverSQL    = "sql"
	DriverMemory = "memory"
)

// Backend is the opened store plus the raw connections behind it, so the
// caller can reuse (and close) them.
type Backend struct {
	Store  Store
	Driver string
	DB     *gorm.DB
	Redis  *redis.Client
}

// Open picks the store implementation named by CONFIG_STORE_DRIVER.
func Open(cfg config.Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{Driver: cfg.StoreDriver}

	switch cfg.StoreDriver {
	case DriverREST:
		var writeBase *url.URL
		if cfg.EdgeConfigRestURL != "" {
			base, err := cfg.RestBaseURL()
			if err != nil {
				return nil, err
			}
			writeBase = base
		}
		store, err := NewRESTStore(RESTOptions{
			ReadURL:    cfg.EdgeConfigURL,
			WriteURL:   writeBase,
			WriteToken: cfg.EdgeConfigRestToken,
			TeamID:     cfg.EdgeConfigTeamID,
		})
		if err != nil {
			return nil, err
		}
		if cfg.EdgeConfigURL == "" {
			logger.Warn("EDGE_CONFIG not set, config store reads will fail")
		}
		if writeBase == nil || cfg.EdgeConfigRestToken == "" {
			logger.Warn("Config store write not configured (missing REST API URL or token)")
		}
		b.Store = store

	case DriverRedis:
		rdb, err := InitRedis(cfg.RedisURL, cfg.RedisPassword, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		b.Redis = rdb
		b.Store = NewRedisStore(rdb)

	case DriverSQL:
		db, err := InitDB(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(cfg.DatabaseURL, "postgres") {
			logger.Info("Running database migrations...")
			if err := RunMigrations(cfg.DatabaseURL, ""); err != nil {
				return nil, fmt.Errorf("migration failed: %w", err)
			}
		} else if err := db.AutoMigrate(&ConfigItem{}); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		b.DB = db
		b.Store = NewSQLStore(db)

	case DriverMemory, "":
		logger.Warn("Using in-memory config store, records are lost on restart")
		b.Driver = DriverMemory
		b.Store = NewMemoryStore()

	default:
		return nil, fmt.Errorf("unsupported config store driver: %q", cfg.StoreDriver)
	}

	b.Store = Instrumented(b.Store)
	return b, nil
}

// Close releases the connections Open created.
func (b *Backend) Close() error {
	if b.Redis != nil {
		return b.Redis.Close()
	}
	if b.DB != nil {
		sqlDB, err := b.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
