package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfigItem is one row of the SQL-backed config store.
type ConfigItem struct {
	Key       string    `gorm:"column:item_key;primaryKey;size:255"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (ConfigItem) TableName() string {
	return "config_items"
}

func InitDB(databaseURL string) (*gorm.DB, error) {
	var dialer gorm.Dialector
	if strings.HasPrefix(databaseURL, "postgres") {
		dialer = postgres.Open(databaseURL)
	} else if strings.HasPrefix(databaseURL, "sqlite") {
		dialer = sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite://"))
	} else {
		return nil, fmt.Errorf("unsupported database driver: %s", databaseURL)
	}

	db, err := gorm.Open(dialer, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func RunMigrations(databaseURL string, sourcePath string) error {
	if sourcePath == "" {
		sourcePath = "file://migration"
	}
	m, err := migrate.New(
		sourcePath,
		databaseURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run up migrations: %w", err)
	}

	log.Println("Database migrations ran successfully")
	return nil
}

type SQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) ReadValue(ctx context.Context, key string, dst any) (bool, error) {
	var item ConfigItem
	err := s.db.WithContext(ctx).Where("item_key = ?", key).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sql read %q: %w", key, err)
	}
	return decodeInto(key, []byte(item.Value), dst)
}

func (s *SQLStore) ReadValues(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	var items []ConfigItem
	if err := s.db.WithContext(ctx).Where("item_key IN ?", keys).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("sql read many: %w", err)
	}
	for _, item := range items {
		if item.Value == "" || item.Value == "null" {
			continue
		}
		out[item.Key] = json.RawMessage(item.Value)
	}
	return out, nil
}

func (s *SQLStore) UpsertItems(ctx context.Context, items []Item) error {
	encoded, err := encodeItems(items)
	if err != nil {
		return err
	}

	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, item := range items {
			if item.op() == OpDelete {
				if err := tx.Where("item_key = ?", item.Key).Delete(&ConfigItem{}).Error; err != nil {
					return fmt.Errorf("sql delete %q: %w", item.Key, err)
				}
				continue
			}
			row := ConfigItem{Key: item.Key, Value: string(encoded[i]), UpdatedAt: now}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "item_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("sql upsert %q: %w", item.Key, err)
			}
		}
		return nil
	})
}
