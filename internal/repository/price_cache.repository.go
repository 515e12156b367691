package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PriceCacheEntry is one persisted quote, keyed price_<symbol>_<date>.
// CreatedAt drives oldest-first eviction when the mirror hits its cap.
type PriceCacheEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	CreatedAt time.Time
}

// PriceCacheStore is the durable mirror behind the in-memory price cache.
// It is best-effort plumbing: callers are expected to swallow its errors.
type PriceCacheStore interface {
	GetAll(prefix string) ([]PriceCacheEntry, error)
	Set(key, value string) error
	Remove(key string) error
	Clear(prefix string) error
}

func NewPriceCacheStore(dbFile string) (PriceCacheStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbFile), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}
	if err := db.AutoMigrate(&PriceCacheEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cache db: %w", err)
	}

	return &priceCacheStoreHandler{db: db}, nil
}

type priceCacheStoreHandler struct {
	db *gorm.DB
}

func (s priceCacheStoreHandler) GetAll(prefix string) ([]PriceCacheEntry, error) {
	var entries []PriceCacheEntry
	err := s.db.
		Where("key LIKE ?", prefix+"%").
		Order("created_at asc").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cache entries: %w", err)
	}
	return entries, nil
}

func (s priceCacheStoreHandler) Set(key, value string) error {
	entry := PriceCacheEntry{
		Key:       key,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
	return s.db.Save(&entry).Error
}

func (s priceCacheStoreHandler) Remove(key string) error {
	return s.db.Delete(&PriceCacheEntry{}, "key = ?", key).Error
}

func (s priceCacheStoreHandler) Clear(prefix string) error {
	return s.db.Where("key LIKE ?", prefix+"%").Delete(&PriceCacheEntry{}).Error
}
