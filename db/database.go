package db

import (
	"errors"
	"log"
	"os"
	"time"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store wraps the SQLite database backing the response cache and the
// download ledger.
type Store struct {
	db *gorm.DB
}

// Open initializes the SQLite database connection and migrates models.
func Open(dbPath string) (*Store, error) {
	// Configure GORM logger
	newLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      false,
			Colorful:                  true,
		},
	)

	gdb, err := gorm.Open(gormlite.Open(dbPath), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(&CacheEntry{}, &Download{}); err != nil {
		return nil, err
	}

	return &Store{db: gdb}, nil
}

// Get returns the cached payload for key if it exists and is younger than maxAge.
func (s *Store) Get(key string, maxAge time.Duration) ([]byte, bool) {
	var entry CacheEntry
	result := s.db.Where("key = ?", key).First(&entry)
	if result.Error != nil {
		return nil, false
	}
	if time.Since(entry.FetchedAt) > maxAge {
		return nil, false
	}
	return entry.Payload, true
}

// Put stores or refreshes the cached payload for key.
func (s *Store) Put(key string, payload []byte) error {
	var entry CacheEntry
	result := s.db.Where("key = ?", key).First(&entry)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return s.db.Create(&CacheEntry{Key: key, Payload: payload, FetchedAt: time.Now()}).Error
	}
	if result.Error != nil {
		return result.Error
	}
	entry.Payload = payload
	entry.FetchedAt = time.Now()
	return s.db.Save(&entry).Error
}

// ClearCache drops every cached response. Download records are kept.
func (s *Store) ClearCache() (int64, error) {
	result := s.db.Unscoped().Where("1 = 1").Delete(&CacheEntry{})
	return result.RowsAffected, result.Error
}

// CacheStats reports the number of cached responses and the age of the oldest.
func (s *Store) CacheStats() (count int64, oldest time.Time, err error) {
	if err = s.db.Model(&CacheEntry{}).Count(&count).Error; err != nil {
		return 0, time.Time{}, err
	}
	if count == 0 {
		return 0, time.Time{}, nil
	}
	var entry CacheEntry
	if err = s.db.Order("fetched_at ASC").First(&entry).Error; err != nil {
		return count, time.Time{}, err
	}
	return count, entry.FetchedAt, nil
}

// RecordDownload saves a completed download in the ledger.
func (s *Store) RecordDownload(projectSlug, versionID, fileName, installPath string) error {
	var existing Download
	result := s.db.Where("project_slug = ? AND version_id = ?", projectSlug, versionID).First(&existing)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return s.db.Create(&Download{
			ProjectSlug: projectSlug,
			VersionID:   versionID,
			FileName:    fileName,
			InstallPath: installPath,
		}).Error
	}
	if result.Error != nil {
		return result.Error
	}
	existing.FileName = fileName
	existing.InstallPath = installPath
	return s.db.Save(&existing).Error
}
