package db

import (
	"time"

	"gorm.io/gorm"
)

// CacheEntry is a raw Modrinth API response stored for reuse between runs.
// Key is "project:<slug>", "versions:<slug>" or "version:<id>".
type CacheEntry struct {
	gorm.Model
	Key       string `gorm:"uniqueIndex"`
	Payload   []byte
	FetchedAt time.Time
}

// Download records a file written to the output directory, so repeat runs
// can report what is already present.
type Download struct {
	gorm.Model
	ProjectSlug string
	VersionID   string
	FileName    string
	InstallPath string
}
