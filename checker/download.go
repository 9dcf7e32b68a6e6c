package checker

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// DownloadStatus describes what the downloader did for one resolved version.
type DownloadStatus int

const (
	Downloaded DownloadStatus = iota
	AlreadyPresent
)

func (s DownloadStatus) String() string {
	switch s {
	case Downloaded:
		return "downloaded"
	case AlreadyPresent:
		return "already present"
	default:
		return "unknown"
	}
}

// FileFetcher downloads a URL to a local path. Satisfied by *modrinth.Client.
type FileFetcher interface {
	DownloadFile(log *zap.SugaredLogger, destinationPath, downloadURL string) error
}

// DownloadLedger records completed downloads. Satisfied by *db.Store; nil
// disables recording.
type DownloadLedger interface {
	RecordDownload(projectSlug, versionID, fileName, installPath string) error
}

// Downloader persists resolved version files into the output directory.
// Idempotent: a file that already exists is never re-fetched or overwritten.
type Downloader struct {
	Client    FileFetcher
	OutputDir string
	Ledger    DownloadLedger
	Log       *zap.SugaredLogger
}

// Download writes the primary file of the outcome's chosen version to the
// output directory. Returns the resulting path alongside the status.
func (d *Downloader) Download(outcome Outcome) (DownloadStatus, string, error) {
	if outcome.Version == nil {
		return 0, "", fmt.Errorf("no version chosen for %s", outcome.Slug)
	}
	file := outcome.Version.PrimaryFile()
	if file == nil {
		return 0, "", fmt.Errorf("version %s of %s has no files", outcome.Version.ID, outcome.Slug)
	}

	destination := filepath.Join(d.OutputDir, file.Filename)
	if _, err := os.Stat(destination); err == nil {
		d.Log.Infow("File already present, skipping download",
			zap.String("file", file.Filename),
			zap.String("directory", d.OutputDir),
		)
		return AlreadyPresent, destination, nil
	} else if !os.IsNotExist(err) {
		return 0, "", fmt.Errorf("failed to check for existing file '%s': %w", destination, err)
	}

	if err := os.MkdirAll(d.OutputDir, 0755); err != nil {
		return 0, "", fmt.Errorf("failed to create output directory '%s': %w", d.OutputDir, err)
	}

	if err := d.Client.DownloadFile(d.Log, destination, file.URL); err != nil {
		return 0, "", fmt.Errorf("download failed for %s: %w", outcome.Slug, err)
	}

	if d.Ledger != nil {
		if err := d.Ledger.RecordDownload(outcome.Slug, outcome.Version.ID, file.Filename, destination); err != nil {
			d.Log.Warnw("Failed to record download", zap.String("slug", outcome.Slug), zap.Error(err))
		}
	}

	return Downloaded, destination, nil
}
