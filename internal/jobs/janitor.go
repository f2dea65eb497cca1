package jobs

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// StartJanitor periodically removes stale yt-dlp partial artifacts from the
// download directory. Job records are never expired here: they are removed
// only through explicit delete/clear calls.
func StartJanitor(dir string, maxAge time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(maxAge)

	go func() {
		for range ticker.C {
			scrubPartials(dir, maxAge, logger)
		}
	}()
}

func scrubPartials(dir string, maxAge time.Duration, logger *slog.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("janitor: cannot read download dir", "dir", dir, "error", err)
		return
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".part" && ext != ".ytdl" {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warn("janitor: cannot remove partial file", "path", path, "error", err)
			continue
		}
		logger.Info("janitor: removed stale partial file", "path", path)
	}
}
