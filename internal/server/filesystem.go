package server

import (
	"os"

	"github.com/samkofte/youtube-api/internal/config"
)

// PrepareFilesystem creates the download directory the workers write to.
func PrepareFilesystem(cfg *config.Config) error {
	return os.MkdirAll(cfg.DownloadDir, 0755)
}
