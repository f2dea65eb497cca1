package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/samkofte/youtube-api/internal/api"
	"github.com/samkofte/youtube-api/internal/config"
	"github.com/samkofte/youtube-api/internal/downloader"
	"github.com/samkofte/youtube-api/internal/jobs"
	"github.com/samkofte/youtube-api/internal/logger"
	"github.com/samkofte/youtube-api/internal/search"
	"github.com/samkofte/youtube-api/internal/server"

	"github.com/joho/godotenv"
	"github.com/lrstanley/go-ytdlp"
)

func main() {
	godotenv.Load()
	cfg := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := server.PrepareFilesystem(cfg); err != nil {
		log.Error("preparing filesystem failed", "error", err)
		os.Exit(1)
	}

	// Self-provision the yt-dlp binary when it is missing. Failure is not
	// fatal: downloads will surface the error per job.
	installCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if _, err := ytdlp.Install(installCtx, nil); err != nil {
		log.Warn("yt-dlp install check failed", "error", err)
	}
	cancel()

	registry := jobs.NewRegistry()
	dispatcher := downloader.NewDispatcher(downloader.NewEngine(), registry, cfg, log)
	searcher := search.NewService(
		search.NewYouTubeInfoFetcher(),
		search.NewYTSearchFinder(cfg.CookieFile, cfg.UserAgent),
		log,
	)

	jobs.StartJanitor(cfg.DownloadDir, cfg.CleanupAfter, log)

	handler := api.NewHandler(registry, dispatcher, searcher, cfg, log)
	router := api.NewRouter(handler)

	log.Info("YouTube Downloader API started",
		"port", cfg.Port,
		"download_dir", cfg.DownloadDir,
		"ffmpeg_available", downloader.FFmpegAvailable(),
	)

	if err := http.ListenAndServe(cfg.Port, router); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
