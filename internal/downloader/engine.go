package downloader

import (
	"context"
	"fmt"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// ProgressEvent carries one progress observation from the engine.
type ProgressEvent struct {
	DownloadedBytes int64
	TotalBytes      int64
	BytesPerSecond  float64
}

// ProgressFunc receives progress events while a download runs. It may be
// invoked from the engine's own goroutines.
type ProgressFunc func(ProgressEvent)

// Request describes one engine invocation.
type Request struct {
	URL            string
	FormatExpr     string
	OutputTemplate string
	ExtractAudio   bool // convert to mp3 via ffmpeg postprocessing
	AudioBitrate   int  // kbps, only meaningful with ExtractAudio
	CookieFile     string
	UserAgent      string
}

// Engine is the external extraction engine contract. The real work of
// resolving manifests, picking streams and fetching bytes happens behind
// this boundary.
type Engine interface {
	Download(ctx context.Context, req Request, onProgress ProgressFunc) error
}

// YTDLPEngine drives the yt-dlp binary through go-ytdlp.
type YTDLPEngine struct {
	// ProgressInterval throttles how often yt-dlp reports progress.
	ProgressInterval time.Duration
}

func NewEngine() *YTDLPEngine {
	return &YTDLPEngine{ProgressInterval: 500 * time.Millisecond}
}

func (e *YTDLPEngine) Download(ctx context.Context, req Request, onProgress ProgressFunc) error {
	dl := ytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		NoPlaylist().
		Format(req.FormatExpr).
		Output(req.OutputTemplate)

	if req.ExtractAudio {
		dl = dl.ExtractAudio().
			AudioFormat("mp3").
			AudioQuality(fmt.Sprintf("%dK", req.AudioBitrate))
	}
	if req.CookieFile != "" {
		dl = dl.Cookies(req.CookieFile)
	}
	if req.UserAgent != "" {
		dl = dl.UserAgent(req.UserAgent)
	}

	if onProgress != nil {
		dl.ProgressFunc(e.ProgressInterval, func(update ytdlp.ProgressUpdate) {
			event := ProgressEvent{
				DownloadedBytes: int64(update.DownloadedBytes),
				TotalBytes:      int64(update.TotalBytes),
			}
			if !update.Started.IsZero() {
				if elapsed := time.Since(update.Started).Seconds(); elapsed > 0 {
					event.BytesPerSecond = float64(update.DownloadedBytes) / elapsed
				}
			}
			onProgress(event)
		})
	}

	_, err := dl.Run(ctx, req.URL)
	return err
}
