package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samkofte/youtube-api/internal/config"
	"github.com/samkofte/youtube-api/internal/jobs"
	"github.com/samkofte/youtube-api/internal/models"
)

const (
	maxAttempts   = 3
	retryDelayMin = 2 * time.Second
	retryDelayMax = 5 * time.Second
)

// mediaExtensions are the output extensions the finalizer scans for.
var mediaExtensions = map[string]bool{
	".m4a":  true,
	".webm": true,
	".mp3":  true,
	".mp4":  true,
	".mkv":  true,
}

// Dispatcher runs one background worker per dispatched job. Workers are
// fire-and-forget: the handler that started one never joins it, all
// outcomes surface through the registry.
type Dispatcher struct {
	engine   Engine
	registry *jobs.Registry
	slots    chan struct{}
	cfg      *config.Config
	logger   *slog.Logger

	attempts int
	delayMin time.Duration
	delayMax time.Duration
}

func NewDispatcher(engine Engine, registry *jobs.Registry, cfg *config.Config, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		engine:   engine,
		registry: registry,
		slots:    make(chan struct{}, cfg.MaxConcurrentJobs),
		cfg:      cfg,
		logger:   logger,
		attempts: maxAttempts,
		delayMin: retryDelayMin,
		delayMax: retryDelayMax,
	}
}

// Dispatch spawns the worker for an already-created job and returns
// immediately.
func (d *Dispatcher) Dispatch(job models.Job) {
	go d.run(job)
}

func (d *Dispatcher) run(job models.Job) {
	ctx, cancel := context.WithCancel(context.Background())
	d.registry.SetCancel(job.ID, cancel)
	defer cancel()

	// Bounded concurrency: the job stays queued until a slot frees up.
	select {
	case d.slots <- struct{}{}:
		defer func() { <-d.slots }()
	case <-ctx.Done():
		return
	}

	ffmpeg := FFmpegAvailable()
	display := formatDisplay(job.Format, job.Quality, ffmpeg)

	started := d.registry.UpdateActive(job.ID, func(j *models.Job) {
		j.Status = models.StatusStarting
		j.FFmpegAvailable = ffmpeg
		j.Message = fmt.Sprintf("Starting download... Format: %s", display)
		if job.Format == models.FormatMP3 && !ffmpeg {
			j.Note = "MP3 conversion available once FFmpeg is installed"
		}
	})
	if !started {
		// Cancelled or deleted while queued.
		return
	}

	if err := os.MkdirAll(job.OutputPath, 0755); err != nil {
		d.registry.Finalize(job.ID, models.StatusError, func(j *models.Job) {
			j.Message = fmt.Sprintf("Download error: %v", err)
		})
		return
	}

	req := d.buildRequest(job, ffmpeg)
	hook := d.progressHook(job.ID)

	err := d.downloadWithRetry(ctx, req, hook)
	if err != nil {
		if ctx.Err() != nil {
			// The registry already carries the cancelled status.
			d.logger.Info("worker stopped by cancellation", "job_id", job.ID)
			return
		}
		d.logger.Error("download failed", "job_id", job.ID, "url", job.VideoURL, "error", err)
		d.registry.Finalize(job.ID, models.StatusError, func(j *models.Job) {
			j.Message = fmt.Sprintf("Download error: %v", err)
		})
		return
	}

	d.registry.UpdateActive(job.ID, func(j *models.Job) {
		j.Status = models.StatusFinished
		j.Progress = 100
	})

	info, scanErr := scanProducedFile(job.OutputPath, job.StartTime)
	if scanErr != nil {
		d.registry.UpdateActive(job.ID, func(j *models.Job) {
			j.Warning = fmt.Sprintf("Could not read file info: %v", scanErr)
		})
	}

	d.registry.Finalize(job.ID, models.StatusCompleted, func(j *models.Job) {
		j.Message = "Download completed successfully!"
		if info != nil {
			j.FileInfo = info
		}
	})
	d.logger.Info("download completed", "job_id", job.ID, "url", job.VideoURL)
}

func (d *Dispatcher) buildRequest(job models.Job, ffmpegAvailable bool) Request {
	req := Request{
		URL:            job.VideoURL,
		OutputTemplate: filepath.Join(job.OutputPath, "%(title)s.%(ext)s"),
		CookieFile:     d.cfg.CookieFile,
		UserAgent:      d.cfg.UserAgent,
	}

	switch job.Format {
	case models.FormatMP3:
		if ffmpegAvailable {
			req.FormatExpr = "bestaudio/best"
			req.ExtractAudio = true
			req.AudioBitrate = AudioBitrate(job.Quality)
		} else {
			req.FormatExpr = rawAudioFormat
		}
	case models.FormatAudio:
		req.FormatExpr = rawAudioFormat
	default:
		req.FormatExpr = VideoFormat(job.Quality, ffmpegAvailable)
	}
	return req
}

// progressHook bridges engine progress events into the registry. All fields
// of one event land in one atomic update.
func (d *Dispatcher) progressHook(jobID string) ProgressFunc {
	return func(event ProgressEvent) {
		d.registry.UpdateActive(jobID, func(j *models.Job) {
			j.Status = models.StatusDownloading
			j.DownloadedBytes = event.DownloadedBytes
			j.TotalBytes = event.TotalBytes
			if event.TotalBytes > 0 {
				j.Progress = float64(event.DownloadedBytes) / float64(event.TotalBytes) * 100
			}
			if event.BytesPerSecond > 0 {
				j.Speed = fmt.Sprintf("%.1f MB/s", event.BytesPerSecond/1024/1024)
			}
		})
	}
}

// downloadWithRetry calls the engine up to maxAttempts times with a
// randomized delay between attempts to avoid correlated rejection by the
// remote service. The last error is returned verbatim.
func (d *Dispatcher) downloadWithRetry(ctx context.Context, req Request, onProgress ProgressFunc) error {
	var lastErr error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		if attempt > 1 {
			delay := d.delayMin
			if d.delayMax > d.delayMin {
				delay += time.Duration(rand.Int63n(int64(d.delayMax - d.delayMin)))
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			d.logger.Info("retrying download", "url", req.URL, "attempt", attempt)
		}

		lastErr = d.engine.Download(ctx, req, onProgress)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return lastErr
}

// scanProducedFile looks for the newest media file written to dir since the
// job started. Concurrent jobs writing to the same directory may race here;
// the result is best-effort.
func scanProducedFile(dir string, since time.Time) (*models.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var (
		newest    *models.FileInfo
		newestMod time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !mediaExtensions[ext] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		// Small slack so files written right at dispatch time still count.
		if info.ModTime().Before(since.Add(-time.Second)) {
			continue
		}
		if newest == nil || info.ModTime().After(newestMod) {
			newestMod = info.ModTime()
			newest = &models.FileInfo{
				Filename:  entry.Name(),
				Format:    strings.ToUpper(strings.TrimPrefix(ext, ".")),
				SizeBytes: info.Size(),
				SizeMB:    fmt.Sprintf("%.1f MB", float64(info.Size())/(1024*1024)),
			}
		}
	}
	return newest, nil
}
