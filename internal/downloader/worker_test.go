package downloader

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samkofte/youtube-api/internal/config"
	"github.com/samkofte/youtube-api/internal/jobs"
	"github.com/samkofte/youtube-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine scripts the extraction engine for worker tests.
type fakeEngine struct {
	calls   atomic.Int64
	err     error
	onRun   func(ctx context.Context, req Request, onProgress ProgressFunc) error
	lastReq Request
}

func (f *fakeEngine) Download(ctx context.Context, req Request, onProgress ProgressFunc) error {
	f.calls.Add(1)
	f.lastReq = req
	if f.onRun != nil {
		return f.onRun(ctx, req, onProgress)
	}
	return f.err
}

func testDispatcher(t *testing.T, engine Engine, registry *jobs.Registry) *Dispatcher {
	t.Helper()
	cfg := &config.Config{MaxConcurrentJobs: 2, DownloadDir: t.TempDir()}
	d := NewDispatcher(engine, registry, cfg, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	d.delayMin = time.Millisecond
	d.delayMax = 2 * time.Millisecond
	return d
}

func createJob(registry *jobs.Registry, kind models.FormatKind, quality, dir string) models.Job {
	return registry.Create(jobs.CreateParams{
		VideoURL:   "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Format:     kind,
		Quality:    quality,
		OutputPath: dir,
	})
}

func TestWorker_SuccessPopulatesFileInfo(t *testing.T) {
	registry := jobs.NewRegistry()
	dir := t.TempDir()

	engine := &fakeEngine{}
	engine.onRun = func(ctx context.Context, req Request, onProgress ProgressFunc) error {
		onProgress(ProgressEvent{DownloadedBytes: 512, TotalBytes: 1024, BytesPerSecond: 2 * 1024 * 1024})
		// Simulate the produced media file.
		return os.WriteFile(filepath.Join(dir, "video.mp4"), make([]byte, 2048), 0644)
	}

	d := testDispatcher(t, engine, registry)
	job := createJob(registry, models.FormatMP4, "720p", dir)

	d.run(job)

	got, ok := registry.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, float64(100), got.Progress)
	assert.Equal(t, "Download completed successfully!", got.Message)
	require.NotNil(t, got.FileInfo)
	assert.Equal(t, "video.mp4", got.FileInfo.Filename)
	assert.Equal(t, "MP4", got.FileInfo.Format)
	assert.Equal(t, int64(2048), got.FileInfo.SizeBytes)
	assert.Equal(t, "0.0 MB", got.FileInfo.SizeMB)
}

func TestWorker_ProgressHookWritesAllFieldsAtomically(t *testing.T) {
	registry := jobs.NewRegistry()
	d := testDispatcher(t, &fakeEngine{}, registry)
	job := createJob(registry, models.FormatMP4, "best", t.TempDir())

	hook := d.progressHook(job.ID)
	hook(ProgressEvent{DownloadedBytes: 250, TotalBytes: 1000, BytesPerSecond: 3.5 * 1024 * 1024})

	got, _ := registry.Get(job.ID)
	assert.Equal(t, models.StatusDownloading, got.Status)
	assert.Equal(t, float64(25), got.Progress)
	assert.Equal(t, int64(250), got.DownloadedBytes)
	assert.Equal(t, int64(1000), got.TotalBytes)
	assert.Equal(t, "3.5 MB/s", got.Speed)
}

func TestWorker_ProgressWithoutTotalLeavesPercentage(t *testing.T) {
	registry := jobs.NewRegistry()
	d := testDispatcher(t, &fakeEngine{}, registry)
	job := createJob(registry, models.FormatMP4, "best", t.TempDir())

	hook := d.progressHook(job.ID)
	hook(ProgressEvent{DownloadedBytes: 100, TotalBytes: 1000})
	hook(ProgressEvent{DownloadedBytes: 200, TotalBytes: 0})

	got, _ := registry.Get(job.ID)
	assert.Equal(t, float64(10), got.Progress, "unknown total must not reset progress")
	assert.Equal(t, int64(200), got.DownloadedBytes)
}

func TestWorker_RetriesThenFails(t *testing.T) {
	registry := jobs.NewRegistry()
	engine := &fakeEngine{err: errors.New("HTTP Error 403: Forbidden")}

	d := testDispatcher(t, engine, registry)
	job := createJob(registry, models.FormatAudio, "best", t.TempDir())

	d.run(job)

	assert.Equal(t, int64(3), engine.calls.Load())
	got, _ := registry.Get(job.ID)
	assert.Equal(t, models.StatusError, got.Status)
	assert.Contains(t, got.Message, "HTTP Error 403: Forbidden")
}

func TestWorker_CancellationLeavesCancelledStatus(t *testing.T) {
	registry := jobs.NewRegistry()
	engine := &fakeEngine{}
	engine.onRun = func(ctx context.Context, req Request, onProgress ProgressFunc) error {
		<-ctx.Done()
		return ctx.Err()
	}

	d := testDispatcher(t, engine, registry)
	job := createJob(registry, models.FormatMP4, "best", t.TempDir())

	done := make(chan struct{})
	go func() {
		d.run(job)
		close(done)
	}()

	require.Eventually(t, func() bool {
		got, _ := registry.Get(job.ID)
		return got.Status == models.StatusStarting || got.Status == models.StatusDownloading
	}, 2*time.Second, 10*time.Millisecond)

	registry.MarkCancelled(job.ID)
	<-done

	got, _ := registry.Get(job.ID)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.Equal(t, "Download cancelled", got.Message)
}

func TestWorker_BuildRequest(t *testing.T) {
	registry := jobs.NewRegistry()
	d := testDispatcher(t, &fakeEngine{}, registry)
	d.cfg.CookieFile = "cookies.txt"
	d.cfg.UserAgent = "test-agent"

	mp3 := createJob(registry, models.FormatMP3, "best", "/tmp/out")
	req := d.buildRequest(mp3, true)
	assert.Equal(t, "bestaudio/best", req.FormatExpr)
	assert.True(t, req.ExtractAudio)
	assert.Equal(t, 320, req.AudioBitrate)
	assert.Equal(t, filepath.Join("/tmp/out", "%(title)s.%(ext)s"), req.OutputTemplate)
	assert.Equal(t, "cookies.txt", req.CookieFile)
	assert.Equal(t, "test-agent", req.UserAgent)

	req = d.buildRequest(mp3, false)
	assert.Equal(t, rawAudioFormat, req.FormatExpr)
	assert.False(t, req.ExtractAudio)

	audio := createJob(registry, models.FormatAudio, "best", "/tmp/out")
	req = d.buildRequest(audio, true)
	assert.Equal(t, rawAudioFormat, req.FormatExpr)
	assert.False(t, req.ExtractAudio)

	video := createJob(registry, models.FormatMP4, "1080p", "/tmp/out")
	req = d.buildRequest(video, true)
	assert.Equal(t, VideoFormat("1080p", true), req.FormatExpr)
}

func TestScanProducedFile(t *testing.T) {
	dir := t.TempDir()
	since := time.Now().Add(-time.Minute)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song.m4a"), make([]byte, 1024*1024), 0644))

	info, err := scanProducedFile(dir, since)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "song.m4a", info.Filename)
	assert.Equal(t, "M4A", info.Format)
	assert.Equal(t, int64(1024*1024), info.SizeBytes)
	assert.Equal(t, "1.0 MB", info.SizeMB)
}

func TestScanProducedFile_NoMatch(t *testing.T) {
	info, err := scanProducedFile(t.TempDir(), time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestScanProducedFile_MissingDir(t *testing.T) {
	_, err := scanProducedFile(filepath.Join(t.TempDir(), "missing"), time.Now())
	assert.Error(t, err)
}
