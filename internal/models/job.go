package models

import (
	"time"
)

// Status is the lifecycle state of a download job.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusStarting    Status = "starting"
	StatusDownloading Status = "downloading"
	StatusFinished    Status = "finished"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"
	StatusCancelled   Status = "cancelled"
)

// IsActive reports whether the job is still being worked on.
func (s Status) IsActive() bool {
	return s == StatusQueued || s == StatusStarting || s == StatusDownloading || s == StatusFinished
}

// IsTerminal reports whether the job reached a final state. Terminal jobs
// are never mutated again.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}

// FormatKind selects what the worker asks the engine to produce.
type FormatKind string

const (
	FormatMP3   FormatKind = "mp3"   // audio, converted to mp3 when ffmpeg is present
	FormatAudio FormatKind = "audio" // raw best audio, no conversion
	FormatMP4   FormatKind = "mp4"   // video
)

// FileInfo describes the file a completed job produced.
type FileInfo struct {
	Filename  string `json:"filename"`
	Format    string `json:"format"`
	SizeBytes int64  `json:"size_bytes"`
	SizeMB    string `json:"size_mb"`
}

// Job holds the full status record of one download request. Request
// parameters (VideoURL, Format, Quality, OutputPath) are set at creation
// and never change; everything else is written by the owning worker and
// its progress hook.
type Job struct {
	ID              string     `json:"id"`
	Status          Status     `json:"status"`
	Progress        float64    `json:"progress"`
	Speed           string     `json:"speed"`
	DownloadedBytes int64      `json:"downloaded_bytes"`
	TotalBytes      int64      `json:"total_bytes"`
	Message         string     `json:"message"`
	Note            string     `json:"note,omitempty"`
	Warning         string     `json:"warning,omitempty"`
	VideoURL        string     `json:"video_url"`
	Format          FormatKind `json:"format"`
	Quality         string     `json:"quality"`
	OutputPath      string     `json:"output_path"`
	FFmpegAvailable bool       `json:"ffmpeg_available"`
	FileInfo        *FileInfo  `json:"file_info,omitempty"`
	StartTime       time.Time  `json:"-"`
}

// Elapsed returns the time since the job was created.
func (j *Job) Elapsed() time.Duration {
	return time.Since(j.StartTime)
}
