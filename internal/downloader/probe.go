package downloader

import (
	"os/exec"
)

// FFmpegAvailable reports whether the ffmpeg binary is on PATH. Without it
// the worker substitutes raw best-effort formats instead of transcoding.
func FFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// FFprobeAvailable reports whether ffprobe is on PATH. Only advertised as a
// capability flag; nothing is gated on it.
func FFprobeAvailable() bool {
	_, err := exec.LookPath("ffprobe")
	return err == nil
}
