package downloader

import (
	"testing"

	"github.com/samkofte/youtube-api/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestVideoFormat(t *testing.T) {
	tests := []struct {
		name    string
		quality string
		ffmpeg  bool
		want    string
	}{
		{"best", "best", true, "best[ext=mp4]/best"},
		{"worst", "worst", true, "worst[ext=mp4]/worst"},
		{"hd with ffmpeg merges audio", "1080p", true,
			"best[height>=1080][ext=mp4]/best[height>=1080]+bestaudio/best[height>=1080]/best"},
		{"720p boundary counts as hd", "720p", true,
			"best[height>=720][ext=mp4]/best[height>=720]+bestaudio/best[height>=720]/best"},
		{"hd without ffmpeg drops the merge", "1080p", false,
			"best[height>=1080][ext=mp4]/best[height>=1080]/best"},
		{"sd is exact height", "480p", true,
			"best[height=480][ext=mp4]/best[height=480]/best"},
		{"360p", "360p", false,
			"best[height=360][ext=mp4]/best[height=360]/best"},
		{"4k alias", "4k", true,
			"best[height>=2160][ext=mp4]/best[height>=2160]+bestaudio/best[height>=2160]/best"},
		{"unrecognized defaults to best", "potato", true, "best[ext=mp4]/best"},
		{"empty defaults to best", "", false, "best[ext=mp4]/best"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VideoFormat(tt.quality, tt.ffmpeg))
		})
	}
}

func TestAudioBitrate(t *testing.T) {
	tests := []struct {
		quality string
		want    int
	}{
		{"best", 320},
		{"high", 256},
		{"medium", 192},
		{"low", 128},
		{"worst", 96},
		{"unknown", 192},
		{"", 192},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AudioBitrate(tt.quality), "quality %q", tt.quality)
	}
}

func TestParseHeight(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"720p", 720},
		{"1080p60", 1080},
		{"4k", 2160},
		{"best", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseHeight(tt.in), "input %q", tt.in)
	}
}

func TestFormatDisplay(t *testing.T) {
	assert.Equal(t, "MP3 320kbps (FFmpeg)", formatDisplay(models.FormatMP3, "best", true))
	assert.Equal(t, "Audio (best quality - FFmpeg required for MP3 conversion)",
		formatDisplay(models.FormatMP3, "best", false))
	assert.Equal(t, "Audio (without FFmpeg)", formatDisplay(models.FormatAudio, "best", true))
	assert.Equal(t, "Video 1080p (Simple Format)", formatDisplay(models.FormatMP4, "1080p", false))
	assert.Equal(t, "Video 480p (HD Format)", formatDisplay(models.FormatMP4, "480p", true))
}
