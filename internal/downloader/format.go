package downloader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samkofte/youtube-api/internal/models"
)

// audioBitrates maps the public quality tokens to mp3 bitrates in kbps.
var audioBitrates = map[string]int{
	"best":   320,
	"high":   256,
	"medium": 192,
	"low":    128,
	"worst":  96,
}

const defaultAudioBitrate = 192

// rawAudioFormat grabs the best audio stream without any conversion, so it
// works with or without ffmpeg installed.
const rawAudioFormat = "bestaudio[ext=m4a]/bestaudio[ext=webm]/bestaudio/best"

// AudioBitrate resolves a quality token to an mp3 bitrate. Unrecognized
// tokens fall back to 192 kbps.
func AudioBitrate(quality string) int {
	if kbps, ok := audioBitrates[quality]; ok {
		return kbps
	}
	return defaultAudioBitrate
}

// VideoFormat builds the yt-dlp format-selection expression for a video
// quality token. HD requests (>=720p) fall back through progressively looser
// constraints and may merge a separate audio stream; merging needs ffmpeg,
// so without it the expression is simplified to pre-muxed candidates only.
func VideoFormat(quality string, ffmpegAvailable bool) string {
	switch quality {
	case "best":
		return "best[ext=mp4]/best"
	case "worst":
		return "worst[ext=mp4]/worst"
	}

	height := parseHeight(quality)
	if height <= 0 {
		return "best[ext=mp4]/best"
	}
	if height >= 720 {
		if !ffmpegAvailable {
			return fmt.Sprintf("best[height>=%d][ext=mp4]/best[height>=%d]/best", height, height)
		}
		return fmt.Sprintf("best[height>=%d][ext=mp4]/best[height>=%d]+bestaudio/best[height>=%d]/best",
			height, height, height)
	}
	return fmt.Sprintf("best[height=%d][ext=mp4]/best[height=%d]/best", height, height)
}

// parseHeight extracts the numeric height from tokens like "720p" or
// "1080p60". Returns 0 when the token carries no digits.
func parseHeight(q string) int {
	if q == "4k" {
		return 2160
	}
	digits := ""
	for _, c := range q {
		if c >= '0' && c <= '9' {
			digits += string(c)
		} else if digits != "" {
			break
		}
	}
	if digits == "" {
		return 0
	}
	val, _ := strconv.Atoi(digits)
	return val
}

// formatDisplay is the human-readable format description recorded in the
// job's status message when the download starts.
func formatDisplay(kind models.FormatKind, quality string, ffmpegAvailable bool) string {
	switch kind {
	case models.FormatMP3:
		if ffmpegAvailable {
			return fmt.Sprintf("MP3 %dkbps (FFmpeg)", AudioBitrate(quality))
		}
		return "Audio (best quality - FFmpeg required for MP3 conversion)"
	case models.FormatAudio:
		return "Audio (without FFmpeg)"
	default:
		if !ffmpegAvailable && strings.Contains(VideoFormat(quality, true), "+") {
			return fmt.Sprintf("Video %s (Simple Format)", quality)
		}
		return fmt.Sprintf("Video %s (HD Format)", quality)
	}
}
