package search

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// YouTubeInfoFetcher resolves video metadata through the site's internal
// player API instead of spawning the engine binary for every lookup.
type YouTubeInfoFetcher struct {
	client youtube.Client
}

func NewYouTubeInfoFetcher() *YouTubeInfoFetcher {
	return &YouTubeInfoFetcher{}
}

func (f *YouTubeInfoFetcher) VideoInfo(ctx context.Context, url string) (*VideoInfo, error) {
	video, err := f.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, err
	}

	qualities := qualityOptions(video.Formats)

	return &VideoInfo{
		URL:          url,
		Title:        video.Title,
		Duration:     int(video.Duration.Seconds()),
		Uploader:     video.Author,
		ViewCount:    video.Views,
		Thumbnail:    bestThumbnail(video.Thumbnails),
		Qualities:    qualities,
		FormatsCount: len(video.Formats),
	}, nil
}

// qualityOptions lists the selectable qualities for a format list: muxed
// heights, video-only heights annotated as such, an "Audio only" entry when
// audio-only streams exist, with best/worst prepended and heights sorted
// descending.
func qualityOptions(formats youtube.FormatList) []string {
	seen := make(map[string]bool)
	var options []string

	add := func(option string) {
		if !seen[option] {
			seen[option] = true
			options = append(options, option)
		}
	}

	hasAudioOnly := false
	for _, f := range formats {
		switch {
		case strings.Contains(f.MimeType, "video"):
			height := labelHeight(f.QualityLabel)
			if height <= 0 {
				continue
			}
			// Muxed streams list an audio codec after the video codec.
			if strings.Contains(f.MimeType, ",") {
				add(fmt.Sprintf("%dp", height))
			} else {
				add(fmt.Sprintf("%dp (video only)", height))
			}
		case strings.Contains(f.MimeType, "audio"):
			hasAudioOnly = true
		}
	}

	sort.Slice(options, func(i, j int) bool {
		return labelHeight(options[i]) > labelHeight(options[j])
	})
	if hasAudioOnly {
		options = append(options, "Audio only")
	}

	return append([]string{"best", "worst"}, options...)
}

// labelHeight pulls the leading digits out of labels like "1080p60".
func labelHeight(q string) int {
	digits := ""
	for _, c := range q {
		if c >= '0' && c <= '9' {
			digits += string(c)
		} else if digits != "" {
			break
		}
	}
	val, _ := strconv.Atoi(digits)
	return val
}

func bestThumbnail(thumbnails youtube.Thumbnails) string {
	best := ""
	var bestWidth uint
	for _, t := range thumbnails {
		if t.URL != "" && (best == "" || t.Width > bestWidth) {
			best = t.URL
			bestWidth = t.Width
		}
	}
	return best
}
