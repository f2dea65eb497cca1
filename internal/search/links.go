package search

import "fmt"

// DownloadLinks holds every quality/format permutation a client can start
// for one video.
type DownloadLinks struct {
	MP3 map[string]string `json:"mp3"`
	MP4 map[string]string `json:"mp4"`
}

// BuildDownloadLinks renders the start-download URLs for one video.
func BuildDownloadLinks(videoURL string) DownloadLinks {
	mp3 := make(map[string]string, 5)
	for _, quality := range []string{"best", "high", "medium", "low"} {
		mp3[quality] = fmt.Sprintf("/api/download/mp3?url=%s&quality=%s", videoURL, quality)
	}
	mp3["audio_only"] = fmt.Sprintf("/api/download/audio?url=%s", videoURL)

	mp4 := make(map[string]string, 5)
	for _, quality := range []string{"best", "1080p", "720p", "480p", "360p"} {
		mp4[quality] = fmt.Sprintf("/api/download/mp4?url=%s&quality=%s", videoURL, quality)
	}

	return DownloadLinks{MP3: mp3, MP4: mp4}
}
