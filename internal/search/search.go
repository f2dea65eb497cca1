package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
)

// ErrNoResults is returned when a query matches no videos at all.
var ErrNoResults = errors.New("no videos found")

// videoURLPatterns are the URL shapes treated as a direct video reference
// instead of a search query.
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/watch\?v=[\w-]+`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/[\w-]+`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/embed/[\w-]+`),
}

// IsVideoURL reports whether the text looks like a direct video URL.
func IsVideoURL(text string) bool {
	for _, pattern := range videoURLPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// VideoInfo is the enriched metadata for a single video.
type VideoInfo struct {
	URL          string
	Title        string
	Duration     int // seconds
	Uploader     string
	ViewCount    int
	Thumbnail    string
	Qualities    []string
	FormatsCount int
}

// Entry is one raw search hit before enrichment.
type Entry struct {
	URL   string
	Title string
}

// InfoFetcher resolves one video URL into enriched metadata.
type InfoFetcher interface {
	VideoInfo(ctx context.Context, url string) (*VideoInfo, error)
}

// Finder turns free text into a bounded list of candidate videos.
type Finder interface {
	Find(ctx context.Context, query string, limit int) ([]Entry, error)
}

// Result is one search result as rendered to clients, including every
// download-link permutation.
type Result struct {
	VideoURL           string        `json:"video_url"`
	Title              string        `json:"title"`
	Duration           int           `json:"duration"`
	Uploader           string        `json:"uploader"`
	ViewCount          int           `json:"view_count"`
	Thumbnail          string        `json:"thumbnail"`
	AvailableQualities []string      `json:"available_qualities"`
	FormatsCount       int           `json:"formats_count"`
	DownloadLinks      DownloadLinks `json:"download_links"`
}

// Response is the body of a search call.
type Response struct {
	Success      bool     `json:"success"`
	SearchType   string   `json:"search_type"`
	Query        string   `json:"query,omitempty"`
	TotalResults int      `json:"total_results"`
	Page         int      `json:"page"`
	Limit        int      `json:"limit"`
	Results      []Result `json:"results"`
}

// Service classifies input as URL or query and builds enriched results.
type Service struct {
	info   InfoFetcher
	finder Finder
	logger *slog.Logger
}

func NewService(info InfoFetcher, finder Finder, logger *slog.Logger) *Service {
	return &Service{info: info, finder: finder, logger: logger}
}

// Search resolves a direct URL to a single result, or runs a bounded search
// and enriches each hit. Pagination note: page is echoed back untouched,
// only limit bounds how many results are fetched.
func (s *Service) Search(ctx context.Context, query string, page, limit int) (*Response, error) {
	if IsVideoURL(query) {
		info, err := s.info.VideoInfo(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("fetch video info: %w", err)
		}
		return &Response{
			Success:      true,
			SearchType:   "url",
			TotalResults: 1,
			Page:         1,
			Limit:        1,
			Results:      []Result{buildResult(info)},
		}, nil
	}

	entries, err := s.finder.Find(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNoResults
	}

	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		info, err := s.info.VideoInfo(ctx, entry.URL)
		if err != nil {
			s.logger.Warn("skipping unresolvable search hit", "url", entry.URL, "error", err)
			continue
		}
		results = append(results, buildResult(info))
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	return &Response{
		Success:      true,
		SearchType:   "search",
		Query:        query,
		TotalResults: len(results),
		Page:         page,
		Limit:        limit,
		Results:      results,
	}, nil
}

func buildResult(info *VideoInfo) Result {
	return Result{
		VideoURL:           info.URL,
		Title:              info.Title,
		Duration:           info.Duration,
		Uploader:           info.Uploader,
		ViewCount:          info.ViewCount,
		Thumbnail:          info.Thumbnail,
		AvailableQualities: info.Qualities,
		FormatsCount:       info.FormatsCount,
		DownloadLinks:      BuildDownloadLinks(info.URL),
	}
}
