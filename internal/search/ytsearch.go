package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lrstanley/go-ytdlp"
)

// YTSearchFinder runs the engine's ytsearch pseudo-extractor in flat mode
// and decodes the JSON entries it prints. The engine stays a black box: only
// its stdout contract is consumed.
type YTSearchFinder struct {
	CookieFile string
	UserAgent  string
}

func NewYTSearchFinder(cookieFile, userAgent string) *YTSearchFinder {
	return &YTSearchFinder{CookieFile: cookieFile, UserAgent: userAgent}
}

// flatEntry is the subset of a flat-extraction record this service reads.
type flatEntry struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

func (f *YTSearchFinder) Find(ctx context.Context, query string, limit int) ([]Entry, error) {
	dl := ytdlp.New().
		FlatPlaylist().
		DumpJSON()

	if f.CookieFile != "" {
		dl = dl.Cookies(f.CookieFile)
	}
	if f.UserAgent != "" {
		dl = dl.UserAgent(f.UserAgent)
	}

	res, err := dl.Run(ctx, fmt.Sprintf("ytsearch%d:%s", limit, query))
	if err != nil {
		return nil, err
	}

	return parseFlatEntries(res.Stdout)
}

func parseFlatEntries(stdout string) ([]Entry, error) {
	var entries []Entry

	dec := json.NewDecoder(strings.NewReader(stdout))
	for {
		var raw flatEntry
		if err := dec.Decode(&raw); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("decode search entry: %w", err)
		}
		url := raw.URL
		if url == "" && raw.ID != "" {
			url = fmt.Sprintf("https://www.youtube.com/watch?v=%s", raw.ID)
		}
		if url == "" {
			continue
		}
		entries = append(entries, Entry{URL: url, Title: raw.Title})
	}

	return entries, nil
}
