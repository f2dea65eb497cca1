package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// requestParams merges query parameters and a JSON body so every endpoint
// accepts both GET and POST with either field spelling.
type requestParams struct {
	r    *http.Request
	body map[string]any
}

func parseParams(r *http.Request) (*requestParams, error) {
	p := &requestParams{r: r}

	if r.Method == http.MethodPost && r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&p.body); err != nil {
			return nil, fmt.Errorf("invalid JSON body")
		}
	}
	return p, nil
}

// Str returns the first non-empty value found for any of the given keys,
// checking the JSON body before the query string. The result is trimmed.
func (p *requestParams) Str(keys ...string) string {
	for _, key := range keys {
		if v, ok := p.body[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	for _, key := range keys {
		if s := strings.TrimSpace(p.r.URL.Query().Get(key)); s != "" {
			return s
		}
	}
	return ""
}

// Int returns the integer value for key, falling back when absent or
// unparsable. JSON numbers arrive as float64.
func (p *requestParams) Int(key string, fallback int) int {
	if v, ok := p.body[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case string:
			if val, err := strconv.Atoi(n); err == nil {
				return val
			}
		}
	}
	if s := p.r.URL.Query().Get(key); s != "" {
		if val, err := strconv.Atoi(s); err == nil {
			return val
		}
	}
	return fallback
}
