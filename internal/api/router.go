package api

import (
	"net/http"
)

// NewRouter sets up routes and applies global middleware. Endpoints that
// accept both GET and POST are registered for both methods so everything
// else gets a proper 405.
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	getAndPost := func(path string, fn http.HandlerFunc) {
		mux.HandleFunc("GET "+path, fn)
		mux.HandleFunc("POST "+path, fn)
	}

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /api/health", h.Health)

	getAndPost("/api/search", h.Search)
	getAndPost("/api/download/mp3", h.DownloadMP3)
	getAndPost("/api/download/audio", h.DownloadAudio)
	getAndPost("/api/download/mp4", h.DownloadMP4)
	getAndPost("/api/download", h.Download)

	mux.HandleFunc("GET /api/status/{id}", h.Status)
	mux.HandleFunc("GET /api/downloads", h.Downloads)

	getAndPost("/api/cancel/{id}", h.Cancel)
	getAndPost("/api/delete/{id}", h.Delete)
	getAndPost("/api/clear", h.Clear)
	getAndPost("/api/clear/all", h.ClearAll)

	return CORSMiddleware(mux)
}
