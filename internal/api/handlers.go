package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/samkofte/youtube-api/internal/config"
	"github.com/samkofte/youtube-api/internal/downloader"
	"github.com/samkofte/youtube-api/internal/jobs"
	"github.com/samkofte/youtube-api/internal/models"
	"github.com/samkofte/youtube-api/internal/search"
)

const apiVersion = "1.0.0"

// Starter dispatches the background worker for a freshly created job.
type Starter interface {
	Dispatch(job models.Job)
}

// Searcher resolves a query or URL into enriched results.
type Searcher interface {
	Search(ctx context.Context, query string, page, limit int) (*search.Response, error)
}

type Handler struct {
	Registry   *jobs.Registry
	Dispatcher Starter
	Searcher   Searcher
	Cfg        *config.Config
	Logger     *slog.Logger
}

func NewHandler(registry *jobs.Registry, dispatcher Starter, searcher Searcher, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		Registry:   registry,
		Dispatcher: dispatcher,
		Searcher:   searcher,
		Cfg:        cfg,
		Logger:     logger,
	}
}

// jobView decorates a job snapshot with fields derived at read time.
type jobView struct {
	models.Job
	DownloadID  string `json:"download_id,omitempty"`
	ElapsedTime string `json:"elapsed_time"`
}

func newJobView(job models.Job, withID bool) jobView {
	view := jobView{
		Job:         job,
		ElapsedTime: fmt.Sprintf("%.1f seconds", job.Elapsed().Seconds()),
	}
	if withID {
		view.DownloadID = job.ID
	}
	return view
}

// Home lists the API surface.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "YouTube Downloader API",
		"version": apiVersion,
		"endpoints": map[string]string{
			"GET /api/health":              "capability flags",
			"GET/POST /api/search":         "search by query or resolve a URL",
			"GET/POST /api/download/mp3":   "start transcoded-audio download",
			"GET/POST /api/download/audio": "start raw-audio download",
			"GET/POST /api/download/mp4":   "start video download",
			"GET/POST /api/download":       "legacy combined start",
			"GET /api/status/{id}":         "poll one download",
			"GET /api/downloads":           "list all downloads",
			"GET/POST /api/cancel/{id}":    "cancel a download",
			"GET/POST /api/delete/{id}":    "remove a download record",
			"GET/POST /api/clear":          "remove finished downloads",
			"GET/POST /api/clear/all":      "remove all downloads",
		},
	})
}

// Health reports which optional tools are present. Nothing is gated on
// them; they only annotate advertised capability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ffmpeg := downloader.FFmpegAvailable()
	ffprobe := downloader.FFprobeAvailable()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"message":           "YouTube Downloader API is running",
		"version":           apiVersion,
		"ffmpeg_available":  ffmpeg,
		"ffprobe_available": ffprobe,
		"features": map[string]bool{
			"mp3_conversion":         ffmpeg,
			"video_audio_merge":      ffmpeg,
			"high_quality_downloads": ffmpeg || ffprobe,
		},
	})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	params, err := parseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := params.Str("query", "q")
	if query == "" {
		writeError(w, http.StatusBadRequest,
			`Query parameter is required. Use ?q=query for GET or {"query": "query"} for POST`)
		return
	}
	page := params.Int("page", 1)
	limit := params.Int("limit", h.Cfg.SearchLimit)

	resp, err := h.Searcher.Search(r.Context(), query, page, limit)
	if err != nil {
		if errors.Is(err, search.ErrNoResults) {
			writeError(w, http.StatusNotFound, "No videos found")
			return
		}
		h.Logger.Error("search failed", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Search error: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// DownloadMP3 starts a transcoded-audio job.
func (h *Handler) DownloadMP3(w http.ResponseWriter, r *http.Request) {
	h.startDownload(w, r, models.FormatMP3, "")
}

// DownloadAudio starts a raw-audio job; no transcoding is attempted.
func (h *Handler) DownloadAudio(w http.ResponseWriter, r *http.Request) {
	h.startDownload(w, r, models.FormatAudio, "best")
}

// DownloadMP4 starts a video job.
func (h *Handler) DownloadMP4(w http.ResponseWriter, r *http.Request) {
	h.startDownload(w, r, models.FormatMP4, "")
}

// Download is the legacy combined start; the format parameter selects the
// kind (default mp4).
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	params, err := parseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	kind := models.FormatKind(strings.ToLower(params.Str("format")))
	switch kind {
	case models.FormatMP3, models.FormatAudio:
	default:
		kind = models.FormatMP4
	}
	h.createAndDispatch(w, params, kind, "")
}

func (h *Handler) startDownload(w http.ResponseWriter, r *http.Request, kind models.FormatKind, forcedQuality string) {
	params, err := parseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.createAndDispatch(w, params, kind, forcedQuality)
}

func (h *Handler) createAndDispatch(w http.ResponseWriter, params *requestParams, kind models.FormatKind, forcedQuality string) {
	videoURL := params.Str("video_url", "url")
	if videoURL == "" {
		writeError(w, http.StatusBadRequest,
			`Video URL is required. Use ?url=VIDEO_URL for GET or {"video_url": "URL"} for POST`)
		return
	}

	quality := forcedQuality
	if quality == "" {
		quality = params.Str("quality")
		if quality == "" {
			quality = "best"
		}
	}
	outputPath := params.Str("output_path", "path")
	if outputPath == "" {
		outputPath = h.Cfg.DownloadDir
	}

	job := h.Registry.Create(jobs.CreateParams{
		VideoURL:   videoURL,
		Format:     kind,
		Quality:    quality,
		OutputPath: outputPath,
	})
	h.Dispatcher.Dispatch(job)
	h.Logger.Info("download started", "job_id", job.ID, "format", kind, "url", videoURL)

	resp := map[string]any{
		"success":      true,
		"download_id":  job.ID,
		"format":       kind,
		"status_url":   fmt.Sprintf("/api/status/%s", job.ID),
		"download_url": fmt.Sprintf("/api/status/%s", job.ID),
	}
	switch kind {
	case models.FormatMP3:
		resp["message"] = "MP3 download started"
		resp["ffmpeg_required"] = true
	case models.FormatAudio:
		resp["message"] = "Audio download started (without FFmpeg)"
		resp["ffmpeg_required"] = false
	default:
		resp["message"] = fmt.Sprintf("%s download started", strings.ToUpper(string(kind)))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	job, ok := h.Registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Download ID not found")
		return
	}
	writeJSON(w, http.StatusOK, newJobView(job, false))
}

func (h *Handler) Downloads(w http.ResponseWriter, r *http.Request) {
	list := h.Registry.List()
	views := make([]jobView, 0, len(list))
	for _, job := range list {
		views = append(views, newJobView(job, true))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"downloads": views,
		"total":     len(views),
	})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if !h.Registry.MarkCancelled(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "Download ID not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Download cancelled",
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.Registry.Delete(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "Download ID not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Download removed from history",
	})
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.Registry.ClearTerminal()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":             true,
		"message":             "Completed downloads cleared",
		"remaining_downloads": h.Registry.Len(),
	})
}

func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	h.Registry.ClearAll()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "All downloads cleared",
	})
}
