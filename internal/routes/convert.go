package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coah80/tunepull/internal/alerts"
	"github.com/coah80/tunepull/internal/config"
	"github.com/coah80/tunepull/internal/convert"
	"github.com/coah80/tunepull/internal/hub"
	"github.com/coah80/tunepull/internal/platform"
	"github.com/coah80/tunepull/internal/util"
)

// Handler carries the injected services the routes need. There is no
// package-level state.
type Handler struct {
	Hub        *hub.Hub
	Controller *convert.Controller
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Post("/api/convert", h.handleConvert)
	r.Get("/api/convert/progress/{jobId}", h.handleProgress)
}

type convertRequest struct {
	URL     string `json:"url"`
	JobID   string `json:"jobId"`
	Format  string `json:"format"`
	Quality string `json:"quality"`
}

func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, 400, map[string]string{"error": "Invalid request body"})
		return
	}

	if req.URL == "" {
		respondJSON(w, 400, map[string]string{"error": "URL is required"})
		return
	}
	if req.JobID == "" {
		req.JobID = uuid.New().String()
	}

	check := util.ValidateURL(req.URL)
	if !check.Valid {
		respondJSON(w, 400, map[string]string{"error": check.Error})
		return
	}

	format := orDefault(req.Format, "audio")
	if !config.Contains(config.AllowedFormats, format) {
		respondJSON(w, 400, map[string]string{"error": "Invalid format"})
		return
	}
	quality := orDefault(req.Quality, "high")
	if !config.Contains(config.AllowedQualities, quality) {
		respondJSON(w, 400, map[string]string{"error": "Invalid quality"})
		return
	}

	// The external tool is tied to the submitting request, not to any
	// progress subscriber: a dropped SSE connection never kills the
	// conversion, but an abandoned POST does.
	ctx, cancel := context.WithTimeout(r.Context(), config.ConversionTimeout)
	defer cancel()

	result, err := h.Controller.Convert(ctx, convert.Request{
		JobID:   req.JobID,
		URL:     req.URL,
		Format:  format,
		Quality: quality,
	})
	if err != nil {
		h.respondConvertError(w, req.URL, req.JobID, err)
		return
	}

	safeName := toASCIIFilename(result.Filename)
	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(result.Buffer)))
	w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
			safeName, url.PathEscape(result.Filename)))
	w.Write(result.Buffer)
}

func (h *Handler) respondConvertError(w http.ResponseWriter, rawURL, jobID string, err error) {
	status := 500
	switch {
	case errors.Is(err, convert.ErrUnsupportedPlatform):
		status = 400
	case errors.Is(err, convert.ErrNotFound):
		status = 404
	default:
		alerts.ConversionFailed(jobID, rawURL, err)
	}

	body := map[string]string{"error": util.ToUserError(err.Error())}
	if p := platform.Detect(rawURL); p != platform.Unknown {
		body["platform"] = p.String()
	}
	respondJSON(w, status, body)
}
