package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/coah80/tunepull/internal/config"
	"github.com/coah80/tunepull/internal/hub"
)

// handleProgress is the SSE endpoint for a job's progress stream. The
// first event is always the connected acknowledgment; the stream ends
// after a complete or error event, or when the client goes away.
func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", 500)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	sub := h.Hub.Subscribe(jobID)
	defer h.Hub.Unsubscribe(sub)

	ticker := time.NewTicker(config.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, open := <-sub.Events():
			if !open {
				return
			}
			data, _ := json.Marshal(ev)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
			if ev.Type == hub.EventComplete || ev.Type == hub.EventError {
				return
			}
		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
