package routes

import (
	"net/http"
	"time"

	"github.com/coah80/tunepull/internal/config"
	"github.com/coah80/tunepull/internal/util"
)

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":    "ok",
		"version":   config.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if ds, err := util.GetDiskSpace(config.TempDir); err == nil {
		body["diskSpaceGB"] = ds.AvailGB
	}
	respondJSON(w, 200, body)
}
