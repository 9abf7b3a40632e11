package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coah80/tunepull/internal/config"
)

var (
	mu                sync.Mutex
	categoryCooldowns = make(map[string]time.Time)
)

const (
	colorRed    = 0xFF4444
	colorOrange = 0xFFA500
)

type embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Color       int     `json:"color"`
	Fields      []field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp"`
}

type field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type payload struct {
	Embeds []embed `json:"embeds"`
}

func send(category string, cooldown time.Duration, color int, title, description string, fields map[string]string) {
	if !config.DiscordAlerts || config.DiscordWebhookURL == "" {
		return
	}

	mu.Lock()
	now := time.Now()
	if cooldown > 0 {
		if last, ok := categoryCooldowns[category]; ok && now.Sub(last) < cooldown {
			mu.Unlock()
			return
		}
	}
	categoryCooldowns[category] = now
	mu.Unlock()

	var embedFields []field
	for k, v := range fields {
		if v == "" {
			continue
		}
		if len(v) > 1024 {
			v = v[:1021] + "..."
		}
		embedFields = append(embedFields, field{Name: k, Value: v, Inline: true})
	}

	p := payload{
		Embeds: []embed{{
			Title:       title,
			Description: description,
			Color:       color,
			Fields:      embedFields,
			Timestamp:   now.UTC().Format(time.RFC3339),
		}},
	}

	go func() {
		body, _ := json.Marshal(p)
		resp, err := http.Post(config.DiscordWebhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("[Alerts] Webhook send failed: %v", err)
			return
		}
		resp.Body.Close()
	}()
}

// ConversionFailed fires for server-side conversion failures, not for
// user errors like unsupported URLs.
func ConversionFailed(jobID, url string, err error) {
	send("conversion-failed", 0, colorRed, "Conversion failed", err.Error(), map[string]string{
		"Job": jobID,
		"URL": url,
	})
}

func LowDiskSpace(availGB float64) {
	send("disk-space", 30*time.Minute, colorOrange, "Low disk space",
		"Temp storage is running low, conversions may start failing.",
		map[string]string{"Available": fmt.Sprintf("%.1fGB", availGB)})
}
