package config

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

var Version = "dev"

var (
	Port    string
	EnvMode string

	YtdlpPath  string
	FFmpegPath string

	SoundCloudClientID string

	ProxyURL string

	DiscordWebhookURL string
	DiscordAlerts     bool
)

const (
	MetadataTimeout    = 30 * time.Second
	ConversionTimeout  = 20 * time.Minute
	FileRetention      = 20 * time.Minute
	SubscriptionExpiry = 30 * time.Minute
	KeepAliveInterval  = 15 * time.Second
	RateLimitWindow    = 60 * time.Second
	RateLimitMax       = 60
	MaxURLLength       = 2048
	DiskSpaceMinGB     = 2

	AudioBitrate    = "192"
	AudioSampleRate = "44100"
	AudioChannels   = "2"
)

// QualityHeight maps a quality tier to its resolution ceiling.
// "best" is unbounded and deliberately absent.
var QualityHeight = map[string]int{
	"high":   1080,
	"medium": 720,
	"low":    480,
}

var AllowedFormats = []string{"audio", "video"}
var AllowedQualities = []string{"best", "high", "medium", "low"}

var ContainerMIMEs = map[string]string{
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
}

var AudioMIMEs = map[string]string{
	"mp3":  "audio/mpeg",
	"m4a":  "audio/mp4",
	"opus": "audio/opus",
}

var TempDir = filepath.Join(os.TempDir(), "tunepull")

func Load() {
	Port = envOrDefault("PORT", "3001")
	EnvMode = envOrDefault("ENV", "development")

	YtdlpPath = envOrDefault("YTDLP_PATH", "yt-dlp")
	FFmpegPath = envOrDefault("FFMPEG_PATH", "ffmpeg")

	SoundCloudClientID = os.Getenv("SOUNDCLOUD_CLIENT_ID")
	if SoundCloudClientID == "" {
		log.Println("[WARN] SOUNDCLOUD_CLIENT_ID not set, SoundCloud conversions will fail")
	}

	ProxyURL = os.Getenv("PROXY_URL")

	DiscordWebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")
	DiscordAlerts = DiscordWebhookURL != ""

	if dir := os.Getenv("TEMP_DIR"); dir != "" {
		TempDir = dir
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func Contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}
