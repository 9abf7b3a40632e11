package util

import "testing"

func TestToUserError(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unsupported", "unsupported platform: only YouTube and SoundCloud links are supported", "Unsupported platform. Only YouTube and SoundCloud links are accepted"},
		{"unavailable", "ERROR: Video unavailable", "This video is unavailable or has been removed"},
		{"private", "ERROR: Private video. Sign in if you've been granted access", "This video is unavailable or has been removed"},
		{"sc not found", "media not found: track not found", "Track not found, it may have been removed"},
		{"live", "ERROR: this live stream is not finished yet", "Live streams can't be converted"},
		{"age gate", "ERROR: Sign in to confirm your age", "This video is age-restricted"},
		{"bot check", "ERROR: Sign in to confirm you're not a bot", "YouTube is blocking this request, try again later"},
		{"geo", "ERROR: The uploader has not made this video available in your country", "This media isn't available in the server's region"},
		{"copyright", "removed due to a copyright claim", "This media was removed for copyright"},
		{"403", "HTTP Error 403: Forbidden", "Access denied, the site is blocking downloads"},
		{"404", "HTTP Error 404: Not Found", "Media not found, it may have been deleted"},
		{"no formats", "ERROR: requested format not available", "No downloadable formats found"},
		{"rate limit", "429 too many requests, rate limited", "Rate limited, please wait and try again"},
		{"timeout", "context deadline exceeded", "Connection timed out, try again"},
		{"dns", "dial tcp: lookup api-v2.soundcloud.com: no such host", "Couldn't reach the source, try again"},
		{"encode", "encoding failed: ffmpeg exited 1", "Audio conversion failed"},
		{"no output", "output file not found: no .mp3 file after conversion", "Conversion produced no output file"},
		{"disk", "workspace allocation failed: no space left on device", "Server storage error, try again later"},
		{"unknown", "something completely different happened", "Conversion failed"},
		{"raw path not leaked", "open /tmp/tunepull/youtube-abc123/audio: permission denied", "Conversion failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToUserError(tt.in); got != tt.want {
				t.Errorf("ToUserError(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
