package util

import "strings"

// ToUserError maps raw external-tool output onto a short, stable
// user-facing message. Raw stderr frequently leaks URLs and local
// paths, so the default is deliberately generic.
func ToUserError(message string) string {
	msg := strings.ToLower(message)

	if strings.Contains(msg, "unsupported platform") {
		return "Unsupported platform. Only YouTube and SoundCloud links are accepted"
	}
	if strings.Contains(msg, "video unavailable") || strings.Contains(msg, "private video") || strings.Contains(msg, "this content is private") {
		return "This video is unavailable or has been removed"
	}
	if strings.Contains(msg, "track not found") || strings.Contains(msg, "could not resolve") {
		return "Track not found, it may have been removed"
	}
	if strings.Contains(msg, "live stream") || strings.Contains(msg, "is live") {
		return "Live streams can't be converted"
	}
	if strings.Contains(msg, "age-restricted") || strings.Contains(msg, "age restricted") || strings.Contains(msg, "sign in to confirm your age") {
		return "This video is age-restricted"
	}
	if strings.Contains(msg, "sign in to confirm") || strings.Contains(msg, "sign in to verify") {
		return "YouTube is blocking this request, try again later"
	}
	if strings.Contains(msg, "geo restricted") || strings.Contains(msg, "geo-restricted") || strings.Contains(msg, "not available in your country") {
		return "This media isn't available in the server's region"
	}
	if strings.Contains(msg, "copyright") {
		return "This media was removed for copyright"
	}
	if strings.Contains(msg, "http error 403") || strings.Contains(msg, "403 forbidden") {
		return "Access denied, the site is blocking downloads"
	}
	if strings.Contains(msg, "http error 404") || strings.Contains(msg, "404 not found") {
		return "Media not found, it may have been deleted"
	}
	if strings.Contains(msg, "no video formats") || strings.Contains(msg, "requested format not available") {
		return "No downloadable formats found"
	}
	if strings.Contains(msg, "rate") && !strings.Contains(msg, "format") {
		return "Rate limited, please wait and try again"
	}
	if strings.Contains(msg, "connection reset") || strings.Contains(msg, "connection refused") {
		return "Connection dropped, try again"
	}
	if strings.Contains(msg, "timed out") || strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return "Connection timed out, try again"
	}
	if strings.Contains(msg, "no such host") || strings.Contains(msg, "dns") {
		return "Couldn't reach the source, try again"
	}
	if strings.Contains(msg, "encoding failed") || strings.Contains(msg, "encode") {
		return "Audio conversion failed"
	}
	if strings.Contains(msg, "output file not found") || strings.Contains(msg, "file not found") {
		return "Conversion produced no output file"
	}
	if strings.Contains(msg, "workspace") || strings.Contains(msg, "no space left") {
		return "Server storage error, try again later"
	}
	return "Conversion failed"
}
