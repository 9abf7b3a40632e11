package util

import (
	"regexp"
	"strings"
)

var filenameStripRe = regexp.MustCompile(`[^\p{L}\p{N}\s-]`)
var multiSpaceRe = regexp.MustCompile(`\s+`)

const (
	maxTitleLen  = 100
	maxArtistLen = 50
)

// SanitizeBaseName builds a filesystem-safe base name (no extension)
// from track/video metadata. It keeps only letters, digits, spaces and
// hyphens, collapses whitespace, and truncates the title to 100 and the
// artist to 50 characters. When a non-empty artist survives sanitizing
// and is not already part of the title, the result is "Artist - Title";
// an empty title falls back to the given default. Total: never fails.
func SanitizeBaseName(title, artist, fallback string) string {
	cleanTitle := truncate(cleanComponent(title), maxTitleLen)
	if cleanTitle == "" {
		cleanTitle = fallback
	}

	cleanArtist := truncate(cleanComponent(artist), maxArtistLen)
	if cleanArtist == "" {
		return cleanTitle
	}

	if strings.Contains(strings.ToLower(cleanTitle), strings.ToLower(cleanArtist)) {
		return cleanTitle
	}
	return cleanArtist + " - " + cleanTitle
}

func cleanComponent(s string) string {
	s = filenameStripRe.ReplaceAllString(s, "")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
