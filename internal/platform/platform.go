package platform

import "strings"

// Platform identifies a supported media source. The set is closed:
// adding a platform means adding a constant here and an adapter for it.
type Platform string

const (
	YouTube    Platform = "youtube"
	SoundCloud Platform = "soundcloud"
	Unknown    Platform = "unknown"
)

// Detect classifies a URL by domain substring. Unrecognized URLs map to
// Unknown; the caller decides how to fail.
func Detect(rawURL string) Platform {
	switch {
	case strings.Contains(rawURL, "youtube.com") || strings.Contains(rawURL, "youtu.be"):
		return YouTube
	case strings.Contains(rawURL, "soundcloud.com"):
		return SoundCloud
	default:
		return Unknown
	}
}

func (p Platform) String() string {
	return string(p)
}
