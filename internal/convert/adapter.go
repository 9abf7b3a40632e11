package convert

import "context"

// Metadata is the best-effort descriptive info for a piece of media.
// Artist is only populated when the platform distinguishes it from the
// uploader account name.
type Metadata struct {
	Title     string
	Artist    string
	Uploader  string
	Duration  float64
	Thumbnail string
}

// DisplayArtist picks the name used for filename prefixing.
func (m *Metadata) DisplayArtist() string {
	if m.Artist != "" {
		return m.Artist
	}
	return m.Uploader
}

type EncodeOptions struct {
	Format  string // "audio" or "video"
	Quality string // "best", "high", "medium", "low" (video only)
}

// EncodedFile points at the finished file inside the job's workspace.
type EncodedFile struct {
	Path string
	Ext  string
}

// Progress is one normalized progress event on the job's 0-100 scale.
type Progress struct {
	Percent int
	Message string
}

// Adapter is the capability contract one source platform implements.
// FetchAndEncode sends Progress values on the given channel as work
// proceeds; the channel is owned and drained by the caller and stays
// open until FetchAndEncode returns.
type Adapter interface {
	FetchMetadata(ctx context.Context, url string) (*Metadata, error)
	FetchAndEncode(ctx context.Context, url, dir string, opts EncodeOptions, progress chan<- Progress) (*EncodedFile, error)
}
