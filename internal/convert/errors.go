package convert

import "errors"

// Failure taxonomy for a conversion job. Adapters and the controller
// wrap these with fmt.Errorf("...: %w", ...) so callers can classify
// with errors.Is while still getting tool output in the message.
var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrNotFound            = errors.New("media not found")
	ErrUpstream            = errors.New("metadata fetch failed")
	ErrDownload            = errors.New("download failed")
	ErrEncode              = errors.New("encoding failed")
	ErrOutputNotFound      = errors.New("output file not found")
	ErrResource            = errors.New("workspace allocation failed")
)
