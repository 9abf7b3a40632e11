package convert

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/coah80/tunepull/internal/config"
)

const soundcloudAPI = "https://api-v2.soundcloud.com"

// SoundCloudAdapter talks to SoundCloud's public v2 API directly: track
// info via /resolve, then the progressive stream, then an ffmpeg pass
// into the normalized MP3 profile with title/artist tags.
type SoundCloudAdapter struct {
	ClientID   string
	FFmpegPath string
	APIBase    string
	Client     *http.Client
}

func NewSoundCloudAdapter() *SoundCloudAdapter {
	return &SoundCloudAdapter{
		ClientID:   config.SoundCloudClientID,
		FFmpegPath: config.FFmpegPath,
		APIBase:    soundcloudAPI,
		Client:     http.DefaultClient,
	}
}

type scTrack struct {
	Title      string `json:"title"`
	DurationMS int64  `json:"duration"`
	ArtworkURL string `json:"artwork_url"`
	User       struct {
		Username string `json:"username"`
	} `json:"user"`
	Media struct {
		Transcodings []scTranscoding `json:"transcodings"`
	} `json:"media"`
}

type scTranscoding struct {
	URL    string `json:"url"`
	Format struct {
		Protocol string `json:"protocol"`
		MimeType string `json:"mime_type"`
	} `json:"format"`
}

func (a *SoundCloudAdapter) FetchMetadata(ctx context.Context, trackURL string) (*Metadata, error) {
	info, err := a.resolve(ctx, trackURL)
	if err != nil {
		return nil, err
	}
	return &Metadata{
		Title:     info.Title,
		Uploader:  info.User.Username,
		Duration:  float64(info.DurationMS) / 1000,
		Thumbnail: info.ArtworkURL,
	}, nil
}

func (a *SoundCloudAdapter) resolve(ctx context.Context, trackURL string) (*scTrack, error) {
	ctx, cancel := context.WithTimeout(ctx, config.MetadataTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/resolve?url=%s&client_id=%s",
		a.APIBase, url.QueryEscape(trackURL), url.QueryEscape(a.ClientID))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: track not found", ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: could not resolve track (HTTP %d)", ErrUpstream, resp.StatusCode)
	}

	var info scTrack
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: unreadable resolve response", ErrUpstream)
	}
	if info.Title == "" && len(info.Media.Transcodings) == 0 {
		return nil, fmt.Errorf("%w: URL is not a track", ErrNotFound)
	}
	return &info, nil
}

// streamURL exchanges a transcoding descriptor for the actual media URL.
func (a *SoundCloudAdapter) streamURL(ctx context.Context, transcoding scTranscoding) (string, error) {
	sep := "?"
	if u, err := url.Parse(transcoding.URL); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, "GET", transcoding.URL+sep+"client_id="+url.QueryEscape(a.ClientID), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: stream resolve failed (HTTP %d)", ErrDownload, resp.StatusCode)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.URL == "" {
		return "", fmt.Errorf("%w: no stream URL in response", ErrDownload)
	}
	return out.URL, nil
}

func (a *SoundCloudAdapter) FetchAndEncode(ctx context.Context, trackURL, dir string, opts EncodeOptions, progress chan<- Progress) (*EncodedFile, error) {
	info, err := a.resolve(ctx, trackURL)
	if err != nil {
		return nil, err
	}

	progress <- Progress{Percent: 20, Message: "Starting download..."}

	var transcoding *scTranscoding
	for i := range info.Media.Transcodings {
		if info.Media.Transcodings[i].Format.Protocol == "progressive" {
			transcoding = &info.Media.Transcodings[i]
			break
		}
	}
	if transcoding == nil {
		return nil, fmt.Errorf("%w: no progressive stream available", ErrDownload)
	}

	mediaURL, err := a.streamURL(ctx, *transcoding)
	if err != nil {
		return nil, err
	}

	rawPath := filepath.Join(dir, "audio")
	if err := a.downloadStream(ctx, mediaURL, rawPath, progress); err != nil {
		return nil, err
	}

	progress <- Progress{Percent: 55, Message: "Download complete, starting conversion..."}

	outPath := filepath.Join(dir, "output.mp3")
	args := []string{
		"-y",
		"-i", rawPath,
		"-vn",
		"-ar", config.AudioSampleRate,
		"-ac", config.AudioChannels,
		"-b:a", config.AudioBitrate + "k",
		"-metadata", "title=" + info.Title,
		"-metadata", "artist=" + info.User.Username,
		outPath,
	}

	progress <- Progress{Percent: 65, Message: "Converting audio to MP3..."}

	cmd := exec.CommandContext(ctx, a.FFmpegPath, args...)
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start ffmpeg: %v", ErrEncode, err)
	}
	stderrBytes, _ := io.ReadAll(stderrPipe)
	if err := cmd.Wait(); err != nil {
		errStr := string(stderrBytes)
		if len(errStr) > 500 {
			errStr = errStr[len(errStr)-500:]
		}
		return nil, fmt.Errorf("%w: ffmpeg exited %d: %s", ErrEncode, cmd.ProcessState.ExitCode(), errStr)
	}

	progress <- Progress{Percent: 85, Message: "Processing metadata..."}

	result, err := findByExtension(dir, "mp3")
	if err != nil {
		return nil, err
	}

	progress <- Progress{Percent: 92, Message: "Preparing file for download..."}
	return result, nil
}

// downloadStream writes the raw audio stream to disk while estimating
// progress from the byte count, since SoundCloud gives no percentage.
func (a *SoundCloudAdapter) downloadStream(ctx context.Context, mediaURL, dest string, progress chan<- Progress) error {
	req, err := http.NewRequestWithContext(ctx, "GET", mediaURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: stream fetch failed (HTTP %d)", ErrDownload, resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer f.Close()

	reporter := newByteReporter(progress, 20, 50, "Downloading track from SoundCloud...")
	if _, err := io.Copy(io.MultiWriter(f, reporter), resp.Body); err != nil {
		return fmt.Errorf("%w: stream interrupted: %v", ErrDownload, err)
	}
	return nil
}
