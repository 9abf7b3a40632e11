package convert

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/coah80/tunepull/internal/config"
	"github.com/coah80/tunepull/internal/hub"
	"github.com/coah80/tunepull/internal/platform"
	"github.com/coah80/tunepull/internal/util"
	"github.com/coah80/tunepull/internal/workspace"
)

type State string

const (
	StateCreated           State = "created"
	StatePlatformDetecting State = "platform-detecting"
	StateInProgress        State = "in-progress"
	StateSucceeded         State = "succeeded"
	StateFailed            State = "failed"
)

// ConversionJob tracks one request through its lifecycle. It lives only
// for the duration of the request; nothing is persisted.
type ConversionJob struct {
	ID       string
	URL      string
	Platform platform.Platform
	Format   string
	Quality  string
	State    State
}

type Request struct {
	JobID   string
	URL     string
	Format  string // "audio" (default) or "video"
	Quality string // video only: "best", "high", "medium", "low"
}

type Result struct {
	Job      *ConversionJob
	Buffer   []byte
	Filename string
	MimeType string
	Meta     *Metadata
}

// Controller owns a single job's lifecycle: platform dispatch, adapter
// invocation, progress forwarding, guaranteed workspace teardown, and
// exactly one terminal hub event per job.
type Controller struct {
	Hub        *hub.Hub
	Workspaces *workspace.Manager
	Adapters   map[platform.Platform]Adapter
}

func NewController(h *hub.Hub, ws *workspace.Manager) *Controller {
	return &Controller{
		Hub:        h,
		Workspaces: ws,
		Adapters: map[platform.Platform]Adapter{
			platform.YouTube:    NewYouTubeAdapter(),
			platform.SoundCloud: NewSoundCloudAdapter(),
		},
	}
}

// Convert runs one job start to finish. There is no retry: any adapter
// failure is terminal and the caller submits a new job to try again.
func (c *Controller) Convert(ctx context.Context, req Request) (*Result, error) {
	job := &ConversionJob{
		ID:      req.JobID,
		URL:     req.URL,
		Format:  req.Format,
		Quality: req.Quality,
		State:   StateCreated,
	}

	job.State = StatePlatformDetecting
	job.Platform = platform.Detect(req.URL)
	if job.Platform == platform.Unknown {
		err := fmt.Errorf("%w: only YouTube and SoundCloud links are supported", ErrUnsupportedPlatform)
		return nil, c.fail(job, "", err)
	}
	log.Printf("[%s] Platform: %s", shortJobID(job.ID), job.Platform)

	// SoundCloud always produces audio; quality tiers are video-only.
	if job.Platform == platform.SoundCloud || job.Format != "video" {
		job.Format = "audio"
	}
	if job.Quality == "" {
		job.Quality = "high"
	}

	adapter, ok := c.Adapters[job.Platform]
	if !ok {
		err := fmt.Errorf("%w: no adapter for %s", ErrUnsupportedPlatform, job.Platform)
		return nil, c.fail(job, "", err)
	}

	job.State = StateInProgress
	c.progress(job.ID, 5, connectMessage(job.Platform))
	c.progress(job.ID, 10, infoMessage(job.Platform))

	meta, err := adapter.FetchMetadata(ctx, req.URL)
	if err != nil {
		return nil, c.fail(job, "", err)
	}
	log.Printf("[%s] Title: %s (%.0fs)", shortJobID(job.ID), meta.Title, meta.Duration)

	wsDir, err := c.Workspaces.Acquire(job.Platform.String())
	if err != nil {
		return nil, c.fail(job, "", fmt.Errorf("%w: %v", ErrResource, err))
	}
	// Idempotent backstop: the happy path and fail() release explicitly,
	// this covers panics inside the adapter.
	defer c.Workspaces.Release(wsDir)

	progressCh := make(chan Progress, 16)
	var closeOnce sync.Once
	closeProgress := func() { closeOnce.Do(func() { close(progressCh) }) }
	defer closeProgress()

	fwdDone := make(chan struct{})
	go func() {
		defer close(fwdDone)
		for p := range progressCh {
			c.progress(job.ID, p.Percent, p.Message)
		}
	}()

	opts := EncodeOptions{Format: job.Format, Quality: job.Quality}
	encoded, err := adapter.FetchAndEncode(ctx, req.URL, wsDir, opts, progressCh)
	closeProgress()
	<-fwdDone
	if err != nil {
		return nil, c.fail(job, wsDir, err)
	}

	buffer, err := os.ReadFile(encoded.Path)
	if err != nil {
		return nil, c.fail(job, wsDir, fmt.Errorf("%w: %v", ErrOutputNotFound, err))
	}

	c.progress(job.ID, 97, "Cleaning up temporary files...")
	c.Workspaces.Release(wsDir)

	artist := ""
	if job.Format == "audio" {
		artist = meta.DisplayArtist()
	}
	filename := util.SanitizeBaseName(meta.Title, artist, fallbackName(job.Platform)) + "." + encoded.Ext

	c.progress(job.ID, 100, "Conversion complete")
	c.Hub.Publish(job.ID, hub.Event{Type: hub.EventComplete})
	job.State = StateSucceeded
	log.Printf("[%s] Conversion complete: %s (%d bytes)", shortJobID(job.ID), filename, len(buffer))

	return &Result{
		Job:      job,
		Buffer:   buffer,
		Filename: filename,
		MimeType: mimeForExt(encoded.Ext, job.Format == "audio"),
		Meta:     meta,
	}, nil
}

// fail tears the workspace down, publishes the job's single terminal
// error event, and hands the original error back for the HTTP layer.
func (c *Controller) fail(job *ConversionJob, wsDir string, err error) error {
	if wsDir != "" {
		c.Workspaces.Release(wsDir)
	}
	job.State = StateFailed
	log.Printf("[%s] Conversion failed: %v", shortJobID(job.ID), err)
	c.Hub.Publish(job.ID, hub.Event{Type: hub.EventError, Message: util.ToUserError(err.Error())})
	return err
}

func (c *Controller) progress(jobID string, percent int, message string) {
	c.Hub.Publish(jobID, hub.Event{Type: hub.EventProgress, Progress: percent, Message: message})
}

func connectMessage(p platform.Platform) string {
	if p == platform.SoundCloud {
		return "Connecting to SoundCloud..."
	}
	return "Connecting to YouTube..."
}

func infoMessage(p platform.Platform) string {
	if p == platform.SoundCloud {
		return "Fetching track info..."
	}
	return "Fetching video info..."
}

func fallbackName(p platform.Platform) string {
	if p == platform.SoundCloud {
		return "track"
	}
	return "video"
}

func mimeForExt(ext string, isAudio bool) string {
	if isAudio {
		if mime, ok := config.AudioMIMEs[ext]; ok {
			return mime
		}
		return "audio/mpeg"
	}
	if mime, ok := config.ContainerMIMEs[ext]; ok {
		return mime
	}
	return "video/mp4"
}

func shortJobID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
