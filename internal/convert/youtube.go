package convert

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/coah80/tunepull/internal/config"
	"github.com/coah80/tunepull/internal/util"
)

var percentRe = regexp.MustCompile(`([\d.]+)%`)
var ytdlpErrorRe = regexp.MustCompile(`(?i)ERROR[:\s]+(.+?)(?:\n|$)`)

// YouTubeAdapter drives yt-dlp. Metadata comes from --dump-single-json;
// the download/encode pass is a single yt-dlp invocation that hands the
// transcode off to ffmpeg internally.
type YouTubeAdapter struct {
	YtdlpPath  string
	FFmpegPath string
}

func NewYouTubeAdapter() *YouTubeAdapter {
	return &YouTubeAdapter{
		YtdlpPath:  config.YtdlpPath,
		FFmpegPath: config.FFmpegPath,
	}
}

type ytdlpInfo struct {
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Uploader  string  `json:"uploader"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
}

func (a *YouTubeAdapter) FetchMetadata(ctx context.Context, url string) (*Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, config.MetadataTimeout)
	defer cancel()

	args := append([]string{}, util.GetCookiesArgs()...)
	args = append(args, util.GetProxyArgs()...)
	args = append(args, "--dump-single-json", "--no-warnings", "--no-playlist", url)

	cmd := exec.CommandContext(ctx, a.YtdlpPath, args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, classifyMetadataError(string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var info ytdlpInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("%w: unreadable yt-dlp output", ErrUpstream)
	}

	return &Metadata{
		Title:     info.Title,
		Artist:    info.Artist,
		Uploader:  info.Uploader,
		Duration:  info.Duration,
		Thumbnail: info.Thumbnail,
	}, nil
}

func classifyMetadataError(stderr string) error {
	msg := "failed to fetch video info"
	if m := ytdlpErrorRe.FindStringSubmatch(stderr); len(m) > 1 {
		msg = strings.TrimSpace(m[1])
	}
	lower := strings.ToLower(stderr)
	if strings.Contains(lower, "video unavailable") || strings.Contains(lower, "404") || strings.Contains(lower, "does not exist") {
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	}
	if util.IsBotDetection(stderr) {
		return fmt.Errorf("%w: YouTube requires authentication", ErrUpstream)
	}
	return fmt.Errorf("%w: %s", ErrUpstream, msg)
}

// formatForQuality builds the yt-dlp -f selector for a quality tier.
// Every tier prefers a single mp4-muxable pair and degrades to
// best-available when the constrained query matches nothing.
func formatForQuality(quality string) string {
	height, ok := config.QualityHeight[quality]
	if !ok {
		// "best" and anything unrecognized: no ceiling
		return "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	}
	return fmt.Sprintf(
		"bestvideo[height<=%d][ext=mp4]+bestaudio[ext=m4a]/best[height<=%d][ext=mp4]/best",
		height, height)
}

func audioStageMessage(mapped int) string {
	switch {
	case mapped < 40:
		return "Downloading audio..."
	case mapped < 60:
		return "Downloading and processing..."
	default:
		return "Converting to MP3..."
	}
}

func videoStageMessage(mapped int) string {
	switch {
	case mapped < 50:
		return "Downloading video..."
	case mapped < 75:
		return "Downloading and merging..."
	default:
		return "Processing video..."
	}
}

func (a *YouTubeAdapter) FetchAndEncode(ctx context.Context, url, dir string, opts EncodeOptions, progress chan<- Progress) (*EncodedFile, error) {
	isAudio := opts.Format != "video"
	outputTemplate := filepath.Join(dir, "%(title)s.%(ext)s")

	args := append([]string{}, util.GetCookiesArgs()...)
	args = append(args, util.GetProxyArgs()...)
	args = append(args,
		"--newline",
		"--no-warnings",
		"--no-playlist",
		"--add-metadata",
		"--progress-template", "%(progress._percent_str)s",
		"-o", outputTemplate,
		"--ffmpeg-location", a.FFmpegPath,
	)

	var wantExt string
	var reporter *bandReporter
	var stage func(int) string

	if isAudio {
		wantExt = "mp3"
		stage = audioStageMessage
		reporter = newBandReporter(progress, 25, 75)
		progress <- Progress{Percent: 25, Message: "Downloading audio from YouTube..."}
		args = append(args, "-x", "--audio-format", "mp3", "--audio-quality", "0")
	} else {
		wantExt = "mp4"
		stage = videoStageMessage
		reporter = newBandReporter(progress, 25, 90)
		progress <- Progress{Percent: 25, Message: "Downloading video from YouTube..."}
		args = append(args,
			"-f", formatForQuality(opts.Quality),
			"--merge-output-format", "mp4",
		)
	}

	args = append(args, url)

	cmd := exec.CommandContext(ctx, a.YtdlpPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start yt-dlp: %v", ErrDownload, err)
	}

	var stderrOutput strings.Builder
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if p, ok := parsePercent(scanner.Text()); ok {
				reporter.Report(p, stage)
			}
		}
	}()

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			stderrOutput.WriteString(line + "\n")
			if strings.Contains(line, "[download]") && strings.Contains(line, "%") {
				if p, ok := parsePercent(line); ok {
					reporter.Report(p, stage)
				}
			}
		}
	}()

	wg.Wait()
	if err := cmd.Wait(); err != nil {
		errMsg := "yt-dlp exited with an error"
		if m := ytdlpErrorRe.FindStringSubmatch(stderrOutput.String()); len(m) > 1 {
			errMsg = strings.TrimSpace(m[1])
		}
		return nil, fmt.Errorf("%w: %s", ErrDownload, errMsg)
	}

	if isAudio {
		progress <- Progress{Percent: 80, Message: "Processing metadata..."}
	}

	result, err := findByExtension(dir, wantExt)
	if err != nil {
		return nil, err
	}

	progress <- Progress{Percent: 92, Message: "Preparing file for download..."}
	return result, nil
}

func parsePercent(line string) (float64, bool) {
	m := percentRe.FindStringSubmatch(line)
	if len(m) < 2 {
		return 0, false
	}
	p, err := strconv.ParseFloat(m[1], 64)
	if err != nil || p <= 0 {
		return 0, false
	}
	return p, true
}

// findByExtension locates the produced file inside the workspace. The
// external tool reporting success without leaving a matching file is
// treated as a failure, not trusted silently.
func findByExtension(dir, ext string) (*EncodedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read workspace: %v", ErrOutputNotFound, err)
	}
	suffix := "." + ext
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".part") || strings.Contains(name, ".part-Frag") {
			continue
		}
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			return &EncodedFile{Path: filepath.Join(dir, name), Ext: ext}, nil
		}
	}
	return nil, fmt.Errorf("%w: no .%s file after conversion", ErrOutputNotFound, ext)
}
