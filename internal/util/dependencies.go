package util

import (
	"fmt"
	"os/exec"

	"github.com/coah80/tunepull/internal/config"
)

// CheckDependencies reports whether the external tools are reachable.
// Missing tools are reported, not fatal: metadata endpoints still work
// without ffmpeg, and the per-job error paths cover the rest.
func CheckDependencies() {
	for _, dep := range []string{config.YtdlpPath, config.FFmpegPath} {
		path, err := exec.LookPath(dep)
		if err != nil {
			fmt.Printf("✗ %s not found (REQUIRED)\n", dep)
		} else {
			fmt.Printf("✓ %s found: %s\n", dep, path)
		}
	}
}
