package util

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/coah80/tunepull/internal/alerts"
	"github.com/coah80/tunepull/internal/config"
)

// ClearTempDir wipes everything under the temp root at boot. Leftovers
// can only be workspaces from a previous crashed run.
func ClearTempDir() {
	entries, err := os.ReadDir(config.TempDir)
	if err != nil {
		os.MkdirAll(config.TempDir, 0755)
		fmt.Println("✓ Created temp directory")
		return
	}
	for _, e := range entries {
		os.RemoveAll(filepath.Join(config.TempDir, e.Name()))
	}
	fmt.Println("✓ Cleared temp directory")
}

// CleanupTempFiles removes workspaces older than the retention window.
// Workspaces are normally released by their job; this sweep only
// catches ones orphaned by a crash mid-conversion.
func CleanupTempFiles() {
	now := time.Now()
	entries, err := os.ReadDir(config.TempDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > config.FileRetention {
			os.RemoveAll(filepath.Join(config.TempDir, e.Name()))
			log.Printf("[Cleanup] Removed stale workspace: %s", e.Name())
		}
	}

	if ds, err := GetDiskSpace(config.TempDir); err == nil {
		if ds.AvailGB < float64(config.DiskSpaceMinGB) {
			log.Printf("[DiskSpace] WARNING: Only %.1fGB free, below %dGB threshold!", ds.AvailGB, config.DiskSpaceMinGB)
			alerts.LowDiskSpace(ds.AvailGB)
		}
	}
}

func StartCleanupInterval() {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		for range ticker.C {
			CleanupTempFiles()
		}
	}()
}
