package workspace

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Manager allocates isolated per-job temp directories under a common
// root. Every Acquire gets a path with 16 random bytes in the name, so
// concurrent jobs never collide.
type Manager struct {
	Root string
}

func NewManager(root string) *Manager {
	return &Manager{Root: root}
}

// Acquire creates a fresh directory named <label>-<hex>. The caller
// owns the directory and must Release it on every exit path.
func (m *Manager) Acquire(label string) (string, error) {
	b := make([]byte, 16)
	rand.Read(b)
	dir := filepath.Join(m.Root, fmt.Sprintf("%s-%s", label, hex.EncodeToString(b)))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}
	return dir, nil
}

// Release removes the directory and everything in it. It is idempotent
// and never returns an error: a failed cleanup must not mask the job's
// actual outcome, so it is logged and swallowed.
func (m *Manager) Release(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		log.Printf("[Workspace] Failed to remove %s: %v", filepath.Base(dir), err)
	}
}
