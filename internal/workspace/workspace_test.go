package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireCreatesUniqueDirs(t *testing.T) {
	m := NewManager(t.TempDir())

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		dir, err := m.Acquire("youtube")
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		if seen[dir] {
			t.Fatalf("Acquire returned duplicate path %s", dir)
		}
		seen[dir] = true

		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("workspace %s should exist as a directory", dir)
		}
		if !strings.HasPrefix(filepath.Base(dir), "youtube-") {
			t.Errorf("workspace name should carry the scope label, got %s", filepath.Base(dir))
		}
	}
}

func TestReleaseRemovesContents(t *testing.T) {
	m := NewManager(t.TempDir())

	dir, err := m.Acquire("soundcloud")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "audio"), []byte("data"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	m.Release(dir)
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("workspace should be gone after Release")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	m := NewManager(t.TempDir())

	dir, err := m.Acquire("youtube")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	m.Release(dir)
	m.Release(dir)
	m.Release("")
}

func TestAcquireFailsOnUnwritableRoot(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "noperm", "deep"))
	parent := filepath.Dir(m.Root)
	if err := os.MkdirAll(parent, 0555); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	defer os.Chmod(parent, 0755)

	if os.Getuid() == 0 {
		t.Skip("running as root, permission checks don't apply")
	}
	if _, err := m.Acquire("youtube"); err == nil {
		t.Errorf("Acquire should fail when the root is unwritable")
	}
}
