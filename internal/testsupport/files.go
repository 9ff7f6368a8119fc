package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// MkdirAll creates dir and its parents.
func MkdirAll(t testing.TB, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

// WriteFile writes content to root/rel, creating parents, and returns the path.
// rel uses forward slashes.
func WriteFile(t testing.TB, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	MkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteSidecar writes a Takeout-style sidecar whose photoTakenTime is taken.
func WriteSidecar(t testing.TB, root, rel string, taken time.Time) string {
	t.Helper()
	payload := fmt.Sprintf(`{"title":%q,"photoTakenTime":{"timestamp":"%d"}}`, filepath.Base(rel), taken.Unix())
	return WriteFile(t, root, rel, payload)
}
