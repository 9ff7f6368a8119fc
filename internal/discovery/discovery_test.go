package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func relative(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatalf("rel: %v", err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestScanClassifiesFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"Photos from 2019/IMG_0002.JPG",
		"Photos from 2019/IMG_0002.JPG.json",
		"Photos from 2019/metadata.json",
		"Album/clip.mp4",
		"Album/notes.txt",
		"archive_browser.html",
	)

	inv, err := Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	wantMedia := []string{"Album/clip.mp4", "Photos from 2019/IMG_0002.JPG"}
	if got := relative(t, root, inv.Media); !slices.Equal(got, wantMedia) {
		t.Fatalf("Media = %v, want %v", got, wantMedia)
	}
	wantSidecars := []string{"Photos from 2019/IMG_0002.JPG.json", "Photos from 2019/metadata.json"}
	if got := relative(t, root, inv.Sidecars); !slices.Equal(got, wantSidecars) {
		t.Fatalf("Sidecars = %v, want %v", got, wantSidecars)
	}
	if inv.Ignored != 2 {
		t.Fatalf("Ignored = %d, want 2", inv.Ignored)
	}
	if inv.Total() != 4 {
		t.Fatalf("Total = %d, want 4", inv.Total())
	}
}

func TestScanSkipsExcludedDirectories(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.jpg", "Output-20240101T000000/a.jpg", "Output-20240101T000000/a.jpg.json")

	inv, err := Scan(context.Background(), root, filepath.Join(root, "Output-20240101T000000"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(inv.Media) != 1 || len(inv.Sidecars) != 0 {
		t.Fatalf("expected excluded directory to be skipped, got %+v", inv)
	}
}

func TestScanErrors(t *testing.T) {
	if _, err := Scan(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing root")
	}

	file := filepath.Join(t.TempDir(), "file.jpg")
	writeFiles(t, filepath.Dir(file), "file.jpg")
	if _, err := Scan(context.Background(), file); err == nil {
		t.Fatal("expected error for file root")
	}

	root := t.TempDir()
	writeFiles(t, root, "a.jpg")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Scan(ctx, root); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestProcessedNames(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "IMG_0001.jpg", "IMG_0001.jpg.json", "FAILED/IMG_0009.jpg")

	names, err := ProcessedNames(dir)
	if err != nil {
		t.Fatalf("ProcessedNames: %v", err)
	}
	slices.Sort(names)
	if !slices.Equal(names, []string{"IMG_0001.jpg", "IMG_0001.jpg.json"}) {
		t.Fatalf("ProcessedNames = %v", names)
	}

	missing, err := ProcessedNames(filepath.Join(dir, "nope"))
	if err != nil || len(missing) != 0 {
		t.Fatalf("expected empty result for missing dir, got %v, %v", missing, err)
	}
}
