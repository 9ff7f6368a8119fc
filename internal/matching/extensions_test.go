package matching

import (
	"slices"
	"testing"
)

func TestFileClassification(t *testing.T) {
	tests := []struct {
		name    string
		media   bool
		sidecar bool
	}{
		{"IMG_0001.JPG", true, false},
		{"clip.Mp4", true, false},
		{"scan.heic", true, false},
		{"IMG_0001.jpg.json", false, true},
		{"metadata.JSON", false, true},
		{"notes.txt", false, false},
		{"archive.zip", false, false},
		{"noext", false, false},
	}
	for _, tc := range tests {
		if got := IsMediaFile(tc.name); got != tc.media {
			t.Fatalf("IsMediaFile(%q) = %v, want %v", tc.name, got, tc.media)
		}
		if got := IsSidecarFile(tc.name); got != tc.sidecar {
			t.Fatalf("IsSidecarFile(%q) = %v, want %v", tc.name, got, tc.sidecar)
		}
	}
}

func TestMediaExtensionsIsACopy(t *testing.T) {
	exts := MediaExtensions()
	if exts[0] != ".jpg" || exts[len(exts)-1] != ".mpg" {
		t.Fatalf("unexpected priority order: %v", exts)
	}
	exts[0] = ".bogus"
	if slices.Contains(MediaExtensions(), ".bogus") {
		t.Fatal("MediaExtensions exposed its backing slice")
	}
}

func TestLastMediaExtension(t *testing.T) {
	tests := []struct {
		text    string
		wantPos int
		wantExt string
	}{
		{"a.jpg.mp4", 5, ".mp4"},
		{"photo.jpeg", 5, ".jpeg"},
		{"plain", -1, ""},
	}
	for _, tc := range tests {
		pos, ext := lastMediaExtension(tc.text)
		if pos != tc.wantPos || ext != tc.wantExt {
			t.Fatalf("lastMediaExtension(%q) = %d, %q; want %d, %q", tc.text, pos, ext, tc.wantPos, tc.wantExt)
		}
	}
}
