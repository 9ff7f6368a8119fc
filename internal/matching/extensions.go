package matching

import (
	"path/filepath"
	"strings"
)

// SidecarExtension is the suffix export tools give metadata sidecars.
const SidecarExtension = ".json"

// mediaExtensions lists the recognized media extensions in resolution
// priority order. Keys without a parsed extension are tried against each in
// this order.
var mediaExtensions = []string{
	".jpg",
	".jpeg",
	".png",
	".gif",
	".mp4",
	".mov",
	".avi",
	".mkv",
	".heic",
	".webp",
	".mpg",
}

var mediaExtensionSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(mediaExtensions))
	for _, ext := range mediaExtensions {
		set[ext] = struct{}{}
	}
	return set
}()

// MediaExtensions returns a copy of the recognized media extensions in
// priority order.
func MediaExtensions() []string {
	out := make([]string, len(mediaExtensions))
	copy(out, mediaExtensions)
	return out
}

// IsMediaExtension reports whether ext (with leading dot, any case) is a
// recognized media extension.
func IsMediaExtension(ext string) bool {
	_, ok := mediaExtensionSet[strings.ToLower(ext)]
	return ok
}

// IsMediaFile reports whether the file name carries a recognized media extension.
func IsMediaFile(name string) bool {
	return IsMediaExtension(filepath.Ext(name))
}

// IsSidecarFile reports whether the file name looks like a JSON sidecar.
func IsSidecarFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), SidecarExtension)
}

func extensionCandidates(ext string) []string {
	if IsMediaExtension(ext) {
		return []string{strings.ToLower(ext)}
	}
	return mediaExtensions
}

// lastMediaExtension finds the right-most occurrence of any recognized media
// extension in text. When two extensions start at the same offset the longer
// one wins. It returns -1 when nothing matches.
func lastMediaExtension(text string) (int, string) {
	pos, found := -1, ""
	for _, ext := range mediaExtensions {
		i := strings.LastIndex(text, ext)
		if i < 0 {
			continue
		}
		if i > pos || (i == pos && len(ext) > len(found)) {
			pos, found = i, ext
		}
	}
	return pos, found
}
