package matching

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind tells Normalize which side of the export a file name comes from.
type Kind int

const (
	// KindMedia names end with their own media extension.
	KindMedia Kind = iota
	// KindSidecar names end with .json and may carry the media extension
	// anywhere before it.
	KindSidecar
)

func (k Kind) String() string {
	switch k {
	case KindMedia:
		return "media"
	case KindSidecar:
		return "sidecar"
	default:
		return "unknown"
	}
}

// FilenameKey is the comparable form of a media or sidecar file name.
type FilenameKey struct {
	// Core is the lower-cased stem with counters, edit markers and trailing
	// separators removed.
	Core string
	// Indices holds the parenthetical counters in the order they appeared.
	Indices []int
	// Extension is the recognized media extension, or empty.
	Extension string
}

// HasExtension reports whether a media extension was recognized.
func (k FilenameKey) HasExtension() bool {
	return k.Extension != ""
}

func (k FilenameKey) String() string {
	var b strings.Builder
	b.WriteString(k.Core)
	for _, idx := range k.Indices {
		b.WriteByte('(')
		b.WriteString(strconv.Itoa(idx))
		b.WriteByte(')')
	}
	b.WriteString(k.Extension)
	return b.String()
}

var (
	trailingIndexPattern = regexp.MustCompile(`\((\d{1,9})\)\s*$`)
	indexGroupPattern    = regexp.MustCompile(`\((\d{1,9})\)`)
	editMarkerPattern    = regexp.MustCompile(`[-_](?:edited|edit|crop)(?:$|[\s_\-(])`)
)

const separatorCutset = " _-"

// Normalize reduces a file name (or path; only the base name is used) to its
// FilenameKey.
//
// Media names lose their extension. Sidecar names lose the trailing .json and
// are then split at the last recognized media extension: counters in front of
// it come first in Indices, counters found anywhere after it follow.
func Normalize(name string, kind Kind) FilenameKey {
	text := foldName(baseName(name))

	if kind == KindMedia {
		ext := filepath.Ext(text)
		text = strings.TrimSuffix(text, ext)
		core, indices := StripCore(text)
		key := FilenameKey{Core: core, Indices: indices}
		if IsMediaExtension(ext) {
			key.Extension = ext
		}
		return key
	}

	text = strings.TrimSuffix(text, SidecarExtension)
	pos, ext := lastMediaExtension(text)
	if pos < 0 {
		core, indices := StripCore(text)
		return FilenameKey{Core: core, Indices: indices}
	}

	core, indices := StripCore(text[:pos])
	for _, m := range indexGroupPattern.FindAllStringSubmatch(text[pos+len(ext):], -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			indices = append(indices, n)
		}
	}
	return FilenameKey{Core: core, Indices: indices, Extension: ext}
}

// StripCore applies the core-stripping rule to s and returns the stripped
// core together with the trailing counters it removed, in occurrence order.
// Stripping repeats until the value is stable, so StripCore(core) == core for
// any core it returns.
func StripCore(s string) (string, []int) {
	core := foldName(s)
	var indices []int
	for {
		before := core
		for {
			loc := trailingIndexPattern.FindStringSubmatchIndex(core)
			if loc == nil {
				break
			}
			n, err := strconv.Atoi(core[loc[2]:loc[3]])
			if err != nil {
				break
			}
			indices = append([]int{n}, indices...)
			core = core[:loc[0]]
		}
		if loc := editMarkerPattern.FindStringIndex(core); loc != nil {
			core = core[:loc[0]]
		}
		core = strings.TrimRight(core, separatorCutset)
		if core == before {
			return core, indices
		}
	}
}

func foldName(s string) string {
	return norm.NFC.String(strings.ToLower(s))
}

func baseName(name string) string {
	if name == "" {
		return ""
	}
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return base
}

// truncateCore drops the final character (rune) of core. It reports false
// when core is too short to truncate.
func truncateCore(core string) (string, bool) {
	runes := []rune(core)
	if len(runes) <= 1 {
		return "", false
	}
	return string(runes[:len(runes)-1]), true
}
