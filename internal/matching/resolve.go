package matching

// Pass identifies which resolution pass produced a match.
type Pass int

const (
	PassNone Pass = iota
	PassStrictExact
	PassStrictTruncated
	PassLoose
	PassLooseTruncated
)

// Passes lists the resolution passes in the order they are attempted.
var Passes = []Pass{PassStrictExact, PassStrictTruncated, PassLoose, PassLooseTruncated}

func (p Pass) String() string {
	switch p {
	case PassStrictExact:
		return "strict-exact"
	case PassStrictTruncated:
		return "strict-truncated"
	case PassLoose:
		return "loose"
	case PassLooseTruncated:
		return "loose-truncated"
	default:
		return "none"
	}
}

// Match is the media path a sidecar key resolved to.
type Match struct {
	Path string
	Pass Pass
}

// Resolve returns the media path for a sidecar key, trying each pass in
// order and stopping at the first hit. Resolve does not know which media
// paths are already paired; exclusivity is the Pairer's job.
func (idx *Index) Resolve(key FilenameKey) (Match, bool) {
	if idx == nil {
		return Match{}, false
	}
	exts := extensionCandidates(key.Extension)
	tuple := indicesKey(key.Indices)
	short, hasShort := truncateCore(key.Core)

	for _, ext := range exts {
		if path, ok := idx.lookupStrict(key.Core, tuple, ext, tierExact); ok {
			return Match{Path: path, Pass: PassStrictExact}, true
		}
	}
	// The sidecar may be one character shorter than the media name (truncated
	// media tier) or one character longer (shortened sidecar core).
	for _, ext := range exts {
		if path, ok := idx.lookupStrict(key.Core, tuple, ext, tierTruncated); ok {
			return Match{Path: path, Pass: PassStrictTruncated}, true
		}
	}
	if hasShort {
		for _, ext := range exts {
			if path, ok := idx.lookupStrict(short, tuple, ext, tierExact); ok {
				return Match{Path: path, Pass: PassStrictTruncated}, true
			}
		}
	}

	if path, ok := idx.resolveLoose(key.Core, key.Indices, exts, tierExact); ok {
		return Match{Path: path, Pass: PassLoose}, true
	}
	if path, ok := idx.resolveLoose(key.Core, key.Indices, exts, tierTruncated); ok {
		return Match{Path: path, Pass: PassLooseTruncated}, true
	}
	if hasShort {
		if path, ok := idx.resolveLoose(short, key.Indices, exts, tierExact); ok {
			return Match{Path: path, Pass: PassLooseTruncated}, true
		}
	}
	return Match{}, false
}

// resolveLoose walks extension candidates in priority order and returns the
// best compatible entry of the first bucket that has one. Within a bucket the
// entry with the smallest index-set symmetric difference wins; ties keep the
// bucket's path order.
func (idx *Index) resolveLoose(core string, indices []int, exts []string, t tier) (string, bool) {
	for _, ext := range exts {
		best, bestDistance := "", -1
		for _, c := range idx.lookupLoose(core, ext, t) {
			distance, ok := indexSetDistance(indices, c.indices)
			if !ok {
				continue
			}
			if bestDistance < 0 || distance < bestDistance {
				best, bestDistance = c.path, distance
			}
		}
		if bestDistance >= 0 {
			return best, true
		}
	}
	return "", false
}

// indexSetDistance compares two index lists as sets. They are compatible when
// either is empty, the sets are equal, or one contains the other; the
// distance is the size of their symmetric difference.
func indexSetDistance(a, b []int) (int, bool) {
	sa, sb := indexSet(a), indexSet(b)
	shared := 0
	for n := range sa {
		if _, ok := sb[n]; ok {
			shared++
		}
	}
	distance := len(sa) + len(sb) - 2*shared
	if len(sa) == 0 || len(sb) == 0 {
		return distance, true
	}
	if shared == len(sa) || shared == len(sb) {
		return distance, true
	}
	return distance, false
}

func indexSet(indices []int) map[int]struct{} {
	set := make(map[int]struct{}, len(indices))
	for _, n := range indices {
		set[n] = struct{}{}
	}
	return set
}
