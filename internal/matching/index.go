package matching

import (
	"slices"
	"strconv"
	"strings"
)

// MediaRecord is one media file and its normalized key.
type MediaRecord struct {
	Path string
	Key  FilenameKey
}

// MetadataRecord is one sidecar file and its normalized key. The sidecar
// payload is not read here; see package sidecar.
type MetadataRecord struct {
	Path string
	Key  FilenameKey
}

// NewMediaRecords normalizes every path as a media name.
func NewMediaRecords(paths []string) []MediaRecord {
	records := make([]MediaRecord, 0, len(paths))
	for _, p := range paths {
		records = append(records, MediaRecord{Path: p, Key: Normalize(p, KindMedia)})
	}
	return records
}

// NewMetadataRecords normalizes every path as a sidecar name.
func NewMetadataRecords(paths []string) []MetadataRecord {
	records := make([]MetadataRecord, 0, len(paths))
	for _, p := range paths {
		records = append(records, MetadataRecord{Path: p, Key: Normalize(p, KindSidecar)})
	}
	return records
}

// tier separates entries stored under the real core from entries stored
// under the core with its last character dropped.
type tier uint8

const (
	tierExact tier = iota
	tierTruncated
)

type strictKey struct {
	core      string
	indices   string
	extension string
	tier      tier
}

type looseKey struct {
	core      string
	extension string
	tier      tier
}

// candidate is one entry of a loose bucket (a MatchCandidateSet).
type candidate struct {
	indices []int
	path    string
}

// Index is the read-only lookup structure built from all media records.
type Index struct {
	strict map[strictKey]string
	loose  map[looseKey][]candidate
	size   int
}

// BuildIndex indexes media records under their exact key and, when the core
// has more than one character, under the truncated core as well.
//
// Records are inserted in lexicographic path order. Two records with the
// same strict key resolve to the later path; loose buckets keep every record
// in path order.
func BuildIndex(records []MediaRecord) *Index {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b MediaRecord) int {
		return strings.Compare(a.Path, b.Path)
	})

	idx := &Index{
		strict: make(map[strictKey]string, len(sorted)*2),
		loose:  make(map[looseKey][]candidate, len(sorted)*2),
	}
	for _, rec := range sorted {
		idx.insert(rec.Key.Core, tierExact, rec)
		if short, ok := truncateCore(rec.Key.Core); ok {
			idx.insert(short, tierTruncated, rec)
		}
		idx.size++
	}
	return idx
}

func (idx *Index) insert(core string, t tier, rec MediaRecord) {
	sk := strictKey{core: core, indices: indicesKey(rec.Key.Indices), extension: rec.Key.Extension, tier: t}
	idx.strict[sk] = rec.Path

	lk := looseKey{core: core, extension: rec.Key.Extension, tier: t}
	idx.loose[lk] = append(idx.loose[lk], candidate{indices: rec.Key.Indices, path: rec.Path})
}

// Len returns the number of media records indexed.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.size
}

func (idx *Index) lookupStrict(core string, indices string, ext string, t tier) (string, bool) {
	path, ok := idx.strict[strictKey{core: core, indices: indices, extension: ext, tier: t}]
	return path, ok
}

func (idx *Index) lookupLoose(core string, ext string, t tier) []candidate {
	return idx.loose[looseKey{core: core, extension: ext, tier: t}]
}

// indicesKey encodes an index list as an ordered tuple.
func indicesKey(indices []int) string {
	if len(indices) == 0 {
		return ""
	}
	parts := make([]string, len(indices))
	for i, n := range indices {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
