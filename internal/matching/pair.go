package matching

import (
	"slices"
	"strings"
)

// Pair is one confirmed media/sidecar association.
type Pair struct {
	MediaPath    string
	MetadataPath string
	Pass         Pass
}

// Result is the outcome of a pairing run. Every slice is ordered: pairs and
// unmatched sidecars follow sidecar path order, unmatched media follow media
// path order.
type Result struct {
	Pairs             []Pair
	UnmatchedMedia    []string
	UnmatchedMetadata []string
	// Skipped lists sidecars whose output name was already processed.
	Skipped []string
}

// PassCounts tallies confirmed pairs per resolution pass.
func (r *Result) PassCounts() map[Pass]int {
	counts := make(map[Pass]int, len(Passes))
	if r == nil {
		return counts
	}
	for _, p := range r.Pairs {
		counts[p.Pass]++
	}
	return counts
}

// PairOption customizes Pair.
type PairOption func(*pairConfig)

type pairConfig struct {
	reporter  Reporter
	processed map[string]struct{}
}

// WithReporter attaches a checkpoint sink.
func WithReporter(r Reporter) PairOption {
	return func(c *pairConfig) {
		if r != nil {
			c.reporter = r
		}
	}
}

// WithProcessed supplies destination names that a previous run already
// produced. Sidecars with one of these base names are skipped before
// resolution and media with one of these names are not reported unmatched.
func WithProcessed(names []string) PairOption {
	return func(c *pairConfig) {
		for _, name := range names {
			if name = strings.TrimSpace(name); name != "" {
				c.processed[name] = struct{}{}
			}
		}
	}
}

// pairingState owns the one-to-one bookkeeping for a run.
type pairingState struct {
	pairs           []Pair
	matchedMedia    map[string]struct{}
	matchedMetadata map[string]struct{}
}

func newPairingState(capacity int) *pairingState {
	return &pairingState{
		pairs:           make([]Pair, 0, capacity),
		matchedMedia:    make(map[string]struct{}, capacity),
		matchedMetadata: make(map[string]struct{}, capacity),
	}
}

func (s *pairingState) claim(media, metadata string, pass Pass) (Pair, bool) {
	if _, taken := s.matchedMedia[media]; taken {
		return Pair{}, false
	}
	if _, taken := s.matchedMetadata[metadata]; taken {
		return Pair{}, false
	}
	s.matchedMedia[media] = struct{}{}
	s.matchedMetadata[metadata] = struct{}{}
	pair := Pair{MediaPath: media, MetadataPath: metadata, Pass: pass}
	s.pairs = append(s.pairs, pair)
	return pair, true
}

// PairPaths normalizes both path collections and pairs them.
func PairPaths(media, metadata []string, opts ...PairOption) *Result {
	return PairRecords(NewMediaRecords(media), NewMetadataRecords(metadata), opts...)
}

// PairRecords resolves every metadata record against an index of the media
// records and enforces one-to-one pairing: a sidecar whose resolved media
// file is already paired is reported unmatched, whichever pass found it.
func PairRecords(media []MediaRecord, metadata []MetadataRecord, opts ...PairOption) *Result {
	cfg := pairConfig{reporter: NopReporter{}, processed: map[string]struct{}{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	rep := cfg.reporter

	rep.PhaseStarted(PhaseIndex, len(media))
	index := BuildIndex(media)
	rep.PhaseFinished(PhaseIndex, index.Len())

	sidecars := sortedMetadata(metadata)
	state := newPairingState(len(sidecars))
	result := &Result{}

	rep.PhaseStarted(PhaseResolve, len(sidecars))
	for _, rec := range sidecars {
		if _, done := cfg.processed[baseName(rec.Path)]; done {
			result.Skipped = append(result.Skipped, rec.Path)
			continue
		}
		match, ok := index.Resolve(rec.Key)
		if !ok {
			result.UnmatchedMetadata = append(result.UnmatchedMetadata, rec.Path)
			rep.Unmatched(SideMetadata, rec.Path, ReasonNoCandidate)
			continue
		}
		pair, claimed := state.claim(match.Path, rec.Path, match.Pass)
		if !claimed {
			result.UnmatchedMetadata = append(result.UnmatchedMetadata, rec.Path)
			rep.Unmatched(SideMetadata, rec.Path, ReasonTaken)
			continue
		}
		rep.PairConfirmed(pair)
	}
	result.Pairs = state.pairs
	rep.PhaseFinished(PhaseResolve, len(result.Pairs))

	mediaPaths := sortedMediaPaths(media)
	rep.PhaseStarted(PhaseSweep, len(mediaPaths))
	for _, path := range mediaPaths {
		if _, ok := state.matchedMedia[path]; ok {
			continue
		}
		if _, done := cfg.processed[baseName(path)]; done {
			continue
		}
		result.UnmatchedMedia = append(result.UnmatchedMedia, path)
		rep.Unmatched(SideMedia, path, ReasonNoSidecar)
	}
	rep.PhaseFinished(PhaseSweep, len(result.UnmatchedMedia))

	return result
}

func sortedMetadata(records []MetadataRecord) []MetadataRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b MetadataRecord) int {
		return strings.Compare(a.Path, b.Path)
	})
	return slices.CompactFunc(sorted, func(a, b MetadataRecord) bool {
		return a.Path == b.Path
	})
}

func sortedMediaPaths(records []MediaRecord) []string {
	paths := make([]string, 0, len(records))
	for _, rec := range records {
		paths = append(paths, rec.Path)
	}
	slices.Sort(paths)
	return slices.Compact(paths)
}
