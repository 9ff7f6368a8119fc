package matching

// Phase names a checkpoint-bracketed stage of a pairing run.
type Phase string

const (
	PhaseIndex   Phase = "index"
	PhaseResolve Phase = "resolve"
	PhaseSweep   Phase = "sweep"
)

// Side tells which input collection an unmatched path belongs to.
type Side string

const (
	SideMedia    Side = "media"
	SideMetadata Side = "metadata"
)

// Reason explains why a path ended up unmatched.
type Reason string

const (
	// ReasonNoCandidate means no pass produced a media path for the sidecar.
	ReasonNoCandidate Reason = "no candidate"
	// ReasonTaken means the resolved media path was already paired.
	ReasonTaken Reason = "candidate already paired"
	// ReasonNoSidecar means no sidecar claimed the media file.
	ReasonNoSidecar Reason = "no sidecar"
)

// Reporter receives progress checkpoints from Pair. Implementations must not
// retain the Result slices passed through them.
type Reporter interface {
	PhaseStarted(phase Phase, total int)
	PhaseFinished(phase Phase, count int)
	PairConfirmed(pair Pair)
	Unmatched(side Side, path string, reason Reason)
}

// NopReporter discards every checkpoint.
type NopReporter struct{}

func (NopReporter) PhaseStarted(Phase, int)        {}
func (NopReporter) PhaseFinished(Phase, int)       {}
func (NopReporter) PairConfirmed(Pair)             {}
func (NopReporter) Unmatched(Side, string, Reason) {}

// MultiReporter fans checkpoints out to several reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) PhaseStarted(phase Phase, total int) {
	for _, r := range m {
		r.PhaseStarted(phase, total)
	}
}

func (m MultiReporter) PhaseFinished(phase Phase, count int) {
	for _, r := range m {
		r.PhaseFinished(phase, count)
	}
}

func (m MultiReporter) PairConfirmed(pair Pair) {
	for _, r := range m {
		r.PairConfirmed(pair)
	}
}

func (m MultiReporter) Unmatched(side Side, path string, reason Reason) {
	for _, r := range m {
		r.Unmatched(side, path, reason)
	}
}
