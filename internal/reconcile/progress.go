package reconcile

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"takeoutfix/internal/matching"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Progress draws one progress bar at a time. A nil *Progress draws nothing.
type Progress struct {
	w    io.Writer
	bar  *progressbar.ProgressBar
	done int
}

// NewProgress returns a Progress drawing on f, or nil when f is not a terminal.
func NewProgress(f *os.File) *Progress {
	if !IsTerminal(f) {
		return nil
	}
	return NewProgressWriter(f)
}

// NewProgressWriter draws on w unconditionally.
func NewProgressWriter(w io.Writer) *Progress {
	return &Progress{w: w}
}

func (p *Progress) start(desc string, total int) {
	if p == nil {
		return
	}
	p.finish()
	p.done = 0
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *Progress) set(done int) {
	if p == nil || p.bar == nil {
		return
	}
	p.done = done
	_ = p.bar.Set(done)
}

func (p *Progress) finish() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

// callback adapts the bar to the Progress hooks of archive and organizer.
func (p *Progress) callback(desc string) func(done, total int) {
	if p == nil {
		return nil
	}
	started := false
	return func(done, total int) {
		if !started {
			p.start(desc, total)
			started = true
		}
		p.set(done)
		if done >= total {
			p.finish()
		}
	}
}

func (p *Progress) PhaseStarted(phase matching.Phase, total int) {
	if phase == matching.PhaseResolve {
		p.start("matching sidecars", total)
	}
}

func (p *Progress) PhaseFinished(phase matching.Phase, _ int) {
	if phase == matching.PhaseResolve {
		p.finish()
	}
}

func (p *Progress) PairConfirmed(matching.Pair) {
	if p != nil {
		p.set(p.done + 1)
	}
}

func (p *Progress) Unmatched(side matching.Side, _ string, _ matching.Reason) {
	if p != nil && side == matching.SideMetadata {
		p.set(p.done + 1)
	}
}
