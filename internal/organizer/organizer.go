package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"takeoutfix/internal/fileutil"
	"takeoutfix/internal/logging"
	"takeoutfix/internal/matching"
)

// Options controls placement.
type Options struct {
	OutputDir    string
	FailedDir    string
	CopySidecars bool
	DryRun       bool
}

// Placement records where a pair was copied.
type Placement struct {
	Pair        matching.Pair
	MediaDest   string
	SidecarDest string
}

// FileError is a per-file failure that did not stop the run.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Organizer copies files into the output directory. It is not safe for
// concurrent use.
type Organizer struct {
	opts   Options
	logger *slog.Logger
	// claimed tracks destinations written during this run.
	claimed map[string]struct{}
	// Progress, when set, is called after each file is handled.
	Progress func(done, total int)
}

// New returns an Organizer for opts.
func New(opts Options, logger *slog.Logger) *Organizer {
	if strings.TrimSpace(opts.FailedDir) == "" {
		opts.FailedDir = "FAILED"
	}
	return &Organizer{
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "organizer"),
		claimed: make(map[string]struct{}),
	}
}

// FailedPath returns the directory receiving unmatched media.
func (o *Organizer) FailedPath() string {
	return filepath.Join(o.opts.OutputDir, o.opts.FailedDir)
}

// PlacePairs copies every paired media file, and its sidecar when
// CopySidecars is set, into the output directory under their own base names.
// Copy failures are collected; only cancellation stops the loop.
func (o *Organizer) PlacePairs(ctx context.Context, pairs []matching.Pair) ([]Placement, []FileError, error) {
	if err := o.ensureDir(o.opts.OutputDir); err != nil {
		return nil, nil, err
	}
	placements := make([]Placement, 0, len(pairs))
	var failures []FileError
	for i, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return placements, failures, err
		}
		placement := Placement{Pair: pair}
		dest, err := o.place(pair.MediaPath, o.opts.OutputDir)
		if err != nil {
			failures = append(failures, FileError{Path: pair.MediaPath, Err: err})
			o.warnCopy(pair.MediaPath, err)
			o.progress(i+1, len(pairs))
			continue
		}
		placement.MediaDest = dest
		if o.opts.CopySidecars {
			sidecarDest, err := o.place(pair.MetadataPath, o.opts.OutputDir)
			if err != nil {
				failures = append(failures, FileError{Path: pair.MetadataPath, Err: err})
				o.warnCopy(pair.MetadataPath, err)
			} else {
				placement.SidecarDest = sidecarDest
			}
		}
		placements = append(placements, placement)
		o.logger.Debug("pair placed",
			logging.String(logging.FieldMedia, pair.MediaPath),
			logging.String(logging.FieldSidecar, pair.MetadataPath),
			logging.String(logging.FieldPass, pair.Pass.String()),
			logging.String("dest", dest),
		)
		o.progress(i+1, len(pairs))
	}
	return placements, failures, nil
}

// PlaceUnmatched copies media without a sidecar into the failed directory and
// returns their destinations.
func (o *Organizer) PlaceUnmatched(ctx context.Context, media []string) ([]string, []FileError, error) {
	if len(media) == 0 {
		return nil, nil, nil
	}
	failedDir := o.FailedPath()
	if err := o.ensureDir(failedDir); err != nil {
		return nil, nil, err
	}
	dests := make([]string, 0, len(media))
	var failures []FileError
	for i, path := range media {
		if err := ctx.Err(); err != nil {
			return dests, failures, err
		}
		dest, err := o.place(path, failedDir)
		if err != nil {
			failures = append(failures, FileError{Path: path, Err: err})
			o.warnCopy(path, err)
		} else {
			dests = append(dests, dest)
		}
		o.progress(i+1, len(media))
	}
	o.logger.Info("unmatched media copied",
		logging.String("dir", failedDir),
		logging.Int("copied", len(dests)),
		logging.Int("failed", len(failures)),
	)
	return dests, failures, nil
}

func (o *Organizer) place(src, dir string) (string, error) {
	dest := o.destination(dir, filepath.Base(src))
	if o.opts.DryRun {
		return dest, nil
	}
	if err := fileutil.CopyFile(src, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// destination returns dir/name unless this run already wrote there, in which
// case the first _<n> variant not yet written by this run is used. Files left
// by earlier runs are overwritten, so re-running into the same directory
// produces the same names.
func (o *Organizer) destination(dir, name string) string {
	dest := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		if _, taken := o.claimed[dest]; !taken {
			o.claimed[dest] = struct{}{}
			return dest
		}
		dest = filepath.Join(dir, stem+"_"+strconv.Itoa(n)+ext)
	}
}

func (o *Organizer) ensureDir(dir string) error {
	if o.opts.DryRun {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

func (o *Organizer) warnCopy(path string, err error) {
	logging.WarnWithContext(o.logger, "copy failed", logging.EventCopyFailed,
		logging.Media(path),
		logging.Error(err),
	)
}

func (o *Organizer) progress(done, total int) {
	if o.Progress != nil {
		o.Progress(done, total)
	}
}
