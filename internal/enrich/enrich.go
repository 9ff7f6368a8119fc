package enrich

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"takeoutfix/internal/logging"
	"takeoutfix/internal/sidecar"
)

// TimeSource records where an applied capture time came from.
type TimeSource string

const (
	SourcePhotoTaken TimeSource = "photoTakenTime"
	SourceCreation   TimeSource = "creationTime"
	SourceEXIF       TimeSource = "exif"
	SourceNone       TimeSource = "none"
)

// Outcome describes what was applied to one media file.
type Outcome struct {
	MediaPath   string
	Time        time.Time
	Source      TimeSource
	CreationSet bool
	People      []string
	Location    string
	// EXIFTime is the embedded capture time when it was inspected.
	EXIFTime time.Time
	// EXIFWritten is set when sidecar fields were embedded into the file.
	EXIFWritten bool
}

// Options toggles enrichment behaviour.
type Options struct {
	ApplyTimestamps bool
	InspectEXIF     bool
	WriteEXIF       bool
}

// Enricher applies sidecar metadata to media files.
type Enricher struct {
	opts    Options
	applier TimestampApplier
	logger  *slog.Logger
}

// New returns an Enricher. A nil applier selects the platform applier.
func New(opts Options, applier TimestampApplier, logger *slog.Logger) *Enricher {
	if applier == nil {
		applier = NewTimestampApplier()
	}
	return &Enricher{
		opts:    opts,
		applier: applier,
		logger:  logging.NewComponentLogger(logger, "enrich"),
	}
}

// Apply reads the sidecar at sidecarPath and applies its capture time to
// mediaPath. An unreadable sidecar is an error; a sidecar without any usable
// time is not, and yields SourceNone.
func (e *Enricher) Apply(mediaPath, sidecarPath string) (Outcome, error) {
	out := Outcome{MediaPath: mediaPath, Source: SourceNone}

	meta, err := sidecar.Load(sidecarPath)
	if err != nil {
		return out, err
	}
	out.People = meta.PeopleNames()
	geo, hasGeo := meta.Location()
	if hasGeo {
		out.Location = geo.String()
	}

	switch captured, err := meta.CaptureTime(); {
	case err == nil:
		out.Time = captured
		out.Source = SourcePhotoTaken
		if meta.PhotoTakenTime.IsZero() {
			out.Source = SourceCreation
		}
	case !errors.Is(err, sidecar.ErrNoTimestamp):
		return out, err
	}

	if e.opts.InspectEXIF && exifCapable(mediaPath) {
		if embedded, err := readEXIFTime(mediaPath); err == nil {
			out.EXIFTime = embedded
			if out.Source == SourceNone {
				out.Time = embedded
				out.Source = SourceEXIF
			}
		} else {
			e.logger.Debug("no exif capture time", logging.String(logging.FieldMedia, mediaPath), logging.Error(err))
		}
	}

	if e.opts.WriteEXIF && exifCapable(mediaPath) {
		fields := exifFields{People: out.People}
		if out.Source == SourcePhotoTaken || out.Source == SourceCreation {
			fields.Taken = out.Time
		}
		if hasGeo {
			fields.Location = &geo
		}
		if !fields.empty() {
			if err := writeEXIF(mediaPath, fields); err != nil {
				logging.WarnWithContext(e.logger, "exif write failed", logging.EventEXIFWriteFailed,
					logging.Media(mediaPath),
					logging.Error(err),
				)
			} else {
				out.EXIFWritten = true
			}
		}
	}

	if out.Source == SourceNone {
		logging.WarnWithContext(e.logger, "no usable timestamp", logging.EventTimestampMissing,
			logging.Media(mediaPath),
			logging.Sidecar(sidecarPath),
		)
		return out, nil
	}

	if e.opts.ApplyTimestamps {
		created, err := e.applier.Apply(mediaPath, out.Time)
		if err != nil {
			return out, fmt.Errorf("apply timestamp: %w", err)
		}
		out.CreationSet = created
	}

	e.logger.Debug("media enriched",
		logging.Media(mediaPath),
		logging.String("time_source", string(out.Source)),
		logging.String("capture_time", out.Time.UTC().Format(time.RFC3339)),
		logging.String("people", strings.Join(out.People, ", ")),
		logging.String("location", out.Location),
		logging.Bool("creation_time_set", out.CreationSet),
		logging.Bool("exif_written", out.EXIFWritten),
	)
	return out, nil
}
