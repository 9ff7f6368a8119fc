package enrich

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	exifv3 "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	"golang.org/x/text/encoding/unicode"

	"takeoutfix/internal/fileutil"
	"takeoutfix/internal/sidecar"
)

const exifTimestampLayout = "2006:01:02 15:04:05"

// exifFields is the sidecar metadata embedded into a JPEG. Zero members are
// left untouched in the file.
type exifFields struct {
	Taken    time.Time
	Location *sidecar.Geo
	People   []string
}

func (f exifFields) empty() bool {
	return f.Taken.IsZero() && f.Location == nil && len(f.People) == 0
}

// writeEXIF merges fields into the EXIF block of the JPEG at path, creating
// the block when the file has none. Existing tags other than the ones written
// here are preserved.
func writeEXIF(path string, fields exifFields) error {
	parsed, err := jpegstructure.NewJpegMediaParser().ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse jpeg: %w", err)
	}
	segments, ok := parsed.(*jpegstructure.SegmentList)
	if !ok {
		return fmt.Errorf("parse jpeg: unexpected structure %T", parsed)
	}

	var root *exifv3.IfdBuilder
	if _, _, err := segments.FindExif(); errors.Is(err, exifv3.ErrNoExif) {
		root, err = newEXIFBuilder()
		if err != nil {
			return err
		}
	} else {
		root, err = segments.ConstructExifBuilder()
		if err != nil {
			return fmt.Errorf("read exif: %w", err)
		}
	}

	if err := setEXIFFields(root, fields); err != nil {
		return err
	}
	if err := segments.SetExif(root); err != nil {
		return fmt.Errorf("encode exif: %w", err)
	}
	return fileutil.RewriteFile(path, segments.Write)
}

func newEXIFBuilder() (*exifv3.IfdBuilder, error) {
	mapping, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, fmt.Errorf("exif ifd mapping: %w", err)
	}
	return exifv3.NewIfdBuilder(mapping, exifv3.NewTagIndex(), exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder), nil
}

func setEXIFFields(root *exifv3.IfdBuilder, fields exifFields) error {
	if !fields.Taken.IsZero() {
		exifIfd, err := exifv3.GetOrCreateIbFromRootIb(root, "IFD/Exif")
		if err != nil {
			return fmt.Errorf("exif ifd: %w", err)
		}
		if err := exifIfd.SetStandardWithName("DateTimeOriginal", fields.Taken.UTC().Format(exifTimestampLayout)); err != nil {
			return fmt.Errorf("set DateTimeOriginal: %w", err)
		}
	}

	if geo := fields.Location; geo != nil {
		gpsIfd, err := exifv3.GetOrCreateIbFromRootIb(root, "IFD/GPSInfo")
		if err != nil {
			return fmt.Errorf("gps ifd: %w", err)
		}
		altRef := byte(0)
		if geo.Altitude < 0 {
			altRef = 1
		}
		tags := []struct {
			name  string
			value any
		}{
			{"GPSVersionID", []byte{2, 2, 0, 0}},
			{"GPSLatitudeRef", hemisphere(geo.Latitude, "N", "S")},
			{"GPSLatitude", degreesToRationals(geo.Latitude)},
			{"GPSLongitudeRef", hemisphere(geo.Longitude, "E", "W")},
			{"GPSLongitude", degreesToRationals(geo.Longitude)},
			{"GPSAltitudeRef", []byte{altRef}},
			{"GPSAltitude", []exifcommon.Rational{{Numerator: uint32(math.Round(math.Abs(geo.Altitude) * 100)), Denominator: 100}}},
		}
		for _, tag := range tags {
			if err := gpsIfd.SetStandardWithName(tag.name, tag.value); err != nil {
				return fmt.Errorf("set %s: %w", tag.name, err)
			}
		}
	}

	if len(fields.People) > 0 {
		keywords, err := xpString(strings.Join(fields.People, ";"))
		if err != nil {
			return err
		}
		if err := root.SetStandardWithName("XPKeywords", keywords); err != nil {
			return fmt.Errorf("set XPKeywords: %w", err)
		}
	}
	return nil
}

func hemisphere(v float64, positive, negative string) string {
	if v < 0 {
		return negative
	}
	return positive
}

// degreesToRationals splits a decimal coordinate into degrees, minutes and
// seconds, with seconds kept to 1/10000.
func degreesToRationals(v float64) []exifcommon.Rational {
	v = math.Abs(v)
	deg := math.Floor(v)
	minutes := math.Floor((v - deg) * 60)
	seconds := math.Round(((v-deg)*60 - minutes) * 60 * 10000)
	if seconds >= 60*10000 {
		seconds = 0
		minutes++
	}
	if minutes >= 60 {
		minutes = 0
		deg++
	}
	return []exifcommon.Rational{
		{Numerator: uint32(deg), Denominator: 1},
		{Numerator: uint32(minutes), Denominator: 1},
		{Numerator: uint32(seconds), Denominator: 10000},
	}
}

// xpString encodes s the way Windows XP* tags store text: UTF-16LE with a
// terminating NUL.
func xpString(s string) ([]byte, error) {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().String(s + "\x00")
	if err != nil {
		return nil, fmt.Errorf("encode keywords: %w", err)
	}
	return []byte(encoded), nil
}
