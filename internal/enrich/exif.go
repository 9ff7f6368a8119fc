package enrich

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// exifCapable reports whether path is a format goexif can read.
func exifCapable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}

// readEXIFTime returns DateTimeOriginal, or DateTime when the original is
// absent, interpreted in local time.
func readEXIFTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode exif: %w", err)
	}
	dt, err := x.DateTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("exif datetime: %w", err)
	}
	if dt.Year() < 1900 {
		return time.Time{}, fmt.Errorf("exif datetime out of range: %s", dt)
	}
	return dt, nil
}
