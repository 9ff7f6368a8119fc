package enrich

import (
	"bytes"
	"image"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/text/encoding/unicode"
)

// plainJPEG returns a small baseline JPEG without any EXIF segment.
func plainJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func decodeEXIF(t *testing.T, path string) *exif.Exif {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	x, err := exif.Decode(f)
	if err != nil {
		t.Fatalf("decode exif: %v", err)
	}
	return x
}

func exifString(t *testing.T, x *exif.Exif, field exif.FieldName) string {
	t.Helper()
	tag, err := x.Get(field)
	if err != nil {
		t.Fatalf("get %s: %v", field, err)
	}
	value, err := tag.StringVal()
	if err != nil {
		t.Fatalf("%s value: %v", field, err)
	}
	return value
}

func readKeywords(t *testing.T, path string) string {
	t.Helper()
	parsed, err := jpegstructure.NewJpegMediaParser().ParseFile(path)
	if err != nil {
		t.Fatalf("parse jpeg: %v", err)
	}
	rootIfd, _, err := parsed.(*jpegstructure.SegmentList).Exif()
	if err != nil {
		t.Fatalf("read exif: %v", err)
	}
	entries, err := rootIfd.FindTagWithName("XPKeywords")
	if err != nil || len(entries) == 0 {
		t.Fatalf("XPKeywords missing: %v", err)
	}
	raw, err := entries[0].Value()
	if err != nil {
		t.Fatalf("XPKeywords value: %v", err)
	}
	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw.([]byte))
	if err != nil {
		t.Fatalf("decode keywords: %v", err)
	}
	return string(bytes.TrimRight(decoded, "\x00"))
}

func TestApplyWritesEXIF(t *testing.T) {
	dir := t.TempDir()
	media := writeFile(t, dir, "IMG_0042.jpg", plainJPEG(t))
	meta := writeFile(t, dir, "IMG_0042.jpg.json", []byte(`{
		"photoTakenTime": {"timestamp": "1554286839"},
		"geoData": {"latitude": 48.858222, "longitude": -2.2945, "altitude": 35.5},
		"people": [{"name": "Ada"}, {"name": "Grace"}]
	}`))
	applier := &recordingApplier{}

	out, err := New(Options{ApplyTimestamps: true, WriteEXIF: true}, applier, nil).Apply(media, meta)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !out.EXIFWritten {
		t.Fatalf("expected exif written, got %+v", out)
	}
	if got := applier.calls[media]; got.Unix() != 1554286839 {
		t.Fatalf("timestamp applied after exif write = %v", got)
	}

	x := decodeEXIF(t, media)
	if got := exifString(t, x, exif.DateTimeOriginal); got != "2019:04:03 10:20:39" {
		t.Fatalf("DateTimeOriginal = %q", got)
	}
	lat, long, err := x.LatLong()
	if err != nil {
		t.Fatalf("LatLong: %v", err)
	}
	if math.Abs(lat-48.858222) > 1e-5 || math.Abs(long+2.2945) > 1e-5 {
		t.Fatalf("LatLong = %f,%f", lat, long)
	}
	if got := exifString(t, x, exif.GPSLongitudeRef); got != "W" {
		t.Fatalf("GPSLongitudeRef = %q", got)
	}
	altTag, err := x.Get(exif.GPSAltitude)
	if err != nil {
		t.Fatalf("GPSAltitude: %v", err)
	}
	alt, err := altTag.Rat(0)
	if err != nil {
		t.Fatalf("GPSAltitude value: %v", err)
	}
	if f, _ := alt.Float64(); f != 35.5 {
		t.Fatalf("GPSAltitude = %v", f)
	}
	if got := readKeywords(t, media); got != "Ada;Grace" {
		t.Fatalf("XPKeywords = %q", got)
	}
}

func TestWriteEXIFKeepsEarlierTags(t *testing.T) {
	path := writeFile(t, t.TempDir(), "merge.jpg", plainJPEG(t))
	taken := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)
	if err := writeEXIF(path, exifFields{Taken: taken}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := writeEXIF(path, exifFields{People: []string{"Lin"}}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	if got := exifString(t, decodeEXIF(t, path), exif.DateTimeOriginal); got != "2001:02:03 04:05:06" {
		t.Fatalf("DateTimeOriginal lost on rewrite: %q", got)
	}
	if got := readKeywords(t, path); got != "Lin" {
		t.Fatalf("XPKeywords = %q", got)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("expected no leftover temp files, got %d entries", len(entries))
	}
}

func TestApplySkipsEXIFForUnreadableJPEG(t *testing.T) {
	dir := t.TempDir()
	media := writeFile(t, dir, "broken.jpg", []byte("jpeg"))
	meta := writeFile(t, dir, "broken.jpg.json", []byte(`{"photoTakenTime":{"timestamp":"10"},"people":[{"name":"Ada"}]}`))
	applier := &recordingApplier{}

	out, err := New(Options{ApplyTimestamps: true, WriteEXIF: true}, applier, nil).Apply(media, meta)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.EXIFWritten {
		t.Fatal("expected exif write to be skipped")
	}
	if _, ok := applier.calls[media]; !ok {
		t.Fatal("timestamp should still be applied")
	}
	got, _ := os.ReadFile(media)
	if string(got) != "jpeg" {
		t.Fatalf("unreadable file was modified: %q", got)
	}
}

func TestApplyWithoutWriteEXIFLeavesFile(t *testing.T) {
	dir := t.TempDir()
	original := plainJPEG(t)
	media := writeFile(t, dir, "keep.jpg", original)
	meta := writeFile(t, dir, "keep.jpg.json", []byte(`{"photoTakenTime":{"timestamp":"10"}}`))

	out, err := New(Options{}, &recordingApplier{}, nil).Apply(media, meta)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got, _ := os.ReadFile(media)
	if out.EXIFWritten || !bytes.Equal(got, original) {
		t.Fatal("file changed with exif writing disabled")
	}
}

func TestDegreesToRationals(t *testing.T) {
	tests := []struct {
		in   float64
		want [3]uint32
	}{
		{48.858222, [3]uint32{48, 51, 295992}},
		{-2.2945, [3]uint32{2, 17, 402000}},
		{0, [3]uint32{0, 0, 0}},
		{10.99999999, [3]uint32{11, 0, 0}},
	}
	for _, tt := range tests {
		got := degreesToRationals(tt.in)
		want := []exifcommon.Rational{
			{Numerator: tt.want[0], Denominator: 1},
			{Numerator: tt.want[1], Denominator: 1},
			{Numerator: tt.want[2], Denominator: 10000},
		}
		if !slices.Equal(got, want) {
			t.Fatalf("degreesToRationals(%v) = %v, want %v", tt.in, got, want)
		}
	}
}
