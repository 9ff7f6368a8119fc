package sidecar

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const takeoutPayload = `{
  "title": "IMG_0001.jpg",
  "description": "",
  "imageViews": "3",
  "creationTime": {"timestamp": "1554300000", "formatted": "Apr 3, 2019, 2:00:00 PM UTC"},
  "photoTakenTime": {"timestamp": "1554286839", "formatted": "Apr 3, 2019, 10:20:39 AM UTC"},
  "geoData": {"latitude": 0.0, "longitude": 0.0, "altitude": 0.0, "latitudeSpan": 0.0, "longitudeSpan": 0.0},
  "geoDataExif": {"latitude": 48.858370, "longitude": 2.294481, "altitude": 35.0},
  "people": [{"name": "Ada"}, {"name": " "}, {"name": "Grace"}],
  "url": "https://photos.google.com/photo/abc"
}`

func TestParseTakeoutPayload(t *testing.T) {
	meta, err := Parse(strings.NewReader(takeoutPayload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if meta.Title != "IMG_0001.jpg" {
		t.Fatalf("title = %q", meta.Title)
	}
	captured, err := meta.CaptureTime()
	if err != nil {
		t.Fatalf("CaptureTime: %v", err)
	}
	if want := time.Date(2019, 4, 3, 10, 20, 39, 0, time.UTC); !captured.Equal(want) {
		t.Fatalf("CaptureTime = %v, want %v", captured, want)
	}
	names := meta.PeopleNames()
	if len(names) != 2 || names[0] != "Ada" || names[1] != "Grace" {
		t.Fatalf("PeopleNames = %v", names)
	}
	geo, ok := meta.Location()
	if !ok || geo.Latitude != 48.858370 {
		t.Fatalf("Location = %v, %v; want geoDataExif fallback", geo, ok)
	}
	if geo.String() != "48.858370,2.294481" {
		t.Fatalf("Geo.String = %q", geo.String())
	}
}

func TestCaptureTimeFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int64
		wantErr error
	}{
		{"photo taken wins", `{"photoTakenTime":{"timestamp":"20"},"creationTime":{"timestamp":"10"}}`, 20, nil},
		{"creation fallback", `{"photoTakenTime":{"timestamp":"0"},"creationTime":{"timestamp":"10"}}`, 10, nil},
		{"numeric timestamp", `{"photoTakenTime":{"timestamp":30}}`, 30, nil},
		{"empty string", `{"photoTakenTime":{"timestamp":""}}`, 0, ErrNoTimestamp},
		{"null object", `{"photoTakenTime":null}`, 0, ErrNoTimestamp},
		{"missing", `{}`, 0, ErrNoTimestamp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := Parse(strings.NewReader(tt.payload))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			got, err := meta.CaptureTime()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CaptureTime error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CaptureTime: %v", err)
			}
			if got.Unix() != tt.want {
				t.Fatalf("CaptureTime = %d, want %d", got.Unix(), tt.want)
			}
		})
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, payload := range []string{`{`, `{"photoTakenTime":{"timestamp":"soon"}}`, `[]`} {
		if _, err := Parse(strings.NewReader(payload)); err == nil {
			t.Fatalf("expected error for %q", payload)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "IMG_0001.jpg.json")
	if err := os.WriteFile(path, []byte(takeoutPayload), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
	meta, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.URL == "" {
		t.Fatal("expected url to decode")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing sidecar")
	}
}

func TestNilMetadata(t *testing.T) {
	var meta *Metadata
	if _, err := meta.CaptureTime(); !errors.Is(err, ErrNoTimestamp) {
		t.Fatalf("expected ErrNoTimestamp, got %v", err)
	}
	if meta.PeopleNames() != nil {
		t.Fatal("expected nil names")
	}
	if _, ok := meta.Location(); ok {
		t.Fatal("expected no location")
	}
}
