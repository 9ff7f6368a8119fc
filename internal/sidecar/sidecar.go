// Package sidecar decodes the JSON metadata files Google Takeout writes next
// to each exported photo or video.
package sidecar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrNoTimestamp reports a sidecar that carries neither photoTakenTime nor
// creationTime.
var ErrNoTimestamp = errors.New("sidecar has no usable timestamp")

// Metadata is the subset of a Takeout sidecar payload takeoutfix consumes.
type Metadata struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	URL            string    `json:"url"`
	PhotoTakenTime Timestamp `json:"photoTakenTime"`
	CreationTime   Timestamp `json:"creationTime"`
	GeoData        Geo       `json:"geoData"`
	GeoDataExif    Geo       `json:"geoDataExif"`
	People         []Person  `json:"people"`
}

// Timestamp is a Takeout epoch-seconds value. Takeout writes the seconds as a
// string; plain numbers are accepted as well.
type Timestamp struct {
	Unix      int64
	Formatted string
}

// UnmarshalJSON accepts {"timestamp": "1554286839", "formatted": "..."}.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var raw struct {
		Timestamp json.RawMessage `json:"timestamp"`
		Formatted string          `json:"formatted"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Formatted = raw.Formatted
	t.Unix = 0

	value := strings.TrimSpace(string(raw.Timestamp))
	if value == "" || value == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(value); err == nil {
		value = strings.TrimSpace(unquoted)
	}
	if value == "" {
		return nil
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", value, err)
	}
	t.Unix = seconds
	return nil
}

// IsZero reports whether the timestamp is absent or zero.
func (t Timestamp) IsZero() bool {
	return t.Unix == 0
}

// Time returns the timestamp in UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Unix, 0).UTC()
}

// Geo holds a coordinate pair. Takeout writes 0,0 when no location is known.
type Geo struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// Known reports whether the coordinates carry a location.
func (g Geo) Known() bool {
	return g.Latitude != 0 || g.Longitude != 0
}

func (g Geo) String() string {
	return strconv.FormatFloat(g.Latitude, 'f', 6, 64) + "," + strconv.FormatFloat(g.Longitude, 'f', 6, 64)
}

type Person struct {
	Name string `json:"name"`
}

// Parse decodes a sidecar payload.
func Parse(r io.Reader) (*Metadata, error) {
	var meta Metadata
	if err := json.NewDecoder(r).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode sidecar: %w", err)
	}
	return &meta, nil
}

// Load reads and decodes the sidecar at path.
func Load(path string) (*Metadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sidecar: %w", err)
	}
	defer file.Close()
	meta, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return meta, nil
}

// CaptureTime returns photoTakenTime, falling back to creationTime.
func (m *Metadata) CaptureTime() (time.Time, error) {
	if m == nil {
		return time.Time{}, ErrNoTimestamp
	}
	if !m.PhotoTakenTime.IsZero() {
		return m.PhotoTakenTime.Time(), nil
	}
	if !m.CreationTime.IsZero() {
		return m.CreationTime.Time(), nil
	}
	return time.Time{}, ErrNoTimestamp
}

// PeopleNames returns the non-empty person names tagged in the sidecar.
func (m *Metadata) PeopleNames() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.People))
	for _, person := range m.People {
		if name := strings.TrimSpace(person.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Location prefers geoData and falls back to geoDataExif.
func (m *Metadata) Location() (Geo, bool) {
	if m == nil {
		return Geo{}, false
	}
	if m.GeoData.Known() {
		return m.GeoData, true
	}
	if m.GeoDataExif.Known() {
		return m.GeoDataExif, true
	}
	return Geo{}, false
}
