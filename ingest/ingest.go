// Package ingest loads raw tracks from files other programs write: GPX, and GeoJSON
// (a FeatureCollection of points, or newline-delimited point Features as Cat Tracks pushes them).
// Loaded tracks are raw; derive them before reading any derived field.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotblauer/trkgeo/metrics"
	"github.com/rotblauer/trkgeo/params"
	"github.com/rotblauer/trkgeo/types/item"
	"github.com/rotblauer/trkgeo/types/trk"
)

var ErrNoTracks = errors.New("no tracks")
var ErrUnknownFormat = errors.New("unknown file format")

type Format string

const (
	FormatGPX     Format = "gpx"
	FormatGeoJSON Format = "geojson"
)

// Result is what a file held.
type Result struct {
	Tracks    []*trk.Track
	Waypoints []*item.Waypoint
}

// Items returns the result as project items, tracks first.
func (r *Result) Items() []item.Item {
	out := make([]item.Item, 0, len(r.Tracks)+len(r.Waypoints))
	for _, t := range r.Tracks {
		out = append(out, item.NewTrack(t))
	}
	for _, w := range r.Waypoints {
		out = append(out, w)
	}
	return out
}

func (r *Result) countPoints() {
	n := 0
	for _, t := range r.Tracks {
		t.Scan(func(_, _ int, _ *trk.TrackPoint) bool {
			n++
			return true
		})
	}
	metrics.IngestPointsCounter.Inc(int64(n))
}

// FormatOf guesses a file's format from its extension.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gpx":
		return FormatGPX, nil
	case ".geojson", ".json", ".ndjson", ".jsonl":
		return FormatGeoJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
}

// Read loads r as the given format.
func Read(ctx context.Context, r io.Reader, format Format, config *params.IngestConfig) (*Result, error) {
	var res *Result
	var err error
	switch format {
	case FormatGPX:
		res, err = GPX(r)
	case FormatGeoJSON:
		res, err = GeoJSON(ctx, r, config)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	res.countPoints()
	return res, nil
}

// File loads the file at path, by its extension.
func File(ctx context.Context, path string, config *params.IngestConfig) (*Result, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	res, err := Read(ctx, f, format, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}
