package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/rotblauer/trkgeo/params"
	"github.com/rotblauer/trkgeo/stream"
	"github.com/rotblauer/trkgeo/types/trk"
	"github.com/tidwall/gjson"
)

// UnnamedTrack names tracks built from features without a Name property.
const UnnamedTrack = "Unnamed"

var (
	errNotPoint    = errors.New("not a Point feature")
	errInvalidJSON = errors.New("invalid json")
)

// featureTime reads a point feature's time.
// Time, an RFC3339 string, is preferred since it keeps fractional seconds;
// UnixTime (seconds, possibly fractional) is the fallback, to the millisecond.
// Points with neither have unknown time.
func featureTime(props gjson.Result) time.Time {
	if ts := props.Get("Time"); ts.Type == gjson.String {
		t, err := time.Parse(time.RFC3339Nano, ts.String())
		if err == nil {
			return t
		}
	}
	if unix := props.Get("UnixTime"); unix.Type == gjson.Number {
		return time.UnixMilli(int64(math.Round(unix.Float() * 1000))).UTC()
	}
	return time.Time{}
}

// featurePoint reads a GeoJSON point Feature.
// Elevation is the third coordinate, or else the Elevation property.
func featurePoint(f gjson.Result) (name string, pt trk.TrackPoint, err error) {
	geom := f.Get("geometry")
	if geom.Get("type").String() != "Point" {
		return "", pt, errNotPoint
	}
	coords := geom.Get("coordinates").Array()
	if len(coords) < 2 {
		return "", pt, fmt.Errorf("point has %d coordinates", len(coords))
	}
	pt = trk.NewTrackPoint(coords[0].Float(), coords[1].Float())
	props := f.Get("properties")
	if len(coords) > 2 {
		pt.Ele = coords[2].Float()
	} else if ele := props.Get("Elevation"); ele.Type == gjson.Number {
		pt.Ele = ele.Float()
	}
	pt.Time = featureTime(props)
	name = props.Get("Name").String()
	if name == "" {
		name = UnnamedTrack
	}
	return name, pt, nil
}

// builder groups points into a track per name, and points into segments
// wherever time jumps.
type builder struct {
	gap    time.Duration
	order  []string
	tracks map[string]*trk.Track
	last   map[string]time.Time
}

func newBuilder(config *params.IngestConfig) *builder {
	if config == nil {
		config = params.DefaultIngestConfig
	}
	return &builder{
		gap:    config.SegmentGap,
		tracks: map[string]*trk.Track{},
		last:   map[string]time.Time{},
	}
}

// isDiscontinuous is true when current is too long after the last point,
// or more than a second before it.
func (b *builder) isDiscontinuous(name string, current time.Time) bool {
	last := b.last[name]
	if current.IsZero() {
		return false
	}
	b.last[name] = current
	if last.IsZero() {
		return false
	}
	span := current.Sub(last)
	discontinuous := span > b.gap || span < -1*time.Second
	if discontinuous {
		slog.Debug("Ingest discontinuity", "track", name, "span", span, "gap", b.gap)
	}
	return discontinuous
}

func (b *builder) add(name string, pt trk.TrackPoint) {
	t, ok := b.tracks[name]
	if !ok {
		t = trk.NewTrack(name)
		b.tracks[name] = t
		b.order = append(b.order, name)
	}
	if len(t.Segs) == 0 || b.isDiscontinuous(name, pt.Time) {
		t.Segs = append(t.Segs, trk.Segment{})
	}
	last := &t.Segs[len(t.Segs)-1]
	last.Pts = append(last.Pts, pt)
}

// pointFeature is a feature as read, numbered by its position in the input from 1.
type pointFeature struct {
	n    int
	name string
	pt   trk.TrackPoint
	err  error
}

func readFeature(n int, f gjson.Result) pointFeature {
	name, pt, err := featurePoint(f)
	return pointFeature{n: n, name: name, pt: pt, err: err}
}

// isPoint keeps point features, and features that failed for any other reason, so their errors surface.
func isPoint(pf pointFeature) bool {
	if errors.Is(pf.err, errNotPoint) {
		slog.Debug("Ingest skipping feature", "n", pf.n)
		return false
	}
	return true
}

// addAll adds the features in order, stopping at the first that failed.
// what names the unit features are counted in, for the error.
func (b *builder) addAll(features []pointFeature, what string) error {
	for _, pf := range features {
		if pf.err != nil {
			return fmt.Errorf("%s %d: %w", what, pf.n, pf.err)
		}
		b.add(pf.name, pf.pt)
	}
	return nil
}

func (b *builder) result() (*Result, error) {
	if len(b.order) == 0 {
		return nil, ErrNoTracks
	}
	res := &Result{}
	for _, name := range b.order {
		res.Tracks = append(res.Tracks, b.tracks[name])
	}
	return res, nil
}

// GeoJSON reads point features into tracks, one track per feature Name.
// The input is a FeatureCollection, a single Feature, or newline-delimited Features.
// Non-point features are skipped.
func GeoJSON(ctx context.Context, r io.Reader, config *params.IngestConfig) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b := newBuilder(config)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	n := 0
	if gjson.ValidBytes(data) {
		doc := gjson.ParseBytes(data)
		var features []gjson.Result
		isGeoJSON := true
		switch doc.Get("type").String() {
		case "FeatureCollection":
			features = doc.Get("features").Array()
		case "Feature":
			features = []gjson.Result{doc}
		default:
			isGeoJSON = false
		}
		if isGeoJSON {
			read := func(f gjson.Result) pointFeature {
				n++
				return readFeature(n, f)
			}
			points := stream.Collect(ctx, stream.Filter(ctx, isPoint,
				stream.Transform(ctx, read, stream.Slice(ctx, features))))
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := b.addAll(points, "feature"); err != nil {
				return nil, err
			}
			return b.result()
		}
	}

	lines, errs := stream.Lines(ctx, bytes.NewReader(data))
	read := func(line []byte) pointFeature {
		n++
		if !gjson.ValidBytes(line) {
			return pointFeature{n: n, err: errInvalidJSON}
		}
		return readFeature(n, gjson.ParseBytes(line))
	}
	points := stream.Collect(ctx, stream.Filter(ctx, isPoint, stream.Transform(ctx, read, lines)))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.addAll(points, "line"); err != nil {
		return nil, err
	}
	if err := <-errs; err != nil {
		return nil, err
	}
	return b.result()
}
