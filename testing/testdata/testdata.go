package testdata

import (
	"math"
	"path/filepath"
	"runtime"
	"time"

	"github.com/paulmach/orb"
	"github.com/rotblauer/trkgeo/types/trk"
)

// basepath is the root directory of this package.
var basepath string

func init() {
	_, currentFile, _, _ := runtime.Caller(0)
	basepath = filepath.Dir(currentFile)
}

// Path returns the absolute path the given relative file or directory path,
// relative to this testdata/ directory in the user's GOPATH.
// If rel is already absolute, it is returned unmodified.
// Taken from https://github.com/grpc/grpc-go/blob/master/testdata/testdata.go.
func Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}

	return filepath.Join(basepath, rel)
}

// T0 is the start time of generated tracks.
var T0 = time.Date(2024, 12, 23, 15, 0, 0, 0, time.UTC)

// MetersPerDegreeLat is how far one degree of latitude is, by common.GeoDistance.
var MetersPerDegreeLat = orb.EarthRadius * math.Pi / 180

// Line builds points heading due north from (lon, lat), spacing meters apart,
// one per interval starting at T0. A nil eles leaves elevation unknown;
// otherwise it must be as long as the line is.
// An interval of 0 leaves time unknown.
func Line(n int, lon, lat, spacing float64, interval time.Duration, eles []float64) []trk.TrackPoint {
	pts := make([]trk.TrackPoint, n)
	for i := range pts {
		pts[i] = trk.NewTrackPoint(lon, lat+float64(i)*spacing/MetersPerDegreeLat)
		if eles != nil {
			pts[i].Ele = eles[i]
		}
		if interval > 0 {
			pts[i].Time = T0.Add(time.Duration(i) * interval)
		}
	}
	return pts
}

// LineTrack is a single-segment track of Line.
func LineTrack(name string, n int, spacing float64, interval time.Duration, eles []float64) *trk.Track {
	return trk.NewTrack(name, trk.Segment{Pts: Line(n, -93.25, 44.98, spacing, interval, eles)})
}

// Const returns n copies of v, eg. flat elevations.
func Const(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Ramp returns n values from start, stepping by step.
func Ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// GPX_Two_Segments is a GPX document with one track of two segments,
// an empty third segment, and a waypoint.
var GPX_Two_Segments = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="trkgeo" xmlns="http://www.topografix.com/GPX/1/1">
  <wpt lat="44.98" lon="-93.25"><ele>300</ele><name>Home</name></wpt>
  <trk>
    <name>Morning</name>
    <trkseg>
      <trkpt lat="44.98000" lon="-93.25"><ele>300</ele><time>2024-12-23T15:00:00Z</time></trkpt>
      <trkpt lat="44.98090" lon="-93.25"><ele>305</ele><time>2024-12-23T15:01:00Z</time></trkpt>
      <trkpt lat="44.98180" lon="-93.25"><ele>312</ele><time>2024-12-23T15:02:00Z</time></trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="44.98270" lon="-93.25"><time>2024-12-23T15:30:00Z</time></trkpt>
      <trkpt lat="44.98360" lon="-93.25"><ele>309</ele><time>2024-12-23T15:31:00Z</time></trkpt>
    </trkseg>
    <trkseg></trkseg>
  </trk>
</gpx>
`
