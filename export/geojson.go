// Package export writes derived tracks out for other tools: GeoJSON for maps,
// and InfluxDB points for dashboards.
package export

import (
	"bufio"
	"encoding/json"
	"io"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"
	"github.com/rotblauer/trkgeo/geo/summary"
	"github.com/rotblauer/trkgeo/params"
	"github.com/rotblauer/trkgeo/types/trk"
)

func setFloat(props geojson.Properties, key string, v float64) {
	if !trk.IsNoFloat(v) {
		props[key] = v
	}
}

// PointFeature is a visible point as a GeoJSON Point Feature.
// Properties mirror the point's derived fields; fields without data are left out.
// Name and Time are set the way ingest reads them back; Time keeps fractional seconds,
// UnixTime is whole seconds for tools that want a number.
func PointFeature(t *trk.Track, seg int, pt *trk.TrackPoint) *geojson.Feature {
	f := geojson.NewFeature(pt.Point())
	p := f.Properties
	p["Name"] = t.Name
	p["Segment"] = seg
	p["Idx"] = pt.Idx
	if pt.HasTime() {
		p["Time"] = pt.Time.Format(time.RFC3339Nano)
		p["UnixTime"] = pt.Time.Unix()
	}
	setFloat(p, "Elevation", pt.Ele)
	setFloat(p, "Distance", pt.Distance)
	setFloat(p, "Ascend", pt.Ascend)
	setFloat(p, "Descend", pt.Descend)
	setFloat(p, "ElapsedSeconds", pt.ElapsedSeconds)
	setFloat(p, "ElapsedSecondsMoving", pt.ElapsedSecondsMoving)
	setFloat(p, "Speed", pt.Speed)
	setFloat(p, "Slope", pt.Slope1)
	setFloat(p, "SlopePercent", pt.Slope2)
	return f
}

// Points returns the visible points of t as a FeatureCollection.
func Points(t *trk.Track) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	t.ScanVisible(func(s, _ int, pt *trk.TrackPoint) bool {
		fc.Append(PointFeature(t, s, pt))
		return true
	})
	return fc
}

// Line returns t as a MultiLineString Feature, one line per segment of visible points,
// with the track summary as properties.
// Lines are simplified with Douglas-Peucker unless config is nil or its threshold is 0.
// Segments with fewer than two visible points are left out.
func Line(t *trk.Track, config *params.SimplificationConfig) *geojson.Feature {
	mls := orb.MultiLineString{}
	for s := range t.Segs {
		ls := orb.LineString{}
		for p := range t.Segs[s].Pts {
			pt := &t.Segs[s].Pts[p]
			if pt.IsDeleted() {
				continue
			}
			ls = append(ls, pt.Point())
		}
		if len(ls) < 2 {
			continue
		}
		if config != nil && config.DouglasPeuckerThreshold > 0 {
			ls = simplify.DouglasPeucker(config.DouglasPeuckerThreshold).LineString(ls)
		}
		mls = append(mls, ls)
	}

	f := geojson.NewFeature(mls)
	s := summary.Of(t)
	p := f.Properties
	p["Name"] = s.Name
	p["RawPointCount"] = s.Visible
	setFloat(p, "Distance", s.Distance)
	setFloat(p, "Ascend", s.Ascend)
	setFloat(p, "Descend", s.Descend)
	setFloat(p, "ElapsedSeconds", s.ElapsedSeconds)
	setFloat(p, "ElapsedSecondsMoving", s.ElapsedSecondsMoving)
	setFloat(p, "AvgSpeed", s.AvgSpeed)
	setFloat(p, "AvgMovingSpeed", s.AvgMovingSpeed)
	setFloat(p, "SpeedMax", s.SpeedMax)
	if !s.TimeStart.IsZero() {
		p["Time_Start_Unix"] = s.TimeStart.Unix()
		p["Time_Start_RFC3339"] = s.TimeStart.Format(time.RFC3339)
	}
	if !s.TimeEnd.IsZero() {
		p["Time_End_Unix"] = s.TimeEnd.Unix()
		p["Time_End_RFC3339"] = s.TimeEnd.Format(time.RFC3339)
	}
	if !t.Bound.IsEmpty() {
		f.BBox = geojson.NewBBox(t.Bound)
	}
	return f
}

// GeoJSON is the track line followed by its points.
func GeoJSON(t *trk.Track, config *params.SimplificationConfig) *geojson.FeatureCollection {
	fc := Points(t)
	fc.Features = append([]*geojson.Feature{Line(t, config)}, fc.Features...)
	return fc
}

// WriteGeoJSON writes fc as a single document.
func WriteGeoJSON(w io.Writer, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WritePointLines writes the visible points of t as newline-delimited Features.
func WritePointLines(w io.Writer, t *trk.Track) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	var err error
	t.ScanVisible(func(s, _ int, pt *trk.TrackPoint) bool {
		err = enc.Encode(PointFeature(t, s, pt))
		return err == nil
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}
