package ingest

import (
	"io"

	"github.com/rotblauer/trkgeo/types/item"
	"github.com/rotblauer/trkgeo/types/trk"
	"github.com/tkrajina/gpxgo/gpx"
)

func gpxPoint(p *gpx.GPXPoint) trk.TrackPoint {
	pt := trk.NewTrackPoint(p.Longitude, p.Latitude)
	if p.Elevation.NotNull() {
		pt.Ele = p.Elevation.Value()
	}
	pt.Time = p.Timestamp
	return pt
}

// GPX reads tracks and waypoints from a GPX document.
// Each GPX track becomes a track, keeping its segments as they are, empty ones included;
// deriving prunes those.
func GPX(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for i := range g.Tracks {
		gt := &g.Tracks[i]
		segs := make([]trk.Segment, 0, len(gt.Segments))
		for j := range gt.Segments {
			gs := &gt.Segments[j]
			pts := make([]trk.TrackPoint, 0, len(gs.Points))
			for k := range gs.Points {
				pts = append(pts, gpxPoint(&gs.Points[k]))
			}
			segs = append(segs, trk.Segment{Pts: pts})
		}
		res.Tracks = append(res.Tracks, trk.NewTrack(gt.Name, segs...))
	}
	for i := range g.Waypoints {
		w := &g.Waypoints[i]
		res.Waypoints = append(res.Waypoints, item.NewWaypoint(w.Name, gpxPoint(w)))
	}
	if len(res.Tracks) == 0 && len(res.Waypoints) == 0 {
		return nil, ErrNoTracks
	}
	return res, nil
}
