// Package derive computes the secondary data of a track from its raw points:
// cumulative distance, ascend and descend, elapsed and moving time,
// and windowed speed and slope.
//
// Derivation is always a full recompute over the whole track.
// Callers run Recompute after loading a track and again after every edit,
// and must not read derived fields while a Recompute on the same track is running.
package derive

import (
	"log/slog"
	"time"

	"github.com/rotblauer/trkgeo/common"
	"github.com/rotblauer/trkgeo/metrics"
	"github.com/rotblauer/trkgeo/params"
	"github.com/rotblauer/trkgeo/types/trk"
)

type Engine struct {
	AscendThreshold      float64
	SlopeWindow          float64
	MovingSpeedThreshold float64

	// Distance measures consecutive points. It takes radians and returns meters.
	Distance common.DistanceFunc
}

func NewEngine(config *params.DeriveConfig) *Engine {
	if config == nil {
		config = params.DefaultDeriveConfig
	}
	return &Engine{
		AscendThreshold:      config.AscendThreshold,
		SlopeWindow:          config.SlopeWindow,
		MovingSpeedThreshold: config.MovingSpeedThreshold,
		Distance:             common.GeoDistance,
	}
}

// Recompute derives t with an engine configured by params.DefaultDeriveConfig as it is now.
func Recompute(t *trk.Track) {
	NewEngine(params.DefaultDeriveConfig).Recompute(t)
}

// Recompute replaces every derived field of t, and its totals, with values derived from the raw fields.
// It is idempotent: raw fields are never written, and running it twice gives identical results.
// Degenerate input (empty segments, single points, missing time or elevation) yields sentinels, not errors.
func (e *Engine) Recompute(t *trk.Track) {
	start := time.Now()
	defer metrics.RecomputeTimer.UpdateSince(start)

	t.ResetTotals()

	if n := t.Prune(); n > 0 {
		metrics.PrunedSegmentsCounter.Inc(int64(n))
		slog.Debug("Pruned empty segments", "track", t.Name, "pruned", n)
	}
	if len(t.Segs) == 0 {
		return
	}

	e.aggregate(t)
	e.smooth(t)

	metrics.RecomputePointsCounter.Inc(int64(t.CntTotalPoints))
	slog.Debug("Recomputed track",
		"track", t.Name,
		"distanceFn", common.DistanceFuncName(e.Distance),
		"points", t.CntTotalPoints, "visible", t.CntVisiblePoints,
		"distance", t.TotalDistance, "ascend", t.TotalAscend, "descend", t.TotalDescend,
		"elapsed", t.TotalElapsedSeconds, "moving", t.TotalElapsedSecondsMoving,
		"took", time.Since(start))
}

// aggregate streams over every point once, in order, assigning indexes
// and the cumulative fields.
func (e *Engine) aggregate(t *trk.Track) {
	var last *trk.TrackPoint
	var startUnix float64
	// lastEle is the last elevation accepted by the ascend/descend hysteresis.
	lastEle := trk.NoFloat

	first := true
	t.Scan(func(s, p int, pt *trk.TrackPoint) bool {
		pt.Idx = t.CntTotalPoints
		t.CntTotalPoints++

		if first {
			t.Bound = pt.Point().Bound()
			first = false
		} else {
			t.Bound = t.Bound.Extend(pt.Point())
		}

		// Speed and slope are left to smooth.
		pt.Reset()
		if pt.IsDeleted() {
			return true
		}
		t.CntVisiblePoints++

		if last == nil {
			t.TimeStart = pt.Time
			if pt.HasTime() {
				startUnix = pt.Unix()
			}
			lastEle = pt.Ele

			pt.DeltaDistance = 0
			pt.Distance = 0
			pt.Ascend = 0
			pt.Descend = 0
			pt.ElapsedSeconds = 0
			pt.ElapsedSecondsMoving = 0
			last = pt
			return true
		}

		lon1, lat1 := last.Radians()
		lon2, lat2 := pt.Radians()
		pt.DeltaDistance = e.Distance(lon1, lat1, lon2, lat2)
		pt.Distance = last.Distance + pt.DeltaDistance

		if pt.HasTime() && !t.TimeStart.IsZero() {
			pt.ElapsedSeconds = pt.Unix() - startUnix
		} else {
			pt.ElapsedSeconds = trk.NoTime
		}

		pt.Ascend = last.Ascend
		pt.Descend = last.Descend
		switch {
		case !pt.HasEle():
			// Nothing to compare; carry forward.
		case trk.IsNoFloat(lastEle):
			// The first known elevation becomes the reference.
			lastEle = pt.Ele
		default:
			delta := pt.Ele - lastEle
			if delta > e.AscendThreshold {
				pt.Ascend = last.Ascend + delta
				lastEle = pt.Ele
			} else if -delta > e.AscendThreshold {
				pt.Descend = last.Descend - delta
				lastEle = pt.Ele
			}
		}

		pt.ElapsedSecondsMoving = last.ElapsedSecondsMoving
		if pt.HasTime() && last.HasTime() {
			dt := pt.Unix() - last.Unix()
			if dt > 0 && pt.DeltaDistance/dt > e.MovingSpeedThreshold {
				pt.ElapsedSecondsMoving = last.ElapsedSecondsMoving + dt
			}
		}

		last = pt
		return true
	})

	if last == nil {
		// Every point is deleted.
		return
	}
	t.TimeEnd = last.Time
	t.TotalDistance = last.Distance
	t.TotalAscend = last.Ascend
	t.TotalDescend = last.Descend
	t.TotalElapsedSeconds = last.ElapsedSeconds
	t.TotalElapsedSecondsMoving = last.ElapsedSecondsMoving
}

// smooth sets speed and slope for every visible point with an elevation.
// Each is measured between two anchors: the nearest eligible points at least
// SlopeWindow meters of cumulative distance behind and ahead.
// Where no such anchor exists the point itself stands in.
//
// Cumulative distance never decreases along the eligible points,
// so both anchors only ever move forward and one pass finds them all.
func (e *Engine) smooth(t *trk.Track) {
	eligible := make([]*trk.TrackPoint, 0, t.CntVisiblePoints)
	t.ScanVisible(func(s, p int, pt *trk.TrackPoint) bool {
		if pt.HasEle() {
			eligible = append(eligible, pt)
		}
		return true
	})

	back, ahead := -1, 0
	for i, pt := range eligible {
		// back is the last point far enough behind pt, if any.
		for back+1 < i && pt.Distance-eligible[back+1].Distance >= e.SlopeWindow {
			back++
		}
		// ahead is the first point far enough ahead of pt, or len(eligible).
		if ahead < i {
			ahead = i
		}
		for ahead < len(eligible) && !(eligible[ahead].Distance-pt.Distance >= e.SlopeWindow) {
			ahead++
		}

		a1, a2 := pt, pt
		if back >= 0 {
			a1 = eligible[back]
		}
		if ahead < len(eligible) {
			a2 = eligible[ahead]
		}
		e.measure(pt, a1, a2)
	}
}

func (e *Engine) measure(pt, a1, a2 *trk.TrackPoint) {
	d1, e1 := a1.Distance, a1.Ele
	d2, e2 := a2.Distance, a2.Ele

	if deg, pct, ok := common.Grade(e2-e1, d2-d1); ok {
		pt.Slope1 = deg
		pt.Slope2 = pct
	} else {
		pt.Slope1 = trk.NoFloat
		pt.Slope2 = trk.NoFloat
	}

	pt.Speed = trk.NoFloat
	if a1.HasTime() && a2.HasTime() {
		if dt := a2.Unix() - a1.Unix(); dt > 0 {
			pt.Speed = (d2 - d1) / dt
		}
	}
}
