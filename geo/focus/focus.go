// Package focus tracks a single point of focus within a track,
// eg. the point under the cursor, and tells interested observers when it moves.
package focus

import (
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/rotblauer/trkgeo/common"
	"github.com/rotblauer/trkgeo/events"
	"github.com/rotblauer/trkgeo/metrics"
	"github.com/rotblauer/trkgeo/params"
	"github.com/rotblauer/trkgeo/types/trk"
)

// ObserverID identifies a registered observer.
// It is also how a caller names itself as the initiator of a focus change,
// so it isn't told about its own change.
type ObserverID uint64

// InitiatorNone is the initiator for programmatic focus changes. Every observer is notified.
const InitiatorNone ObserverID = 0

// Focus is a point of focus: a point, by reference, within a track.
type Focus struct {
	Track *trk.Track
	Ref   trk.PointRef
}

// Point resolves the focused point. It is false if the track was structurally edited since.
func (f *Focus) Point() (*trk.TrackPoint, bool) {
	if f == nil || f.Track == nil {
		return nil, false
	}
	return f.Track.Resolve(f.Ref)
}

// Observer is told about focus changes. f is nil when focus is cleared.
type Observer interface {
	SetPointOfFocus(f *Focus)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(f *Focus)

func (fn ObserverFunc) SetPointOfFocus(f *Focus) {
	fn(f)
}

type Tracker struct {
	// Distance measures positions for FocusByPosition.
	Distance common.DistanceFunc
	// MaxPositionDistance bounds FocusByPosition, in meters.
	MaxPositionDistance float64

	mu        sync.Mutex
	track     *trk.Track
	focus     *Focus
	observers map[ObserverID]Observer
	lastID    ObserverID
}

func NewTracker(t *trk.Track, config *params.FocusConfig) *Tracker {
	if config == nil {
		config = params.DefaultFocusConfig
	}
	return &Tracker{
		Distance:            common.GeoDistance,
		MaxPositionDistance: config.MaxPositionDistance,
		track:               t,
		observers:           make(map[ObserverID]Observer),
	}
}

// Register adds an observer and returns its ID.
func (tr *Tracker) Register(o Observer) ObserverID {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.lastID++
	tr.observers[tr.lastID] = o
	return tr.lastID
}

// Unregister removes an observer. It is safe to call from within a notification.
func (tr *Tracker) Unregister(id ObserverID) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	delete(tr.observers, id)
}

// Track returns the track currently tracked.
func (tr *Tracker) Track() *trk.Track {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.track
}

// Focus returns the current point of focus.
// A focus whose point was removed by a structural edit is cleared, and observers are told.
func (tr *Tracker) Focus() (*Focus, bool) {
	tr.mu.Lock()
	f := tr.focus
	tr.mu.Unlock()
	if f == nil {
		return nil, false
	}
	if _, ok := f.Point(); !ok {
		tr.Revalidate()
		return nil, false
	}
	return f, true
}

// Revalidate clears the focus if its point no longer resolves.
// Call it after structural edits to the track.
func (tr *Tracker) Revalidate() {
	tr.mu.Lock()
	f := tr.focus
	tr.mu.Unlock()
	if f == nil {
		return
	}
	if _, ok := f.Point(); !ok {
		slog.Debug("Point of focus invalidated", "track", f.Track.Name, "ref", f.Ref)
		tr.publish(f.Track, nil, InitiatorNone)
	}
}

// Clear drops the point of focus, eg. when the track is closed.
func (tr *Tracker) Clear(initiator ObserverID) bool {
	return tr.publish(tr.Track(), nil, initiator)
}

// SetFocus focuses ref within the tracked track, or clears focus if ref is nil.
// Observers other than initiator are notified, before SetFocus returns, if the focus changed.
func (tr *Tracker) SetFocus(ref *trk.PointRef, initiator ObserverID) bool {
	return tr.SetFocusOn(tr.Track(), ref, initiator)
}

// SetFocusOn is SetFocus on t, which silently becomes the tracked track.
func (tr *Tracker) SetFocusOn(t *trk.Track, ref *trk.PointRef, initiator ObserverID) bool {
	if ref != nil && t != nil {
		if _, ok := t.Resolve(*ref); !ok {
			ref = nil
		}
	}
	return tr.publish(t, ref, initiator)
}

func (tr *Tracker) publish(t *trk.Track, ref *trk.PointRef, initiator ObserverID) bool {
	tr.mu.Lock()
	var next *Focus
	if ref != nil && t != nil {
		next = &Focus{Track: t, Ref: *ref}
	}
	if sameFocus(tr.focus, next) {
		tr.track = t
		tr.mu.Unlock()
		return false
	}
	tr.track = t
	tr.focus = next

	// Snapshot, so observers may (un)register while being notified.
	ids := make([]ObserverID, 0, len(tr.observers))
	for id := range tr.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	observers := make([]Observer, 0, len(ids))
	for _, id := range ids {
		if id != initiator {
			observers = append(observers, tr.observers[id])
		}
	}
	tr.mu.Unlock()

	metrics.FocusChangesCounter.Inc(1)
	for _, o := range observers {
		o.SetPointOfFocus(next)
	}

	ev := events.FocusChanged{}
	if t != nil {
		ev.TrackKey = t.Key
	}
	if next != nil {
		r := next.Ref
		ev.Ref = &r
	}
	events.FocusFeed.Send(ev)
	return true
}

func sameFocus(a, b *Focus) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Track == b.Track && a.Ref == b.Ref
}

// closest finds the visible point whose value is closest to target.
// Within a segment values are expected to grow (distance, time), so the scan of a segment
// stops as soon as a value is farther than the best so far.
// Ties go to the later point.
func closest(t *trk.Track, target float64, value func(pt *trk.TrackPoint) (float64, bool)) *trk.PointRef {
	var found *trk.PointRef
	best := math.Inf(1)
	for s := range t.Segs {
		for p := range t.Segs[s].Pts {
			pt := &t.Segs[s].Pts[p]
			if pt.IsDeleted() {
				continue
			}
			v, ok := value(pt)
			if !ok {
				continue
			}
			d := math.Abs(v - target)
			if d <= best {
				best = d
				ref, _ := t.Ref(s, p)
				found = &ref
			} else if d > best {
				break
			}
		}
	}
	return found
}

// FocusByDistance focuses the visible point closest to meters from the track start.
func (tr *Tracker) FocusByDistance(meters float64, initiator ObserverID) bool {
	t := tr.Track()
	var ref *trk.PointRef
	if t != nil && !trk.IsNoFloat(meters) {
		ref = closest(t, meters, func(pt *trk.TrackPoint) (float64, bool) {
			return pt.Distance, !trk.IsNoFloat(pt.Distance)
		})
	}
	return tr.publish(t, ref, initiator)
}

// FocusByTime focuses the visible point with a timestamp closest to ts.
// A zero ts clears the focus.
func (tr *Tracker) FocusByTime(ts time.Time, initiator ObserverID) bool {
	t := tr.Track()
	var ref *trk.PointRef
	if t != nil && !ts.IsZero() {
		target := float64(ts.UnixMilli()) / 1000.0
		ref = closest(t, target, func(pt *trk.TrackPoint) (float64, bool) {
			return pt.Unix(), pt.HasTime()
		})
	}
	return tr.publish(t, ref, initiator)
}

// FocusByIndex focuses the point whose Idx is idx, deleted points included.
// It clears focus and returns false if there is no such point.
func (tr *Tracker) FocusByIndex(idx int) bool {
	t := tr.Track()
	var ref *trk.PointRef
	if t != nil {
		t.Scan(func(s, p int, pt *trk.TrackPoint) bool {
			if pt.Idx == idx {
				r, _ := t.Ref(s, p)
				ref = &r
				return false
			}
			return true
		})
	}
	tr.publish(t, ref, InitiatorNone)
	return ref != nil
}

// FocusByVisibleIndex focuses the n-th visible point, eg. the n-th vertex of a drawn line.
func (tr *Tracker) FocusByVisibleIndex(n int, initiator ObserverID) bool {
	t := tr.Track()
	var ref *trk.PointRef
	if t != nil {
		if r, ok := t.VisibleByIndex(n); ok {
			ref = &r
		}
	}
	tr.publish(t, ref, initiator)
	return ref != nil
}

// FocusByPosition focuses the visible point nearest (lon, lat), in degrees,
// if one is within MaxPositionDistance. Otherwise focus is cleared.
func (tr *Tracker) FocusByPosition(lon, lat float64, initiator ObserverID) bool {
	t := tr.Track()
	var ref *trk.PointRef
	if t != nil {
		lon, lat = lon*common.DegToRad, lat*common.DegToRad
		best := tr.MaxPositionDistance
		t.ScanVisible(func(s, p int, pt *trk.TrackPoint) bool {
			plon, plat := pt.Radians()
			if d := tr.Distance(lon, lat, plon, plat); d <= best {
				best = d
				r, _ := t.Ref(s, p)
				ref = &r
			}
			return true
		})
	}
	tr.publish(t, ref, initiator)
	return ref != nil
}
