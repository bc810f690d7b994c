// Package trk holds the track data model: a Track is an ordered list of segments,
// a segment an ordered list of points.
// Points carry raw fields (position, elevation, time, flags) as loaded,
// and derived fields (distance, ascend, speed, ...) which only derive.Recompute writes.
package trk

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/paulmach/orb"
)

var ErrOutOfRange = errors.New("point reference out of range")

type Segment struct {
	Pts []TrackPoint `json:"pts"`
}

type Track struct {
	Name string    `json:"name"`
	Key  string    `json:"key" hash:"ignore"`
	Segs []Segment `json:"segs"`

	// Totals, written by derive.Recompute.
	// With no visible points they hold their sentinels (NoFloat, NoTime, zero time).
	CntTotalPoints            int       `json:"-" hash:"ignore"`
	CntVisiblePoints          int       `json:"-" hash:"ignore"`
	TimeStart                 time.Time `json:"-" hash:"ignore"`
	TimeEnd                   time.Time `json:"-" hash:"ignore"`
	TotalDistance             float64   `json:"-" hash:"ignore"`
	TotalAscend               float64   `json:"-" hash:"ignore"`
	TotalDescend              float64   `json:"-" hash:"ignore"`
	TotalElapsedSeconds       float64   `json:"-" hash:"ignore"`
	TotalElapsedSecondsMoving float64   `json:"-" hash:"ignore"`
	Bound                     orb.Bound `json:"-" hash:"ignore"`

	// gen counts structural edits. PointRefs from an older generation no longer resolve.
	gen uint64
}

// NewTrack returns a track with the given segments and all totals at their sentinels.
func NewTrack(name string, segs ...Segment) *Track {
	t := &Track{Name: name, Segs: segs}
	t.ResetTotals()
	return t
}

// ResetTotals sets every track-level aggregate to "no data".
func (t *Track) ResetTotals() {
	t.CntTotalPoints = 0
	t.CntVisiblePoints = 0
	t.TimeStart = time.Time{}
	t.TimeEnd = time.Time{}
	t.TotalDistance = NoFloat
	t.TotalAscend = NoFloat
	t.TotalDescend = NoFloat
	t.TotalElapsedSeconds = NoTime
	t.TotalElapsedSecondsMoving = NoTime
	t.Bound = orb.Bound{}
}

// Generation returns the structural edit counter.
func (t *Track) Generation() uint64 {
	return t.gen
}

// GenKey sets the track's Key from a hash of its raw content, unless a Key is already set.
func (t *Track) GenKey() string {
	if t.Key != "" {
		return t.Key
	}
	h, err := hashstructure.Hash(t, hashstructure.FormatV2, nil)
	if err != nil {
		// Only unhashable kinds fail, and Track has none.
		panic(err)
	}
	t.Key = strconv.FormatUint(h, 16)
	return t.Key
}

// Prune drops segments with no points and returns how many were dropped.
func (t *Track) Prune() int {
	kept := t.Segs[:0]
	for _, seg := range t.Segs {
		if len(seg.Pts) > 0 {
			kept = append(kept, seg)
		}
	}
	n := len(t.Segs) - len(kept)
	// Clear the tail so dropped segments don't linger in the backing array.
	for i := len(kept); i < len(t.Segs); i++ {
		t.Segs[i] = Segment{}
	}
	t.Segs = kept
	if n > 0 {
		t.gen++
	}
	return n
}

// Scan calls fn for every point, deleted ones included, in order, until fn returns false.
func (t *Track) Scan(fn func(s, p int, pt *TrackPoint) bool) {
	for s := range t.Segs {
		for p := range t.Segs[s].Pts {
			if !fn(s, p, &t.Segs[s].Pts[p]) {
				return
			}
		}
	}
}

// ScanVisible is Scan over non-deleted points only.
func (t *Track) ScanVisible(fn func(s, p int, pt *TrackPoint) bool) {
	t.Scan(func(s, p int, pt *TrackPoint) bool {
		if pt.IsDeleted() {
			return true
		}
		return fn(s, p, pt)
	})
}

// VisibleByIndex returns the n-th visible point, counting from 0.
func (t *Track) VisibleByIndex(n int) (ref PointRef, ok bool) {
	i := 0
	t.ScanVisible(func(s, p int, pt *TrackPoint) bool {
		if i == n {
			ref, ok = t.mustRef(s, p), true
			return false
		}
		i++
		return true
	})
	return
}

// LineString returns the visible points as a line, eg. for drawing.
func (t *Track) LineString() orb.LineString {
	ls := orb.LineString{}
	t.ScanVisible(func(s, p int, pt *TrackPoint) bool {
		ls = append(ls, pt.Point())
		return true
	})
	return ls
}

func (t *Track) checkRef(seg, idx int, inclusive bool) error {
	if seg < 0 || seg >= len(t.Segs) {
		return fmt.Errorf("%w: segment %d of %d", ErrOutOfRange, seg, len(t.Segs))
	}
	n := len(t.Segs[seg].Pts)
	if inclusive {
		n++
	}
	if idx < 0 || idx >= n {
		return fmt.Errorf("%w: point %d of %d in segment %d", ErrOutOfRange, idx, len(t.Segs[seg].Pts), seg)
	}
	return nil
}

// InsertPoint inserts pt into segment seg before position idx (idx == len appends).
func (t *Track) InsertPoint(seg, idx int, pt TrackPoint) error {
	if err := t.checkRef(seg, idx, true); err != nil {
		return err
	}
	pts := t.Segs[seg].Pts
	pts = append(pts, TrackPoint{})
	copy(pts[idx+1:], pts[idx:])
	pts[idx] = pt
	t.Segs[seg].Pts = pts
	t.gen++
	return nil
}

// RemovePoint removes the point for good. Use SetDeleted for an undoable delete.
func (t *Track) RemovePoint(seg, idx int) error {
	if err := t.checkRef(seg, idx, false); err != nil {
		return err
	}
	pts := t.Segs[seg].Pts
	t.Segs[seg].Pts = append(pts[:idx], pts[idx+1:]...)
	t.gen++
	return nil
}

// SetDeleted soft-deletes or restores a point.
// It is not a structural edit; references to the point stay valid.
func (t *Track) SetDeleted(seg, idx int, deleted bool) error {
	if err := t.checkRef(seg, idx, false); err != nil {
		return err
	}
	pt := &t.Segs[seg].Pts[idx]
	if deleted {
		pt.Flags |= FlagDeleted
	} else {
		pt.Flags &^= FlagDeleted
	}
	return nil
}

// SplitSegment splits segment seg so that the point at idx starts a new segment.
func (t *Track) SplitSegment(seg, idx int) error {
	if err := t.checkRef(seg, idx, false); err != nil {
		return err
	}
	if idx == 0 {
		return fmt.Errorf("%w: cannot split segment %d at its first point", ErrOutOfRange, seg)
	}
	pts := t.Segs[seg].Pts
	head := append([]TrackPoint(nil), pts[:idx]...)
	tail := append([]TrackPoint(nil), pts[idx:]...)

	segs := make([]Segment, 0, len(t.Segs)+1)
	segs = append(segs, t.Segs[:seg]...)
	segs = append(segs, Segment{Pts: head}, Segment{Pts: tail})
	segs = append(segs, t.Segs[seg+1:]...)
	t.Segs = segs
	t.gen++
	return nil
}

// AppendSegment adds a new segment holding pts at the end of the track.
func (t *Track) AppendSegment(pts []TrackPoint) {
	t.Segs = append(t.Segs, Segment{Pts: pts})
	t.gen++
}
