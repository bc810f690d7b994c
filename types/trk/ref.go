package trk

import "fmt"

// PointRef addresses a point by position within a track, stamped with the track's generation.
// It replaces holding a *TrackPoint, which would dangle (or silently move)
// when points are inserted or removed.
type PointRef struct {
	Seg int
	Pt  int
	Gen uint64
}

func (r PointRef) String() string {
	return fmt.Sprintf("%d/%d@%d", r.Seg, r.Pt, r.Gen)
}

// Ref returns a reference to the point at (seg, pt) in the current generation.
func (t *Track) Ref(seg, pt int) (PointRef, error) {
	if err := t.checkRef(seg, pt, false); err != nil {
		return PointRef{}, err
	}
	return t.mustRef(seg, pt), nil
}

func (t *Track) mustRef(seg, pt int) PointRef {
	return PointRef{Seg: seg, Pt: pt, Gen: t.gen}
}

// Resolve returns the point ref addresses.
// It fails if the track has been structurally edited since the ref was made.
func (t *Track) Resolve(ref PointRef) (*TrackPoint, bool) {
	if ref.Gen != t.gen {
		return nil, false
	}
	if t.checkRef(ref.Seg, ref.Pt, false) != nil {
		return nil, false
	}
	return &t.Segs[ref.Seg].Pts[ref.Pt], true
}
