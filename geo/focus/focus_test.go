package focus

import (
	"testing"
	"time"

	"github.com/rotblauer/trkgeo/events"
	"github.com/rotblauer/trkgeo/geo/derive"
	"github.com/rotblauer/trkgeo/testing/testdata"
	"github.com/rotblauer/trkgeo/types/trk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is an observer that keeps what it was told.
type recorder struct {
	got []*Focus
}

func (r *recorder) SetPointOfFocus(f *Focus) {
	r.got = append(r.got, f)
}

func newTestTracker(t *testing.T) (*Tracker, *trk.Track) {
	t.Helper()
	tr := testdata.LineTrack("t", 5, 10, 10*time.Second, testdata.Const(5, 100))
	derive.Recompute(tr)
	return NewTracker(tr, nil), tr
}

func focusedIdx(t *testing.T, tracker *Tracker) int {
	t.Helper()
	f, ok := tracker.Focus()
	require.True(t, ok, "expected a point of focus")
	pt, ok := f.Point()
	require.True(t, ok)
	return pt.Idx
}

func TestFocusByIndex(t *testing.T) {
	tracker, _ := newTestTracker(t)
	for i := 0; i < 5; i++ {
		require.True(t, tracker.FocusByIndex(i))
		if got := focusedIdx(t, tracker); got != i {
			t.Errorf("expected idx %d, got %d", i, got)
		}
	}
	assert.False(t, tracker.FocusByIndex(5))
	_, ok := tracker.Focus()
	assert.False(t, ok, "a miss clears focus")
}

func TestFocusByDistance(t *testing.T) {
	tracker, _ := newTestTracker(t)
	cases := []struct {
		meters float64
		idx    int
	}{
		{0, 0},
		{20, 2},
		{24, 2},
		{26, 3},
		{-5, 0},
		{1000, 4},
	}
	for _, c := range cases {
		tracker.FocusByDistance(c.meters, InitiatorNone)
		if got := focusedIdx(t, tracker); got != c.idx {
			t.Errorf("%vm: expected idx %d, got %d", c.meters, c.idx, got)
		}
	}

	tracker.FocusByDistance(trk.NoFloat, InitiatorNone)
	_, ok := tracker.Focus()
	assert.False(t, ok)
}

func TestFocusByDistance_Tie(t *testing.T) {
	// The second and third points share a position, so their distances are equal.
	pts := testdata.Line(4, -93.25, 44.98, 10, time.Second, nil)
	pts[2].Lat = pts[1].Lat
	tr := trk.NewTrack("t", trk.Segment{Pts: pts})
	derive.Recompute(tr)
	require.Equal(t, tr.Segs[0].Pts[1].Distance, tr.Segs[0].Pts[2].Distance)

	tracker := NewTracker(tr, nil)
	tracker.FocusByDistance(tr.Segs[0].Pts[2].Distance, InitiatorNone)
	assert.Equal(t, 2, focusedIdx(t, tracker), "ties go to the later point")

	// Equal times too.
	pts = testdata.Line(4, -93.25, 44.98, 10, time.Second, nil)
	pts[2].Time = pts[1].Time
	tr = trk.NewTrack("t", trk.Segment{Pts: pts})
	derive.Recompute(tr)
	tracker = NewTracker(tr, nil)
	tracker.FocusByTime(pts[1].Time, InitiatorNone)
	assert.Equal(t, 2, focusedIdx(t, tracker))
}

func TestFocusByDistance_Segments(t *testing.T) {
	tr := trk.NewTrack("t",
		trk.Segment{Pts: testdata.Line(3, -93.25, 44.98, 10, time.Second, nil)},
		trk.Segment{Pts: testdata.Line(3, -93.25, 44.99, 10, time.Second, nil)},
	)
	derive.Recompute(tr)
	tracker := NewTracker(tr, nil)

	// The second segment continues from the first, wherever it starts.
	target := tr.Segs[1].Pts[1].Distance
	tracker.FocusByDistance(target+1, InitiatorNone)
	assert.Equal(t, 4, focusedIdx(t, tracker))
}

func TestFocusByTime(t *testing.T) {
	tracker, _ := newTestTracker(t)
	tracker.FocusByTime(testdata.T0.Add(21*time.Second), InitiatorNone)
	assert.Equal(t, 2, focusedIdx(t, tracker))
	tracker.FocusByTime(testdata.T0.Add(time.Hour), InitiatorNone)
	assert.Equal(t, 4, focusedIdx(t, tracker))

	tracker.FocusByTime(time.Time{}, InitiatorNone)
	_, ok := tracker.Focus()
	assert.False(t, ok)
}

func TestFocusByVisibleIndex(t *testing.T) {
	tracker, tr := newTestTracker(t)
	require.NoError(t, tr.SetDeleted(0, 1, true))
	derive.Recompute(tr)

	require.True(t, tracker.FocusByVisibleIndex(1, InitiatorNone))
	assert.Equal(t, 2, focusedIdx(t, tracker))
	assert.False(t, tracker.FocusByVisibleIndex(4, InitiatorNone))

	// By index, deleted points can still be focused.
	require.True(t, tracker.FocusByIndex(1))
	assert.Equal(t, 1, focusedIdx(t, tracker))
}

func TestFocusByPosition(t *testing.T) {
	tracker, tr := newTestTracker(t)
	pt := tr.Segs[0].Pts[2]

	// A meter east of the third point.
	require.True(t, tracker.FocusByPosition(pt.Lon+0.00001, pt.Lat, InitiatorNone))
	assert.Equal(t, 2, focusedIdx(t, tracker))

	// A kilometer away.
	assert.False(t, tracker.FocusByPosition(pt.Lon, pt.Lat+1000/testdata.MetersPerDegreeLat, InitiatorNone))
	_, ok := tracker.Focus()
	assert.False(t, ok)

	tracker.MaxPositionDistance = 2000
	assert.True(t, tracker.FocusByPosition(pt.Lon, pt.Lat+1000/testdata.MetersPerDegreeLat, InitiatorNone))
	assert.Equal(t, 4, focusedIdx(t, tracker))
}

func TestObservers(t *testing.T) {
	tracker, _ := newTestTracker(t)
	a, b := &recorder{}, &recorder{}
	idA := tracker.Register(a)
	tracker.Register(b)

	require.True(t, tracker.FocusByIndex(1))
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)

	// The initiator isn't told about its own change.
	tracker.FocusByDistance(30, idA)
	assert.Len(t, a.got, 1)
	require.Len(t, b.got, 2)
	pt, ok := b.got[1].Point()
	require.True(t, ok)
	assert.Equal(t, 3, pt.Idx)

	// No change, no notification.
	assert.False(t, tracker.FocusByDistance(30, InitiatorNone))
	assert.Len(t, b.got, 2)

	assert.True(t, tracker.Clear(InitiatorNone))
	require.Len(t, a.got, 2)
	assert.Nil(t, a.got[1])
}

func TestObservers_Reentrant(t *testing.T) {
	tracker, _ := newTestTracker(t)
	b := &recorder{}
	var idB ObserverID
	calls := 0
	tracker.Register(ObserverFunc(func(f *Focus) {
		calls++
		tracker.Unregister(idB)
		tracker.Register(&recorder{})
		_, _ = tracker.Focus()
	}))
	idB = tracker.Register(b)

	tracker.FocusByIndex(1)
	tracker.FocusByIndex(2)
	assert.Equal(t, 2, calls)
	// b was in the snapshot for the first change only.
	assert.Len(t, b.got, 1)
}

func TestFocus_StaleRef(t *testing.T) {
	tracker, tr := newTestTracker(t)
	r := &recorder{}
	tracker.Register(r)

	require.True(t, tracker.FocusByIndex(2))
	f, ok := tracker.Focus()
	require.True(t, ok)
	ref := f.Ref

	// Soft deletes keep the focus.
	require.NoError(t, tr.SetDeleted(0, 2, true))
	tracker.Revalidate()
	_, ok = tracker.Focus()
	assert.True(t, ok)

	require.NoError(t, tr.RemovePoint(0, 0))
	_, ok = tracker.Focus()
	assert.False(t, ok)
	require.Len(t, r.got, 2)
	assert.Nil(t, r.got[1])

	// A stale ref can't be focused.
	assert.False(t, tracker.SetFocus(&ref, InitiatorNone))
	_, ok = tracker.Focus()
	assert.False(t, ok)
}

func TestFocusFeed(t *testing.T) {
	tracker, tr := newTestTracker(t)
	tr.GenKey()

	ch := make(chan events.FocusChanged, 4)
	sub := events.FocusFeed.Subscribe(ch)
	defer sub.Unsubscribe()

	tracker.FocusByIndex(3)
	tracker.Clear(InitiatorNone)

	ev := <-ch
	assert.Equal(t, tr.Key, ev.TrackKey)
	require.NotNil(t, ev.Ref)
	assert.Equal(t, 0, ev.Ref.Seg)
	assert.Equal(t, 3, ev.Ref.Pt)

	ev = <-ch
	assert.Nil(t, ev.Ref)
	assert.Empty(t, ch)
}
