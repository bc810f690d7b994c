package trk_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rotblauer/trkgeo/testing/testdata"
	"github.com/rotblauer/trkgeo/types/trk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinels(t *testing.T) {
	if !trk.IsNoFloat(trk.NoFloat) || !trk.IsNoFloat(trk.NoTime) {
		t.Fatal("expected sentinels to test as sentinels")
	}
	for _, v := range []float64{0, -1, 8848, 1e9, -1e25} {
		if trk.IsNoFloat(v) {
			t.Errorf("expected %v to be a value", v)
		}
	}

	pt := trk.NewTrackPoint(1, 2)
	assert.False(t, pt.HasEle())
	assert.False(t, pt.HasTime())
	assert.False(t, pt.IsDeleted())
	assert.True(t, trk.IsNoFloat(pt.Distance))
	assert.True(t, trk.IsNoFloat(pt.Speed))

	tr := trk.NewTrack("empty")
	assert.True(t, trk.IsNoFloat(tr.TotalDistance))
	assert.True(t, trk.IsNoFloat(tr.TotalElapsedSeconds))
	assert.True(t, tr.TimeStart.IsZero())
}

func TestTrack_Prune(t *testing.T) {
	tr := trk.NewTrack("t",
		trk.Segment{},
		trk.Segment{Pts: testdata.Line(2, 0, 0, 10, 0, nil)},
		trk.Segment{},
		trk.Segment{Pts: testdata.Line(1, 0, 0, 10, 0, nil)},
	)
	gen := tr.Generation()
	require.Equal(t, 2, tr.Prune())
	assert.Len(t, tr.Segs, 2)
	assert.Len(t, tr.Segs[0].Pts, 2)
	assert.Len(t, tr.Segs[1].Pts, 1)
	assert.Greater(t, tr.Generation(), gen)

	gen = tr.Generation()
	assert.Equal(t, 0, tr.Prune())
	assert.Equal(t, gen, tr.Generation(), "nothing pruned, same generation")
}

func TestTrack_Edits(t *testing.T) {
	tr := testdata.LineTrack("t", 5, 10, time.Second, nil)

	ref, err := tr.Ref(0, 2)
	require.NoError(t, err)
	pt, ok := tr.Resolve(ref)
	require.True(t, ok)
	want := pt.Lat

	// Soft deletes keep refs valid.
	require.NoError(t, tr.SetDeleted(0, 2, true))
	pt, ok = tr.Resolve(ref)
	require.True(t, ok)
	assert.True(t, pt.IsDeleted())
	require.NoError(t, tr.SetDeleted(0, 2, false))
	assert.Equal(t, ref.Gen, tr.Generation())

	// Structural edits don't.
	require.NoError(t, tr.InsertPoint(0, 0, trk.NewTrackPoint(0, 0)))
	_, ok = tr.Resolve(ref)
	assert.False(t, ok, "stale ref resolved")
	assert.Len(t, tr.Segs[0].Pts, 6)
	assert.Equal(t, want, tr.Segs[0].Pts[3].Lat)

	require.NoError(t, tr.InsertPoint(0, 6, trk.NewTrackPoint(9, 9)))
	assert.Equal(t, 9.0, tr.Segs[0].Pts[6].Lon, "insert at len appends")

	require.NoError(t, tr.RemovePoint(0, 0))
	require.NoError(t, tr.RemovePoint(0, 5))
	assert.Len(t, tr.Segs[0].Pts, 5)
	assert.Equal(t, want, tr.Segs[0].Pts[2].Lat)

	require.NoError(t, tr.SplitSegment(0, 3))
	require.Len(t, tr.Segs, 2)
	assert.Len(t, tr.Segs[0].Pts, 3)
	assert.Len(t, tr.Segs[1].Pts, 2)

	tr.AppendSegment(testdata.Line(1, 0, 0, 0, 0, nil))
	assert.Len(t, tr.Segs, 3)

	gen := tr.Generation()
	for _, err := range []error{
		tr.InsertPoint(0, 5, trk.NewTrackPoint(0, 0)),
		tr.RemovePoint(3, 0),
		tr.SetDeleted(0, -1, true),
		tr.SplitSegment(1, 0),
		tr.SplitSegment(1, 2),
	} {
		assert.True(t, errors.Is(err, trk.ErrOutOfRange), "expected ErrOutOfRange, got %v", err)
	}
	assert.Equal(t, gen, tr.Generation(), "failed edits bumped the generation")

	_, err = tr.Ref(5, 0)
	assert.ErrorIs(t, err, trk.ErrOutOfRange)
}

func TestTrack_VisibleByIndex(t *testing.T) {
	tr := trk.NewTrack("t",
		trk.Segment{Pts: testdata.Line(3, 0, 0, 10, 0, nil)},
		trk.Segment{Pts: testdata.Line(2, 1, 0, 10, 0, nil)},
	)
	require.NoError(t, tr.SetDeleted(0, 1, true))

	cases := []struct {
		n       int
		seg, pt int
	}{
		{0, 0, 0},
		{1, 0, 2},
		{2, 1, 0},
		{3, 1, 1},
	}
	for _, c := range cases {
		ref, ok := tr.VisibleByIndex(c.n)
		if !ok {
			t.Errorf("visible %d: not found", c.n)
			continue
		}
		if ref.Seg != c.seg || ref.Pt != c.pt {
			t.Errorf("visible %d: expected %d/%d, got %v", c.n, c.seg, c.pt, ref)
		}
	}
	if _, ok := tr.VisibleByIndex(4); ok {
		t.Error("expected no fifth visible point")
	}
	assert.Len(t, tr.LineString(), 4)
}

func TestTrack_GenKey(t *testing.T) {
	a := testdata.LineTrack("t", 5, 10, time.Second, testdata.Const(5, 100))
	b := testdata.LineTrack("t", 5, 10, time.Second, testdata.Const(5, 100))
	c := testdata.LineTrack("t", 5, 10, 2*time.Second, testdata.Const(5, 100))

	// Derived fields don't count.
	b.Segs[0].Pts[3].Distance = 42
	b.TotalDistance = 42

	ka := a.GenKey()
	require.NotEmpty(t, ka)
	assert.Equal(t, ka, b.GenKey())
	assert.NotEqual(t, ka, c.GenKey(), "times differ")
	assert.Equal(t, ka, a.GenKey(), "stable once set")
}

func TestTrack_JSON(t *testing.T) {
	tr := trk.NewTrack("t",
		trk.Segment{Pts: testdata.Line(3, -93.25, 44.98, 10, time.Second, []float64{1, 2, 3})},
		trk.Segment{Pts: testdata.Line(1, -93.25, 44.99, 10, 0, nil)},
	)
	tr.GenKey()
	require.NoError(t, tr.SetDeleted(0, 1, true))

	data, err := json.Marshal(tr)
	require.NoError(t, err)

	got := trk.NewTrack("")
	require.NoError(t, json.Unmarshal(data, got))
	assert.Equal(t, tr.Name, got.Name)
	assert.Equal(t, tr.Key, got.Key)
	require.Len(t, got.Segs, 2)
	assert.True(t, got.Segs[0].Pts[1].IsDeleted())
	assert.True(t, got.Segs[0].Pts[2].Time.Equal(tr.Segs[0].Pts[2].Time))
	assert.Equal(t, 3.0, got.Segs[0].Pts[2].Ele)
	assert.False(t, got.Segs[1].Pts[0].HasEle())
	assert.False(t, got.Segs[1].Pts[0].HasTime())
}
