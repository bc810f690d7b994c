package trk

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/rotblauer/trkgeo/common"
)

// NoFloat is the "no data" sentinel for float fields.
// It is far outside any distance, elevation, speed or slope a track can produce,
// so it never collides with a measurement. Test with IsNoFloat, never with arithmetic.
const NoFloat = 1e25

// NoTime is the "no time" sentinel for elapsed-seconds fields.
const NoTime = NoFloat

// IsNoFloat reports whether v is the NoFloat (or NoTime) sentinel.
func IsNoFloat(v float64) bool {
	return v >= NoFloat
}

// Flags is a bit set of point states.
type Flags uint32

const (
	// FlagDeleted marks a point soft-deleted.
	// The point is kept for undo but takes no part in any derived value.
	FlagDeleted Flags = 1 << iota
)

// TrackPoint is one recorded position of a track.
// Raw fields come from a loader; derived fields are written by derive.Recompute only.
type TrackPoint struct {
	Lon   float64   `json:"lon"`
	Lat   float64   `json:"lat"`
	Ele   float64   `json:"ele"`                 // meters, NoFloat if unknown
	Time  time.Time `json:"time" hash:"string"` // zero if unknown
	Flags Flags     `json:"flags"`

	// Idx is the position of the point in the flattened sequence of all points, deleted ones included.
	Idx int `json:"-" hash:"ignore"`

	DeltaDistance        float64 `json:"-" hash:"ignore"` // meters from the previous visible point
	Distance             float64 `json:"-" hash:"ignore"` // meters from the track start
	Ascend               float64 `json:"-" hash:"ignore"`
	Descend              float64 `json:"-" hash:"ignore"`
	ElapsedSeconds       float64 `json:"-" hash:"ignore"`
	ElapsedSecondsMoving float64 `json:"-" hash:"ignore"`
	Speed                float64 `json:"-" hash:"ignore"` // m/s, windowed
	Slope1               float64 `json:"-" hash:"ignore"` // degrees
	Slope2               float64 `json:"-" hash:"ignore"` // percent
}

// NewTrackPoint returns a visible point with unknown elevation and time.
func NewTrackPoint(lon, lat float64) TrackPoint {
	pt := TrackPoint{Lon: lon, Lat: lat, Ele: NoFloat}
	pt.Reset()
	return pt
}

// Reset sets every derived field to its "no data" value.
// Idx is left alone; it is positional, not derived from the point's data.
func (pt *TrackPoint) Reset() {
	pt.DeltaDistance = NoFloat
	pt.Distance = NoFloat
	pt.Ascend = NoFloat
	pt.Descend = NoFloat
	pt.ElapsedSeconds = NoTime
	pt.ElapsedSecondsMoving = NoTime
	pt.Speed = NoFloat
	pt.Slope1 = NoFloat
	pt.Slope2 = NoFloat
}

func (pt *TrackPoint) IsDeleted() bool {
	return pt.Flags&FlagDeleted != 0
}

func (pt *TrackPoint) HasEle() bool {
	return !IsNoFloat(pt.Ele)
}

func (pt *TrackPoint) HasTime() bool {
	return !pt.Time.IsZero()
}

// Unix returns the timestamp in seconds, with millisecond precision.
func (pt *TrackPoint) Unix() float64 {
	return float64(pt.Time.UnixMilli()) / 1000.0
}

// Point returns the position as an orb.Point (lng, lat).
func (pt *TrackPoint) Point() orb.Point {
	return orb.Point{pt.Lon, pt.Lat}
}

// Radians returns the position in radians, the way a common.DistanceFunc wants it.
func (pt *TrackPoint) Radians() (lon, lat float64) {
	return pt.Lon * common.DegToRad, pt.Lat * common.DegToRad
}

func (pt *TrackPoint) StringPretty() string {
	t := "-"
	if pt.HasTime() {
		t = pt.Time.Format(time.RFC3339)
	}
	ele := "-"
	if pt.HasEle() {
		ele = fmt.Sprintf("%.0fm", pt.Ele)
	}
	return fmt.Sprintf("#%d %s [%v,%v] %s",
		pt.Idx, t,
		common.DecimalToFixed(pt.Lat, common.GPSPrecision5),
		common.DecimalToFixed(pt.Lon, common.GPSPrecision5),
		ele,
	)
}
