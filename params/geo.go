package params

import (
	"time"

	"github.com/rotblauer/trkgeo/common"
)

type DeriveConfig struct {
	// AscendThreshold is the hysteresis, in meters, an elevation must move away
	// from the last accepted elevation before it counts toward ascend or descend.
	// Smaller changes are treated as GPS elevation noise.
	AscendThreshold float64

	// SlopeWindow is the cumulative distance, in meters, searched backward and forward
	// from a point for the anchors used to measure its slope and speed.
	SlopeWindow float64

	// MovingSpeedThreshold is the speed, in m/s, between two consecutive points
	// that must be exceeded for the interval to count as moving time.
	MovingSpeedThreshold float64
}

var DefaultDeriveConfig = &DeriveConfig{
	AscendThreshold:      common.ElevationNoise,
	SlopeWindow:          common.SlopeWindow,
	MovingSpeedThreshold: common.SpeedOfStanding,
}

type FocusConfig struct {
	// MaxPositionDistance is how far, in meters, a position may be from
	// the nearest visible point and still focus it.
	MaxPositionDistance float64
}

var DefaultFocusConfig = &FocusConfig{
	MaxPositionDistance: 50,
}

type SimplificationConfig struct {
	DouglasPeuckerThreshold float64
}

var DefaultSimplifierConfig = &SimplificationConfig{
	DouglasPeuckerThreshold: 0.00008,
}

type IngestConfig struct {
	// SegmentGap splits a point stream without segments (eg. GeoJSON lines)
	// into a new segment wherever consecutive timestamps are further apart.
	SegmentGap time.Duration
}

var DefaultIngestConfig = &IngestConfig{
	SegmentGap: 10 * time.Minute,
}
