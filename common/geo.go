package common

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// DegToRad and RadToDeg convert between degrees and radians.
const (
	DegToRad = math.Pi / 180.0
	RadToDeg = 180.0 / math.Pi
)

// DistanceFunc returns the great-circle distance in meters between two
// (longitude, latitude) pairs given in radians.
// Implementations must be symmetric and return 0 for identical coordinates.
type DistanceFunc func(lon1, lat1, lon2, lat2 float64) float64

// GeoDistance is the default DistanceFunc.
// It uses the haversine formula over orb's earth radius,
// the same distance the rest of the code base measures laps and trips with.
func GeoDistance(lon1, lat1, lon2, lat2 float64) float64 {
	if lon1 == lon2 && lat1 == lat2 {
		return 0
	}
	return geo.DistanceHaversine(
		orb.Point{lon1 * RadToDeg, lat1 * RadToDeg},
		orb.Point{lon2 * RadToDeg, lat2 * RadToDeg},
	)
}

// GeoDistanceS2 is a spherical DistanceFunc backed by s2 angles, over the same radius as GeoDistance.
func GeoDistanceS2(lon1, lat1, lon2, lat2 float64) float64 {
	if lon1 == lon2 && lat1 == lat2 {
		return 0
	}
	a := s2.LatLngFromDegrees(lat1*RadToDeg, lon1*RadToDeg)
	b := s2.LatLngFromDegrees(lat2*RadToDeg, lon2*RadToDeg)
	return a.Distance(b).Radians() * orb.EarthRadius
}

// PointDistance measures two orb points (degrees) with the given DistanceFunc.
func PointDistance(fn DistanceFunc, a, b orb.Point) float64 {
	return fn(a.Lon()*DegToRad, a.Lat()*DegToRad, b.Lon()*DegToRad, b.Lat()*DegToRad)
}
