package common

// All units are metric: speed in m/s, distance in meters, time in seconds.

// SpeedOfStanding is the speed below which anybody with a GPS is considered stopped.
// Receivers report jitter of a few decimeters per second while sitting still.
const SpeedOfStanding = 0.2 // or 0.72 km/h

// ElevationNoise is the vertical jitter, in meters, that consumer GPS elevation
// readings wander by without any real change in height.
const ElevationNoise = 5.0

// SlopeWindow is the horizontal distance, in meters, either side of a point
// over which local slope and speed are measured.
const SlopeWindow = 25.0
