package common

import "math"

// https://stackoverflow.com/questions/18390266/how-can-we-truncate-float64-type-to-a-particular-precision
func Round(num float64) int {
	return int(num + math.Copysign(0.5, num))
}

func DecimalToFixed(num float64, precision int) float64 {
	output := math.Pow(10, float64(precision))
	return float64(Round(num*output)) / output
}

// Grade returns the absolute grade angle in degrees and the grade in percent
// for a rise over a run. ok is false when the run is zero.
func Grade(rise, run float64) (degrees, percent float64, ok bool) {
	if run == 0 || math.IsNaN(rise) || math.IsNaN(run) {
		return 0, 0, false
	}
	a := math.Abs(math.Atan(rise / run))
	degrees = a * RadToDeg
	percent = math.Tan(degrees*DegToRad) * 100
	return degrees, percent, true
}
