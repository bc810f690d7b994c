// Package summary condenses a derived track into the handful of numbers people ask about:
// how far, how high, how long, how fast.
package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"
	"github.com/rotblauer/trkgeo/common"
	"github.com/rotblauer/trkgeo/types/trk"
)

// Summary of a derived track. Float fields use trk.NoFloat for "no data".
type Summary struct {
	Name string

	Visible int
	Total   int

	Distance             float64
	Ascend               float64
	Descend              float64
	ElapsedSeconds       float64
	ElapsedSecondsMoving float64

	// AvgSpeed is distance over elapsed time, AvgMovingSpeed distance over moving time.
	AvgSpeed       float64
	AvgMovingSpeed float64

	// Point speed and slope statistics, over points that have them.
	SpeedMean   float64
	SpeedMedian float64
	SpeedMax    float64
	SlopeMax    float64

	EleMin float64
	EleMax float64

	TimeStart time.Time
	TimeEnd   time.Time
}

func statsOr(fn func() (float64, error), def float64) float64 {
	out, err := fn()
	if err != nil {
		return def
	}
	return out
}

func ratio(a, b float64) float64 {
	if trk.IsNoFloat(a) || trk.IsNoFloat(b) || b <= 0 {
		return trk.NoFloat
	}
	return a / b
}

// Of summarizes t, which must have been derived.
func Of(t *trk.Track) *Summary {
	s := &Summary{
		Name:                 t.Name,
		Visible:              t.CntVisiblePoints,
		Total:                t.CntTotalPoints,
		Distance:             t.TotalDistance,
		Ascend:               t.TotalAscend,
		Descend:              t.TotalDescend,
		ElapsedSeconds:       t.TotalElapsedSeconds,
		ElapsedSecondsMoving: t.TotalElapsedSecondsMoving,
		TimeStart:            t.TimeStart,
		TimeEnd:              t.TimeEnd,
	}
	s.AvgSpeed = ratio(s.Distance, s.ElapsedSeconds)
	s.AvgMovingSpeed = ratio(s.Distance, s.ElapsedSecondsMoving)

	speeds := make([]float64, 0, t.CntVisiblePoints)
	slopes := make([]float64, 0, t.CntVisiblePoints)
	elevations := make([]float64, 0, t.CntVisiblePoints)
	t.ScanVisible(func(_, _ int, pt *trk.TrackPoint) bool {
		if !trk.IsNoFloat(pt.Speed) {
			speeds = append(speeds, pt.Speed)
		}
		if !trk.IsNoFloat(pt.Slope1) {
			slopes = append(slopes, pt.Slope1)
		}
		if pt.HasEle() {
			elevations = append(elevations, pt.Ele)
		}
		return true
	})

	speedData := stats.Float64Data(speeds)
	s.SpeedMean = statsOr(speedData.Mean, trk.NoFloat)
	s.SpeedMedian = statsOr(speedData.Median, trk.NoFloat)
	s.SpeedMax = statsOr(speedData.Max, trk.NoFloat)
	s.SlopeMax = statsOr(stats.Float64Data(slopes).Max, trk.NoFloat)

	eleData := stats.Float64Data(elevations)
	s.EleMin = statsOr(eleData.Min, trk.NoFloat)
	s.EleMax = statsOr(eleData.Max, trk.NoFloat)
	return s
}

func meters(v float64) string {
	if v >= 1000 {
		return humanize.FormatFloat("#,###.##", v/1000) + " km"
	}
	return humanize.FormatFloat("#,###.", v) + " m"
}

func speed(v float64) string {
	return humanize.FormatFloat("#,###.#", v*3.6) + " km/h"
}

func duration(seconds float64) string {
	return (time.Duration(common.Round(seconds)) * time.Second).String()
}

// Info renders the summary as short human text, one fact per line.
// Values with no data are left out, except for the point counts.
func (s *Summary) Info() string {
	lines := []string{s.Name}
	if s.Visible == 0 {
		return s.Name
	}

	line := "Length: " + meters(s.Distance)
	if !trk.IsNoFloat(s.Ascend) && !trk.IsNoFloat(s.Descend) {
		line += fmt.Sprintf(", ↗%s ↘%s", meters(s.Ascend), meters(s.Descend))
	}
	lines = append(lines, line)

	if !trk.IsNoFloat(s.ElapsedSeconds) {
		line = "Time: " + duration(s.ElapsedSeconds)
		if !trk.IsNoFloat(s.AvgSpeed) {
			line += ", Speed: " + speed(s.AvgSpeed)
		}
		lines = append(lines, line)
	}
	if !trk.IsNoFloat(s.ElapsedSecondsMoving) {
		line = "Moving: " + duration(s.ElapsedSecondsMoving)
		if !trk.IsNoFloat(s.AvgMovingSpeed) {
			line += ", Speed: " + speed(s.AvgMovingSpeed)
		}
		lines = append(lines, line)
	}
	if !trk.IsNoFloat(s.SpeedMax) {
		lines = append(lines, "Max speed: "+speed(s.SpeedMax))
	}
	if !trk.IsNoFloat(s.EleMin) {
		lines = append(lines, fmt.Sprintf("Elevation: %s - %s", meters(s.EleMin), meters(s.EleMax)))
	}
	if !s.TimeStart.IsZero() {
		lines = append(lines, fmt.Sprintf("Start: %s (%s)",
			s.TimeStart.Format(time.RFC3339), humanize.Time(s.TimeStart)))
	}
	if !s.TimeEnd.IsZero() {
		lines = append(lines, "End: "+s.TimeEnd.Format(time.RFC3339))
	}
	lines = append(lines, fmt.Sprintf("Points: %s (%s)",
		humanize.Comma(int64(s.Visible)), humanize.Comma(int64(s.Total))))
	return strings.Join(lines, "\n")
}
