package export

import (
	"errors"
	"sync"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rotblauer/trkgeo/params"
	"github.com/rotblauer/trkgeo/types/trk"
)

var ErrNoTime = errors.New("track has no timestamps")

// InfluxPoint is a visible, timestamped point as an InfluxDB point,
// tagged with its track, carrying its raw and derived values as fields.
func InfluxPoint(measurement string, t *trk.Track, seg int, pt *trk.TrackPoint) *write.Point {
	p := influxdb2.NewPointWithMeasurement(measurement).
		SetTime(pt.Time).
		AddTag("track", t.Name).
		AddTag("key", t.Key).
		AddField("latitude", pt.Lat).
		AddField("longitude", pt.Lon).
		AddField("segment", seg).
		AddField("idx", pt.Idx)

	add := func(name string, v float64) {
		if !trk.IsNoFloat(v) {
			p.AddField(name, v)
		}
	}
	add("elevation", pt.Ele)
	add("distance", pt.Distance)
	add("ascend", pt.Ascend)
	add("descend", pt.Descend)
	add("elapsed_seconds", pt.ElapsedSeconds)
	add("elapsed_seconds_moving", pt.ElapsedSecondsMoving)
	add("speed", pt.Speed)
	add("slope", pt.Slope1)
	add("slope_percent", pt.Slope2)
	return p
}

// InfluxPoints returns the visible, timestamped points of t. Points without time are skipped;
// InfluxDB has nowhere to put them.
func InfluxPoints(measurement string, t *trk.Track) []*write.Point {
	out := make([]*write.Point, 0, t.CntVisiblePoints)
	t.ScanVisible(func(s, _ int, pt *trk.TrackPoint) bool {
		if pt.HasTime() {
			out = append(out, InfluxPoint(measurement, t, s, pt))
		}
		return true
	})
	return out
}

// ExportInfluxDB posts the points of tracks to an InfluxDB Write API.
// The Write API will buffer and flush.
// The last error encountered is returned.
func ExportInfluxDB(config *params.InfluxDBConfig, tracks ...*trk.Track) error {
	if config == nil {
		config = params.DefaultInfluxDBConfig
	}
	points := []*write.Point{}
	for _, t := range tracks {
		points = append(points, InfluxPoints(config.Measurement, t)...)
	}
	if len(points) == 0 {
		return ErrNoTime
	}

	opts := influxdb2.DefaultOptions()
	opts.SetPrecision(config.Precision)
	client := influxdb2.NewClientWithOptions(config.URL, config.Token, opts)
	writeAPI := client.WriteAPI(config.Org, config.Bucket)

	// Errors must be read before any writes, and drained, or the writer blocks.
	// https://github.com/influxdata/influxdb-client-go?tab=readme-ov-file#reading-async-errors
	errorsCh := writeAPI.Errors()
	var err error
	wait := sync.WaitGroup{}
	wait.Add(1)
	go func() {
		defer wait.Done()
		for e := range errorsCh {
			if e != nil {
				err = e
			}
		}
	}()

	for _, p := range points {
		writeAPI.WritePoint(p)
	}
	writeAPI.Flush()
	client.Close()
	wait.Wait()
	return err
}
