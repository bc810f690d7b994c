package params

import "time"

// InfluxDBConfig locates the InfluxDB v2 bucket derived points are exported to.
type InfluxDBConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string

	// Measurement names the points written.
	Measurement string
	Precision   time.Duration
}

var DefaultInfluxDBConfig = &InfluxDBConfig{
	URL:         "http://localhost:8086",
	Org:         "trkgeo",
	Bucket:      "tracks",
	Measurement: "trackpoint",
	Precision:   time.Second,
}
