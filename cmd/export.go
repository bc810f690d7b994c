/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotblauer/trkgeo/export"
	"github.com/rotblauer/trkgeo/ingest"
	"github.com/rotblauer/trkgeo/params"
	"github.com/rotblauer/trkgeo/types/trk"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var optExportInflux bool
var optExportDir string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [file...]",
	Short: "Export derived tracks to GeoJSON files or InfluxDB",
	Long: `Load and derive tracks, then write each to <dir>/<name>.geojson
(its line and its points, with derived values as properties),
and/or post every timestamped point to an InfluxDB v2 bucket.

Examples:

  trkgeo export --dir out/ morning.gpx
  TRKGEO_INFLUX_TOKEN=... trkgeo export --influx --influx.bucket rides *.gpx
`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		ctx, cancel := interruptContext()
		defer cancel()

		items, _, err := loadTracks(ctx, ingest.Format(optFormat), args...)
		if err != nil {
			log.Fatalln(err)
		}

		if optExportDir != "" {
			if err := os.MkdirAll(optExportDir, 0755); err != nil {
				log.Fatalln(err)
			}
			for _, it := range items {
				path := filepath.Join(optExportDir, fileName(it.Name(), it.Key())+".geojson")
				f, err := os.Create(path)
				if err != nil {
					log.Fatalln(err)
				}
				err = export.WriteGeoJSON(f, export.GeoJSON(it.Track, params.DefaultSimplifierConfig))
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					log.Fatalln(err)
				}
				slog.Info("Exported track", "name", it.Name(), "path", path)
			}
		}

		if optExportInflux {
			tracks := make([]*trk.Track, 0, len(items))
			for _, it := range items {
				tracks = append(tracks, it.Track)
			}
			if err := export.ExportInfluxDB(params.DefaultInfluxDBConfig, tracks...); err != nil {
				log.Fatalln(err)
			}
			slog.Info("Exported to InfluxDB", "url", params.DefaultInfluxDBConfig.URL,
				"bucket", params.DefaultInfluxDBConfig.Bucket, "tracks", len(tracks))
		}
	},
}

// fileName makes a track name safe to use as a file name, falling back to its key.
func fileName(name, key string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return key
	}
	return name
}

// influxFlags configure the InfluxDB export.
var influxFlags = pflag.NewFlagSet("influx", pflag.ContinueOnError)

func init() {
	rootCmd.AddCommand(exportCmd)

	c := params.DefaultInfluxDBConfig
	influxFlags.StringVar(&c.URL, "influx.url", c.URL, "InfluxDB server URL")
	influxFlags.StringVar(&c.Token, "influx.token", c.Token, "InfluxDB API token")
	influxFlags.StringVar(&c.Org, "influx.org", c.Org, "InfluxDB organization")
	influxFlags.StringVar(&c.Bucket, "influx.bucket", c.Bucket, "InfluxDB bucket")
	influxFlags.StringVar(&c.Measurement, "influx.measurement", c.Measurement, "InfluxDB measurement points are written to")

	flags := exportCmd.Flags()
	flags.StringVar(&optFormat, "format", "", "Input format (gpx, geojson); default by file extension")
	flags.StringVar(&optExportDir, "dir", "", "Directory to write <track>.geojson files to")
	flags.BoolVar(&optExportInflux, "influx", false, "Post points to InfluxDB")
	flags.AddFlagSet(influxFlags)
	bindConfigFlags(influxFlags)
}
