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
	"fmt"
	"log"

	"github.com/rotblauer/trkgeo/export"
	"github.com/rotblauer/trkgeo/ingest"
	"github.com/rotblauer/trkgeo/params"
	"github.com/spf13/cobra"
)

var optFormat string
var optGeoJSON bool
var optLines bool

// deriveCmd represents the derive command
var deriveCmd = &cobra.Command{
	Use:   "derive [file...]",
	Short: "Print the derived values of every point",
	Long: `Load tracks from GPX or GeoJSON files ("-" reads stdin, with --format),
derive them, and print every point with its cumulative distance, ascend, descend,
elapsed and moving time, speed and slope.

Deleted points are marked with an x and carry no derived values.

Examples:

  trkgeo derive morning.gpx
  trkgeo derive --geojson --simplify 0 morning.gpx > morning.geojson
  zcat tracks.json.gz | trkgeo derive --format geojson --lines -
`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		ctx, cancel := interruptContext()
		defer cancel()

		tracks, _, err := loadTracks(ctx, ingest.Format(optFormat), args...)
		if err != nil {
			log.Fatalln(err)
		}
		out := cmd.OutOrStdout()
		for _, t := range tracks {
			switch {
			case optGeoJSON:
				err = export.WriteGeoJSON(out, export.GeoJSON(t.Track, params.DefaultSimplifierConfig))
				if err == nil {
					_, err = fmt.Fprintln(out)
				}
			case optLines:
				err = export.WritePointLines(out, t.Track)
			default:
				fmt.Fprintf(out, "# %s (%s)\n", t.Name(), t.Key())
				err = writePointTable(out, t.Track)
			}
			if err != nil {
				log.Fatalln(err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(deriveCmd)

	flags := deriveCmd.Flags()
	flags.StringVar(&optFormat, "format", "", "Input format (gpx, geojson); default by file extension")
	flags.BoolVar(&optGeoJSON, "geojson", false, "Print a GeoJSON FeatureCollection per track: its line, then its points")
	flags.BoolVar(&optLines, "lines", false, "Print points as GeoJSON lines")
	flags.Float64Var(&params.DefaultSimplifierConfig.DouglasPeuckerThreshold,
		"simplify", params.DefaultSimplifierConfig.DouglasPeuckerThreshold,
		"Douglas-Peucker threshold, in degrees, for --geojson lines; 0 keeps every point")
}
