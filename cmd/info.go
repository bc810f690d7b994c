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

	"github.com/rotblauer/trkgeo/geo/summary"
	"github.com/rotblauer/trkgeo/ingest"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info [file...]",
	Short: "Summarize tracks: length, climb, time, speed",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		ctx, cancel := interruptContext()
		defer cancel()

		tracks, waypoints, err := loadTracks(ctx, ingest.Format(optFormat), args...)
		if err != nil {
			log.Fatalln(err)
		}
		out := cmd.OutOrStdout()
		for i, t := range tracks {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, summary.Of(t.Track).Info())
		}
		for _, w := range waypoints {
			fmt.Fprintf(out, "\nWaypoint %s: %s\n", w.Name(), w.Pt.StringPretty())
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringVar(&optFormat, "format", "", "Input format (gpx, geojson); default by file extension")
}
