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
	"log/slog"
	"time"

	"github.com/rotblauer/trkgeo/geo/focus"
	"github.com/rotblauer/trkgeo/ingest"
	"github.com/rotblauer/trkgeo/params"
	"github.com/spf13/cobra"
)

var optFocusDistance float64
var optFocusTime string
var optFocusIndex int
var optFocusVisible int
var optFocusPosition []float64

// focusCmd represents the focus command
var focusCmd = &cobra.Command{
	Use:   "focus [file]",
	Short: "Find the point at a distance, time, index or position",
	Long: `Load the first track of a file and put the point of focus on the point
closest to the given distance (meters from the start), time (RFC3339),
point index, visible point index, or position (lon,lat; within --max-distance meters).

Exactly one of --distance, --time, --index, --visible, --position is used,
in that order of preference.
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		ctx, cancel := interruptContext()
		defer cancel()

		tracks, _, err := loadTracks(ctx, ingest.Format(optFormat), args...)
		if err != nil {
			log.Fatalln(err)
		}
		if len(tracks) == 0 {
			log.Fatalln(ingest.ErrNoTracks)
		}
		t := tracks[0].Track

		out := cmd.OutOrStdout()
		tracker := focus.NewTracker(t, params.DefaultFocusConfig)
		tracker.Register(focus.ObserverFunc(func(f *focus.Focus) {
			if f == nil {
				slog.Debug("Point of focus cleared")
				return
			}
			slog.Debug("Point of focus", "track", f.Track.Name, "ref", f.Ref)
		}))

		flags := cmd.Flags()
		var found bool
		switch {
		case flags.Changed("distance"):
			found = tracker.FocusByDistance(optFocusDistance, focus.InitiatorNone)
		case flags.Changed("time"):
			ts, err := time.Parse(time.RFC3339, optFocusTime)
			if err != nil {
				log.Fatalln(err)
			}
			found = tracker.FocusByTime(ts, focus.InitiatorNone)
		case flags.Changed("index"):
			found = tracker.FocusByIndex(optFocusIndex)
		case flags.Changed("visible"):
			found = tracker.FocusByVisibleIndex(optFocusVisible, focus.InitiatorNone)
		case flags.Changed("position"):
			if len(optFocusPosition) != 2 {
				log.Fatalln("--position wants lon,lat")
			}
			found = tracker.FocusByPosition(optFocusPosition[0], optFocusPosition[1], focus.InitiatorNone)
		default:
			log.Fatalln("one of --distance, --time, --index, --visible, --position is required")
		}

		f, ok := tracker.Focus()
		if !found || !ok {
			fmt.Fprintln(out, "no point")
			return
		}
		pt, _ := f.Point()
		fmt.Fprintf(out, "%s\n", pt.StringPretty())
		fmt.Fprintf(out, "segment %d, point %d\n", f.Ref.Seg, f.Ref.Pt)
		fmt.Fprintf(out, "distance %s m, ascend %s m, descend %s m\n",
			fmtFloat(pt.Distance, 1), fmtFloat(pt.Ascend, 0), fmtFloat(pt.Descend, 0))
		fmt.Fprintf(out, "elapsed %s s, moving %s s, speed %s m/s, slope %s°\n",
			fmtFloat(pt.ElapsedSeconds, 0), fmtFloat(pt.ElapsedSecondsMoving, 0),
			fmtFloat(pt.Speed, 2), fmtFloat(pt.Slope1, 1))
		if pt.IsDeleted() {
			fmt.Fprintln(out, "deleted")
		}
	},
}

func init() {
	rootCmd.AddCommand(focusCmd)

	flags := focusCmd.Flags()
	flags.StringVar(&optFormat, "format", "", "Input format (gpx, geojson); default by file extension")
	flags.Float64Var(&optFocusDistance, "distance", 0, "Distance from the track start, in meters")
	flags.StringVar(&optFocusTime, "time", "", "Time, RFC3339")
	flags.IntVar(&optFocusIndex, "index", 0, "Point index, deleted points included")
	flags.IntVar(&optFocusVisible, "visible", 0, "Visible point index")
	flags.Float64SliceVar(&optFocusPosition, "position", nil, "Position: lon,lat in degrees")
	flags.Float64Var(&params.DefaultFocusConfig.MaxPositionDistance,
		"max-distance", params.DefaultFocusConfig.MaxPositionDistance,
		"How far, in meters, --position may be from the track")
}
