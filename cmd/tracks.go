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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/rotblauer/trkgeo/common"
	"github.com/rotblauer/trkgeo/geo/derive"
	"github.com/rotblauer/trkgeo/ingest"
	"github.com/rotblauer/trkgeo/params"
	"github.com/rotblauer/trkgeo/types/item"
	"github.com/rotblauer/trkgeo/types/trk"
)

// readFile loads path, or stdin for "-" (then format is required).
func readFile(ctx context.Context, path string, format ingest.Format) (*ingest.Result, error) {
	if path == "-" {
		if format == "" {
			return nil, fmt.Errorf("reading stdin needs --format")
		}
		return ingest.Read(ctx, os.Stdin, format, params.DefaultIngestConfig)
	}
	if format != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ingest.Read(ctx, f, format, params.DefaultIngestConfig)
	}
	return ingest.File(ctx, path, params.DefaultIngestConfig)
}

// loadTracks reads every path and derives the tracks found with the configured engine.
func loadTracks(ctx context.Context, format ingest.Format, paths ...string) ([]*item.Track, []*item.Waypoint, error) {
	engine := derive.NewEngine(params.DefaultDeriveConfig)
	var tracks []*item.Track
	var waypoints []*item.Waypoint
	for _, path := range paths {
		res, err := readFile(ctx, path, format)
		if err != nil {
			return nil, nil, err
		}
		for _, t := range res.Tracks {
			it := item.NewTrack(t)
			it.Engine = engine
			it.Derive()
			tracks = append(tracks, it)
			slog.Info("Loaded track", "file", path, "name", t.Name, "key", it.Key(),
				"segments", len(t.Segs), "points", t.CntTotalPoints)
		}
		waypoints = append(waypoints, res.Waypoints...)
	}
	return tracks, waypoints, nil
}

func fmtFloat(v float64, decimals int) string {
	if trk.IsNoFloat(v) {
		return "-"
	}
	return fmt.Sprintf("%v", common.DecimalToFixed(v, decimals))
}

// writePointTable writes the derived values of every point of t, one per line.
func writePointTable(w io.Writer, t *trk.Track) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "idx\tseg\tpoint\tdist\tascend\tdescend\telapsed\tmoving\tspeed\tslope\t")
	t.Scan(func(s, _ int, pt *trk.TrackPoint) bool {
		mark := ""
		if pt.IsDeleted() {
			mark = "x"
		}
		fmt.Fprintf(tw, "%s%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			mark, pt.Idx, s, pt.StringPretty(),
			fmtFloat(pt.Distance, 1),
			fmtFloat(pt.Ascend, 0), fmtFloat(pt.Descend, 0),
			fmtFloat(pt.ElapsedSeconds, 0), fmtFloat(pt.ElapsedSecondsMoving, 0),
			fmtFloat(pt.Speed, 2), fmtFloat(pt.Slope1, 1),
		)
		return true
	})
	return tw.Flush()
}
