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

	"github.com/rotblauer/trkgeo/ingest"
	"github.com/rotblauer/trkgeo/project"
	"github.com/spf13/cobra"
)

var optProjectName string
var optUserFocus bool

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [file...]",
	Short: "Import tracks into a stored project",
	Long: `Load tracks and waypoints from GPX or GeoJSON files and add them to a project
in the project store, creating the project if needed.
"-" reads stdin, which needs --format.

GeoJSON points are grouped into one track per Name property, and split into
segments wherever time jumps more than --segment-gap (or runs backwards).
Items are keyed by a hash of their raw content, so importing the same track again
replaces it rather than duplicating it.

Examples:

  trkgeo import --project rides morning.gpx evening.gpx
  zcat master.json.gz | trkgeo import --project cats --format geojson -
`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		ctx, cancel := interruptContext()
		defer cancel()

		tracks, waypoints, err := loadTracks(ctx, ingest.Format(optFormat), args...)
		if err != nil {
			log.Fatalln(err)
		}

		s := openStore(false)
		defer s.Close()
		p := loadOrNewProject(s, optProjectName)
		for _, t := range tracks {
			p.Add(t)
		}
		for _, w := range waypoints {
			p.Add(w)
		}
		if optUserFocus && len(tracks) > 0 {
			if err := p.SetUserFocus(tracks[len(tracks)-1].Key()); err != nil {
				log.Fatalln(err)
			}
		}
		if err := s.Save(p); err != nil {
			log.Fatalln(err)
		}
		slog.Info("Import done", "project", p.Name, "tracks", len(tracks), "waypoints", len(waypoints), "items", p.Len())
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	flags := importCmd.Flags()
	flags.StringVar(&optFormat, "format", "", "Input format (gpx, geojson); default by file extension")
	flags.StringVar(&optProjectName, "project", "default", "Project to import into")
	flags.BoolVar(&optUserFocus, "focus", true, "Make the last imported track the project's user focus")
	flags.StringVar(&optStorePath, "db", project.DefaultStorePath(), "Project store database")
}
