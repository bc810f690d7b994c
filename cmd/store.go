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
	"errors"
	"fmt"
	"log"
	"log/slog"

	"github.com/rotblauer/trkgeo/project"
	"github.com/rotblauer/trkgeo/types/item"
	"github.com/spf13/cobra"
)

var optStorePath string

// storeCmd represents the store command
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the project store",
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored projects",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		s := openStore(true)
		defer s.Close()
		names, err := s.List()
		if err != nil {
			log.Fatalln(err)
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

var storeShowCmd = &cobra.Command{
	Use:   "show [project]",
	Short: "Show the items of a stored project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		s := openStore(true)
		defer s.Close()
		p, err := s.Load(args[0])
		if err != nil {
			log.Fatalln(err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Project %s (%s), %d items\n", p.Name, p.ID, p.Len())
		for _, it := range p.Items() {
			mark := " "
			if it.Key() == p.UserFocus() {
				mark = "*"
			}
			fmt.Fprintf(out, "\n%s %s %s %s\n", mark, it.Kind(), it.Key(), it.Name())
			switch v := it.(type) {
			case *item.Track:
				sum, err := p.Summary(v.Key())
				if err != nil {
					log.Fatalln(err)
				}
				fmt.Fprintln(out, sum.Info())
			case *item.Waypoint:
				fmt.Fprintln(out, v.Pt.StringPretty())
			}
		}
	},
}

var storeRmCmd = &cobra.Command{
	Use:   "rm [project...]",
	Short: "Delete stored projects",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		s := openStore(false)
		defer s.Close()
		for _, name := range args {
			if err := s.Delete(name); err != nil {
				log.Fatalln(err)
			}
			slog.Info("Deleted project", "name", name)
		}
	},
}

func openStore(readOnly bool) *project.Store {
	s, err := project.OpenStore(optStorePath, readOnly)
	if err != nil {
		log.Fatalln(err)
	}
	return s
}

// loadOrNewProject loads the stored project name, or returns a new one if there is none.
func loadOrNewProject(s *project.Store, name string) *project.Project {
	p, err := s.Load(name)
	if errors.Is(err, project.ErrNotFound) {
		slog.Info("New project", "name", name)
		return project.New(name)
	}
	if err != nil {
		log.Fatalln(err)
	}
	return p
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeListCmd, storeShowCmd, storeRmCmd)
	storeCmd.PersistentFlags().StringVar(&optStorePath, "db", project.DefaultStorePath(), "Project store database")
}
