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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotblauer/trkgeo/common"
	"github.com/rotblauer/trkgeo/metrics"
	"github.com/rotblauer/trkgeo/params"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string
var optVerbosity int
var optLogJSON bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trkgeo",
	Short: "Derive distance, climb, time and speed from GPS tracks",
	Long: `trkgeo reads GPS tracks (GPX, GeoJSON, or GeoJSON lines as Cat Tracks writes them)
and derives, for every point: cumulative distance, ascend and descend, elapsed and moving time,
and speed and slope measured over a sliding distance window.

Configuration is read, lowest to highest precedence, from
$HOME/.trkgeo/config.yaml (or --config), TRKGEO_* environment variables
(eg. TRKGEO_SLOPE_WINDOW=50), and flags.
`,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		slog.Debug("Metrics", "snapshot", metrics.Snapshot())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// configFlags are the flagsets that config files and the environment can set too.
var configFlags []*pflag.FlagSet

// bindConfigFlags makes fs settable from config files and the environment.
func bindConfigFlags(fs *pflag.FlagSet) {
	cobra.CheckErr(viper.BindPFlags(fs))
	configFlags = append(configFlags, fs)
}

// deriveFlags configure derivation.
// This flagset is shared by every command that derives tracks,
// and writes to the same configuration structure.
var deriveFlags = pflag.NewFlagSet("derive", pflag.ContinueOnError)

func init() {
	cobra.OnInitialize(initConfig)

	pFlags := rootCmd.PersistentFlags()
	pFlags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.trkgeo/config.yaml)")
	pFlags.IntVar(&optVerbosity, "verbosity", 2, "Log level: 0=error 1=warn 2=info 3=debug")
	pFlags.BoolVar(&optLogJSON, "log-json", false, "Log JSON to stderr")

	deriveFlags.Float64Var(&params.DefaultDeriveConfig.AscendThreshold,
		"threshold-ascend", params.DefaultDeriveConfig.AscendThreshold,
		`Elevation change, in meters, ignored as noise when summing ascend and descend`)
	deriveFlags.Float64Var(&params.DefaultDeriveConfig.SlopeWindow,
		"slope-window", params.DefaultDeriveConfig.SlopeWindow,
		`Distance, in meters, behind and ahead of a point over which its speed and slope are measured`)
	deriveFlags.Float64Var(&params.DefaultDeriveConfig.MovingSpeedThreshold,
		"moving-speed", params.DefaultDeriveConfig.MovingSpeedThreshold,
		`Speed, in m/s, above which time counts as moving`)
	deriveFlags.DurationVar(&params.DefaultIngestConfig.SegmentGap,
		"segment-gap", params.DefaultIngestConfig.SegmentGap,
		`Time gap that starts a new segment when reading GeoJSON points`)
	pFlags.AddFlagSet(deriveFlags)

	bindConfigFlags(pFlags)
}

// initConfig reads in config file and ENV variables if set,
// and writes what they set back through the bound flags.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(params.DatadirRoot)
		viper.SetConfigType("yaml")
		viper.SetConfigName(strings.TrimSuffix(params.ConfigFileName, filepath.Ext(params.ConfigFileName)))
	}

	viper.SetEnvPrefix(params.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	var notFound viper.ConfigFileNotFoundError
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" || !errors.As(err, &notFound) {
		cobra.CheckErr(err)
	}

	// Flags set on the command line win; the rest take config and env values.
	for _, fs := range configFlags {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed || !viper.IsSet(f.Name) {
				return
			}
			cobra.CheckErr(f.Value.Set(viper.GetString(f.Name)))
		})
	}
}

// setDefaultSlog installs the default logger configured by --verbosity and --log-json.
func setDefaultSlog(cmd *cobra.Command, args []string) {
	level := slog.LevelInfo
	switch {
	case optVerbosity <= 0:
		level = slog.LevelError
	case optVerbosity == 1:
		level = slog.LevelWarn
	case optVerbosity >= 3:
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if optLogJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler).With("cmd", cmd.Name()))
	slog.Debug("Logger ready", "args", args, "derive", *params.DefaultDeriveConfig)
}

// interruptContext is canceled on the first interrupt signal.
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case sig := <-common.Interrupted():
			slog.Warn("Interrupted", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
