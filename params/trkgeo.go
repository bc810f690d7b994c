package params

import (
	"path/filepath"

	"github.com/ethereum/go-ethereum/metrics"
	"github.com/mitchellh/go-homedir"
)

func init() {
	metrics.Enabled = true
}

const (
	ProjectsDBName = "projects.db"
	ConfigFileName = "config.yaml"

	// EnvPrefix prefixes environment variables read by the CLI, eg. TRKGEO_SLOPE_WINDOW.
	EnvPrefix = "TRKGEO"

	MetricsPrefix = "trkgeo"
)

var DatadirRoot = func() string {
	home, err := homedir.Dir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(home, ".trkgeo")
}()

var ProjectsBucket = []byte("projects")

// SummaryCacheSize bounds the number of track summaries a project keeps around.
var SummaryCacheSize = 1_000
