// Package metrics registers the counters and timers trkgeo keeps about its own work.
package metrics

import (
	"path"

	gethmetrics "github.com/ethereum/go-ethereum/metrics"
	"github.com/rotblauer/trkgeo/params"
)

// Importing params enables go-ethereum metrics before these are registered;
// registered while disabled, they would be no-ops.
var (
	RecomputeTimer         = gethmetrics.NewRegisteredTimer(name("derive/recompute"), nil)
	RecomputePointsCounter = gethmetrics.NewRegisteredCounter(name("derive/points"), nil)
	PrunedSegmentsCounter  = gethmetrics.NewRegisteredCounter(name("derive/pruned_segments"), nil)
	FocusChangesCounter    = gethmetrics.NewRegisteredCounter(name("focus/changes"), nil)
	IngestPointsCounter    = gethmetrics.NewRegisteredCounter(name("ingest/points"), nil)
)

func name(s string) string {
	return path.Join(params.MetricsPrefix, s)
}

// Snapshot returns the current metric values by name, for logging or display.
func Snapshot() map[string]any {
	out := map[string]any{}
	gethmetrics.DefaultRegistry.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case gethmetrics.Counter:
			out[name] = m.Snapshot().Count()
		case gethmetrics.Timer:
			s := m.Snapshot()
			out[name] = map[string]any{
				"count": s.Count(),
				"mean":  s.Mean(),
				"max":   s.Max(),
			}
		}
	})
	return out
}
