package experiment

import (
	"fmt"
	"os"
	"sort"

	"github.com/san-kum/impulse2d/internal/config"
	"github.com/san-kum/impulse2d/internal/dynamo"
	"github.com/san-kum/impulse2d/internal/metrics"
)

var metricFactories = map[string]func(gravity float64) dynamo.Metric{
	"energy":         func(g float64) dynamo.Metric { return metrics.NewEnergy(g) },
	"energy_drift":   func(g float64) dynamo.Metric { return metrics.NewEnergyDrift(g) },
	"momentum_drift": func(float64) dynamo.Metric { return metrics.NewMomentumDrift() },
	"stability":      func(float64) dynamo.Metric { return metrics.NewStability(1000) },
	"settle_time":    func(float64) dynamo.Metric { return metrics.NewSettleTime(0.5) },
	"max_speed":      func(float64) dynamo.Metric { return metrics.NewSeries("max_speed", metrics.MaxSpeed) },
}

// GetMetric creates a fresh named metric for a world with the given gravity.
func GetMetric(name string, gravity float64) (dynamo.Metric, error) {
	fn, ok := metricFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(gravity), nil
}

// GetMetrics resolves names in order. No names yields the defaults.
func GetMetrics(names []string, gravity float64) ([]dynamo.Metric, error) {
	if len(names) == 0 {
		return metrics.Defaults(gravity), nil
	}
	out := make([]dynamo.Metric, 0, len(names))
	for _, n := range names {
		m, err := GetMetric(n, gravity)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func ListMetrics() []string {
	names := make([]string, 0, len(metricFactories))
	for name := range metricFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadScene resolves source as a preset name first, then as a YAML file.
func LoadScene(source string) (*config.Config, error) {
	if cfg := config.GetPreset(source); cfg != nil {
		return cfg, nil
	}
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("unknown scene %q: not a preset and %w", source, err)
	}
	return config.Load(source)
}
