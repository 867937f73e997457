package pipeline

import (
	"github.com/san-kum/pidlab/internal/identify"
	"github.com/san-kum/pidlab/internal/metrics"
	"github.com/san-kum/pidlab/internal/process"
	"github.com/san-kum/pidlab/internal/sim"
	"github.com/san-kum/pidlab/internal/tuning"
)

// Stateless entry points for callers that wire the stages themselves.

func IdentifyModel(curve process.ReactionCurve, opts identify.Options) (process.FitResult, error) {
	return identify.Identify(curve, opts)
}

func TuneController(m process.Model, rule tuning.Rule, opts tuning.Options) (tuning.Tuning, error) {
	return tuning.Tune(m, rule, opts)
}

func SimulateClosedLoop(m process.Model, g process.Gains, cfg sim.Config) (process.Trace, error) {
	return sim.Simulate(m, g, cfg)
}

func ComputeMetrics(tr process.Trace, setpoint float64, opts metrics.Options) process.Performance {
	return metrics.Compute(tr, setpoint, opts)
}
