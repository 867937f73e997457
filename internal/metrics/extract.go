package metrics

import "github.com/san-kum/pidlab/internal/process"

// Standard returns fresh instances of the four transient metrics in
// Performance order.
func Standard(setpoint float64, opts Options) []process.Metric {
	opts = opts.withDefaults()
	return []process.Metric{
		NewRiseTime(setpoint, opts.RiseLow, opts.RiseHigh),
		NewSettlingTime(setpoint, opts.SettlingBand),
		NewOvershoot(setpoint),
		NewSteadyStateError(setpoint, opts.TerminalWindow),
	}
}

// Feed observes every sample of the trace with each metric.
func Feed(tr process.Trace, ms ...process.Metric) {
	for i, t := range tr.Times {
		y := tr.Outputs[i]
		for _, m := range ms {
			m.Observe(t, y)
		}
	}
}

// Extract measures a trace against its own setpoint.
func Extract(tr process.Trace, opts Options) process.Performance {
	return Compute(tr, tr.Setpoint, opts)
}

func Compute(tr process.Trace, setpoint float64, opts Options) process.Performance {
	ms := Standard(setpoint, opts)
	Feed(tr, ms...)
	return process.Performance{
		RiseTime:         ms[0].Value(),
		SettlingTime:     ms[1].Value(),
		OvershootPercent: ms[2].Value(),
		SteadyStateError: ms[3].Value(),
	}
}
