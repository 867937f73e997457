// Package metrics extracts transient-response measurements from
// closed-loop traces.
//
// Conventions, with y0 the first sample and delta = setpoint - y0:
//
//   - rise time: from 10% to 90% of delta, linearly interpolated
//   - settling time: first sample after which every sample stays within
//     2% of |delta| around the setpoint. Only the samples up to the
//     horizon are seen, so a trace that is still oscillating but lands
//     inside the band on its last samples counts as settled there.
//   - overshoot: largest excursion past the setpoint in the direction of
//     delta, as a percentage of |delta|
//   - steady-state error: |setpoint - y_ss| where y_ss averages the last
//     TerminalWindow samples
//
// Overshoot and steady-state error saturate at math.MaxFloat64 on a
// diverging trace.
//
// Each metric is available as a streaming [process.Metric] and through
// [Extract] for a whole trace.
package metrics

const (
	DefaultRiseLow        = 0.1
	DefaultRiseHigh       = 0.9
	DefaultSettlingBand   = 0.02
	DefaultTerminalWindow = 1
)

type Options struct {
	RiseLow        float64
	RiseHigh       float64
	SettlingBand   float64
	TerminalWindow int
}

func DefaultOptions() Options {
	return Options{
		RiseLow:        DefaultRiseLow,
		RiseHigh:       DefaultRiseHigh,
		SettlingBand:   DefaultSettlingBand,
		TerminalWindow: DefaultTerminalWindow,
	}
}

func (o Options) withDefaults() Options {
	if !(o.RiseLow > 0 && o.RiseHigh > o.RiseLow && o.RiseHigh <= 1) {
		o.RiseLow, o.RiseHigh = DefaultRiseLow, DefaultRiseHigh
	}
	if !(o.SettlingBand > 0) {
		o.SettlingBand = DefaultSettlingBand
	}
	if o.TerminalWindow < 1 {
		o.TerminalWindow = DefaultTerminalWindow
	}
	return o
}
