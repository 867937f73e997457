// Package render draws reaction curves, fitted models and closed-loop
// traces as terminal charts or PNG images.
package render

import (
	"github.com/san-kum/pidlab/internal/identify"
	"github.com/san-kum/pidlab/internal/pipeline"
	"github.com/san-kum/pidlab/internal/process"
)

// Series is one named line sharing the chart's time axis.
type Series struct {
	Name string
	X, Y []float64
}

// FitSeries pairs the measured curve with the response of the fitted model.
func FitSeries(curve process.ReactionCurve, m process.Model) []Series {
	return []Series{
		{Name: "measured", X: curve.Times, Y: curve.Outputs},
		{Name: "fit " + m.String(), X: curve.Times, Y: identify.Fitted(curve, m)},
	}
}

// TraceSeries returns the output of every successful result and a flat
// setpoint line taken from the first of them.
func TraceSeries(results []pipeline.Result) []Series {
	var out []Series
	for _, r := range results {
		if !r.OK() || r.Trace.Len() == 0 {
			continue
		}
		if out == nil {
			sp := make([]float64, r.Trace.Len())
			for i := range sp {
				sp[i] = r.Trace.Setpoint
			}
			out = append(out, Series{Name: "setpoint", X: r.Trace.Times, Y: sp})
		}
		out = append(out, Series{Name: r.Rule, X: r.Trace.Times, Y: r.Trace.Outputs})
	}
	return out
}

// ControlSeries returns the controller output of every successful result.
func ControlSeries(results []pipeline.Result) []Series {
	var out []Series
	for _, r := range results {
		if !r.OK() || len(r.Trace.Controls) == 0 {
			continue
		}
		out = append(out, Series{Name: r.Rule, X: r.Trace.Times, Y: r.Trace.Controls})
	}
	return out
}
