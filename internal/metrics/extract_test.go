package metrics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/pidlab/internal/process"
)

func trace(setpoint float64, outputs ...float64) process.Trace {
	times := make([]float64, len(outputs))
	for i := range times {
		times[i] = float64(i)
	}
	return process.Trace{Times: times, Outputs: outputs, Setpoint: setpoint, Dt: 1}
}

func TestExtractUnderdamped(t *testing.T) {
	tr := trace(1, 0, 0.5, 1.2, 1.05, 0.99, 1.0, 1.0)

	p := Extract(tr, DefaultOptions())

	require.True(t, p.RiseTime.Reached)
	assert.InDelta(t, 1+0.4/0.7-0.2, p.RiseTime.Value, 1e-12)
	require.True(t, p.SettlingTime.Reached)
	assert.Equal(t, 4.0, p.SettlingTime.Value)
	require.True(t, p.OvershootPercent.Reached)
	assert.InDelta(t, 20, p.OvershootPercent.Value, 1e-9)
	assert.True(t, p.SteadyStateError.Reached)
	assert.InDelta(t, 0, p.SteadyStateError.Value, 1e-12)
}

func TestExtractNotSettled(t *testing.T) {
	p := Extract(trace(1, 0, 0.5, 1.2, 1.05, 0.9), DefaultOptions())

	assert.False(t, p.SettlingTime.Reached)
	assert.Equal(t, "not reached", p.SettlingTime.String())
	assert.True(t, p.RiseTime.Reached)
	assert.InDelta(t, 0.1, p.SteadyStateError.Value, 1e-12)
}

func TestExtractNeverRises(t *testing.T) {
	p := Extract(trace(1, 0, 0.2, 0.4, 0.6), DefaultOptions())

	assert.False(t, p.RiseTime.Reached)
	assert.False(t, p.SettlingTime.Reached)
	assert.True(t, p.OvershootPercent.Reached)
	assert.Zero(t, p.OvershootPercent.Value)
}

func TestExtractSetpointAtStart(t *testing.T) {
	p := Extract(trace(0, 0, 0, 0), DefaultOptions())

	assert.False(t, p.OvershootPercent.Reached, "overshoot is undefined without a commanded change")
	assert.False(t, p.RiseTime.Reached)
	assert.Equal(t, process.Reached(0), p.SettlingTime)
	assert.Equal(t, process.Reached(0), p.SteadyStateError)
}

func TestExtractDirection(t *testing.T) {
	tests := []struct {
		name string
		tr   process.Trace
		want float64
	}{
		{"downward step", trace(-2, 0, -1, -2.4, -2, -2), 20},
		{"offset start", trace(2, 1, 1.5, 2.1, 2, 2), 10},
		{"no overshoot", trace(1, 0, 0.5, 0.9, 1, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Extract(tt.tr, DefaultOptions())
			require.True(t, p.OvershootPercent.Reached)
			assert.InDelta(t, tt.want, p.OvershootPercent.Value, 1e-9)
		})
	}
}

func TestExtractTerminalWindow(t *testing.T) {
	tr := trace(1, 0, 0.9, 1.1, 0.95, 1.05)

	last := Extract(tr, DefaultOptions())
	assert.InDelta(t, 0.05, last.SteadyStateError.Value, 1e-12)

	opts := DefaultOptions()
	opts.TerminalWindow = 4
	mean := Extract(tr, opts)
	assert.InDelta(t, 0, mean.SteadyStateError.Value, 1e-12)

	opts.TerminalWindow = 100
	all := Extract(tr, opts)
	assert.InDelta(t, 0.2, all.SteadyStateError.Value, 1e-12)
}

func TestExtractIdempotent(t *testing.T) {
	tr := trace(1, 0, 0.5, 1.2, 1.05, 0.99, 1.0, 1.0)
	assert.Equal(t, Extract(tr, DefaultOptions()), Extract(tr, DefaultOptions()))
}

func TestExtractEmptyTrace(t *testing.T) {
	p := Extract(process.Trace{Setpoint: 1}, DefaultOptions())
	assert.Equal(t, process.Performance{}, p)
}

func TestComputeExplicitSetpoint(t *testing.T) {
	tr := trace(5, 0, 0.5, 1.2, 1.05, 0.99, 1.0, 1.0)
	p := Compute(tr, 1, DefaultOptions())
	assert.InDelta(t, 20, p.OvershootPercent.Value, 1e-9)
}

func TestMetricReset(t *testing.T) {
	for _, m := range Standard(1, DefaultOptions()) {
		m.Observe(0, 0)
		m.Observe(1, 1.5)
		m.Reset()
		assert.False(t, m.Value().Reached, m.Name())
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{RiseLow: 0.9, RiseHigh: 0.1, SettlingBand: -1}.withDefaults()
	assert.Equal(t, DefaultOptions(), o)
}

func TestExtractLateBandEntry(t *testing.T) {
	p := Extract(trace(1, 0, 1.5, 0.5, 1.5, 1.0), DefaultOptions())

	require.True(t, p.SettlingTime.Reached)
	assert.Equal(t, 4.0, p.SettlingTime.Value)
}

func TestExtractDivergingTraceSaturates(t *testing.T) {
	p := Extract(trace(1, 0, 1e300, math.MaxFloat64, -math.MaxFloat64), DefaultOptions())

	require.True(t, p.OvershootPercent.Reached)
	assert.Equal(t, math.MaxFloat64, p.OvershootPercent.Value)
	require.True(t, p.SteadyStateError.Reached)
	assert.False(t, math.IsInf(p.SteadyStateError.Value, 0))
	assert.False(t, math.IsNaN(p.SteadyStateError.Value))

	_, err := json.Marshal(p)
	assert.NoError(t, err)
}
