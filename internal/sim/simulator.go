package sim

import (
	"context"
	"fmt"
	"math"

	"go.einride.tech/pid"

	"github.com/san-kum/pidlab/internal/integrators"
	"github.com/san-kum/pidlab/internal/process"
)

// cancelCheckInterval is how many steps run between context checks.
const cancelCheckInterval = 1024

// Simulate runs a unit-less closed-loop step response of an ideal PID
// controller against m, starting from rest at t=0.
func Simulate(m process.Model, g process.Gains, cfg Config) (process.Trace, error) {
	return SimulateContext(context.Background(), m, g, cfg)
}

func SimulateContext(ctx context.Context, m process.Model, g process.Gains, cfg Config) (process.Trace, error) {
	if math.IsNaN(g.Ti) || !process.Finite(g.Kp, g.Td) {
		return process.Trace{}, &process.ConfigurationError{Field: "gains", Detail: g.String(), Err: process.ErrNonFinite}
	}
	p, err := resolve(m, cfg)
	if err != nil {
		return process.Trace{}, err
	}
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return process.Trace{}, &process.ConfigurationError{Field: "integrator", Detail: err.Error(), Err: process.ErrUnsupported}
	}

	// One slab holds times, outputs, controls and the delay ring.
	samples := p.steps + 1
	slab := make([]float64, 3*samples+p.delay)
	times := slab[0:samples:samples]
	outputs := slab[samples : 2*samples : 2*samples]
	controls := slab[2*samples : 3*samples : 3*samples]
	delay := NewDelayLine(slab[3*samples:])

	kp, ki, kd := g.Parallel()
	ctrl := &pid.Controller{
		Config: pid.ControllerConfig{
			ProportionalGain: kp,
			IntegralGain:     ki,
			DerivativeGain:   kd,
		},
	}
	plant := NewPlant(m)

	x := process.State{0}
	u := process.Control{0}
	trace := process.Trace{Setpoint: cfg.Setpoint, Dt: p.dt, Warnings: p.warnings}

	n := samples
	for i := 0; i < samples; i++ {
		if i%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return process.Trace{}, ctx.Err()
			default:
			}
		}

		t := float64(i) * p.dt
		times[i] = t
		outputs[i] = x[0]

		ctrl.Update(pid.ControllerInput{
			ReferenceSignal:  cfg.Setpoint,
			ActualSignal:     x[0],
			SamplingInterval: p.interval,
		})
		controls[i] = ctrl.State.ControlSignal
		if !process.Finite(controls[i]) {
			n = i
			trace.Diverged = true
			trace.Warnings = append(trace.Warnings, fmt.Sprintf("controller output diverged at t=%.4g", t))
			break
		}

		if i == p.steps {
			break
		}

		u[0] = delay.Push(controls[i])
		x = integ.Step(plant, x, u, t, p.dt)
		if !x.IsValid() {
			n = i + 1
			trace.Diverged = true
			trace.Warnings = append(trace.Warnings, fmt.Sprintf("output diverged at t=%.4g", t+p.dt))
			break
		}
	}

	trace.Times = times[:n]
	trace.Outputs = outputs[:n]
	trace.Controls = controls[:n]
	return trace, nil
}
