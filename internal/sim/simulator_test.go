package sim

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/pidlab/internal/process"
)

func testConfig(horizon float64) Config {
	cfg := DefaultConfig()
	cfg.Horizon = horizon
	return cfg
}

func TestSimulateSampleGrid(t *testing.T) {
	m := process.Model{Gain: 1, TimeConstant: 10}
	cfg := testConfig(1)
	cfg.Dt = 0.1

	tr, err := Simulate(m, process.Gains{Kp: 1}, cfg)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if tr.Len() != 11 || len(tr.Outputs) != 11 || len(tr.Controls) != 11 {
		t.Fatalf("expected 11 samples, got %d/%d/%d", len(tr.Times), len(tr.Outputs), len(tr.Controls))
	}
	if tr.Times[0] != 0 || math.Abs(tr.Duration()-1) > 1e-12 {
		t.Errorf("expected grid 0..1, got %f..%f", tr.Times[0], tr.Duration())
	}
	if tr.Outputs[0] != 0 {
		t.Errorf("plant should start at rest, got %f", tr.Outputs[0])
	}
	if tr.Setpoint != 1 || tr.Dt != 0.1 {
		t.Errorf("unexpected setpoint/dt: %f/%f", tr.Setpoint, tr.Dt)
	}
}

func TestSimulateProportionalOffset(t *testing.T) {
	m := process.Model{Gain: 2, TimeConstant: 10}

	tr, err := Simulate(m, process.Gains{Kp: 1}, testConfig(150))
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	want := 2.0 / 3.0
	if math.Abs(tr.Final()-want) > 1e-6 {
		t.Errorf("P-only loop should settle at %f, got %f", want, tr.Final())
	}
}

func TestSimulateIntegralRemovesOffset(t *testing.T) {
	m := process.Model{Gain: 2, TimeConstant: 10, DeadTime: 1}
	r := m.Ratio()
	g := process.Gains{
		Kp: 0.965 / m.Gain * math.Pow(r, -0.85),
		Ti: m.TimeConstant / (0.796 - 0.1465*r),
		Td: 0.308 * m.TimeConstant * math.Pow(r, 0.929),
	}

	tr, err := Simulate(m, g, testConfig(150))
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if math.Abs(tr.Final()-1) > 1e-6 {
		t.Errorf("expected output at setpoint, got %f", tr.Final())
	}
	if tr.Diverged {
		t.Error("stable loop reported divergence")
	}
}

func TestSimulateDeadTime(t *testing.T) {
	m := process.Model{Gain: 1, TimeConstant: 5, DeadTime: 1}

	tr, err := Simulate(m, process.Gains{Kp: 1}, testConfig(3))
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	for i := 0; i <= 100; i++ {
		if tr.Outputs[i] != 0 {
			t.Fatalf("output moved during dead time at t=%f: %f", tr.Times[i], tr.Outputs[i])
		}
	}
	if tr.Outputs[101] <= 0 {
		t.Errorf("output should respond after dead time, got %f", tr.Outputs[101])
	}
	if len(tr.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", tr.Warnings)
	}
}

func TestSimulateDeadTimeRounding(t *testing.T) {
	m := process.Model{Gain: 1, TimeConstant: 5, DeadTime: 0.015}

	tr, err := Simulate(m, process.Gains{Kp: 1}, testConfig(1))
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if len(tr.Warnings) != 1 || !strings.Contains(tr.Warnings[0], "not a multiple") {
		t.Errorf("expected rounding warning, got %v", tr.Warnings)
	}
}

func TestSimulateNonPositiveGain(t *testing.T) {
	m := process.Model{Gain: 1, TimeConstant: 1}

	flat, err := Simulate(m, process.Gains{Kp: 0, Ti: 1}, testConfig(5))
	if err != nil {
		t.Fatalf("zero gain should simulate: %v", err)
	}
	for i, y := range flat.Outputs {
		if y != 0 {
			t.Fatalf("zero gain output moved at %d: %f", i, y)
		}
	}

	tr, err := Simulate(m, process.Gains{Kp: -1000}, testConfig(10))
	if err != nil {
		t.Fatalf("negative gain should simulate: %v", err)
	}
	if !tr.Diverged {
		t.Fatal("expected divergence")
	}
	if tr.Len() >= 1001 || len(tr.Outputs) != tr.Len() || len(tr.Controls) != tr.Len() {
		t.Errorf("expected truncated, aligned trace, got %d/%d/%d", tr.Len(), len(tr.Outputs), len(tr.Controls))
	}
	for i, y := range tr.Outputs {
		if !process.Finite(y) {
			t.Fatalf("non-finite sample kept at %d", i)
		}
	}
}

func TestSimulateConfigurationErrors(t *testing.T) {
	m := process.Model{Gain: 1, TimeConstant: 10, DeadTime: 0.05}
	g := process.Gains{Kp: 1, Ti: 10}

	tests := []struct {
		name  string
		model process.Model
		gains process.Gains
		mod   func(*Config)
		field string
		want  error
	}{
		{"zero dt", m, g, func(c *Config) { c.Dt = 0 }, "dt", process.ErrNonPositive},
		{"negative horizon", m, g, func(c *Config) { c.Horizon = -1 }, "horizon", process.ErrNonPositive},
		{"nan horizon", m, g, func(c *Config) { c.Horizon = math.NaN() }, "horizon", process.ErrNonPositive},
		{"dt above horizon", m, g, func(c *Config) { c.Horizon = 0.01; c.Dt = 0.02 }, "dt", process.ErrCoarseStep},
		{"dt above dead time", m, g, func(c *Config) { c.Dt = 0.1 }, "dt", process.ErrCoarseStep},
		{"dt near tau", process.Model{Gain: 1, TimeConstant: 1}, g, func(c *Config) { c.Dt = 0.5 }, "dt", process.ErrCoarseStep},
		{"below resolution", m, g, func(c *Config) { c.Dt = 1e-7 }, "dt", process.ErrNonPositive},
		{"too many steps", m, g, func(c *Config) { c.MaxSteps = 10 }, "horizon", process.ErrTooManySteps},
		{"invalid model", process.Model{Gain: 1, TimeConstant: 0}, g, func(c *Config) {}, "model", process.ErrInvalidModel},
		{"nan gain", m, process.Gains{Kp: math.NaN()}, func(c *Config) {}, "gains", process.ErrNonFinite},
		{"nan setpoint", m, g, func(c *Config) { c.Setpoint = math.NaN() }, "setpoint", process.ErrNonFinite},
		{"unknown integrator", m, g, func(c *Config) { c.Integrator = "verlet" }, "integrator", process.ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(10)
			tt.mod(&cfg)
			_, err := Simulate(tt.model, tt.gains, cfg)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var cerr *process.ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *ConfigurationError, got %T", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, cerr.Field)
			}
		})
	}
}

func TestSimulateDtOnNanosecondGrid(t *testing.T) {
	m := process.Model{Gain: 1, TimeConstant: 10}
	cfg := testConfig(1)
	cfg.Dt = 0.0123456789

	p, err := resolve(m, cfg)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p.interval != 12345679*time.Nanosecond {
		t.Errorf("expected 12345679ns interval, got %v", p.interval)
	}
	if p.dt != p.interval.Seconds() {
		t.Errorf("plant step %g differs from controller step %g", p.dt, p.interval.Seconds())
	}

	tr, err := Simulate(m, process.Gains{Kp: 1, Ti: 5}, cfg)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if tr.Dt != p.dt {
		t.Errorf("expected trace dt %g, got %g", p.dt, tr.Dt)
	}
}

func TestSimulateClampCoarseStep(t *testing.T) {
	m := process.Model{Gain: 1, TimeConstant: 2}
	cfg := testConfig(10)
	cfg.Dt = 0.5
	cfg.CoarseStep = Clamp

	tr, err := Simulate(m, process.Gains{Kp: 1, Ti: 2}, cfg)
	if err != nil {
		t.Fatalf("clamp policy should not fail: %v", err)
	}
	if math.Abs(tr.Dt-0.2) > 1e-12 {
		t.Errorf("expected dt clamped to 0.2, got %f", tr.Dt)
	}
	if len(tr.Warnings) == 0 || !strings.Contains(tr.Warnings[0], "clamped") {
		t.Errorf("expected clamp warning, got %v", tr.Warnings)
	}
}

func TestSimulateIntegrators(t *testing.T) {
	m := process.Model{Gain: 2, TimeConstant: 10, DeadTime: 1}
	g := process.Gains{Kp: 3, Ti: 10, Td: 0.5}

	cfg := testConfig(60)
	rk4, err := Simulate(m, g, cfg)
	if err != nil {
		t.Fatalf("rk4 failed: %v", err)
	}
	cfg.Integrator = "euler"
	euler, err := Simulate(m, g, cfg)
	if err != nil {
		t.Fatalf("euler failed: %v", err)
	}
	for i := range rk4.Outputs {
		if math.Abs(rk4.Outputs[i]-euler.Outputs[i]) > 0.01 {
			t.Fatalf("integrators disagree at t=%f: %f vs %f", rk4.Times[i], rk4.Outputs[i], euler.Outputs[i])
		}
	}
}

func TestSimulateContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SimulateContext(ctx, process.Model{Gain: 1, TimeConstant: 1}, process.Gains{Kp: 1}, testConfig(10))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMaxStep(t *testing.T) {
	tests := []struct {
		model process.Model
		want  float64
	}{
		{process.Model{Gain: 1, TimeConstant: 10}, 1},
		{process.Model{Gain: 1, TimeConstant: 10, DeadTime: 0.3}, 0.3},
		{process.Model{Gain: 1, TimeConstant: 10, DeadTime: 4}, 1},
	}
	for _, tt := range tests {
		if got := MaxStep(tt.model); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%v: expected %f, got %f", tt.model, tt.want, got)
		}
	}
}
