package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/pidlab/internal/process"
)

const (
	DefaultSetpoint = 1.0
	DefaultHorizon  = 100.0
	DefaultDt       = 0.01
	DefaultMaxSteps = 10_000_000

	// MinDt is the smallest accepted step. Dt itself is rounded to whole
	// nanoseconds, the resolution of the controller's sampling interval,
	// so the plant and the controller advance by the same step.
	MinDt = 1e-6

	// MaxStepRatio bounds Dt relative to the plant time constant.
	MaxStepRatio = 0.1
)

// CoarseStep selects what happens when Dt is too large for the plant.
type CoarseStep int

const (
	// Reject fails with a ConfigurationError.
	Reject CoarseStep = iota
	// Clamp reduces Dt to the largest acceptable step and records a warning.
	Clamp
)

func (c CoarseStep) String() string {
	switch c {
	case Reject:
		return "reject"
	case Clamp:
		return "clamp"
	default:
		return fmt.Sprintf("CoarseStep(%d)", int(c))
	}
}

func ParseCoarseStep(s string) (CoarseStep, error) {
	switch s {
	case "", "reject":
		return Reject, nil
	case "clamp":
		return Clamp, nil
	}
	return Reject, fmt.Errorf("unknown coarse step policy: %s", s)
}

type Config struct {
	Setpoint   float64
	Horizon    float64
	Dt         float64
	Integrator string
	CoarseStep CoarseStep
	MaxSteps   int
}

func DefaultConfig() Config {
	return Config{
		Setpoint:   DefaultSetpoint,
		Horizon:    DefaultHorizon,
		Dt:         DefaultDt,
		Integrator: "rk4",
		CoarseStep: Reject,
		MaxSteps:   DefaultMaxSteps,
	}
}

// plan is a validated configuration resolved against one model.
type plan struct {
	dt       float64
	interval time.Duration
	steps    int
	delay    int
	warnings []string
}

// MaxStep returns the largest step the simulator accepts for m.
func MaxStep(m process.Model) float64 {
	limit := MaxStepRatio * m.TimeConstant
	if m.DeadTime > 0 && m.DeadTime < limit {
		limit = m.DeadTime
	}
	return limit
}

func resolve(m process.Model, cfg Config) (plan, error) {
	var p plan

	if err := m.Validate(); err != nil {
		return p, &process.ConfigurationError{Field: "model", Detail: m.String(), Err: err}
	}
	if !process.Finite(cfg.Setpoint) {
		return p, &process.ConfigurationError{Field: "setpoint", Value: cfg.Setpoint, Err: process.ErrNonFinite}
	}
	if !process.Finite(cfg.Horizon) || cfg.Horizon <= 0 {
		return p, &process.ConfigurationError{Field: "horizon", Value: cfg.Horizon, Err: process.ErrNonPositive}
	}
	if !process.Finite(cfg.Dt) || cfg.Dt <= 0 {
		return p, &process.ConfigurationError{Field: "dt", Value: cfg.Dt, Err: process.ErrNonPositive}
	}
	if cfg.Dt >= cfg.Horizon {
		return p, &process.ConfigurationError{
			Field: "dt", Value: cfg.Dt, Err: process.ErrCoarseStep,
			Detail: fmt.Sprintf("must be smaller than horizon %g", cfg.Horizon),
		}
	}

	p.dt = cfg.Dt
	if limit := MaxStep(m); p.dt > limit {
		if cfg.CoarseStep != Clamp {
			return p, &process.ConfigurationError{
				Field: "dt", Value: cfg.Dt, Err: process.ErrCoarseStep,
				Detail: fmt.Sprintf("limit is %g for %v", limit, m),
			}
		}
		p.dt = limit
		p.warnings = append(p.warnings, fmt.Sprintf("dt clamped from %g to %g", cfg.Dt, limit))
	}
	if p.dt < MinDt {
		return p, &process.ConfigurationError{
			Field: "dt", Value: p.dt, Err: process.ErrNonPositive,
			Detail: fmt.Sprintf("below controller resolution %g", MinDt),
		}
	}

	p.interval = time.Duration(math.Round(p.dt * float64(time.Second)))
	p.dt = p.interval.Seconds()

	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	n := math.Ceil(cfg.Horizon/p.dt - 1e-9)
	if n > float64(maxSteps) {
		return p, &process.ConfigurationError{
			Field: "horizon", Value: cfg.Horizon, Err: process.ErrTooManySteps,
			Detail: fmt.Sprintf("%.0f steps of %g exceed %d", n, p.dt, maxSteps),
		}
	}
	p.steps = int(n)

	ratio := m.DeadTime / p.dt
	p.delay = int(math.Round(ratio))
	if math.Abs(ratio-float64(p.delay)) > 1e-6 {
		p.warnings = append(p.warnings, fmt.Sprintf(
			"dead time %g is not a multiple of dt %g, using %g", m.DeadTime, p.dt, float64(p.delay)*p.dt))
	}

	return p, nil
}
