package tuning

import (
	"fmt"
	"math"

	"github.com/san-kum/pidlab/internal/process"
)

const (
	DefaultDeadTimeFloorRatio = 0.01
	DefaultLambda             = 1.0

	// ITAE integral time is tau/(itaeA - itaeB*theta/tau).
	itaeA = 0.796
	itaeB = 0.1465
)

type Options struct {
	// DeadTimeFloorRatio is the smallest dead time, as a fraction of the
	// time constant, used by rules that divide by dead time.
	DeadTimeFloorRatio float64
}

func DefaultOptions() Options {
	return Options{DeadTimeFloorRatio: DefaultDeadTimeFloorRatio}
}

// Tuning is the result of applying a rule to a model.
type Tuning struct {
	Gains process.Gains `json:"gains"`
	Rule  string        `json:"rule"`
	// Degenerate is set when the model's dead time was below the floor and
	// the floor was used instead.
	Degenerate   bool     `json:"degenerate"`
	DeadTimeUsed float64  `json:"dead_time_used"`
	Notes        []string `json:"notes,omitempty"`
}

func Tune(m process.Model, rule Rule, opts Options) (Tuning, error) {
	if rule == nil {
		return Tuning{}, &process.TuningError{Rule: "none", Model: m, Err: process.ErrInvalidRule}
	}
	if r, ok := rule.(Manual); ok {
		g := r.Gains()
		if !g.IsFinite() {
			return Tuning{}, &process.TuningError{Rule: r.Name(), Model: m, Detail: g.String(), Err: process.ErrNonFinite}
		}
		return Tuning{Gains: g, Rule: r.Name(), DeadTimeUsed: m.DeadTime}, nil
	}

	if err := checkDomain(m, rule); err != nil {
		return Tuning{}, err
	}

	k, tau := m.Gain, m.TimeConstant
	t := Tuning{Rule: rule.Name(), DeadTimeUsed: m.DeadTime}

	theta := m.DeadTime
	if _, ok := rule.(IMC); !ok {
		floor := opts.DeadTimeFloorRatio * tau
		if opts.DeadTimeFloorRatio <= 0 {
			floor = DefaultDeadTimeFloorRatio * tau
		}
		if theta < floor {
			t.Degenerate = true
			t.Notes = append(t.Notes, fmt.Sprintf("dead time %g below floor, using %g", theta, floor))
			theta = floor
			t.DeadTimeUsed = floor
		}
	}
	r := theta / tau

	switch rule := rule.(type) {
	case ZieglerNichols:
		t.Gains = process.Gains{Kp: 1.2 * tau / (k * theta), Ti: 2 * theta, Td: 0.5 * theta}
	case CHROvershoot:
		t.Gains = process.Gains{Kp: 0.95 * tau / (k * theta), Ti: 1.357 * tau, Td: 0.473 * theta}
	case CHRNoOvershoot:
		t.Gains = process.Gains{Kp: 0.6 * tau / (k * theta), Ti: tau, Td: 0.5 * theta}
	case ITAE:
		den := itaeA - itaeB*r
		if den <= 0 {
			return Tuning{}, &process.TuningError{
				Rule: rule.Name(), Model: m, Err: process.ErrModelDomain,
				Detail: fmt.Sprintf("theta/tau=%g must be below %g", r, itaeA/itaeB),
			}
		}
		if r < 0.1 || r > 1 {
			t.Notes = append(t.Notes, fmt.Sprintf("theta/tau=%.3g outside the 0.1-1 fitting range", r))
		}
		t.Gains = process.Gains{
			Kp: 0.965 / k * math.Pow(r, -0.85),
			Ti: tau / den,
			Td: 0.308 * tau * math.Pow(r, 0.929),
		}
	case IMC:
		l := rule.Lambda
		t.Gains = process.Gains{
			Kp: (2*tau + theta) / (k * (2*l + theta)),
			Ti: tau + theta/2,
			Td: tau * theta / (2*tau + theta),
		}
	case CohenCoon:
		t.Gains = process.Gains{
			Kp: (16*tau + 3*theta) / (12 * k * theta),
			Ti: theta * (32 + 6*r) / (13 + 8*r),
			Td: 4 * theta / (11 + 2*r),
		}
	default:
		return Tuning{}, &process.TuningError{Rule: rule.Name(), Model: m, Err: process.ErrInvalidRule}
	}

	if !t.Gains.IsFinite() || !(t.Gains.Kp > 0) {
		return Tuning{}, &process.TuningError{Rule: rule.Name(), Model: m, Detail: t.Gains.String(), Err: process.ErrNonFinite}
	}
	return t, nil
}

func checkDomain(m process.Model, rule Rule) error {
	var detail string
	switch {
	case !process.Finite(m.Gain) || m.Gain <= 0:
		detail = fmt.Sprintf("gain %g must be positive", m.Gain)
	case !process.Finite(m.TimeConstant) || m.TimeConstant <= 0:
		detail = fmt.Sprintf("time constant %g must be positive", m.TimeConstant)
	case !process.Finite(m.DeadTime) || m.DeadTime < 0:
		detail = fmt.Sprintf("dead time %g must be non-negative", m.DeadTime)
	}
	if r, ok := rule.(IMC); ok && detail == "" && (!process.Finite(r.Lambda) || r.Lambda <= 0) {
		detail = fmt.Sprintf("lambda %g must be positive", r.Lambda)
	}
	if detail == "" {
		return nil
	}
	return &process.TuningError{Rule: rule.Name(), Model: m, Detail: detail, Err: process.ErrModelDomain}
}
