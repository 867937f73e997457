package metrics

import (
	"math"

	"github.com/san-kum/pidlab/internal/process"
)

// Criterion selects an error integral.
type Criterion int

const (
	IAE Criterion = iota
	ISE
	ITAE
)

func (c Criterion) String() string {
	switch c {
	case IAE:
		return "iae"
	case ISE:
		return "ise"
	case ITAE:
		return "itae"
	}
	return "unknown"
}

// ErrorIntegral accumulates a trapezoidal error integral.
type ErrorIntegral struct {
	criterion Criterion
	setpoint  float64

	started bool
	prevT   float64
	prevF   float64
	sum     float64
}

func NewErrorIntegral(c Criterion, setpoint float64) *ErrorIntegral {
	return &ErrorIntegral{criterion: c, setpoint: setpoint}
}

func (e *ErrorIntegral) Name() string { return e.criterion.String() }

func (e *ErrorIntegral) integrand(t, y float64) float64 {
	err := e.setpoint - y
	switch e.criterion {
	case ISE:
		return err * err
	case ITAE:
		return t * math.Abs(err)
	default:
		return math.Abs(err)
	}
}

func (e *ErrorIntegral) Observe(t, y float64) {
	f := e.integrand(t, y)
	if e.started {
		e.sum += 0.5 * (f + e.prevF) * (t - e.prevT)
	}
	e.started = true
	e.prevT, e.prevF = t, f
}

func (e *ErrorIntegral) Value() process.Measurement {
	if !e.started {
		return process.NotReached()
	}
	return process.Reached(e.sum)
}

func (e *ErrorIntegral) Reset() {
	*e = ErrorIntegral{criterion: e.criterion, setpoint: e.setpoint}
}

// Integrals holds the three classic error integrals of a trace.
type Integrals struct {
	IAE  float64 `json:"iae"`
	ISE  float64 `json:"ise"`
	ITAE float64 `json:"itae"`
}

func (in Integrals) Get(c Criterion) float64 {
	switch c {
	case ISE:
		return in.ISE
	case ITAE:
		return in.ITAE
	default:
		return in.IAE
	}
}

// ComputeIntegrals integrates the error of tr against setpoint. Integrals
// that overflow saturate at math.MaxFloat64.
func ComputeIntegrals(tr process.Trace, setpoint float64) Integrals {
	iae := NewErrorIntegral(IAE, setpoint)
	ise := NewErrorIntegral(ISE, setpoint)
	itae := NewErrorIntegral(ITAE, setpoint)
	Feed(tr, iae, ise, itae)
	return Integrals{
		IAE:  saturate(iae.Value().Value),
		ISE:  saturate(ise.Value().Value),
		ITAE: saturate(itae.Value().Value),
	}
}

func saturate(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.MaxFloat64
	}
	return v
}

func ParseCriterion(s string) (Criterion, bool) {
	for _, c := range []Criterion{IAE, ISE, ITAE} {
		if c.String() == s {
			return c, true
		}
	}
	return IAE, false
}
