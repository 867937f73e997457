package process

import "math"

type State []float64

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Control []float64

// System is an ODE dX/dt = f(X, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Name() string
	Step(sys System, x State, u Control, t float64, dt float64) State
}

// Metric accumulates one transient measurement from a stream of samples.
// Observe must be called with non-decreasing t.
type Metric interface {
	Name() string
	Observe(t, y float64)
	Value() Measurement
	Reset()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Finite reports whether every value is neither NaN nor infinite.
func Finite(vs ...float64) bool {
	for _, v := range vs {
		if !finite(v) {
			return false
		}
	}
	return true
}
