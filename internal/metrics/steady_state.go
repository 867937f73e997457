package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/pidlab/internal/process"
)

// SteadyStateError compares the mean of the trailing window with the
// setpoint.
type SteadyStateError struct {
	name     string
	setpoint float64
	window   []float64
	n        int
}

func NewSteadyStateError(setpoint float64, window int) *SteadyStateError {
	if window < 1 {
		window = 1
	}
	return &SteadyStateError{
		name:     "steady_state_error",
		setpoint: setpoint,
		window:   make([]float64, window),
	}
}

func (s *SteadyStateError) Name() string { return s.name }

func (s *SteadyStateError) Observe(t, y float64) {
	s.window[s.n%len(s.window)] = y
	s.n++
}

func (s *SteadyStateError) Value() process.Measurement {
	if s.n == 0 {
		return process.NotReached()
	}
	filled := s.window
	if s.n < len(s.window) {
		filled = s.window[:s.n]
	}
	return process.Reached(saturate(math.Abs(s.setpoint - stat.Mean(filled, nil))))
}

func (s *SteadyStateError) Reset() {
	for i := range s.window {
		s.window[i] = 0
	}
	s.n = 0
}
