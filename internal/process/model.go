package process

import (
	"fmt"
	"math"
)

// Model is a First-Order-Plus-Dead-Time approximation
//
//	G(s) = Gain * exp(-DeadTime*s) / (TimeConstant*s + 1)
type Model struct {
	Gain         float64 `json:"gain" yaml:"gain"`
	TimeConstant float64 `json:"time_constant" yaml:"time_constant"`
	DeadTime     float64 `json:"dead_time" yaml:"dead_time"`
}

func (m Model) Validate() error {
	switch {
	case !finite(m.Gain):
		return fmt.Errorf("%w: gain %g", ErrInvalidModel, m.Gain)
	case !finite(m.TimeConstant) || m.TimeConstant <= 0:
		return fmt.Errorf("%w: time constant %g", ErrInvalidModel, m.TimeConstant)
	case !finite(m.DeadTime) || m.DeadTime < 0:
		return fmt.Errorf("%w: dead time %g", ErrInvalidModel, m.DeadTime)
	}
	return nil
}

// StepResponse is the deviation from the pre-step output at elapsed time t
// after an input step of size du.
func (m Model) StepResponse(t, du float64) float64 {
	if t <= m.DeadTime {
		return 0
	}
	return m.Gain * du * (1 - math.Exp(-(t-m.DeadTime)/m.TimeConstant))
}

// Ratio returns the normalized dead time θ/τ.
func (m Model) Ratio() float64 {
	return m.DeadTime / m.TimeConstant
}

func (m Model) String() string {
	return fmt.Sprintf("k=%.4g tau=%.4g theta=%.4g", m.Gain, m.TimeConstant, m.DeadTime)
}

// FitResult is a candidate model and its root-mean-square deviation from
// the curve it was estimated from.
type FitResult struct {
	Model  Model   `json:"model"`
	RMSE   float64 `json:"rmse"`
	Method string  `json:"method"`
}
