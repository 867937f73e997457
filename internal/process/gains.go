package process

import (
	"fmt"
	"math"
)

// Gains are ideal (ISA) form PID parameters:
//
//	u = Kp * (e + 1/Ti * ∫e dt + Td * de/dt)
//
// Ti <= 0 or +Inf disables integral action.
type Gains struct {
	Kp float64 `json:"kp" yaml:"kp"`
	Ti float64 `json:"ti" yaml:"ti"`
	Td float64 `json:"td" yaml:"td"`
}

func (g Gains) IsFinite() bool {
	return Finite(g.Kp, g.Ti, g.Td)
}

func (g Gains) HasIntegral() bool {
	return g.Ti > 0 && !math.IsInf(g.Ti, 1)
}

// Parallel converts to independent proportional, integral and derivative
// gains.
func (g Gains) Parallel() (kp, ki, kd float64) {
	kp = g.Kp
	if g.HasIntegral() {
		ki = g.Kp / g.Ti
	}
	kd = g.Kp * g.Td
	return kp, ki, kd
}

func (g Gains) String() string {
	return fmt.Sprintf("Kp=%.4g Ti=%.4g Td=%.4g", g.Kp, g.Ti, g.Td)
}
