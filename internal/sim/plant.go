package sim

import "github.com/san-kum/pidlab/internal/process"

// Plant is the delay-free part of an FOPDT model, dy/dt = (k*u - y)/tau.
// Dead time is applied to the input by a DelayLine.
type Plant struct {
	model process.Model
	dx    process.State
}

func NewPlant(m process.Model) *Plant {
	return &Plant{model: m, dx: make(process.State, 1)}
}

func (p *Plant) Derive(x process.State, u process.Control, t float64) process.State {
	p.dx[0] = (p.model.Gain*u[0] - x[0]) / p.model.TimeConstant
	return p.dx
}

func (p *Plant) StateDim() int   { return 1 }
func (p *Plant) ControlDim() int { return 1 }
