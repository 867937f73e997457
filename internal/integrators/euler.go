package integrators

import "github.com/san-kum/pidlab/internal/process"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(sys process.System, x process.State, u process.Control, t float64, dt float64) process.State {
	dx := sys.Derive(x, u, t)
	result := make(process.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
