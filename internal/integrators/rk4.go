package integrators

import "github.com/san-kum/pidlab/internal/process"

// RK4 is the classic fourth-order Runge-Kutta step. Stage buffers are
// reused across calls, so an RK4 value must not be shared between
// goroutines.
type RK4 struct {
	k1, k2, k3, k4 process.State
	scratch        process.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(process.State, n)
		r.k2 = make(process.State, n)
		r.k3 = make(process.State, n)
		r.k4 = make(process.State, n)
		r.scratch = make(process.State, n)
	}
}

func (r *RK4) Step(sys process.System, x process.State, u process.Control, t, dt float64) process.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, sys.Derive(x, u, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	copy(r.k2, sys.Derive(r.scratch, u, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, sys.Derive(r.scratch, u, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, sys.Derive(r.scratch, u, t+dt))

	result := make(process.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}
