package sim

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/san-kum/pidlab/internal/process"
)

// OpenLoop returns the exact response of m to an input step of size du
// applied at elapsed time 0, sampled at the given elapsed times and offset
// by the pre-step output y0.
func OpenLoop(m process.Model, elapsed []float64, du, y0 float64) []float64 {
	out := make([]float64, len(elapsed))
	for i, t := range elapsed {
		out[i] = y0 + m.StepResponse(t, du)
	}
	return out
}

// StepTest describes a synthetic open-loop experiment on a known model.
type StepTest struct {
	Model         process.Model
	StepMagnitude float64
	InitialOutput float64
	Horizon       float64
	Dt            float64
	// Noise is the standard deviation of additive Gaussian measurement noise.
	Noise float64
	Seed  uint64
}

// Synthesize produces the reaction curve StepTest would measure.
func Synthesize(st StepTest) (process.ReactionCurve, error) {
	if err := st.Model.Validate(); err != nil {
		return process.ReactionCurve{}, &process.ConfigurationError{Field: "model", Detail: st.Model.String(), Err: err}
	}
	if !process.Finite(st.Horizon) || st.Horizon <= 0 {
		return process.ReactionCurve{}, &process.ConfigurationError{Field: "horizon", Value: st.Horizon, Err: process.ErrNonPositive}
	}
	if !process.Finite(st.Dt) || st.Dt <= 0 || st.Dt >= st.Horizon {
		return process.ReactionCurve{}, &process.ConfigurationError{Field: "dt", Value: st.Dt, Err: process.ErrNonPositive}
	}
	if !process.Finite(st.Noise) || st.Noise < 0 {
		return process.ReactionCurve{}, &process.ConfigurationError{Field: "noise", Value: st.Noise, Err: process.ErrNonPositive}
	}

	n := int(math.Floor(st.Horizon/st.Dt+1e-9)) + 1
	if n > DefaultMaxSteps {
		return process.ReactionCurve{}, &process.ConfigurationError{
			Field: "horizon", Value: st.Horizon, Err: process.ErrTooManySteps,
			Detail: fmt.Sprintf("%d samples", n),
		}
	}
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * st.Dt
	}
	outputs := OpenLoop(st.Model, times, st.StepMagnitude, st.InitialOutput)

	if st.Noise > 0 {
		rng := rand.New(rand.NewPCG(st.Seed, st.Seed^0x9e3779b97f4a7c15))
		for i := range outputs {
			outputs[i] += st.Noise * rng.NormFloat64()
		}
	}

	c := process.ReactionCurve{
		Times:         times,
		Outputs:       outputs,
		StepMagnitude: st.StepMagnitude,
		InitialOutput: st.InitialOutput,
	}
	if err := c.Validate(); err != nil {
		return process.ReactionCurve{}, err
	}
	return c, nil
}
