package identify

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/pidlab/internal/process"
)

// Candidate is the outcome of one method on one curve. Exactly one of
// Model and Err is meaningful.
type Candidate struct {
	Method  string
	Model   process.Model
	T1, T2  float64
	Clamped bool
	Err     error
}

func (c Candidate) OK() bool {
	return c.Err == nil
}

// Estimate applies every configured method to the curve. A curve-level
// failure (invalid samples, flat response) is returned as the error;
// per-method failures are carried in the candidates.
func Estimate(curve process.ReactionCurve, opts Options) ([]Candidate, error) {
	opts = opts.withDefaults()

	if err := curve.Validate(); err != nil {
		return nil, err
	}

	final := FinalValue(curve.Outputs, opts.FinalWindow)
	if opts.FinalOutput != nil {
		final = *opts.FinalOutput
	}
	dy := final - curve.InitialOutput
	floor := flatFloor * math.Max(1, math.Abs(curve.InitialOutput))
	if math.Abs(dy) <= floor || math.Abs(dy) < opts.MinAmplitude*curve.Span() {
		return nil, &process.EstimationError{
			Err:    process.ErrFlatCurve,
			Detail: fmt.Sprintf("change %g over range %g", dy, curve.Span()),
		}
	}

	elapsed := curve.Elapsed()
	progress := make([]float64, len(curve.Outputs))
	for i, y := range curve.Outputs {
		progress[i] = (y - curve.InitialOutput) / dy
	}

	gain := dy / curve.StepMagnitude
	candidates := make([]Candidate, len(opts.Methods))
	for i, m := range opts.Methods {
		candidates[i] = estimate(m, elapsed, progress, gain)
	}
	return candidates, nil
}

func estimate(m Method, elapsed, progress []float64, gain float64) Candidate {
	c := Candidate{Method: m.Name}

	t1, ok := Crossing(elapsed, progress, m.Low)
	if !ok {
		c.Err = notCrossed(m, m.Low)
		return c
	}
	t2, ok := Crossing(elapsed, progress, m.High)
	if !ok {
		c.Err = notCrossed(m, m.High)
		return c
	}
	c.T1, c.T2 = t1, t2

	tau, theta := m.fit(t1, t2)
	if !(tau > 0) {
		c.Err = &process.EstimationError{
			Method: m.Name,
			Err:    process.ErrDegenerateCurve,
			Detail: fmt.Sprintf("t1=%g t2=%g", t1, t2),
		}
		return c
	}
	if theta < 0 {
		theta = 0
		c.Clamped = true
	}

	c.Model = process.Model{Gain: gain, TimeConstant: tau, DeadTime: theta}
	return c
}

func notCrossed(m Method, fraction float64) error {
	return &process.EstimationError{
		Method: m.Name,
		Err:    process.ErrThresholdNotCrossed,
		Detail: fmt.Sprintf("%.1f%%", fraction*100),
	}
}

// Crossing returns the time at which progress first reaches fraction,
// interpolated linearly against the previous sample.
func Crossing(times, progress []float64, fraction float64) (float64, bool) {
	for i, p := range progress {
		if p < fraction {
			continue
		}
		if i == 0 {
			return times[0], true
		}
		prev := progress[i-1]
		return times[i-1] + (fraction-prev)/(p-prev)*(times[i]-times[i-1]), true
	}
	return 0, false
}

// FinalValue averages the last window samples.
func FinalValue(outputs []float64, window int) float64 {
	if window < 1 {
		window = 1
	}
	if window > len(outputs) {
		window = len(outputs)
	}
	return stat.Mean(outputs[len(outputs)-window:], nil)
}
