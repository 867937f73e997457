package process

import (
	"fmt"
	"math"
)

// ReactionCurve is an open-loop step response: the output sampled after a
// step of StepMagnitude was applied to the input at StepTime.
type ReactionCurve struct {
	Times         []float64 `json:"times"`
	Outputs       []float64 `json:"outputs"`
	StepMagnitude float64   `json:"step_magnitude"`
	InitialOutput float64   `json:"initial_output"`
	StepTime      float64   `json:"step_time"`
}

// NewReactionCurve copies the samples, takes the first output as the
// pre-step level and validates the result.
func NewReactionCurve(times, outputs []float64, step float64) (ReactionCurve, error) {
	c := ReactionCurve{
		Times:         append([]float64(nil), times...),
		Outputs:       append([]float64(nil), outputs...),
		StepMagnitude: step,
	}
	if len(outputs) > 0 {
		c.InitialOutput = outputs[0]
	}
	if len(times) > 0 {
		c.StepTime = times[0]
	}
	if err := c.Validate(); err != nil {
		return ReactionCurve{}, err
	}
	return c, nil
}

func (c ReactionCurve) Validate() error {
	if len(c.Times) != len(c.Outputs) {
		return &EstimationError{
			Err:    ErrLengthMismatch,
			Detail: fmt.Sprintf("%d times, %d outputs", len(c.Times), len(c.Outputs)),
		}
	}
	if len(c.Times) < 2 {
		return &EstimationError{Err: ErrInsufficientSamples, Detail: fmt.Sprintf("got %d", len(c.Times))}
	}
	if c.StepMagnitude == 0 || !finite(c.StepMagnitude) {
		return &EstimationError{Err: ErrZeroStep, Detail: fmt.Sprintf("got %g", c.StepMagnitude)}
	}
	if !finite(c.InitialOutput) || !finite(c.StepTime) {
		return &EstimationError{Err: ErrNonFiniteSample, Detail: "initial output or step time"}
	}
	for i := range c.Times {
		if !finite(c.Times[i]) || !finite(c.Outputs[i]) {
			return &EstimationError{Err: ErrNonFiniteSample, Detail: fmt.Sprintf("index %d", i)}
		}
		if i > 0 && c.Times[i] <= c.Times[i-1] {
			return &EstimationError{
				Err:    ErrNonMonotonicTime,
				Detail: fmt.Sprintf("t[%d]=%g after t[%d]=%g", i, c.Times[i], i-1, c.Times[i-1]),
			}
		}
	}
	return nil
}

func (c ReactionCurve) Len() int {
	return len(c.Times)
}

// Span returns the output range max-min over all samples.
func (c ReactionCurve) Span() float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, y := range c.Outputs {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	return hi - lo
}

// Elapsed returns sample times measured from the step instant.
func (c ReactionCurve) Elapsed() []float64 {
	out := make([]float64, len(c.Times))
	for i, t := range c.Times {
		out[i] = t - c.StepTime
	}
	return out
}
