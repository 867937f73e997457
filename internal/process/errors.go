package process

import (
	"errors"
	"fmt"
	"strings"
)

// Estimation errors.
var (
	ErrInsufficientSamples = errors.New("process: reaction curve needs at least 2 samples")
	ErrLengthMismatch      = errors.New("process: times and outputs differ in length")
	ErrNonMonotonicTime    = errors.New("process: sample times must be strictly increasing")
	ErrNonFiniteSample     = errors.New("process: sample is NaN or Inf")
	ErrZeroStep            = errors.New("process: step magnitude must be non-zero and finite")
	ErrFlatCurve           = errors.New("process: output change is below the noise floor")
	ErrThresholdNotCrossed = errors.New("process: response never reaches threshold")
	ErrDegenerateCurve     = errors.New("process: threshold crossings coincide")
)

// Selection errors.
var (
	ErrNoCandidate = errors.New("process: no candidate model could be fitted")
)

// Tuning errors.
var (
	ErrModelDomain = errors.New("process: model outside the rule's domain")
	ErrNonFinite   = errors.New("process: gain is NaN or Inf")
	ErrInvalidRule = errors.New("process: invalid tuning rule")
)

// Configuration errors.
var (
	ErrInvalidModel = errors.New("process: invalid FOPDT model")
	ErrNonPositive  = errors.New("process: value must be finite and positive")
	ErrCoarseStep   = errors.New("process: step size too coarse for the plant")
	ErrTooManySteps = errors.New("process: horizon needs too many steps")
	ErrUnsupported  = errors.New("process: unsupported option")
)

// EstimationError reports a failure to validate a curve or to derive a
// candidate model from it. Method is empty for curve-level failures.
type EstimationError struct {
	Method string
	Detail string
	Err    error
}

func (e *EstimationError) Error() string {
	stage := "estimation"
	if e.Method != "" {
		stage += " (" + e.Method + ")"
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %v: %s", stage, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %v", stage, e.Err)
}

func (e *EstimationError) Unwrap() error {
	return e.Err
}

// SelectionError is returned when every estimation method failed.
type SelectionError struct {
	Failures []error
}

func (e *SelectionError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("selection: %v: [%s]", ErrNoCandidate, strings.Join(msgs, "; "))
}

func (e *SelectionError) Unwrap() []error {
	return append([]error{ErrNoCandidate}, e.Failures...)
}

type TuningError struct {
	Rule   string
	Model  Model
	Detail string
	Err    error
}

func (e *TuningError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("tuning (%s) %v: %v: %s", e.Rule, e.Model, e.Err, e.Detail)
	}
	return fmt.Sprintf("tuning (%s) %v: %v", e.Rule, e.Model, e.Err)
}

func (e *TuningError) Unwrap() error {
	return e.Err
}

// ConfigurationError rejects simulation parameters before any step is taken.
type ConfigurationError struct {
	Field  string
	Value  float64
	Detail string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("configuration: %s=%g: %v: %s", e.Field, e.Value, e.Err, e.Detail)
	}
	return fmt.Sprintf("configuration: %s=%g: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
