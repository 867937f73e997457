package identify

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/pidlab/internal/process"
	"github.com/san-kum/pidlab/internal/sim"
)

// Fitted is the response of m to the curve's step, on the curve's own
// sample times.
func Fitted(curve process.ReactionCurve, m process.Model) []float64 {
	return sim.OpenLoop(m, curve.Elapsed(), curve.StepMagnitude, curve.InitialOutput)
}

// RMSE is the root-mean-square deviation of m from the curve.
func RMSE(curve process.ReactionCurve, m process.Model) float64 {
	fitted := Fitted(curve, m)
	return floats.Distance(fitted, curve.Outputs, 2) / math.Sqrt(float64(len(fitted)))
}

// Score returns a fit result for every successful candidate, in candidate
// order, and the failures of the rest.
func Score(curve process.ReactionCurve, candidates []Candidate) ([]process.FitResult, []error) {
	var (
		results  []process.FitResult
		failures []error
	)
	for _, c := range candidates {
		if !c.OK() {
			failures = append(failures, c.Err)
			continue
		}
		results = append(results, process.FitResult{
			Model:  c.Model,
			RMSE:   RMSE(curve, c.Model),
			Method: c.Method,
		})
	}
	return results, failures
}

// Select returns the candidate with the lowest RMSE. A later candidate
// must improve on the incumbent by more than a relative tolerance, so
// earlier methods win ties.
func Select(curve process.ReactionCurve, candidates []Candidate) (process.FitResult, error) {
	results, failures := Score(curve, candidates)
	if len(results) == 0 {
		return process.FitResult{}, &process.SelectionError{Failures: failures}
	}
	return best(results), nil
}

func best(results []process.FitResult) process.FitResult {
	b := results[0]
	for _, r := range results[1:] {
		if r.RMSE < b.RMSE*(1-tieTolerance) {
			b = r
		}
	}
	return b
}
