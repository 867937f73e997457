package identify

import "github.com/san-kum/pidlab/internal/process"

// Report is the full outcome of identifying a curve.
type Report struct {
	Best       process.FitResult   `json:"best"`
	Scores     []process.FitResult `json:"scores"`
	Candidates []Candidate         `json:"-"`
}

// Identify estimates every candidate model and selects the best fit.
func Identify(curve process.ReactionCurve, opts Options) (process.FitResult, error) {
	r, err := Run(curve, opts)
	if err != nil {
		return process.FitResult{}, err
	}
	return r.Best, nil
}

// Run is Identify, keeping every candidate and score for reporting.
func Run(curve process.ReactionCurve, opts Options) (Report, error) {
	candidates, err := Estimate(curve, opts)
	if err != nil {
		return Report{}, err
	}
	scores, failures := Score(curve, candidates)
	if len(scores) == 0 {
		return Report{Candidates: candidates}, &process.SelectionError{Failures: failures}
	}
	return Report{Best: best(scores), Scores: scores, Candidates: candidates}, nil
}
