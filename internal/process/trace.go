package process

// Trace is a closed-loop step response sampled every Dt from t=0.
// Outputs and Controls are deviations from the pre-step operating point.
// Diverged is set when the output or the controller output became
// non-finite; the trace then ends at the last finite sample.
type Trace struct {
	Times    []float64 `json:"times"`
	Outputs  []float64 `json:"outputs"`
	Controls []float64 `json:"controls"`
	Setpoint float64   `json:"setpoint"`
	Dt       float64   `json:"dt"`
	Diverged bool      `json:"diverged"`
	Warnings []string  `json:"warnings,omitempty"`
}

func (t Trace) Len() int {
	return len(t.Times)
}

func (t Trace) Duration() float64 {
	if len(t.Times) == 0 {
		return 0
	}
	return t.Times[len(t.Times)-1]
}

// Final returns the last output sample, or 0 for an empty trace.
func (t Trace) Final() float64 {
	if len(t.Outputs) == 0 {
		return 0
	}
	return t.Outputs[len(t.Outputs)-1]
}
