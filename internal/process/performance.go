package process

import "fmt"

// Measurement is a metric value. Reached is false when the quantity was
// not attained within the simulation horizon or is undefined for the
// trace; Value is then meaningless and held at zero.
type Measurement struct {
	Value   float64 `json:"value"`
	Reached bool    `json:"reached"`
}

func Reached(v float64) Measurement {
	return Measurement{Value: v, Reached: true}
}

func NotReached() Measurement {
	return Measurement{}
}

func (m Measurement) String() string {
	if !m.Reached {
		return "not reached"
	}
	return fmt.Sprintf("%.4g", m.Value)
}

// Performance holds transient-response metrics of a closed-loop trace.
type Performance struct {
	RiseTime         Measurement `json:"rise_time"`
	SettlingTime     Measurement `json:"settling_time"`
	OvershootPercent Measurement `json:"overshoot_percent"`
	SteadyStateError Measurement `json:"steady_state_error"`
}
