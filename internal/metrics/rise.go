package metrics

import "github.com/san-kum/pidlab/internal/process"

type RiseTime struct {
	name      string
	setpoint  float64
	low, high float64

	started      bool
	y0, delta    float64
	prevT, prevP float64
	tLow, tHigh  float64
	hasLow       bool
	hasHigh      bool
}

func NewRiseTime(setpoint, low, high float64) *RiseTime {
	return &RiseTime{name: "rise_time", setpoint: setpoint, low: low, high: high}
}

func (r *RiseTime) Name() string { return r.name }

func (r *RiseTime) Observe(t, y float64) {
	if !r.started {
		r.started = true
		r.y0 = y
		r.delta = r.setpoint - y
	}
	if r.delta == 0 || r.hasHigh {
		return
	}

	p := (y - r.y0) / r.delta
	if !r.hasLow && p >= r.low {
		r.tLow, r.hasLow = r.cross(t, p, r.low), true
	}
	if p >= r.high {
		r.tHigh, r.hasHigh = r.cross(t, p, r.high), true
	}
	r.prevT, r.prevP = t, p
}

func (r *RiseTime) cross(t, p, fraction float64) float64 {
	if t == r.prevT || p == r.prevP {
		return t
	}
	return r.prevT + (fraction-r.prevP)/(p-r.prevP)*(t-r.prevT)
}

func (r *RiseTime) Value() process.Measurement {
	if !r.hasHigh {
		return process.NotReached()
	}
	return process.Reached(r.tHigh - r.tLow)
}

func (r *RiseTime) Reset() {
	*r = RiseTime{name: r.name, setpoint: r.setpoint, low: r.low, high: r.high}
}
