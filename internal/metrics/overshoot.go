package metrics

import (
	"math"

	"github.com/san-kum/pidlab/internal/process"
)

// Overshoot is the peak excursion past the setpoint, in percent of the
// commanded change. It is undefined when the trace starts at the setpoint.
type Overshoot struct {
	name     string
	setpoint float64

	started bool
	delta   float64
	excess  float64
}

func NewOvershoot(setpoint float64) *Overshoot {
	return &Overshoot{name: "overshoot_percent", setpoint: setpoint}
}

func (o *Overshoot) Name() string { return o.name }

func (o *Overshoot) Observe(t, y float64) {
	if !o.started {
		o.started = true
		o.delta = o.setpoint - y
	}
	if o.delta == 0 {
		return
	}
	excess := (y - o.setpoint) * math.Copysign(1, o.delta)
	o.excess = math.Max(o.excess, excess)
}

func (o *Overshoot) Value() process.Measurement {
	if !o.started || o.delta == 0 {
		return process.NotReached()
	}
	return process.Reached(saturate(o.excess / math.Abs(o.delta) * 100))
}

func (o *Overshoot) Reset() {
	*o = Overshoot{name: o.name, setpoint: o.setpoint}
}
