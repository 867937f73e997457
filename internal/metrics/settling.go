package metrics

import (
	"math"

	"github.com/san-kum/pidlab/internal/process"
)

type SettlingTime struct {
	name     string
	setpoint float64
	band     float64

	started bool
	tol     float64
	settled bool
	since   float64
}

func NewSettlingTime(setpoint, band float64) *SettlingTime {
	return &SettlingTime{name: "settling_time", setpoint: setpoint, band: band}
}

func (s *SettlingTime) Name() string { return s.name }

func (s *SettlingTime) Observe(t, y float64) {
	if !s.started {
		s.started = true
		ref := math.Abs(s.setpoint - y)
		if ref == 0 {
			ref = math.Abs(s.setpoint)
		}
		s.tol = s.band * ref
	}

	if math.Abs(y-s.setpoint) > s.tol {
		s.settled = false
		return
	}
	if !s.settled {
		s.settled = true
		s.since = t
	}
}

func (s *SettlingTime) Value() process.Measurement {
	if !s.settled {
		return process.NotReached()
	}
	return process.Reached(s.since)
}

func (s *SettlingTime) Reset() {
	*s = SettlingTime{name: s.name, setpoint: s.setpoint, band: s.band}
}
