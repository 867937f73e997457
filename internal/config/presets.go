package config

import (
	"sort"

	"github.com/san-kum/pidlab/internal/process"
	"github.com/san-kum/pidlab/internal/sim"
)

// Preset is a synthetic plant for step tests and demos.
type Preset struct {
	Description   string
	Model         process.Model
	StepMagnitude float64
	InitialOutput float64
	Horizon       float64
	Dt            float64
	Noise         float64
}

var Presets = map[string]*Preset{
	"lag-dominant": {
		Description:   "fast dead time, slow lag (theta/tau = 0.1)",
		Model:         process.Model{Gain: 2, TimeConstant: 10, DeadTime: 1},
		StepMagnitude: 1,
		Horizon:       100,
		Dt:            0.1,
	},
	"balanced": {
		Description:   "theta/tau = 0.4",
		Model:         process.Model{Gain: 2, TimeConstant: 10, DeadTime: 4},
		StepMagnitude: 1,
		Horizon:       120,
		Dt:            0.1,
	},
	"delay-dominant": {
		Description:   "dead time longer than the lag (theta/tau = 1.5)",
		Model:         process.Model{Gain: 1, TimeConstant: 4, DeadTime: 6},
		StepMagnitude: 1,
		Horizon:       60,
		Dt:            0.05,
	},
	"thermal": {
		Description:   "oven-like plant: 10% heater step, 25 degC ambient",
		Model:         process.Model{Gain: 1.5, TimeConstant: 20, DeadTime: 5},
		StepMagnitude: 10,
		InitialOutput: 25,
		Horizon:       200,
		Dt:            0.5,
	},
	"noisy": {
		Description:   "balanced plant with measurement noise",
		Model:         process.Model{Gain: 2, TimeConstant: 10, DeadTime: 4},
		StepMagnitude: 1,
		Horizon:       120,
		Dt:            0.1,
		Noise:         0.01,
	},
	"textbook": {
		Description:   "10-unit step, output 0 to 8, crossings at 5 s and 12 s",
		Model:         process.Model{Gain: 0.8, TimeConstant: 10.5, DeadTime: 1.5},
		StepMagnitude: 10,
		Horizon:       100,
		Dt:            0.1,
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StepTest converts the preset into a synthetic experiment.
func (p *Preset) StepTest(seed uint64) sim.StepTest {
	return sim.StepTest{
		Model:         p.Model,
		StepMagnitude: p.StepMagnitude,
		InitialOutput: p.InitialOutput,
		Horizon:       p.Horizon,
		Dt:            p.Dt,
		Noise:         p.Noise,
		Seed:          seed,
	}
}
