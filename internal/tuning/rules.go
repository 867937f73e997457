// Package tuning maps FOPDT models to ideal-form PID gains.
//
// Every rule is a distinct type implementing [Rule]; the set is closed.
// Coefficients and their sources:
//
//	ZieglerNichols  Kp = 1.2 tau/(k theta)      Ti = 2 theta           Td = 0.5 theta
//	CHROvershoot    Kp = 0.95 tau/(k theta)     Ti = 1.357 tau         Td = 0.473 theta
//	CHRNoOvershoot  Kp = 0.6 tau/(k theta)      Ti = tau               Td = 0.5 theta
//	ITAE            Kp = 0.965/k r^-0.85        Ti = tau/(0.796-0.1465 r)  Td = 0.308 tau r^0.929
//	IMC             Kp = (2tau+theta)/(k(2lambda+theta))  Ti = tau+theta/2  Td = tau theta/(2tau+theta)
//	CohenCoon       Kp = (16tau+3theta)/(12 k theta)  Ti = theta(32+6r)/(13+8r)  Td = 4theta/(11+2r)
//
// with r = theta/tau. Ziegler-Nichols is the 1942 reaction-curve rule; the
// CHR rows are the Chien-Hrones-Reswick setpoint rules for 20% and 0%
// overshoot; ITAE is the Rovira setpoint correlation as tabulated by Smith
// and Corripio; IMC follows Rivera, Morari and Skogestad.
package tuning

import (
	"fmt"

	"github.com/san-kum/pidlab/internal/process"
)

// Rule selects how gains are derived. Implementations are defined only in
// this package.
type Rule interface {
	Name() string
	rule()
}

type ZieglerNichols struct{}

// CHROvershoot allows about 20% overshoot on a setpoint step.
type CHROvershoot struct{}

// CHRNoOvershoot gives the fastest response without overshoot.
type CHRNoOvershoot struct{}

type ITAE struct{}

// IMC is internal-model-control tuning with closed-loop time constant
// Lambda.
type IMC struct {
	Lambda float64
}

type CohenCoon struct{}

// Manual passes user-supplied gains through unchanged.
type Manual struct {
	Kp, Ti, Td float64
}

func (ZieglerNichols) Name() string { return "ziegler-nichols" }
func (CHROvershoot) Name() string   { return "chr-20" }
func (CHRNoOvershoot) Name() string { return "chr-0" }
func (ITAE) Name() string           { return "itae" }
func (IMC) Name() string            { return "imc" }
func (CohenCoon) Name() string      { return "cohen-coon" }
func (Manual) Name() string         { return "manual" }

func (ZieglerNichols) rule() {}
func (CHROvershoot) rule()   {}
func (CHRNoOvershoot) rule() {}
func (ITAE) rule()           {}
func (IMC) rule()            {}
func (CohenCoon) rule()      {}
func (Manual) rule()         {}

func (r IMC) String() string {
	return fmt.Sprintf("imc(lambda=%g)", r.Lambda)
}

func (m Manual) Gains() process.Gains {
	return process.Gains{Kp: m.Kp, Ti: m.Ti, Td: m.Td}
}
