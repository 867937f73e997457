package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/pidlab/internal/metrics"
	"github.com/san-kum/pidlab/internal/optim"
	"github.com/san-kum/pidlab/internal/process"
	"github.com/san-kum/pidlab/internal/sim"
	"github.com/san-kum/pidlab/internal/tuning"
)

var errDiverged = errors.New("pipeline: closed loop diverged")

type SweepOptions struct {
	Criterion metrics.Criterion
	// Lo and Hi bound the multiplier applied to each gain.
	Lo, Hi float64
	Points int
}

func DefaultSweepOptions() SweepOptions {
	return SweepOptions{Criterion: metrics.IAE, Lo: 0.5, Hi: 2, Points: 5}
}

// SweepResult is the best grid point. Evaluated counts the stable points
// out of Grid; BaseScore is math.MaxFloat64 when the base tuning diverges.
type SweepResult struct {
	Base      tuning.Tuning      `json:"base"`
	Gains     process.Gains      `json:"gains"`
	Scales    map[string]float64 `json:"scales"`
	Criterion string             `json:"criterion"`
	BaseScore float64            `json:"base_score"`
	Score     float64            `json:"score"`
	Evaluated int                `json:"evaluated"`
	Grid      int                `json:"grid"`
}

// Sweep scales the gains of a rule's tuning over a geometric grid and
// keeps the combination with the lowest error integral.
func (p *Pipeline) Sweep(ctx context.Context, m process.Model, rule tuning.Rule, opts SweepOptions) (*SweepResult, error) {
	base, err := p.Tune(m, rule)
	if err != nil {
		return nil, err
	}

	scales := optim.Span(opts.Lo, opts.Hi, opts.Points)
	grid := optim.NewGridSearch([]string{"kp", "ti", "td"}, [][]float64{scales, scales, scales})

	p.log.Debug("sweep started", "rule", rule.Name(), "grid", grid.Size())

	evaluated := 0
	objective := func(ctx context.Context, s map[string]float64) (float64, error) {
		g := scale(base.Gains, s)
		tr, err := sim.SimulateContext(ctx, m, g, p.sim)
		if err != nil {
			return 0, err
		}
		if tr.Diverged {
			return 0, errDiverged
		}
		evaluated++
		return metrics.ComputeIntegrals(tr, tr.Setpoint).Get(opts.Criterion), nil
	}

	baseScore, err := objective(ctx, map[string]float64{"kp": 1, "ti": 1, "td": 1})
	if err != nil {
		baseScore = math.MaxFloat64
	}
	evaluated = 0

	best, score, err := grid.Search(ctx, objective)
	if err != nil {
		return nil, err
	}
	if best == nil {
		return nil, fmt.Errorf("sweep %s: no stable gain combination", rule.Name())
	}

	p.log.Info("sweep finished",
		"rule", rule.Name(),
		"criterion", opts.Criterion.String(),
		"evaluated", evaluated,
		"grid", grid.Size(),
		"base", baseScore,
		"best", score,
	)
	return &SweepResult{
		Base:      base,
		Gains:     scale(base.Gains, best),
		Scales:    best,
		Criterion: opts.Criterion.String(),
		BaseScore: baseScore,
		Score:     score,
		Evaluated: evaluated,
		Grid:      grid.Size(),
	}, nil
}

func scale(g process.Gains, s map[string]float64) process.Gains {
	return process.Gains{Kp: g.Kp * s["kp"], Ti: g.Ti * s["ti"], Td: g.Td * s["td"]}
}
