// Package pipeline chains identification, tuning, simulation and metric
// extraction into the runs exposed by the CLI, the TUI and the HTTP API.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pidlab/internal/config"
	"github.com/san-kum/pidlab/internal/identify"
	"github.com/san-kum/pidlab/internal/metrics"
	"github.com/san-kum/pidlab/internal/process"
	"github.com/san-kum/pidlab/internal/sim"
	"github.com/san-kum/pidlab/internal/tuning"
)

type Pipeline struct {
	identify identify.Options
	tuning   tuning.Options
	sim      sim.Config
	metrics  metrics.Options
	lambda   float64
	log      *slog.Logger
}

func New(cfg *config.Config, log *slog.Logger) (*Pipeline, error) {
	io, err := cfg.IdentifyOptions()
	if err != nil {
		return nil, err
	}
	sc, err := cfg.SimConfig()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		identify: io,
		tuning:   cfg.TuningOptions(),
		sim:      sc,
		metrics:  cfg.MetricOptions(),
		lambda:   cfg.Tuning.Lambda,
		log:      log,
	}, nil
}

// SimConfig returns the simulation settings in use.
func (p *Pipeline) SimConfig() sim.Config { return p.sim }

// Result is one rule evaluated against one model. A failed tuning or
// simulation is recorded in Err rather than aborting a comparison.
type Result struct {
	Rule        string              `json:"rule"`
	Tuning      tuning.Tuning       `json:"tuning"`
	Trace       process.Trace       `json:"-"`
	Performance process.Performance `json:"performance"`
	Integrals   metrics.Integrals   `json:"integrals"`
	Err         error               `json:"-"`
	Error       string              `json:"error,omitempty"`
}

func (r Result) OK() bool { return r.Err == nil }

type Report struct {
	ID             string          `json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	Identification identify.Report `json:"identification"`
	Model          process.Model   `json:"model"`
	Results        []Result        `json:"results"`
}

func (p *Pipeline) Identify(curve process.ReactionCurve) (identify.Report, error) {
	r, err := identify.Run(curve, p.identify)
	if err != nil {
		p.log.Error("identification failed", "samples", curve.Len(), "error", err)
		return r, err
	}
	for _, c := range r.Candidates {
		if c.Err != nil {
			p.log.Warn("method failed", "method", c.Method, "error", c.Err)
		}
	}
	p.log.Info("identified model",
		"method", r.Best.Method,
		"k", r.Best.Model.Gain,
		"tau", r.Best.Model.TimeConstant,
		"theta", r.Best.Model.DeadTime,
		"rmse", r.Best.RMSE,
	)
	return r, nil
}

func (p *Pipeline) Tune(m process.Model, rule tuning.Rule) (tuning.Tuning, error) {
	t, err := tuning.Tune(m, rule, p.tuning)
	if err != nil {
		return t, err
	}
	if t.Degenerate {
		p.log.Warn("dead time floor applied", "rule", t.Rule, "theta", m.DeadTime, "used", t.DeadTimeUsed)
	}
	return t, nil
}

// Evaluate tunes, simulates and measures one rule.
func (p *Pipeline) Evaluate(ctx context.Context, m process.Model, rule tuning.Rule) Result {
	res := Result{Rule: rule.Name()}

	t, err := p.Tune(m, rule)
	if err != nil {
		return res.fail(err)
	}
	res.Tuning = t

	tr, err := sim.SimulateContext(ctx, m, t.Gains, p.sim)
	if err != nil {
		return res.fail(err)
	}
	res.Trace = tr
	for _, w := range tr.Warnings {
		p.log.Warn("simulation", "rule", res.Rule, "warning", w)
	}

	res.Performance = metrics.Extract(tr, p.metrics)
	res.Integrals = metrics.ComputeIntegrals(tr, tr.Setpoint)
	p.log.Debug("evaluated rule",
		"rule", res.Rule,
		"gains", t.Gains.String(),
		"overshoot", res.Performance.OvershootPercent.String(),
		"settling", res.Performance.SettlingTime.String(),
		"diverged", tr.Diverged,
	)
	return res
}

func (r Result) fail(err error) Result {
	r.Err = err
	r.Error = err.Error()
	return r
}

// Compare evaluates every rule concurrently. Results keep the order of
// rules; nil rules selects every automatic rule.
func (p *Pipeline) Compare(ctx context.Context, m process.Model, rules []tuning.Rule) ([]Result, error) {
	if rules == nil {
		rules = tuning.Automatic(p.lambda)
	}
	results := make([]Result, len(rules))

	g, ctx := errgroup.WithContext(ctx)
	for i, rule := range rules {
		g.Go(func() error {
			results[i] = p.Evaluate(ctx, m, rule)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		if !r.OK() {
			p.log.Warn("rule failed", "rule", r.Rule, "error", r.Err)
		}
	}
	return results, nil
}

// Run identifies the curve and compares rules on the selected model.
func (p *Pipeline) Run(ctx context.Context, curve process.ReactionCurve, rules []tuning.Rule) (*Report, error) {
	ident, err := p.Identify(curve)
	if err != nil {
		return nil, err
	}
	results, err := p.Compare(ctx, ident.Best.Model, rules)
	if err != nil {
		return nil, err
	}
	return &Report{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Identification: ident,
		Model:          ident.Best.Model,
		Results:        results,
	}, nil
}

// RulesNamed resolves rule names with the configured parameters.
func RulesNamed(cfg *config.Config, names []string) ([]tuning.Rule, error) {
	if len(names) == 0 {
		return nil, nil
	}
	rules := make([]tuning.Rule, 0, len(names))
	for _, n := range names {
		r, err := cfg.RuleNamed(n)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}
