package pipeline_test

import (
	"context"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pidlab/internal/config"
	"github.com/san-kum/pidlab/internal/logging"
	"github.com/san-kum/pidlab/internal/metrics"
	"github.com/san-kum/pidlab/internal/pipeline"
	"github.com/san-kum/pidlab/internal/process"
	"github.com/san-kum/pidlab/internal/sim"
	"github.com/san-kum/pidlab/internal/tuning"
)

var _ = Describe("Pipeline", func() {
	var (
		p   *pipeline.Pipeline
		cfg *config.Config
		ctx context.Context
	)

	BeforeEach(func() {
		cfg = config.DefaultConfig()
		cfg.Simulation.Horizon = 150
		var err error
		p, err = pipeline.New(cfg, logging.Discard())
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	It("rejects an invalid configuration", func() {
		cfg.Simulation.CoarseStep = "shrink"
		_, err := pipeline.New(cfg, logging.Discard())
		Expect(err).To(HaveOccurred())
	})

	Describe("Run", func() {
		It("identifies a synthetic plant and evaluates every rule", func() {
			truth := process.Model{Gain: 2, TimeConstant: 10, DeadTime: 4}
			cfg.Tuning.Lambda = 4
			p, err := pipeline.New(cfg, logging.Discard())
			Expect(err).NotTo(HaveOccurred())
			curve, err := sim.Synthesize(config.GetPreset("balanced").StepTest(0))
			Expect(err).NotTo(HaveOccurred())

			report, err := p.Run(ctx, curve, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = uuid.Parse(report.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Model.Gain).To(BeNumerically("~", truth.Gain, 0.02))
			Expect(report.Model.TimeConstant).To(BeNumerically("~", truth.TimeConstant, 0.1))
			Expect(report.Model.DeadTime).To(BeNumerically("~", truth.DeadTime, 0.1))
			Expect(report.Identification.Scores).To(HaveLen(2))

			rules := tuning.Automatic(cfg.Tuning.Lambda)
			Expect(report.Results).To(HaveLen(len(rules)))
			for i, r := range report.Results {
				Expect(r.Rule).To(Equal(rules[i].Name()))
				Expect(r.OK()).To(BeTrue(), r.Error)
				Expect(r.Trace.Len()).To(BeNumerically(">", 1))
				Expect(r.Performance.SteadyStateError.Value).To(BeNumerically("<", 1e-3), r.Rule)
			}
		})

		It("surfaces identification failures", func() {
			flat := process.ReactionCurve{Times: []float64{0, 1, 2}, Outputs: []float64{1, 1, 1}, StepMagnitude: 1, InitialOutput: 1}
			_, err := p.Run(ctx, flat, nil)
			Expect(err).To(MatchError(process.ErrFlatCurve))
		})
	})

	Describe("Compare", func() {
		It("records per-rule failures without aborting", func() {
			m := process.Model{Gain: 1, TimeConstant: 1, DeadTime: 6}
			results, err := p.Compare(ctx, m, []tuning.Rule{tuning.ITAE{}, tuning.CHRNoOvershoot{}})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))

			Expect(results[0].OK()).To(BeFalse())
			Expect(results[0].Err).To(MatchError(process.ErrModelDomain))
			Expect(results[0].Error).NotTo(BeEmpty())
			Expect(results[1].OK()).To(BeTrue())
		})

		It("keeps the no-overshoot rule below 1.5% overshoot", func() {
			m := process.Model{Gain: 2, TimeConstant: 10, DeadTime: 1}
			results, err := p.Compare(ctx, m, []tuning.Rule{tuning.ZieglerNichols{}, tuning.CHRNoOvershoot{}})
			Expect(err).NotTo(HaveOccurred())

			Expect(results[1].Performance.OvershootPercent.Value).To(BeNumerically("<", 1.5))
			Expect(results[0].Performance.OvershootPercent.Value).To(BeNumerically(">", results[1].Performance.OvershootPercent.Value))
		})

		It("stops when the context is canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := p.Compare(cctx, process.Model{Gain: 1, TimeConstant: 10, DeadTime: 1}, nil)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("Sweep", func() {
		It("never scores worse than the base tuning", func() {
			m := process.Model{Gain: 2, TimeConstant: 10, DeadTime: 1}
			opts := pipeline.DefaultSweepOptions()
			opts.Points = 3
			opts.Criterion = metrics.IAE

			res, err := p.Sweep(ctx, m, tuning.ZieglerNichols{}, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Grid).To(Equal(27))
			Expect(res.Evaluated).To(BeNumerically(">", 1))
			Expect(res.Evaluated).To(BeNumerically("<=", res.Grid))
			Expect(res.Score).To(BeNumerically("<=", res.BaseScore))
			Expect(res.Scales).To(HaveKey("kp"))
			Expect(res.Criterion).To(Equal("iae"))
		})

		It("fails for a model the rule cannot tune", func() {
			_, err := p.Sweep(ctx, process.Model{Gain: -1, TimeConstant: 1}, tuning.CHROvershoot{}, pipeline.DefaultSweepOptions())
			Expect(err).To(MatchError(process.ErrModelDomain))
		})
	})

	Describe("RulesNamed", func() {
		It("resolves names with configured parameters", func() {
			cfg.Tuning.Lambda = 4
			rules, err := pipeline.RulesNamed(cfg, []string{"imc", "zn"})
			Expect(err).NotTo(HaveOccurred())
			Expect(rules).To(Equal([]tuning.Rule{tuning.IMC{Lambda: 4}, tuning.ZieglerNichols{}}))

			_, err = pipeline.RulesNamed(cfg, []string{"nope"})
			Expect(err).To(HaveOccurred())
		})
	})
})
