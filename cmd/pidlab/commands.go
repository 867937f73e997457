package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pidlab/internal/api"
	"github.com/san-kum/pidlab/internal/config"
	"github.com/san-kum/pidlab/internal/metrics"
	"github.com/san-kum/pidlab/internal/pipeline"
	"github.com/san-kum/pidlab/internal/process"
	"github.com/san-kum/pidlab/internal/render"
	"github.com/san-kum/pidlab/internal/sim"
	"github.com/san-kum/pidlab/internal/storage"
	"github.com/san-kum/pidlab/internal/viz"
)

func loadCurve(cmd *cobra.Command, path string) (process.ReactionCurve, error) {
	opts := storage.CurveOptions{StepMagnitude: stepSize}
	if cmd.Flags().Changed("initial-output") {
		y0, _ := cmd.Flags().GetFloat64("initial-output")
		opts.InitialOutput = &y0
	}
	return storage.LoadCurve(path, opts)
}

// resolveModel picks the plant from --curve, --preset or the explicit
// model flags, in that order.
func resolveModel(cmd *cobra.Command, p *pipeline.Pipeline) (process.Model, error) {
	switch {
	case curveFile != "":
		curve, err := loadCurve(cmd, curveFile)
		if err != nil {
			return process.Model{}, err
		}
		r, err := p.Identify(curve)
		if err != nil {
			return process.Model{}, err
		}
		return r.Best.Model, nil
	case presetName != "":
		pr := config.GetPreset(presetName)
		if pr == nil {
			return process.Model{}, fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets())
		}
		return pr.Model, nil
	case cmd.Flags().Changed("tau"):
		return process.Model{Gain: gain, TimeConstant: tau, DeadTime: deadTime}, nil
	}
	return process.Model{}, errors.New("no process model: use --curve, --preset or --gain/--tau/--theta")
}

func runIdentify(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}
	curve, err := loadCurve(cmd, args[0])
	if err != nil {
		return err
	}
	report, err := p.Identify(curve)
	if err != nil {
		return err
	}

	if jsonOut {
		return storage.WriteJSON(os.Stdout, report)
	}
	printIdentification(report)

	series := render.FitSeries(curve, report.Best.Model)
	if plotASCII {
		fmt.Println()
		fmt.Println(render.ASCII(series, 80, 12, "reaction curve and fit"))
	}
	if pngFile != "" {
		if err := render.SavePNG(pngFile, render.DefaultFigure("Reaction curve"), series); err != nil {
			return err
		}
		fmt.Printf("\nplot written to %s\n", pngFile)
	}
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}
	m, err := resolveModel(cmd, p)
	if err != nil {
		return err
	}
	rule, err := cfg.Rule()
	if err != nil {
		return err
	}
	t, err := p.Tune(m, rule)
	if err != nil {
		return err
	}

	if jsonOut {
		return storage.WriteJSON(os.Stdout, t)
	}
	printTuning(m, t)
	return nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}
	m, err := resolveModel(cmd, p)
	if err != nil {
		return err
	}
	rule, err := cfg.Rule()
	if err != nil {
		return err
	}

	start := time.Now()
	res := p.Evaluate(cmd.Context(), m, rule)
	if !res.OK() {
		return res.Err
	}
	log.Debug("simulation finished", "rule", res.Rule, "steps", res.Trace.Len(), "simulated", res.Trace.Duration(), "elapsed", time.Since(start))

	if outPath != "" {
		if err := storage.SaveTrace(outPath, res.Trace); err != nil {
			return err
		}
	}
	if jsonOut {
		return storage.WriteJSON(os.Stdout, res)
	}

	printTuning(m, res.Tuning)
	fmt.Println()
	printResults([]pipeline.Result{res})
	for _, w := range res.Trace.Warnings {
		fmt.Println(warnText.Render("warning: " + w))
	}
	return plotResults([]pipeline.Result{res}, "Closed-loop response")
}

func runCompare(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}
	rules, err := pipeline.RulesNamed(cfg, ruleNames)
	if err != nil {
		return err
	}

	var report *pipeline.Report
	if curveFile != "" {
		curve, err := loadCurve(cmd, curveFile)
		if err != nil {
			return err
		}
		report, err = p.Run(cmd.Context(), curve, rules)
		if err != nil {
			return err
		}
	} else {
		m, err := resolveModel(cmd, p)
		if err != nil {
			return err
		}
		results, err := p.Compare(cmd.Context(), m, rules)
		if err != nil {
			return err
		}
		report = &pipeline.Report{Model: m, Results: results, CreatedAt: time.Now().UTC()}
	}

	if outPath != "" {
		files, err := storage.Export(outPath, report)
		if err != nil {
			return err
		}
		log.Info("report exported", "dir", outPath, "files", len(files))
	}
	if jsonOut {
		return storage.WriteJSON(os.Stdout, report)
	}

	if len(report.Identification.Scores) > 0 {
		printIdentification(report.Identification)
	} else {
		fmt.Printf("model: %s\n", report.Model)
	}
	fmt.Println()
	printResults(report.Results)
	return plotResults(report.Results, "Rule comparison")
}

func runSweep(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}
	m, err := resolveModel(cmd, p)
	if err != nil {
		return err
	}
	rule, err := cfg.Rule()
	if err != nil {
		return err
	}
	c, ok := metrics.ParseCriterion(criterion)
	if !ok {
		return fmt.Errorf("unknown criterion: %s", criterion)
	}
	opts := pipeline.DefaultSweepOptions()
	opts.Criterion = c
	opts.Points = points

	res, err := p.Sweep(cmd.Context(), m, rule, opts)
	if err != nil {
		return err
	}
	if jsonOut {
		return storage.WriteJSON(os.Stdout, res)
	}

	fmt.Printf("model: %s\nrule:  %s (%d of %d runs stable)\n\n", m, res.Base.Rule, res.Evaluated, res.Grid)
	printSweep(res)
	return nil
}

func runSynth(cmd *cobra.Command, args []string) error {
	pr := config.GetPreset(presetName)
	if pr == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets())
	}
	st := pr.StepTest(seed)
	if noise >= 0 {
		st.Noise = noise
	}
	curve, err := sim.Synthesize(st)
	if err != nil {
		return err
	}
	log.Info("synthesized curve", "preset", presetName, "model", pr.Model.String(), "step", st.StepMagnitude, "samples", curve.Len())

	if outPath == "" {
		return storage.WriteCurve(os.Stdout, curve)
	}
	if err := storage.SaveCurve(outPath, curve); err != nil {
		return err
	}
	fmt.Printf("wrote %d samples to %s (identify with --step %g)\n", curve.Len(), outPath, st.StepMagnitude)
	return nil
}

func runPresets(cmd *cobra.Command, args []string) error {
	if jsonOut {
		return storage.WriteJSON(os.Stdout, config.Presets)
	}
	printPresets()
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}
	m, err := resolveModel(cmd, p)
	if err != nil {
		return err
	}
	rules, err := pipeline.RulesNamed(cfg, ruleNames)
	if err != nil {
		return err
	}
	results, err := p.Compare(cmd.Context(), m, rules)
	if err != nil {
		return err
	}
	return viz.Run(cmd.Context(), p, m, results)
}

func runServe(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}
	srv := api.NewServer(cfg, p, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdown)
}

func runConfig(cmd *cobra.Command, args []string) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}
