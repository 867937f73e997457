package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/pidlab/internal/config"
	"github.com/san-kum/pidlab/internal/identify"
	"github.com/san-kum/pidlab/internal/pipeline"
	"github.com/san-kum/pidlab/internal/process"
	"github.com/san-kum/pidlab/internal/render"
	"github.com/san-kum/pidlab/internal/tuning"
)

var (
	heading  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00cccc"))
	warnText = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00"))
	errText  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

func printIdentification(r identify.Report) {
	fmt.Println(heading.Render("identification"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tGAIN\tTAU\tTHETA\tRMSE\t")
	for _, s := range r.Scores {
		mark := ""
		if s.Method == r.Best.Method {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.3g\t%s\n",
			s.Method, s.Model.Gain, s.Model.TimeConstant, s.Model.DeadTime, s.RMSE, mark)
	}
	w.Flush()
	for _, c := range r.Candidates {
		if !c.OK() {
			fmt.Println(warnText.Render(fmt.Sprintf("%s: %v", c.Method, c.Err)))
		} else if c.Clamped {
			fmt.Println(warnText.Render(c.Method + ": negative dead time clamped to 0"))
		}
	}
}

func printTuning(m process.Model, t tuning.Tuning) {
	fmt.Printf("model: %s (theta/tau %.3g)\n", m, m.Ratio())
	fmt.Printf("rule:  %s\n", t.Rule)
	fmt.Printf("gains: %s\n", t.Gains)
	kp, ki, kd := t.Gains.Parallel()
	fmt.Printf("       parallel Kp=%.4g Ki=%.4g Kd=%.4g\n", kp, ki, kd)
	if t.Degenerate {
		fmt.Println(warnText.Render(fmt.Sprintf("dead time floored to %g", t.DeadTimeUsed)))
	}
	for _, n := range t.Notes {
		fmt.Println(warnText.Render("note: " + n))
	}
}

func printResults(results []pipeline.Result) {
	fmt.Println(heading.Render("closed loop"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RULE\tKP\tTI\tTD\tRISE\tSETTLE\tOVERSHOOT%\tESS\tIAE")
	for _, r := range results {
		if !r.OK() {
			fmt.Fprintf(w, "%s\t%s\n", r.Rule, errText.Render(r.Error))
			continue
		}
		g, perf := r.Tuning.Gains, r.Performance
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%s\t%s\t%s\t%s\t%.4g\n",
			r.Rule, g.Kp, g.Ti, g.Td,
			perf.RiseTime, perf.SettlingTime, perf.OvershootPercent, perf.SteadyStateError,
			r.Integrals.IAE,
		)
	}
	w.Flush()
	for _, r := range results {
		if r.OK() && r.Trace.Diverged {
			fmt.Println(errText.Render(fmt.Sprintf("%s: closed loop diverged at t=%.4g", r.Rule, r.Trace.Duration())))
		}
	}
}

func printSweep(res *pipeline.SweepResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "\tKP\tTI\tTD\t%s\n", res.Criterion)
	fmt.Fprintf(w, "base\t%.4g\t%.4g\t%.4g\t%.4g\n", res.Base.Gains.Kp, res.Base.Gains.Ti, res.Base.Gains.Td, res.BaseScore)
	fmt.Fprintf(w, "best\t%.4g\t%.4g\t%.4g\t%.4g\n", res.Gains.Kp, res.Gains.Ti, res.Gains.Td, res.Score)
	fmt.Fprintf(w, "scale\t%.3g\t%.3g\t%.3g\t\n", res.Scales["kp"], res.Scales["ti"], res.Scales["td"])
	w.Flush()
}

func printPresets() {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODEL\tSTEP\tNOISE\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%s\n", name, p.Model, p.StepMagnitude, p.Noise, p.Description)
	}
	w.Flush()
}

func plotResults(results []pipeline.Result, title string) error {
	series := render.TraceSeries(results)
	if plotASCII {
		fmt.Println()
		fmt.Println(render.ASCII(series, 80, 14, "closed-loop output"))
	}
	if pngFile != "" {
		if err := render.SavePNG(pngFile, render.DefaultFigure(title), series); err != nil {
			return err
		}
		fmt.Printf("\nplot written to %s\n", pngFile)
	}
	return nil
}
