package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/pidlab/internal/config"
	"github.com/san-kum/pidlab/internal/logging"
	"github.com/san-kum/pidlab/internal/pipeline"
)

var (
	configFile string
	logLevel   string
	logFormat  string
	jsonOut    bool

	// process model, given directly or identified from a curve
	curveFile  string
	presetName string
	stepSize   float64
	gain       float64
	tau        float64
	deadTime   float64

	ruleName  string
	ruleNames []string
	lambda    float64
	kp        float64
	ti        float64
	td        float64

	setpoint   float64
	horizon    float64
	dt         float64
	integrator string

	plotASCII bool
	pngFile   string
	outPath   string

	criterion string
	points    int
	noise     float64
	seed      uint64

	cfg *config.Config
	log *slog.Logger
)

// main registers the pidlab commands and exits with status 1 when the
// selected command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "pidlab",
		Short:         "process identification and PID tuning lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")

	identifyCmd := &cobra.Command{
		Use:   "identify [curve.csv]",
		Short: "fit a first-order-plus-dead-time model to a step response",
		Args:  cobra.ExactArgs(1),
		RunE:  runIdentify,
	}
	curveFlags(identifyCmd)
	plotFlags(identifyCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "compute PID gains for a model",
		RunE:  runTune,
	}
	modelFlags(tuneCmd)
	ruleFlags(tuneCmd)

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "simulate the closed-loop setpoint step for one rule",
		RunE:  runSimulate,
	}
	modelFlags(simulateCmd)
	ruleFlags(simulateCmd)
	simFlags(simulateCmd)
	plotFlags(simulateCmd)
	simulateCmd.Flags().StringVarP(&outPath, "out", "o", "", "write the trace as CSV")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "evaluate several tuning rules side by side",
		RunE:  runCompare,
	}
	modelFlags(compareCmd)
	simFlags(compareCmd)
	plotFlags(compareCmd)
	compareCmd.Flags().StringSliceVar(&ruleNames, "rules", nil, "rules to compare (default: all model-based rules)")
	compareCmd.Flags().Float64Var(&lambda, "lambda", 0, "IMC closed-loop time constant")
	compareCmd.Flags().StringVarP(&outPath, "out", "o", "", "export report and traces to this directory")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid-search gain multipliers around a rule's tuning",
		RunE:  runSweep,
	}
	modelFlags(sweepCmd)
	ruleFlags(sweepCmd)
	simFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&criterion, "criterion", "iae", "error integral to minimize (iae, ise, itae)")
	sweepCmd.Flags().IntVar(&points, "points", 5, "grid points per gain")

	synthCmd := &cobra.Command{
		Use:   "synth",
		Short: "generate a synthetic reaction curve",
		RunE:  runSynth,
	}
	synthCmd.Flags().StringVar(&presetName, "preset", "balanced", "preset plant")
	synthCmd.Flags().Float64Var(&noise, "noise", -1, "measurement noise standard deviation (default: preset)")
	synthCmd.Flags().Uint64Var(&seed, "seed", 1, "noise seed")
	synthCmd.Flags().StringVarP(&outPath, "out", "o", "", "output CSV (default: stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list synthetic plant presets",
		RunE:  runPresets,
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "compare rules interactively",
		RunE:  runTUI,
	}
	modelFlags(tuiCmd)
	simFlags(tuiCmd)
	tuiCmd.Flags().StringSliceVar(&ruleNames, "rules", nil, "rules to compare (default: all model-based rules)")
	tuiCmd.Flags().Float64Var(&lambda, "lambda", 0, "IMC closed-loop time constant")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the HTTP API",
		RunE:  runServe,
	}
	serveCmd.Flags().String("addr", "", "listen address (default from config)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		RunE:  runConfig,
	}

	rootCmd.AddCommand(identifyCmd, tuneCmd, simulateCmd, compareCmd, sweepCmd, synthCmd, presetsCmd, tuiCmd, serveCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command) error {
	var err error
	cfg, err = config.LoadOptional(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	log, err = logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	applyFlags(cmd)
	return nil
}

// applyFlags lets explicitly set flags override the configuration.
func applyFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("rule") {
		cfg.Tuning.Rule = ruleName
	}
	if f.Changed("lambda") {
		cfg.Tuning.Lambda = lambda
	}
	if f.Changed("kp") || f.Changed("ti") || f.Changed("td") {
		cfg.Tuning.Manual = config.ManualConfig{Kp: kp, Ti: ti, Td: td}
		if !f.Changed("rule") {
			cfg.Tuning.Rule = "manual"
		}
	}
	if f.Changed("setpoint") {
		cfg.Simulation.Setpoint = setpoint
	}
	if f.Changed("horizon") {
		cfg.Simulation.Horizon = horizon
	}
	if f.Changed("dt") {
		cfg.Simulation.Dt = dt
	}
	if f.Changed("integrator") {
		cfg.Simulation.Integrator = integrator
	}
	if f.Changed("addr") {
		cfg.Server.Addr, _ = f.GetString("addr")
	}
}

func newPipeline() (*pipeline.Pipeline, error) {
	return pipeline.New(cfg, log)
}

func curveFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&stepSize, "step", 0, "input step magnitude (default: derived from the input column)")
	cmd.Flags().Float64("initial-output", 0, "pre-step output level (default: from the data)")
}

func modelFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&curveFile, "curve", "", "identify the model from this reaction-curve CSV")
	curveFlags(cmd)
	cmd.Flags().StringVar(&presetName, "preset", "", "use a preset plant model")
	cmd.Flags().Float64VarP(&gain, "gain", "k", 0, "process gain")
	cmd.Flags().Float64Var(&tau, "tau", 0, "time constant")
	cmd.Flags().Float64Var(&deadTime, "theta", 0, "dead time")
}

func ruleFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&ruleName, "rule", "r", "", "tuning rule (default from config)")
	cmd.Flags().Float64Var(&lambda, "lambda", 0, "IMC closed-loop time constant")
	cmd.Flags().Float64Var(&kp, "kp", 0, "manual proportional gain")
	cmd.Flags().Float64Var(&ti, "ti", 0, "manual integral time (0 disables)")
	cmd.Flags().Float64Var(&td, "td", 0, "manual derivative time")
}

func simFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&setpoint, "setpoint", 0, "setpoint step size")
	cmd.Flags().Float64Var(&horizon, "horizon", 0, "simulated time")
	cmd.Flags().Float64Var(&dt, "dt", 0, "integration step")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator (rk4, euler)")
}

func plotFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&plotASCII, "plot", false, "draw a terminal chart")
	cmd.Flags().StringVar(&pngFile, "png", "", "write a PNG chart")
}
