package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pidlab/internal/identify"
	"github.com/san-kum/pidlab/internal/metrics"
	"github.com/san-kum/pidlab/internal/sim"
	"github.com/san-kum/pidlab/internal/tuning"
)

const (
	// EnvPrefix marks environment overrides. Nested keys are separated by a
	// double underscore: PIDLAB_SIMULATION__DT=0.005.
	EnvPrefix = "PIDLAB_"

	DefaultRule   = "chr-0"
	DefaultAddr   = ":8080"
	DefaultLevel  = "info"
	DefaultFormat = "text"

	// DefaultServerMaxSteps caps steps per simulation requested over HTTP.
	DefaultServerMaxSteps = 1_000_000
)

type Config struct {
	Identification IdentificationConfig `yaml:"identification" koanf:"identification"`
	Tuning         TuningConfig         `yaml:"tuning" koanf:"tuning"`
	Simulation     SimulationConfig     `yaml:"simulation" koanf:"simulation"`
	Metrics        MetricsConfig        `yaml:"metrics" koanf:"metrics"`
	Log            LogConfig            `yaml:"log" koanf:"log"`
	Server         ServerConfig         `yaml:"server" koanf:"server"`
}

type IdentificationConfig struct {
	// Methods restricts identification to the named methods; empty tries all.
	Methods      []string `yaml:"methods" koanf:"methods"`
	FinalWindow  int      `yaml:"final_window" koanf:"final_window"`
	MinAmplitude float64  `yaml:"min_amplitude" koanf:"min_amplitude"`
}

type TuningConfig struct {
	Rule               string       `yaml:"rule" koanf:"rule"`
	Lambda             float64      `yaml:"lambda" koanf:"lambda"`
	DeadTimeFloorRatio float64      `yaml:"dead_time_floor_ratio" koanf:"dead_time_floor_ratio"`
	Manual             ManualConfig `yaml:"manual" koanf:"manual"`
}

type ManualConfig struct {
	Kp float64 `yaml:"kp" koanf:"kp"`
	Ti float64 `yaml:"ti" koanf:"ti"`
	Td float64 `yaml:"td" koanf:"td"`
}

type SimulationConfig struct {
	Setpoint   float64 `yaml:"setpoint" koanf:"setpoint"`
	Horizon    float64 `yaml:"horizon" koanf:"horizon"`
	Dt         float64 `yaml:"dt" koanf:"dt"`
	Integrator string  `yaml:"integrator" koanf:"integrator"`
	CoarseStep string  `yaml:"coarse_step" koanf:"coarse_step"`
	MaxSteps   int     `yaml:"max_steps" koanf:"max_steps"`
}

type MetricsConfig struct {
	RiseLow        float64 `yaml:"rise_low" koanf:"rise_low"`
	RiseHigh       float64 `yaml:"rise_high" koanf:"rise_high"`
	SettlingBand   float64 `yaml:"settling_band" koanf:"settling_band"`
	TerminalWindow int     `yaml:"terminal_window" koanf:"terminal_window"`
}

type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

type ServerConfig struct {
	Addr     string `yaml:"addr" koanf:"addr"`
	MaxSteps int    `yaml:"max_steps" koanf:"max_steps"`
}

func DefaultConfig() *Config {
	return &Config{
		Identification: IdentificationConfig{
			FinalWindow:  identify.DefaultFinalWindow,
			MinAmplitude: identify.DefaultMinAmplitude,
		},
		Tuning: TuningConfig{
			Rule:               DefaultRule,
			Lambda:             tuning.DefaultLambda,
			DeadTimeFloorRatio: tuning.DefaultDeadTimeFloorRatio,
		},
		Simulation: SimulationConfig{
			Setpoint:   sim.DefaultSetpoint,
			Horizon:    sim.DefaultHorizon,
			Dt:         sim.DefaultDt,
			Integrator: "rk4",
			CoarseStep: sim.Reject.String(),
			MaxSteps:   sim.DefaultMaxSteps,
		},
		Metrics: MetricsConfig{
			RiseLow:        metrics.DefaultRiseLow,
			RiseHigh:       metrics.DefaultRiseHigh,
			SettlingBand:   metrics.DefaultSettlingBand,
			TerminalWindow: metrics.DefaultTerminalWindow,
		},
		Log: LogConfig{
			Level:  DefaultLevel,
			Format: DefaultFormat,
		},
		Server: ServerConfig{
			Addr:     DefaultAddr,
			MaxSteps: DefaultServerMaxSteps,
		},
	}
}

// Load layers defaults, the YAML file at path (skipped when path is empty)
// and PIDLAB_ environment variables, in that order.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// LoadOptional is Load, treating a missing file as empty.
func LoadOptional(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	return Load(path)
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) IdentifyOptions() (identify.Options, error) {
	opts := identify.DefaultOptions()
	opts.FinalWindow = c.Identification.FinalWindow
	opts.MinAmplitude = c.Identification.MinAmplitude
	if len(c.Identification.Methods) > 0 {
		opts.Methods = opts.Methods[:0:0]
		for _, name := range c.Identification.Methods {
			m, err := identify.MethodByName(name)
			if err != nil {
				return identify.Options{}, err
			}
			opts.Methods = append(opts.Methods, m)
		}
	}
	return opts, nil
}

func (c *Config) TuningOptions() tuning.Options {
	return tuning.Options{DeadTimeFloorRatio: c.Tuning.DeadTimeFloorRatio}
}

// Rule builds the configured tuning rule.
func (c *Config) Rule() (tuning.Rule, error) {
	return c.RuleNamed(c.Tuning.Rule)
}

// RuleNamed builds a rule by name using the configured parameters.
func (c *Config) RuleNamed(name string) (tuning.Rule, error) {
	return tuning.ParseRule(name, tuning.Params{
		Lambda: c.Tuning.Lambda,
		Kp:     c.Tuning.Manual.Kp,
		Ti:     c.Tuning.Manual.Ti,
		Td:     c.Tuning.Manual.Td,
	})
}

func (c *Config) SimConfig() (sim.Config, error) {
	policy, err := sim.ParseCoarseStep(c.Simulation.CoarseStep)
	if err != nil {
		return sim.Config{}, err
	}
	return sim.Config{
		Setpoint:   c.Simulation.Setpoint,
		Horizon:    c.Simulation.Horizon,
		Dt:         c.Simulation.Dt,
		Integrator: c.Simulation.Integrator,
		CoarseStep: policy,
		MaxSteps:   c.Simulation.MaxSteps,
	}, nil
}

func (c *Config) MetricOptions() metrics.Options {
	return metrics.Options{
		RiseLow:        c.Metrics.RiseLow,
		RiseHigh:       c.Metrics.RiseHigh,
		SettlingBand:   c.Metrics.SettlingBand,
		TerminalWindow: c.Metrics.TerminalWindow,
	}
}
