package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/pidlab/internal/sim"
	"github.com/san-kum/pidlab/internal/tuning"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Tuning.Rule != DefaultRule {
		t.Errorf("expected rule %s, got %s", DefaultRule, cfg.Tuning.Rule)
	}
	if cfg.Simulation.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Simulation.Horizon <= cfg.Simulation.Dt {
		t.Error("horizon should exceed dt")
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	def := DefaultConfig()
	if cfg.Simulation != def.Simulation || cfg.Tuning != def.Tuning || cfg.Metrics != def.Metrics {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pidlab.yaml")
	data := []byte("simulation:\n  dt: 0.005\ntuning:\n  rule: itae\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Simulation.Dt != 0.005 {
		t.Errorf("expected dt 0.005, got %f", cfg.Simulation.Dt)
	}
	if cfg.Tuning.Rule != "itae" {
		t.Errorf("expected rule itae, got %s", cfg.Tuning.Rule)
	}
	if cfg.Simulation.Horizon != sim.DefaultHorizon {
		t.Errorf("unset horizon should keep default %f, got %f", sim.DefaultHorizon, cfg.Simulation.Horizon)
	}
	if cfg.Tuning.DeadTimeFloorRatio != tuning.DefaultDeadTimeFloorRatio {
		t.Errorf("unset floor ratio should keep default, got %f", cfg.Tuning.DeadTimeFloorRatio)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := Load(path); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadOptional(path); err != nil {
		t.Errorf("optional load should ignore a missing file: %v", err)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PIDLAB_SIMULATION__HORIZON", "42")
	t.Setenv("PIDLAB_TUNING__DEAD_TIME_FLOOR_RATIO", "0.05")
	t.Setenv("PIDLAB_SERVER__ADDR", ":9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Simulation.Horizon != 42 {
		t.Errorf("expected horizon 42, got %f", cfg.Simulation.Horizon)
	}
	if cfg.Tuning.DeadTimeFloorRatio != 0.05 {
		t.Errorf("expected floor ratio 0.05, got %f", cfg.Tuning.DeadTimeFloorRatio)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %s", cfg.Server.Addr)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.Tuning.Rule = "imc"
	cfg.Tuning.Lambda = 2.5

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	rule, err := loaded.Rule()
	if err != nil {
		t.Fatalf("rule: %v", err)
	}
	if rule != (tuning.IMC{Lambda: 2.5}) {
		t.Errorf("expected imc(2.5), got %v", rule)
	}
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Simulation.CoarseStep = "clamp"
	cfg.Identification.Methods = []string{"sundaresan-krishnaswamy"}

	sc, err := cfg.SimConfig()
	if err != nil {
		t.Fatalf("sim config: %v", err)
	}
	if sc.CoarseStep != sim.Clamp {
		t.Errorf("expected clamp policy, got %v", sc.CoarseStep)
	}

	io, err := cfg.IdentifyOptions()
	if err != nil {
		t.Fatalf("identify options: %v", err)
	}
	if len(io.Methods) != 1 || io.Methods[0].Name != "sundaresan-krishnaswamy" {
		t.Errorf("expected only sundaresan, got %v", io.Methods)
	}

	cfg.Simulation.CoarseStep = "shrink"
	if _, err := cfg.SimConfig(); err == nil {
		t.Error("expected error for unknown policy")
	}
	cfg.Identification.Methods = []string{"ziegler"}
	if _, err := cfg.IdentifyOptions(); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("textbook")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	if p.Model.TimeConstant != 10.5 {
		t.Errorf("expected tau 10.5, got %f", p.Model.TimeConstant)
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsSynthesize(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for _, name := range names {
		if _, err := sim.Synthesize(GetPreset(name).StepTest(1)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
