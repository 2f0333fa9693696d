package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/talgya/candymarket/internal/economy"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Simulation.NumAgents != 10 {
		t.Errorf("NumAgents = %d, want default 10", cfg.Simulation.NumAgents)
	}
	if len(cfg.CandyTypes) == 0 {
		t.Error("default candy table is empty")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back, got error: %v", err)
	}
	if cfg.Simulation.Seed != 42 {
		t.Errorf("Seed = %d, want default 42", cfg.Simulation.Seed)
	}
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := writeConfig(t, `
simulation:
  num_agents: 25
  seed: 7
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Simulation.NumAgents != 25 {
		t.Errorf("NumAgents = %d, want 25 from file", cfg.Simulation.NumAgents)
	}
	if cfg.Simulation.Seed != 7 {
		t.Errorf("Seed = %d, want 7 from file", cfg.Simulation.Seed)
	}
	if cfg.Simulation.WorldWidth != 2000 {
		t.Errorf("WorldWidth = %v, want default 2000", cfg.Simulation.WorldWidth)
	}
	if len(cfg.CandyTypes) == 0 {
		t.Error("omitted candy table should fall back to defaults")
	}
}

func TestLoadCustomCandyTable(t *testing.T) {
	path := writeConfig(t, `
candy_types:
  CHOCOLATE:
    real_value: 12.0
    decay_rate: 0.02
    icon: C
economy:
  price_discovery_mode: convergent
  convergence_rate: 0.1
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	good, ok := cfg.CandyTypes[economy.Chocolate]
	if !ok {
		t.Fatal("CHOCOLATE missing from parsed table")
	}
	if good.RealValue != 12.0 {
		t.Errorf("RealValue = %v, want 12.0", good.RealValue)
	}
	if cfg.Economy.PriceDiscoveryMode != economy.DiscoveryConvergent {
		t.Errorf("mode = %q, want convergent", cfg.Economy.PriceDiscoveryMode)
	}
}

func TestLoadBadDiscoveryModeNormalized(t *testing.T) {
	path := writeConfig(t, `
economy:
  price_discovery_mode: psychic
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Economy.PriceDiscoveryMode != economy.DiscoveryFixed {
		t.Errorf("mode = %q, want normalized to fixed", cfg.Economy.PriceDiscoveryMode)
	}
}

func TestLoadMalformedYAMLFails(t *testing.T) {
	path := writeConfig(t, "simulation: [not: a: mapping")
	if _, err := Load(path); err == nil {
		t.Error("malformed YAML should return an error")
	}
}
