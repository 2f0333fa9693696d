// Package config loads simulation configuration from YAML. Every section
// is optional: missing files, sections, or fields recover to the built-in
// tables with a logged warning, never an error: the simulation always
// has something sane to run with.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/candymarket/internal/economy"
)

// SimSettings are the world-level knobs outside the economy.
type SimSettings struct {
	NumAgents      int     `yaml:"num_agents"`
	WorldWidth     float64 `yaml:"world_width"`
	WorldHeight    float64 `yaml:"world_height"`
	AITickInterval float64 `yaml:"ai_tick_interval"`
	TradeRadius    float64 `yaml:"trade_radius"`
	Seed           int64   `yaml:"seed"`
}

// Config is the full parsed configuration.
type Config struct {
	CandyTypes map[economy.CandyType]economy.Good `yaml:"candy_types"`
	Economy    economy.Settings                   `yaml:"economy"`
	Simulation SimSettings                        `yaml:"simulation"`
}

// Default returns the hardcoded fallback configuration.
func Default() *Config {
	return &Config{
		CandyTypes: economy.DefaultGoods(),
		Economy:    economy.DefaultSettings(),
		Simulation: SimSettings{
			NumAgents:      10,
			WorldWidth:     2000,
			WorldHeight:    2000,
			AITickInterval: 2.0,
			TradeRadius:    150,
			Seed:           42,
		},
	}
}

// Load reads a YAML config from path. An empty path or a missing file
// falls back to Default with a warning. A file that parses but omits
// sections gets those sections filled from the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		slog.Warn("no config path given, using built-in defaults")
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("config file not found, using built-in defaults", "path", path)
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.fillDefaults()

	slog.Info("config loaded", "path", path, "candy_types", len(cfg.CandyTypes))
	return cfg, nil
}

// fillDefaults patches holes a partial file leaves behind and normalizes
// unrecognized options back to the defaults.
func (c *Config) fillDefaults() {
	def := Default()

	if len(c.CandyTypes) == 0 {
		slog.Warn("no candy types in config, using built-in table")
		c.CandyTypes = def.CandyTypes
	}

	switch c.Economy.PriceDiscoveryMode {
	case economy.DiscoveryFixed, economy.DiscoveryRandom, economy.DiscoveryConvergent:
	default:
		slog.Warn("unrecognized price_discovery_mode, using fixed",
			"mode", string(c.Economy.PriceDiscoveryMode))
		c.Economy.PriceDiscoveryMode = economy.DiscoveryFixed
	}
	if c.Economy.ConvergenceRate <= 0 {
		c.Economy.ConvergenceRate = def.Economy.ConvergenceRate
	}
	if c.Economy.MarketHistoryWindow <= 0 {
		c.Economy.MarketHistoryWindow = def.Economy.MarketHistoryWindow
	}

	if c.Simulation.NumAgents <= 0 {
		c.Simulation.NumAgents = def.Simulation.NumAgents
	}
	if c.Simulation.WorldWidth <= 0 {
		c.Simulation.WorldWidth = def.Simulation.WorldWidth
	}
	if c.Simulation.WorldHeight <= 0 {
		c.Simulation.WorldHeight = def.Simulation.WorldHeight
	}
	if c.Simulation.AITickInterval <= 0 {
		c.Simulation.AITickInterval = def.Simulation.AITickInterval
	}
	if c.Simulation.TradeRadius <= 0 {
		c.Simulation.TradeRadius = def.Simulation.TradeRadius
	}
}
