// Package economy provides candy definitions, the trade ledger, and market
// price discovery.
package economy

// CandyType identifies a tradeable candy. Types are open-ended (configs
// may define new ones), so unknown types fall back to documented defaults
// instead of erroring.
type CandyType string

// The six stock candy types. Configs may add more.
const (
	Chocolate CandyType = "CHOCOLATE"
	Fruity    CandyType = "FRUITY"
	Sour      CandyType = "SOUR"
	Novelty   CandyType = "NOVELTY"
	Health    CandyType = "HEALTH"
	Trash     CandyType = "TRASH"
)

// Defaults applied when a candy type is missing from the tables.
const (
	DefaultRealValue  = 1.0
	DefaultPreference = 0.5
)

// Good describes one candy type: its ground-truth value, how fast it loses
// appeal, and display metadata for presentation layers.
type Good struct {
	RealValue   float64 `json:"real_value" yaml:"real_value"`
	DecayRate   float64 `json:"decay_rate" yaml:"decay_rate"`
	Color       string  `json:"color" yaml:"color"`
	Icon        string  `json:"icon" yaml:"icon"`
	Description string  `json:"description" yaml:"description"`
}

// DefaultGoods returns the built-in candy table, used when no config is
// available.
func DefaultGoods() map[CandyType]Good {
	return map[CandyType]Good{
		Chocolate: {RealValue: 8.0, DecayRate: 0.02, Color: "#8B4513", Icon: "C", Description: "The gold standard"},
		Fruity:    {RealValue: 5.0, DecayRate: 0.03, Color: "#FFC0CB", Icon: "F", Description: "Reliable mid-tier"},
		Sour:      {RealValue: 6.0, DecayRate: 0.03, Color: "#FFFF00", Icon: "S", Description: "Divisive but valuable"},
		Novelty:   {RealValue: 4.0, DecayRate: 0.05, Color: "#FF1493", Icon: "N", Description: "Trades on hype"},
		Health:    {RealValue: 2.0, DecayRate: 0.01, Color: "#00FF00", Icon: "H", Description: "Nobody's first choice"},
		Trash:     {RealValue: 1.0, DecayRate: 0.10, Color: "#808080", Icon: "T", Description: "Pennies and raisins"},
	}
}

// DisplayIcon returns the icon for a candy type, or "?" for unknown types.
func DisplayIcon(goods map[CandyType]Good, c CandyType) string {
	if g, ok := goods[c]; ok && g.Icon != "" {
		return g.Icon
	}
	return "?"
}

// DiscoveryMode selects how agents seed their believed values at spawn.
type DiscoveryMode string

const (
	DiscoveryFixed      DiscoveryMode = "fixed"      // copy real values
	DiscoveryRandom     DiscoveryMode = "random"     // uniform(0.5, 5.0)
	DiscoveryConvergent DiscoveryMode = "convergent" // real × uniform(0.5, 1.5)
)

// Settings are the recognized economy options. Unrecognized or missing
// options recover to these defaults.
type Settings struct {
	PriceDiscoveryMode  DiscoveryMode `json:"price_discovery_mode" yaml:"price_discovery_mode"`
	ConvergenceRate     float64       `json:"convergence_rate" yaml:"convergence_rate"`
	MarketHistoryWindow int           `json:"market_history_window" yaml:"market_history_window"`
	EnableMultiItem     bool          `json:"enable_multi_item_trades" yaml:"enable_multi_item_trades"`
}

// DefaultSettings returns the fallback economy settings.
func DefaultSettings() Settings {
	return Settings{
		PriceDiscoveryMode:  DiscoveryFixed,
		ConvergenceRate:     0.1,
		MarketHistoryWindow: 20,
		EnableMultiItem:     true,
	}
}
