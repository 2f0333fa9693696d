package economy

import "math"

// Trade is one completed exchange, recorded once per distinct candy that
// changed hands. Records are immutable after creation.
type Trade struct {
	Candy     CandyType `json:"candy" db:"candy"`
	Price     float64   `json:"price" db:"price"`
	BuyerID   uint64    `json:"buyer_id" db:"buyer_id"`
	SellerID  uint64    `json:"seller_id" db:"seller_id"`
	Timestamp float64   `json:"timestamp" db:"timestamp"` // sim-seconds
}

// Market holds ground-truth values, the bounded trade history, and the
// derived market state. It is built once and passed by reference to every
// consumer; nothing reaches it through globals.
type Market struct {
	goods    map[CandyType]Good
	settings Settings

	history []Trade // bounded at settings.MarketHistoryWindow, oldest evicted first
	now     float64 // sim-seconds, advanced by Update

	// Cached price snapshot, refreshed by Update for Stats consumers.
	prices map[CandyType]float64

	// Price discovery convergence.
	discoveryActive   bool
	discoveryProgress float64

	// Market character derived from recent trades.
	volatility    float64 // [1, 2]
	trendStrength float64 // [0, 1]
}

// NewMarket creates a market over the given candy table and settings.
// A nil goods map falls back to the built-in table.
func NewMarket(goods map[CandyType]Good, settings Settings) *Market {
	if goods == nil {
		goods = DefaultGoods()
	}
	if settings.MarketHistoryWindow <= 0 {
		settings.MarketHistoryWindow = DefaultSettings().MarketHistoryWindow
	}
	return &Market{
		goods:           goods,
		settings:        settings,
		prices:          make(map[CandyType]float64),
		discoveryActive: true,
		volatility:      1.0,
	}
}

// Settings returns the economy settings the market was built with.
func (m *Market) Settings() Settings {
	return m.settings
}

// Goods returns the candy table. Callers must not mutate it.
func (m *Market) Goods() map[CandyType]Good {
	return m.goods
}

// Now returns the market's current sim-time in seconds.
func (m *Market) Now() float64 {
	return m.now
}

// RecordTrade appends a completed trade to the bounded history, evicting
// the oldest record on overflow.
func (m *Market) RecordTrade(candy CandyType, price float64, buyerID, sellerID uint64) {
	m.history = append(m.history, Trade{
		Candy:     candy,
		Price:     price,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		Timestamp: m.now,
	})
	if len(m.history) > m.settings.MarketHistoryWindow {
		m.history = m.history[len(m.history)-m.settings.MarketHistoryWindow:]
	}
}

// Restore primes the trade history and clock from a saved world. Records
// beyond the window are dropped oldest-first, same as live recording.
func (m *Market) Restore(history []Trade, now float64) {
	if len(history) > m.settings.MarketHistoryWindow {
		history = history[len(history)-m.settings.MarketHistoryWindow:]
	}
	m.history = append([]Trade(nil), history...)
	m.now = now
}

// RealValue returns the ground-truth value of a candy type. Unknown types
// default to 1.0 rather than erroring.
func (m *Market) RealValue(candy CandyType) float64 {
	if g, ok := m.goods[candy]; ok {
		return g.RealValue
	}
	return DefaultRealValue
}

// MarketPrice returns the recency-weighted average of historical prices
// for a candy type: weight(i) = 1 + 0.1·i with i counted from the oldest
// trade. With no history it falls back to the real value.
func (m *Market) MarketPrice(candy CandyType) float64 {
	var prices []float64
	for _, t := range m.history {
		if t.Candy == candy {
			prices = append(prices, t.Price)
		}
	}
	if len(prices) == 0 {
		return m.RealValue(candy)
	}
	return recencyWeightedAverage(prices)
}

// recencyWeightedAverage averages prices with weight 1 + 0.1·i so newer
// trades count more. Index 0 is the oldest price.
func recencyWeightedAverage(prices []float64) float64 {
	var weightedSum, weightSum float64
	for i, p := range prices {
		w := 1.0 + 0.1*float64(i)
		weightedSum += p * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return weightedSum / weightSum
}

// PriceTrend returns the relative change between the first and last of the
// last 5 trades for a candy type, clamped to [-1, 1]. Fewer than 2 trades,
// or a zero starting price, yields 0.
func (m *Market) PriceTrend(candy CandyType) float64 {
	var prices []float64
	for _, t := range m.history {
		if t.Candy == candy {
			prices = append(prices, t.Price)
		}
	}
	if len(prices) < 2 {
		return 0
	}
	if len(prices) > 5 {
		prices = prices[len(prices)-5:]
	}

	first := prices[0]
	last := prices[len(prices)-1]
	if first == 0 {
		return 0
	}
	trend := (last - first) / first
	return math.Max(-1, math.Min(1, trend))
}

// Update advances sim-time, progresses price discovery, and recomputes
// trend strength, volatility, and the cached price snapshot.
func (m *Market) Update(dt float64) {
	m.now += dt

	if m.discoveryActive {
		m.discoveryProgress += m.settings.ConvergenceRate * dt
		if m.discoveryProgress >= 1.0 {
			m.discoveryProgress = 1.0
			m.discoveryActive = false
		}
	}

	m.updateTrends()
	m.refreshPrices()
}

func (m *Market) refreshPrices() {
	byType := make(map[CandyType][]float64)
	for _, t := range m.history {
		byType[t.Candy] = append(byType[t.Candy], t.Price)
	}
	for candy, prices := range byType {
		m.prices[candy] = recencyWeightedAverage(prices)
	}
}

// updateTrends derives trend strength and volatility from price deltas
// between consecutive same-candy trades in the last 10 records.
func (m *Market) updateTrends() {
	if len(m.history) < 10 {
		return
	}

	recent := m.history[len(m.history)-10:]
	var changes []float64
	for i := 1; i < len(recent); i++ {
		if recent[i].Candy == recent[i-1].Candy {
			changes = append(changes, recent[i].Price-recent[i-1].Price)
		}
	}
	if len(changes) == 0 {
		return
	}

	var sum float64
	for _, c := range changes {
		sum += c
	}
	avg := sum / float64(len(changes))
	m.trendStrength = math.Min(1.0, math.Abs(avg)/2.0)

	var variance float64
	for _, c := range changes {
		variance += (c - avg) * (c - avg)
	}
	variance /= float64(len(changes))
	m.volatility = math.Min(2.0, 1.0+variance)
}

// Volatility returns the current market volatility, in [1, 2].
func (m *Market) Volatility() float64 {
	return m.volatility
}

// TrendStrength returns the current trend strength, in [0, 1].
func (m *Market) TrendStrength() float64 {
	return m.trendStrength
}

// DiscoveryActive reports whether price discovery is still converging.
func (m *Market) DiscoveryActive() bool {
	return m.discoveryActive
}

// DiscoveryProgress returns discovery progress in [0, 1].
func (m *Market) DiscoveryProgress() float64 {
	return m.discoveryProgress
}

// ForceDiscoveryComplete ends discovery immediately.
func (m *Market) ForceDiscoveryComplete() {
	m.discoveryActive = false
	m.discoveryProgress = 1.0
}

// ResetDiscovery restarts discovery from zero.
func (m *Market) ResetDiscovery() {
	m.discoveryActive = true
	m.discoveryProgress = 0.0
}

// History returns trade records, optionally filtered by candy type (empty
// string means all) and limited to the most recent N (0 means no limit).
// The returned slice is a copy.
func (m *Market) History(candy CandyType, limit int) []Trade {
	var trades []Trade
	for _, t := range m.history {
		if candy != "" && t.Candy != candy {
			continue
		}
		trades = append(trades, t)
	}
	if limit > 0 && len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}
	return trades
}

// Stats is a read-only summary for presentation consumers.
type Stats struct {
	TotalTrades       int                   `json:"total_trades"`
	DiscoveryActive   bool                  `json:"discovery_active"`
	DiscoveryProgress float64               `json:"discovery_progress"`
	Volatility        float64               `json:"volatility"`
	TrendStrength     float64               `json:"trend_strength"`
	MarketPrices      map[CandyType]float64 `json:"market_prices"`
	RealValues        map[CandyType]float64 `json:"real_values"`
}

// MarketStats returns the current market summary. It is side-effect-free
// and stable between Update calls.
func (m *Market) MarketStats() Stats {
	prices := make(map[CandyType]float64, len(m.prices))
	for c, p := range m.prices {
		prices[c] = p
	}
	real := make(map[CandyType]float64, len(m.goods))
	for c, g := range m.goods {
		real[c] = g.RealValue
	}
	return Stats{
		TotalTrades:       len(m.history),
		DiscoveryActive:   m.discoveryActive,
		DiscoveryProgress: m.discoveryProgress,
		Volatility:        m.volatility,
		TrendStrength:     m.trendStrength,
		MarketPrices:      prices,
		RealValues:        real,
	}
}
