package economy

import (
	"math"
	"testing"
)

func testMarket() *Market {
	return NewMarket(DefaultGoods(), DefaultSettings())
}

func TestMarketPriceNoHistory(t *testing.T) {
	m := testMarket()
	for candy, g := range m.Goods() {
		if got := m.MarketPrice(candy); got != g.RealValue {
			t.Errorf("MarketPrice(%s) = %v with no history, want real value %v", candy, got, g.RealValue)
		}
	}
}

func TestMarketPriceSingleTrade(t *testing.T) {
	m := testMarket()
	m.RecordTrade(Chocolate, 10.0, 1, 2)

	if got := m.MarketPrice(Chocolate); got != 10.0 {
		t.Errorf("MarketPrice(CHOCOLATE) = %v, want 10.0", got)
	}
	// Other candies stay at real value.
	if got := m.MarketPrice(Fruity); got != 5.0 {
		t.Errorf("MarketPrice(FRUITY) = %v, want 5.0", got)
	}
}

func TestMarketPriceRecencyWeighted(t *testing.T) {
	m := testMarket()
	for _, price := range []float64{6.0, 8.0, 10.0} {
		m.RecordTrade(Chocolate, price, 1, 2)
	}

	// Weights 1.0, 1.1, 1.2 oldest to newest: 31.6 / 3.3.
	want := 31.6 / 3.3
	if got := m.MarketPrice(Chocolate); math.Abs(got-want) > 1e-9 {
		t.Errorf("MarketPrice(CHOCOLATE) = %v, want %v", got, want)
	}
}

func TestRealValueUnknownCandy(t *testing.T) {
	m := testMarket()
	if got := m.RealValue(CandyType("GUM")); got != DefaultRealValue {
		t.Errorf("RealValue(GUM) = %v, want %v", got, DefaultRealValue)
	}
	if got := m.MarketPrice(CandyType("GUM")); got != DefaultRealValue {
		t.Errorf("MarketPrice(GUM) = %v, want %v", got, DefaultRealValue)
	}
}

func TestHistoryWindowEviction(t *testing.T) {
	settings := DefaultSettings()
	settings.MarketHistoryWindow = 5
	m := NewMarket(DefaultGoods(), settings)

	for i := 0; i < 8; i++ {
		m.RecordTrade(Chocolate, float64(i), 1, 2)
	}

	history := m.History("", 0)
	if len(history) != 5 {
		t.Fatalf("history length = %d, want 5", len(history))
	}
	if history[0].Price != 3.0 {
		t.Errorf("oldest surviving price = %v, want 3.0 (oldest evicted first)", history[0].Price)
	}
}

func TestHistoryFilterAndLimit(t *testing.T) {
	m := testMarket()
	m.RecordTrade(Chocolate, 1.0, 1, 2)
	m.RecordTrade(Fruity, 2.0, 1, 2)
	m.RecordTrade(Chocolate, 3.0, 1, 2)
	m.RecordTrade(Chocolate, 4.0, 1, 2)

	choc := m.History(Chocolate, 0)
	if len(choc) != 3 {
		t.Fatalf("History(CHOCOLATE) length = %d, want 3", len(choc))
	}

	limited := m.History(Chocolate, 2)
	if len(limited) != 2 {
		t.Fatalf("History(CHOCOLATE, 2) length = %d, want 2", len(limited))
	}
	if limited[0].Price != 3.0 || limited[1].Price != 4.0 {
		t.Errorf("limit should keep the most recent trades, got %+v", limited)
	}
}

func TestPriceTrend(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   float64
	}{
		{"no trades", nil, 0},
		{"single trade", []float64{5}, 0},
		{"flat", []float64{5, 5}, 0},
		{"rising clamped", []float64{1, 10}, 1.0},
		{"falling", []float64{10, 1}, -0.9},
		{"first of window zero", []float64{0, 5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMarket()
			for _, p := range tt.prices {
				m.RecordTrade(Sour, p, 1, 2)
			}
			if got := m.PriceTrend(Sour); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PriceTrend = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarketStatsIdempotent(t *testing.T) {
	m := testMarket()
	m.RecordTrade(Chocolate, 9.0, 1, 2)
	m.RecordTrade(Fruity, 4.0, 2, 1)
	m.Update(0.1)

	a := m.MarketStats()
	b := m.MarketStats()

	if a.TotalTrades != b.TotalTrades ||
		a.Volatility != b.Volatility ||
		a.TrendStrength != b.TrendStrength ||
		a.DiscoveryProgress != b.DiscoveryProgress {
		t.Errorf("MarketStats changed between calls without an Update: %+v vs %+v", a, b)
	}
	for candy, price := range a.MarketPrices {
		if b.MarketPrices[candy] != price {
			t.Errorf("price of %s changed between calls: %v vs %v", candy, price, b.MarketPrices[candy])
		}
	}
}

func TestUpdateAdvancesClockAndDiscovery(t *testing.T) {
	m := testMarket()
	if m.Now() != 0 {
		t.Fatalf("fresh market Now() = %v, want 0", m.Now())
	}
	if !m.DiscoveryActive() {
		t.Fatal("fresh market should have discovery active")
	}

	for i := 0; i < 20; i++ {
		m.Update(0.5)
	}
	if m.Now() != 10.0 {
		t.Errorf("Now() = %v after 20 updates of 0.5, want 10.0", m.Now())
	}

	m.ForceDiscoveryComplete()
	if m.DiscoveryActive() {
		t.Error("discovery still active after ForceDiscoveryComplete")
	}
	if m.DiscoveryProgress() != 1.0 {
		t.Errorf("DiscoveryProgress = %v, want 1.0", m.DiscoveryProgress())
	}

	m.ResetDiscovery()
	if !m.DiscoveryActive() || m.DiscoveryProgress() != 0 {
		t.Error("ResetDiscovery should restart the convergence")
	}
}

func TestVolatilityBounds(t *testing.T) {
	m := testMarket()
	// Wildly swinging prices should raise volatility but never past 2.
	prices := []float64{1, 50, 2, 80, 3, 100, 1, 90, 5, 70}
	for _, p := range prices {
		m.RecordTrade(Chocolate, p, 1, 2)
	}
	m.Update(0.1)

	v := m.Volatility()
	if v < 1.0 || v > 2.0 {
		t.Errorf("Volatility = %v, want within [1, 2]", v)
	}
	if v == 1.0 {
		t.Error("swinging prices should push volatility above the floor")
	}

	ts := m.TrendStrength()
	if ts < 0 || ts > 1 {
		t.Errorf("TrendStrength = %v, want within [0, 1]", ts)
	}
}
