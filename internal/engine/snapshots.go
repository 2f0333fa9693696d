package engine

import (
	"sort"

	"github.com/talgya/candymarket/internal/agents"
	"github.com/talgya/candymarket/internal/bloc"
	"github.com/talgya/candymarket/internal/economy"
	"github.com/talgya/candymarket/internal/rumor"
	"github.com/talgya/candymarket/internal/world"
)

// Read-side views of the world. The tick goroutine mutates state inside
// Step while holding the write lock; everything here takes the read lock,
// copies what it returns, and releases, so HTTP handlers and the
// persistence layer never touch live state.

// SimTime returns the market clock in sim-seconds.
func (s *Simulation) SimTime() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Market.Now()
}

// CandyView is one candy's market line.
type CandyView struct {
	Candy       economy.CandyType `json:"candy"`
	RealValue   float64           `json:"real_value"`
	MarketPrice float64           `json:"market_price"`
	PriceTrend  float64           `json:"price_trend"`
	Icon        string            `json:"icon"`
	Color       string            `json:"color"`
}

// MarketView summarizes the market for presentation consumers.
type MarketView struct {
	Candies           []CandyView `json:"candies"`
	Volatility        float64     `json:"volatility"`
	TrendStrength     float64     `json:"trend_strength"`
	TradesInWindow    int         `json:"trades_in_window"`
	DiscoveryActive   bool        `json:"discovery_active"`
	DiscoveryProgress float64     `json:"discovery_progress"`
}

// MarketSnapshot returns the market summary with candies sorted by type.
func (s *Simulation) MarketSnapshot() MarketView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	goods := s.Market.Goods()
	candies := make([]CandyView, 0, len(goods))
	for candy, g := range goods {
		candies = append(candies, CandyView{
			Candy:       candy,
			RealValue:   g.RealValue,
			MarketPrice: s.Market.MarketPrice(candy),
			PriceTrend:  s.Market.PriceTrend(candy),
			Icon:        g.Icon,
			Color:       g.Color,
		})
	}
	sort.Slice(candies, func(i, j int) bool { return candies[i].Candy < candies[j].Candy })

	stats := s.Market.MarketStats()
	return MarketView{
		Candies:           candies,
		Volatility:        stats.Volatility,
		TrendStrength:     stats.TrendStrength,
		TradesInWindow:    stats.TotalTrades,
		DiscoveryActive:   stats.DiscoveryActive,
		DiscoveryProgress: stats.DiscoveryProgress,
	}
}

// TradeHistory returns a copy of the trade window, optionally filtered by
// candy type and limited to the most recent N.
func (s *Simulation) TradeHistory(candy economy.CandyType, limit int) []economy.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Market.History(candy, limit)
}

// AgentView is one agent's listing line.
type AgentView struct {
	ID          agents.AgentID `json:"id"`
	Name        string         `json:"name"`
	Personality string         `json:"personality"`
	Mood        string         `json:"mood"`
	TotalCandy  int            `json:"total_candy"`
	BlocID      *uint64        `json:"bloc_id,omitempty"`
}

// AgentViews returns the population listing.
func (s *Simulation) AgentViews() []AgentView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]AgentView, 0, len(s.Agents))
	for _, a := range s.Agents {
		v := AgentView{
			ID:          a.ID,
			Name:        a.Name,
			Personality: a.Personality.String(),
			Mood:        a.Mood.String(),
			TotalCandy:  a.TotalCandy(),
		}
		if a.BlocID != nil {
			id := *a.BlocID
			v.BlocID = &id
		}
		out = append(out, v)
	}
	return out
}

// AgentDetailView is one agent's full public state, including the rumors
// currently affecting it.
type AgentDetailView struct {
	ID            agents.AgentID                `json:"id"`
	Name          string                        `json:"name"`
	Position      world.Vec2                    `json:"position"`
	Personality   string                        `json:"personality"`
	Mood          string                        `json:"mood"`
	Inventory     map[economy.CandyType]int     `json:"inventory"`
	Beliefs       map[economy.CandyType]float64 `json:"beliefs"`
	Preferences   map[economy.CandyType]float64 `json:"preferences"`
	TradeCooldown float64                       `json:"trade_cooldown"`
	RecentTrades  []agents.TradeLogEntry        `json:"recent_trades"`
	BlocID        *uint64                       `json:"bloc_id"`
	Rumors        []string                      `json:"rumors"`
}

// AgentDetail returns the full view of one agent.
func (s *Simulation) AgentDetail(id agents.AgentID) (AgentDetailView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.AgentIndex[id]
	if !ok {
		return AgentDetailView{}, false
	}

	rumors := s.Rumors.Affecting(a.ID)
	contents := make([]string, 0, len(rumors))
	for _, r := range rumors {
		contents = append(contents, r.Content)
	}

	v := AgentDetailView{
		ID:            a.ID,
		Name:          a.Name,
		Position:      a.Position,
		Personality:   a.Personality.String(),
		Mood:          a.Mood.String(),
		Inventory:     a.Inventory(),
		Beliefs:       a.Beliefs(),
		Preferences:   a.Preferences(),
		TradeCooldown: a.TradeCooldown,
		RecentTrades:  append([]agents.TradeLogEntry(nil), a.RecentTrades...),
		Rumors:        contents,
	}
	if a.BlocID != nil {
		blocID := *a.BlocID
		v.BlocID = &blocID
	}
	return v, true
}

// RumorView is one active rumor's listing line.
type RumorView struct {
	ID            string  `json:"id"`
	Kind          string  `json:"kind"`
	Content       string  `json:"content"`
	OriginID      uint64  `json:"origin_id"`
	Believability float64 `json:"believability"`
	Age           float64 `json:"age"`
	State         string  `json:"state"`
	SpreadCount   int     `json:"spread_count"`
	Mutations     int     `json:"mutations"`
}

// RumorViews returns the active rumor listing.
func (s *Simulation) RumorViews() []RumorView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]RumorView, 0)
	for _, r := range s.Rumors.Active() {
		out = append(out, RumorView{
			ID:            r.ID,
			Kind:          r.Kind.String(),
			Content:       r.Content,
			OriginID:      uint64(r.OriginID),
			Believability: r.Believability,
			Age:           r.Age,
			State:         r.CurrentState().String(),
			SpreadCount:   r.SpreadCount,
			Mutations:     r.Mutations,
		})
	}
	return out
}

// BlocView is one trading bloc's listing line. Members are names, not IDs.
type BlocView struct {
	ID             uint64   `json:"id"`
	Members        []string `json:"members"`
	Strength       float64  `json:"strength"`
	InternalTrades int      `json:"internal_trades"`
	ExternalTrades int      `json:"external_trades"`
	TotalProfit    float64  `json:"total_profit"`
}

// BlocViews returns the active bloc listing.
func (s *Simulation) BlocViews() []BlocView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]BlocView, 0)
	for _, b := range s.Blocs.Blocs() {
		names := make([]string, 0, len(b.Members))
		for _, id := range b.Members {
			if a, ok := s.AgentIndex[id]; ok {
				names = append(names, a.Name)
			}
		}
		out = append(out, BlocView{
			ID:             b.ID,
			Members:        names,
			Strength:       b.Strength,
			InternalTrades: b.InternalTrades,
			ExternalTrades: b.ExternalTrades,
			TotalProfit:    b.TotalProfit,
		})
	}
	return out
}

// WorldSnapshot is a consistent deep copy of everything the persistence
// layer stores. Taking it holds the read lock once; writing it to disk
// happens lock-free afterwards.
type WorldSnapshot struct {
	Tick   uint64
	Agents []*agents.Agent
	Trades []economy.Trade
	Rumors []*rumor.Rumor
	Blocs  []*bloc.Bloc
	Events []Event
}

// Snapshot captures the full world state for saving.
func (s *Simulation) Snapshot() WorldSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	population := make([]*agents.Agent, 0, len(s.Agents))
	for _, a := range s.Agents {
		population = append(population, a.Clone())
	}
	rumors := make([]*rumor.Rumor, 0)
	for _, r := range s.Rumors.Active() {
		rumors = append(rumors, r.Clone())
	}
	blocs := make([]*bloc.Bloc, 0)
	for _, b := range s.Blocs.Blocs() {
		blocs = append(blocs, b.Clone())
	}
	events := make([]Event, len(s.events))
	copy(events, s.events)

	return WorldSnapshot{
		Tick:   s.lastTick,
		Agents: population,
		Trades: s.Market.History("", 0),
		Rumors: rumors,
		Blocs:  blocs,
		Events: events,
	}
}
