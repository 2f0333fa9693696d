// Simulation ties the market, agents, rumors, and blocs together and runs
// them each tick.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/talgya/candymarket/internal/agents"
	"github.com/talgya/candymarket/internal/bloc"
	"github.com/talgya/candymarket/internal/economy"
	"github.com/talgya/candymarket/internal/rumor"
	"github.com/talgya/candymarket/internal/world"
)

// Defaults for the decision cadence and the neighbor query.
const (
	DefaultAIInterval    = 2.0   // sim-seconds between decision passes per agent
	DefaultTradeRadius   = 150.0 // how far an agent looks for partners
	DefaultRumorInterval = 20.0  // sim-seconds between spontaneous rumors
	RumorChancePerCheck  = 0.4
	MaxEvents            = 1000
)

// Event is a notable occurrence in the world.
type Event struct {
	Tick        uint64 `json:"tick" db:"tick"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"` // "trade", "rumor", "bloc"
}

// SimStats is the aggregate summary logged and served each period.
type SimStats struct {
	Population     int     `json:"population"`
	TotalTrades    int     `json:"total_trades"`
	TradesExecuted int     `json:"trades_executed"` // lifetime, not window-bounded
	TradesRejected int     `json:"trades_rejected"`
	TradesAborted  int     `json:"trades_aborted"`
	ActiveRumors   int     `json:"active_rumors"`
	ActiveBlocs    int     `json:"active_blocs"`
	AvgBeliefError float64 `json:"avg_belief_error"`
}

// Simulation holds the complete world state. All mutation happens on the
// tick goroutine inside Step; read-only consumers (the HTTP API) go
// through the mutex-guarded snapshot methods.
type Simulation struct {
	mu sync.RWMutex

	Market     *economy.Market
	Agents     []*agents.Agent
	AgentIndex map[agents.AgentID]*agents.Agent
	Rumors     *rumor.System
	Blocs      *bloc.Manager
	Grid       *world.Grid

	AIInterval  float64
	TradeRadius float64

	rng        *rand.Rand
	rumorTimer float64
	events     []Event
	lastTick   uint64
	stats      SimStats
}

// NewSimulation wires a simulation from built components. Market and
// settings are constructed once by the caller and injected; nothing here
// reaches for globals.
func NewSimulation(market *economy.Market, population []*agents.Agent, seed int64) *Simulation {
	index := make(map[agents.AgentID]*agents.Agent, len(population))
	grid := world.NewGrid(128)
	for _, a := range population {
		index[a.ID] = a
		grid.Insert(uint64(a.ID), a.Position)
	}

	s := &Simulation{
		Market:      market,
		Agents:      population,
		AgentIndex:  index,
		Rumors:      rumor.NewSystem(rand.New(rand.NewSource(seed + 100))),
		Blocs:       bloc.NewManager(),
		Grid:        grid,
		AIInterval:  DefaultAIInterval,
		TradeRadius: DefaultTradeRadius,
		rng:         rand.New(rand.NewSource(seed + 200)),
	}
	s.updateStats()
	return s
}

// CurrentTick returns the most recently processed tick.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTick
}

// SetLastTick primes the tick counter when restoring a saved world.
func (s *Simulation) SetLastTick(tick uint64) {
	s.lastTick = tick
}

// Step advances the whole world by dt sim-seconds: the fast pass (market,
// rumors, blocs, timers) every tick, and per-agent decision passes as
// their AI timers come due. Agents run strictly sequentially, so each
// trade is atomic relative to every other agent's view of the world.
func (s *Simulation) Step(tick uint64, dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTick = tick

	s.Market.Update(dt)
	s.Rumors.Update(dt, s)
	s.Blocs.Update(s.Agents, s.Market.Now())
	s.maybeStartRumor(tick, dt)

	for _, a := range s.Agents {
		if a.TradeCooldown > 0 {
			a.TradeCooldown -= dt
			if a.TradeCooldown < 0 {
				a.TradeCooldown = 0
			}
		}

		a.AITimer += dt
		if a.AITimer >= s.AIInterval {
			a.AITimer = 0
			s.aiTick(tick, a)
		}
	}
}

// maybeStartRumor occasionally has a random agent start a price rumor
// about a random candy, feeding the misinformation loop without any
// player input.
func (s *Simulation) maybeStartRumor(tick uint64, dt float64) {
	s.rumorTimer += dt
	if s.rumorTimer < DefaultRumorInterval {
		return
	}
	s.rumorTimer = 0

	if len(s.Agents) == 0 || s.rng.Float64() >= RumorChancePerCheck {
		return
	}

	origin := s.Agents[s.rng.Intn(len(s.Agents))]
	candy := s.randomCandy()
	believability := 0.3 + s.rng.Float64()*0.5
	r := s.Rumors.CreatePriceRumor(origin, candy, believability)

	s.recordEvent(tick, "rumor", fmt.Sprintf("%s started a rumor: %s", origin.Name, r.Content))
}

func (s *Simulation) randomCandy() economy.CandyType {
	goods := s.Market.Goods()
	types := make([]economy.CandyType, 0, len(goods))
	for c := range goods {
		types = append(types, c)
	}
	return types[s.rng.Intn(len(types))]
}

// NearbyAgents returns the agents within radius of a position. Implements
// the neighbor query the rumor system and trade seeking consume. Unlocked:
// callers are on the tick goroutine, which already holds the write lock.
func (s *Simulation) NearbyAgents(pos world.Vec2, radius float64) []*agents.Agent {
	ids := s.Grid.Nearby(pos, radius)
	out := make([]*agents.Agent, 0, len(ids))
	for _, id := range ids {
		if a, ok := s.AgentIndex[agents.AgentID(id)]; ok {
			out = append(out, a)
		}
	}
	return out
}

// AgentByID looks up a live agent. Unlocked, tick-goroutine only; other
// goroutines read agents through AgentDetail.
func (s *Simulation) AgentByID(id agents.AgentID) (*agents.Agent, bool) {
	a, ok := s.AgentIndex[id]
	return a, ok
}

func (s *Simulation) recordEvent(tick uint64, category, description string) {
	s.events = append(s.events, Event{Tick: tick, Description: description, Category: category})
	if len(s.events) > MaxEvents {
		s.events = s.events[len(s.events)-MaxEvents:]
	}
}

func (s *Simulation) updateStats() {
	marketStats := s.Market.MarketStats()
	s.stats.Population = len(s.Agents)
	s.stats.TotalTrades = marketStats.TotalTrades
	s.stats.ActiveRumors = len(s.Rumors.Active())
	s.stats.ActiveBlocs = len(s.Blocs.Blocs())
	s.stats.AvgBeliefError = s.avgBeliefError()
}

// avgBeliefError measures how far the population's beliefs sit from
// ground truth, the number price discovery should drive down.
func (s *Simulation) avgBeliefError() float64 {
	var sum float64
	var n int
	for _, a := range s.Agents {
		for candy, believed := range a.Beliefs() {
			diff := believed - s.Market.RealValue(candy)
			if diff < 0 {
				diff = -diff
			}
			sum += diff
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// LogSummary emits the periodic world report.
func (s *Simulation) LogSummary(tick uint64) {
	s.mu.Lock()
	s.updateStats()
	st := s.stats
	now := s.Market.Now()
	s.mu.Unlock()

	slog.Info("world report",
		"tick", tick,
		"sim_time", fmt.Sprintf("%.0fs", now),
		"population", st.Population,
		"trades_window", st.TotalTrades,
		"trades_executed", st.TradesExecuted,
		"trades_rejected", st.TradesRejected,
		"trades_aborted", st.TradesAborted,
		"active_rumors", st.ActiveRumors,
		"active_blocs", st.ActiveBlocs,
		"avg_belief_error", fmt.Sprintf("%.3f", st.AvgBeliefError),
	)
}

// Stats returns the latest aggregate summary.
func (s *Simulation) Stats() SimStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Events returns a copy of the recent event log.
func (s *Simulation) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
