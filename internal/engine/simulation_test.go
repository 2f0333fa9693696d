package engine

import (
	"fmt"
	"math"
	"testing"

	"github.com/talgya/candymarket/internal/agents"
	"github.com/talgya/candymarket/internal/economy"
	"github.com/talgya/candymarket/internal/world"
)

func testSimulation(t *testing.T, n int) *Simulation {
	t.Helper()
	market := economy.NewMarket(economy.DefaultGoods(), economy.DefaultSettings())
	pop := make([]*agents.Agent, 0, n)
	for i := 0; i < n; i++ {
		a := agents.NewAgent(agents.AgentID(i+1), fmt.Sprintf("Agent %d", i+1),
			world.Vec2{X: float64(i) * 100, Y: 0})
		pop = append(pop, a)
	}
	return NewSimulation(market, pop, 7)
}

func TestNewSimulationWiring(t *testing.T) {
	s := testSimulation(t, 4)

	if len(s.AgentIndex) != 4 {
		t.Errorf("index has %d agents, want 4", len(s.AgentIndex))
	}
	if s.Grid.Len() != 4 {
		t.Errorf("grid has %d positions, want 4", s.Grid.Len())
	}
	if a, ok := s.AgentByID(2); !ok || a.Name != "Agent 2" {
		t.Errorf("AgentByID(2) = %v, %v", a, ok)
	}
	if s.Stats().Population != 4 {
		t.Errorf("initial population stat = %d, want 4", s.Stats().Population)
	}
}

func TestStepAdvancesClockAndCooldowns(t *testing.T) {
	s := testSimulation(t, 2)
	s.Agents[0].TradeCooldown = 0.25

	s.Step(1, 0.1)
	s.Step(2, 0.1)

	if got := s.Market.Now(); math.Abs(got-0.2) > 1e-9 {
		t.Errorf("market clock = %v after two 0.1s steps, want 0.2", got)
	}
	if got := s.Agents[0].TradeCooldown; math.Abs(got-0.05) > 1e-9 {
		t.Errorf("cooldown = %v, want 0.05", got)
	}
	if s.CurrentTick() != 2 {
		t.Errorf("CurrentTick = %d, want 2", s.CurrentTick())
	}

	// A third step drains the cooldown to exactly zero, never negative.
	s.Step(3, 0.1)
	if s.Agents[0].TradeCooldown != 0 {
		t.Errorf("cooldown = %v after draining, want 0", s.Agents[0].TradeCooldown)
	}
}

func TestNearbyAgentsRadius(t *testing.T) {
	// Agents sit at x = 0, 100, 200, 300.
	s := testSimulation(t, 4)

	near := s.NearbyAgents(world.Vec2{X: 0, Y: 0}, 150)
	ids := make(map[agents.AgentID]bool)
	for _, a := range near {
		ids[a.ID] = true
	}
	if len(near) != 2 || !ids[1] || !ids[2] {
		t.Errorf("NearbyAgents(150) = %v, want agents 1 and 2", ids)
	}

	if got := s.NearbyAgents(world.Vec2{X: 0, Y: 0}, 500); len(got) != 4 {
		t.Errorf("NearbyAgents(500) found %d agents, want 4", len(got))
	}
}

func TestEventsReturnsCopy(t *testing.T) {
	s := testSimulation(t, 1)
	s.recordEvent(1, "trade", "Agent 1 traded with Agent 1")

	events := s.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	events[0].Description = "mutated"
	if s.Events()[0].Description == "mutated" {
		t.Error("Events returned a reference to internal state")
	}
}

func TestEventLogBounded(t *testing.T) {
	s := testSimulation(t, 1)
	for i := 0; i < MaxEvents+50; i++ {
		s.recordEvent(uint64(i), "trade", "filler")
	}
	if got := len(s.Events()); got != MaxEvents {
		t.Errorf("event log = %d entries, want bounded at %d", got, MaxEvents)
	}
	if first := s.Events()[0].Tick; first != 50 {
		t.Errorf("oldest surviving event at tick %d, want 50", first)
	}
}

func TestAITickRunsOnInterval(t *testing.T) {
	s := testSimulation(t, 3)
	s.AIInterval = 0.2

	// Two 0.1s steps bring every AI timer due exactly once.
	s.Step(1, 0.1)
	s.Step(2, 0.1)

	for _, a := range s.Agents {
		if a.AITimer != 0 {
			t.Errorf("agent %d AI timer = %v, want reset to 0 after firing", a.ID, a.AITimer)
		}
	}
}
