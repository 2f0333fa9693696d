package rumor

import (
	"math"
	"math/rand"
	"testing"

	"github.com/talgya/candymarket/internal/agents"
	"github.com/talgya/candymarket/internal/economy"
	"github.com/talgya/candymarket/internal/world"
)

// stubRoster serves a fixed population where everyone is near everyone.
type stubRoster struct {
	population []*agents.Agent
}

func (r *stubRoster) NearbyAgents(pos world.Vec2, radius float64) []*agents.Agent {
	return r.population
}

func (r *stubRoster) AgentByID(id agents.AgentID) (*agents.Agent, bool) {
	for _, a := range r.population {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

func makePopulation(n int) []*agents.Agent {
	out := make([]*agents.Agent, 0, n)
	for i := 0; i < n; i++ {
		a := agents.NewAgent(agents.AgentID(i+1), "Kid", world.Vec2{X: float64(i)})
		a.SetBelief(economy.Chocolate, 4.0)
		out = append(out, a)
	}
	return out
}

func TestCreatePriceRumorPerturbsOriginBelief(t *testing.T) {
	sys := NewSystem(rand.New(rand.NewSource(1)))
	origin := makePopulation(1)[0]

	r := sys.CreatePriceRumor(origin, economy.Chocolate, 0.8)
	if r.TargetCandy != economy.Chocolate {
		t.Errorf("TargetCandy = %s, want CHOCOLATE", r.TargetCandy)
	}
	if r.Content == "" {
		t.Error("price rumor should carry generated content")
	}

	// Effect 1.0*1.0*0.8 = 0.8: belief 4.0 -> 3.2.
	if got := origin.Belief(economy.Chocolate); math.Abs(got-3.2) > 1e-9 {
		t.Errorf("origin belief = %v after rumor, want 3.2", got)
	}
}

func TestSpreadAppliesEffectOnce(t *testing.T) {
	sys := NewSystem(rand.New(rand.NewSource(1)))
	sys.SpreadChance = 1.0
	sys.MutationChance = 0

	population := makePopulation(4)
	roster := &stubRoster{population: population}

	sys.CreatePriceRumor(population[0], economy.Chocolate, 0.75)

	sys.Update(1.0, roster)
	afterFirst := make(map[agents.AgentID]float64)
	for _, a := range population[1:] {
		afterFirst[a.ID] = a.Belief(economy.Chocolate)
		if a.Belief(economy.Chocolate) == 4.0 {
			t.Errorf("agent %d belief unchanged after guaranteed spread", a.ID)
		}
	}

	// Second update: everyone has heard it, no re-application.
	sys.Update(1.0, roster)
	for _, a := range population[1:] {
		if got := a.Belief(economy.Chocolate); got != afterFirst[a.ID] {
			t.Errorf("agent %d belief moved from %v to %v on resend", a.ID, afterFirst[a.ID], got)
		}
	}
}

func TestUpdateDropsExpiredRumors(t *testing.T) {
	sys := NewSystem(rand.New(rand.NewSource(1)))
	population := makePopulation(2)
	roster := &stubRoster{population: population}

	r := sys.CreatePriceRumor(population[0], economy.Sour, 0.9)
	if len(sys.Active()) != 1 {
		t.Fatalf("active rumors = %d, want 1", len(sys.Active()))
	}

	r.Age = r.MaxAge * 2
	sys.Update(0.1, roster)
	if len(sys.Active()) != 0 {
		t.Errorf("active rumors = %d after expiry, want 0", len(sys.Active()))
	}
}

func TestPersonRumorLowersTrust(t *testing.T) {
	sys := NewSystem(rand.New(rand.NewSource(1)))
	sys.SpreadChance = 1.0
	sys.MutationChance = 0

	population := makePopulation(3)
	roster := &stubRoster{population: population}

	r := sys.Create(KindPerson, population[0], "don't trade with them!", 0.5)
	r.TargetAgent = population[2].ID

	sys.Update(1.0, roster)

	// Trust delta -0.3*1.0*0.5 = -0.15 from the default 0.5.
	listener := population[1]
	if got := listener.Trust(population[2].ID); math.Abs(got-0.35) > 1e-9 {
		t.Errorf("trust = %v after person rumor, want 0.35", got)
	}
}

func TestSystemStats(t *testing.T) {
	sys := NewSystem(rand.New(rand.NewSource(1)))
	population := makePopulation(1)

	sys.CreatePriceRumor(population[0], economy.Chocolate, 0.8)
	sys.Create(KindSupply, population[0], "", 0.6)

	stats := sys.SystemStats()
	if stats.ActiveRumors != 2 {
		t.Errorf("ActiveRumors = %d, want 2", stats.ActiveRumors)
	}
	if stats.ByKind["PRICE"] != 1 || stats.ByKind["SUPPLY"] != 1 {
		t.Errorf("ByKind = %v, want one PRICE and one SUPPLY", stats.ByKind)
	}
}
