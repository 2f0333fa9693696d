package engine

import (
	"math/rand"
	"testing"

	"github.com/talgya/candymarket/internal/economy"
)

func TestMarketSnapshotSortedCandies(t *testing.T) {
	s := testSimulation(t, 2)

	view := s.MarketSnapshot()
	if len(view.Candies) != len(s.Market.Goods()) {
		t.Fatalf("snapshot has %d candies, want %d", len(view.Candies), len(s.Market.Goods()))
	}
	for i := 1; i < len(view.Candies); i++ {
		if view.Candies[i-1].Candy >= view.Candies[i].Candy {
			t.Errorf("candies out of order: %s before %s", view.Candies[i-1].Candy, view.Candies[i].Candy)
		}
	}
}

func TestAgentViewsListsPopulation(t *testing.T) {
	s := testSimulation(t, 3)
	s.Agents[0].AddCandy(economy.Chocolate, 4)

	views := s.AgentViews()
	if len(views) != 3 {
		t.Fatalf("views = %d agents, want 3", len(views))
	}
	if views[0].TotalCandy != 4 {
		t.Errorf("agent 1 total candy = %d, want 4", views[0].TotalCandy)
	}
	if views[0].Personality != "VALUE_INVESTOR" || views[0].Mood != "NEUTRAL" {
		t.Errorf("agent 1 rendered as %s/%s", views[0].Personality, views[0].Mood)
	}
}

func TestAgentDetailIncludesRumors(t *testing.T) {
	s := testSimulation(t, 2)
	s.Agents[1].AddCandy(economy.Sour, 2)

	r := s.Rumors.CreatePriceRumor(s.Agents[0], economy.Chocolate, 0.8)
	r.SpreadTo(s.Agents[1].ID, 0, rand.New(rand.NewSource(1)))

	detail, ok := s.AgentDetail(2)
	if !ok {
		t.Fatal("AgentDetail(2) not found")
	}
	if detail.Inventory[economy.Sour] != 2 {
		t.Errorf("inventory SOUR = %d, want 2", detail.Inventory[economy.Sour])
	}
	if len(detail.Rumors) != 1 || detail.Rumors[0] != r.Content {
		t.Errorf("rumors = %v, want the one spread to agent 2", detail.Rumors)
	}

	if _, ok := s.AgentDetail(99); ok {
		t.Error("AgentDetail(99) found a nonexistent agent")
	}
}

func TestBlocViewsNamesMembers(t *testing.T) {
	s := testSimulation(t, 3)
	s.Blocs.Update(s.Agents, 1.0)

	views := s.BlocViews()
	if len(views) != 1 {
		t.Fatalf("views = %d blocs, want 1", len(views))
	}
	if len(views[0].Members) != 3 || views[0].Members[0] != "Agent 1" {
		t.Errorf("bloc members = %v, want the three founders by name", views[0].Members)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := testSimulation(t, 2)
	s.Agents[0].AddCandy(economy.Trash, 1)
	s.Step(1, 0.1)

	snap := s.Snapshot()
	if snap.Tick != 1 {
		t.Errorf("snapshot tick = %d, want 1", snap.Tick)
	}
	if len(snap.Agents) != 2 {
		t.Fatalf("snapshot has %d agents, want 2", len(snap.Agents))
	}

	// Mutating the live world must not reach into the snapshot.
	s.Agents[0].AddCandy(economy.Trash, 5)
	if got := snap.Agents[0].Quantity(economy.Trash); got != 1 {
		t.Errorf("snapshot inventory = %d after live mutation, want 1", got)
	}
}

// Views and snapshots are served to HTTP handlers while the tick
// goroutine keeps stepping; both sides share the simulation lock.
func TestViewsDuringLiveStepping(t *testing.T) {
	s := testSimulation(t, 6)
	for _, a := range s.Agents {
		a.AddCandy(economy.Chocolate, 3)
		a.AddCandy(economy.Trash, 3)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for tick := uint64(1); tick <= 400; tick++ {
			s.Step(tick, 0.5)
		}
	}()

	for {
		s.MarketSnapshot()
		s.AgentViews()
		s.AgentDetail(1)
		s.RumorViews()
		s.BlocViews()
		s.TradeHistory("", 10)
		s.Snapshot()
		s.SimTime()

		select {
		case <-done:
			return
		default:
		}
	}
}
