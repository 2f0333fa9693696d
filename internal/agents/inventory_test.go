package agents

import (
	"testing"

	"github.com/talgya/candymarket/internal/economy"
)

func TestAddCandyIgnoresNonPositive(t *testing.T) {
	a := testAgent(1)
	a.AddCandy(economy.Chocolate, 0)
	a.AddCandy(economy.Chocolate, -3)
	if got := a.Quantity(economy.Chocolate); got != 0 {
		t.Errorf("quantity = %d after non-positive adds, want 0", got)
	}
}

func TestRemoveCandy(t *testing.T) {
	a := testAgent(1)
	a.AddCandy(economy.Sour, 2)

	if a.RemoveCandy(economy.Sour, 5) {
		t.Error("removing more than held should fail")
	}
	if got := a.Quantity(economy.Sour); got != 2 {
		t.Errorf("failed removal changed quantity to %d, want 2", got)
	}

	if a.RemoveCandy(economy.Sour, 0) {
		t.Error("removing zero should fail")
	}

	if !a.RemoveCandy(economy.Sour, 2) {
		t.Error("removing exactly the held quantity should succeed")
	}
	if got := a.Quantity(economy.Sour); got != 0 {
		t.Errorf("quantity = %d after removal, want 0", got)
	}
	if _, ok := a.Inventory()[economy.Sour]; ok {
		t.Error("zeroed entry should be dropped from the inventory map")
	}
}

func TestInventoryNeverNegativeUnderRandomOps(t *testing.T) {
	a := testAgent(1)
	ops := []struct {
		add bool
		qty int
	}{
		{true, 3}, {false, 1}, {false, 5}, {true, 2}, {false, 4},
		{false, 1}, {true, 1}, {false, 2}, {false, 2}, {false, 1},
	}
	for _, op := range ops {
		if op.add {
			a.AddCandy(economy.Fruity, op.qty)
		} else {
			a.RemoveCandy(economy.Fruity, op.qty)
		}
		if got := a.Quantity(economy.Fruity); got < 0 {
			t.Fatalf("quantity went negative: %d", got)
		}
	}
}

func TestTotalCandyAndValue(t *testing.T) {
	a := testAgent(1)
	a.AddCandy(economy.Chocolate, 2)
	a.AddCandy(economy.Trash, 3)

	if got := a.TotalCandy(); got != 5 {
		t.Errorf("TotalCandy = %d, want 5", got)
	}

	values := map[economy.CandyType]float64{
		economy.Chocolate: 8.0,
		economy.Trash:     1.0,
	}
	if got := a.TotalValue(values); got != 19.0 {
		t.Errorf("TotalValue = %v, want 19.0", got)
	}
}

func TestPreferenceClampAndDefault(t *testing.T) {
	a := testAgent(1)
	if got := a.Preference(economy.Novelty); got != economy.DefaultPreference {
		t.Errorf("default preference = %v, want %v", got, economy.DefaultPreference)
	}

	a.SetPreference(economy.Novelty, 1.7)
	if got := a.Preference(economy.Novelty); got != 1.0 {
		t.Errorf("preference = %v after over-set, want clamp to 1.0", got)
	}
	a.SetPreference(economy.Novelty, -0.4)
	if got := a.Preference(economy.Novelty); got != 0.0 {
		t.Errorf("preference = %v after under-set, want clamp to 0.0", got)
	}
}

func TestTrustClampAndDefault(t *testing.T) {
	a := testAgent(1)
	if got := a.Trust(42); got != 0.5 {
		t.Errorf("default trust = %v, want 0.5", got)
	}

	a.AdjustTrust(42, 0.9)
	if got := a.Trust(42); got != 1.0 {
		t.Errorf("trust = %v, want clamp to 1.0", got)
	}
	a.AdjustTrust(42, -2.0)
	if got := a.Trust(42); got != 0.0 {
		t.Errorf("trust = %v, want clamp to 0.0", got)
	}
}

func TestLogTradeEvictsOldest(t *testing.T) {
	a := testAgent(1)
	for i := 0; i < MaxRecentTrades+3; i++ {
		a.LogTrade(TradeLogEntry{PartnerID: AgentID(i), Timestamp: float64(i)})
	}
	if len(a.RecentTrades) != MaxRecentTrades {
		t.Fatalf("log length = %d, want %d", len(a.RecentTrades), MaxRecentTrades)
	}
	if a.RecentTrades[0].PartnerID != 3 {
		t.Errorf("oldest surviving entry partner = %d, want 3", a.RecentTrades[0].PartnerID)
	}
}

func TestReactToTrade(t *testing.T) {
	tests := []struct {
		name     string
		mood     Mood
		received int
		want     Mood
	}{
		{"big haul cheers up", MoodAnxious, 3, MoodHappy},
		{"thin trade worries neutral", MoodNeutral, 1, MoodAnxious},
		{"thin trade leaves greedy alone", MoodGreedy, 1, MoodGreedy},
		{"two pieces no change", MoodNeutral, 2, MoodNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testAgent(1)
			a.Mood = tt.mood
			a.ReactToTrade(tt.received)
			if a.Mood != tt.want {
				t.Errorf("mood = %v, want %v", a.Mood, tt.want)
			}
		})
	}
}
