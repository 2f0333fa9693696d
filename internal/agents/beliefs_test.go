package agents

import (
	"math"
	"math/rand"
	"testing"

	"github.com/talgya/candymarket/internal/economy"
	"github.com/talgya/candymarket/internal/world"
)

func testAgent(id AgentID) *Agent {
	return NewAgent(id, "Test Kid", world.Vec2{X: 100, Y: 100})
}

func TestBeliefDefaultsForUnknown(t *testing.T) {
	a := testAgent(1)
	if got := a.Belief(economy.Chocolate); got != 1.0 {
		t.Errorf("Belief of unknown candy = %v, want 1.0", got)
	}
}

func TestSetBeliefClamp(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"negative", -5.0, BeliefMin},
		{"zero", 0, BeliefMin},
		{"below floor", 0.05, BeliefMin},
		{"in range", 5.0, 5.0},
		{"at ceiling", 10.0, 10.0},
		{"above ceiling", 15.0, BeliefMax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testAgent(1)
			a.SetBelief(economy.Sour, tt.value)
			if got := a.Belief(economy.Sour); got != tt.want {
				t.Errorf("SetBelief(%v) stored %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestUpdateBeliefsFromTrade(t *testing.T) {
	a := testAgent(1)
	a.SetBelief(economy.Fruity, 5.0)
	a.SetBelief(economy.Chocolate, 6.0)

	// Gave 1 FRUITY for 1 CHOCOLATE: implied price of CHOCOLATE is 5.0.
	// New belief = 6.0 + 0.1*(5.0-6.0) = 5.9.
	a.UpdateBeliefsFromTrade(
		map[economy.CandyType]int{economy.Fruity: 1},
		map[economy.CandyType]int{economy.Chocolate: 1},
		0.1,
	)

	if got := a.Belief(economy.Chocolate); math.Abs(got-5.9) > 1e-9 {
		t.Errorf("belief after trade = %v, want 5.9", got)
	}
	if got := a.Belief(economy.Fruity); got != 5.0 {
		t.Errorf("belief of offered candy changed to %v, want 5.0 untouched", got)
	}
}

func TestUpdateBeliefsExtremeImpliedPriceStaysClamped(t *testing.T) {
	a := testAgent(1)
	a.SetBelief(economy.Chocolate, 10.0)
	a.SetBelief(economy.Trash, 1.0)

	// Implied price of TRASH: 10.0 * 100 / 1 = 1000. The stored belief
	// must still land inside the clamp.
	a.UpdateBeliefsFromTrade(
		map[economy.CandyType]int{economy.Chocolate: 100},
		map[economy.CandyType]int{economy.Trash: 1},
		1.0,
	)

	if got := a.Belief(economy.Trash); got != BeliefMax {
		t.Errorf("belief after extreme implied price = %v, want clamped to %v", got, BeliefMax)
	}
}

func TestUpdateBeliefsSkipsZeroRequestQuantity(t *testing.T) {
	a := testAgent(1)
	a.SetBelief(economy.Sour, 6.0)

	a.UpdateBeliefsFromTrade(
		map[economy.CandyType]int{economy.Chocolate: 1},
		map[economy.CandyType]int{economy.Sour: 0},
		0.5,
	)

	if got := a.Belief(economy.Sour); got != 6.0 {
		t.Errorf("zero-quantity request moved belief to %v, want 6.0 unchanged", got)
	}
}

func TestInitializeBeliefs(t *testing.T) {
	market := economy.NewMarket(economy.DefaultGoods(), economy.DefaultSettings())
	rng := rand.New(rand.NewSource(99))

	t.Run("fixed copies real values", func(t *testing.T) {
		a := testAgent(1)
		a.InitializeBeliefs(market, economy.DiscoveryFixed, rng)
		for candy := range market.Goods() {
			if got := a.Belief(candy); got != market.RealValue(candy) {
				t.Errorf("fixed belief of %s = %v, want real %v", candy, got, market.RealValue(candy))
			}
		}
	})

	t.Run("random stays in noise range", func(t *testing.T) {
		a := testAgent(2)
		a.InitializeBeliefs(market, economy.DiscoveryRandom, rng)
		for candy := range market.Goods() {
			got := a.Belief(candy)
			if got < 0.5 || got > 5.0 {
				t.Errorf("random belief of %s = %v, want within [0.5, 5.0]", candy, got)
			}
		}
	})

	t.Run("convergent anchors on real value", func(t *testing.T) {
		a := testAgent(3)
		a.InitializeBeliefs(market, economy.DiscoveryConvergent, rng)
		for candy := range market.Goods() {
			got := a.Belief(candy)
			real := market.RealValue(candy)
			lo, hi := real*0.5, real*1.5
			// The clamp can pull very cheap candies up to the floor.
			if lo < BeliefMin {
				lo = BeliefMin
			}
			if got < lo || got > hi {
				t.Errorf("convergent belief of %s = %v, want within [%v, %v]", candy, got, lo, hi)
			}
		}
	})
}
