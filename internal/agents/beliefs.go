package agents

import (
	"math/rand"

	"github.com/talgya/candymarket/internal/economy"
)

// Belief returns the agent's believed value for a candy type. Unknown
// types default to 1.0, matching the market's unknown-good default.
func (a *Agent) Belief(candy economy.CandyType) float64 {
	if v, ok := a.believedValues[candy]; ok {
		return v
	}
	return economy.DefaultRealValue
}

// SetBelief stores a believed value, clamped to [BeliefMin, BeliefMax].
// Every write path goes through here, so the clamp invariant cannot be
// bypassed.
func (a *Agent) SetBelief(candy economy.CandyType, value float64) {
	if value < BeliefMin {
		value = BeliefMin
	}
	if value > BeliefMax {
		value = BeliefMax
	}
	a.believedValues[candy] = value
}

// Beliefs returns a copy of the agent's believed-value table.
func (a *Agent) Beliefs() map[economy.CandyType]float64 {
	beliefs := make(map[economy.CandyType]float64, len(a.believedValues))
	for c, v := range a.believedValues {
		beliefs[c] = v
	}
	return beliefs
}

// InitializeBeliefs seeds believed values for every known candy type
// according to the discovery mode. Called once at spawn.
//
//	fixed:      copy real values (perfect information)
//	random:     uniform(0.5, 5.0), pure noise
//	convergent: real × uniform(0.5, 1.5), noisy but anchored
func (a *Agent) InitializeBeliefs(market *economy.Market, mode economy.DiscoveryMode, rng *rand.Rand) {
	for candy := range market.Goods() {
		real := market.RealValue(candy)
		switch mode {
		case economy.DiscoveryRandom:
			a.SetBelief(candy, 0.5+rng.Float64()*4.5)
		case economy.DiscoveryConvergent:
			a.SetBelief(candy, real*(0.5+rng.Float64()))
		default: // fixed
			a.SetBelief(candy, real)
		}
	}
}

// UpdateBeliefsFromTrade nudges this agent's believed values toward the
// prices a completed trade implies. For every (offered, requested) pair
// the implied price of the requested candy is what the agent thinks the
// offered side was worth, spread over the requested quantity. Beliefs move
// a learning-rate fraction of the gap and stay clamped.
//
// Both participants call this with their own perspective (offer = what
// they gave). The update is symmetric but each side learns from its own
// beliefs, so information stays asymmetric.
func (a *Agent) UpdateBeliefsFromTrade(offer, request map[economy.CandyType]int, learningRate float64) {
	for offered, offQty := range offer {
		for requested, reqQty := range request {
			if reqQty == 0 {
				continue
			}
			implied := a.Belief(offered) * float64(offQty) / float64(reqQty)
			current := a.Belief(requested)
			a.SetBelief(requested, current+learningRate*(implied-current))
		}
	}
}
