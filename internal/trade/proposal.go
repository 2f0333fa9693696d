// Package trade implements the three trading steps every exchange goes
// through: proposal generation, evaluation, and atomic execution.
package trade

import (
	"math/rand"
	"sort"

	"github.com/talgya/candymarket/internal/agents"
	"github.com/talgya/candymarket/internal/economy"
)

// MultiItemChance is the probability of attempting a multi-item proposal
// when the config enables them.
const MultiItemChance = 0.3

// Proposal is an (offer, request) pair of candy→quantity maps. Offer is
// what the proposer puts on the table; Request is what they want back.
type Proposal struct {
	ProposerID  agents.AgentID            `json:"proposer_id"`
	ResponderID agents.AgentID            `json:"responder_id"`
	Offer       map[economy.CandyType]int `json:"offer"`
	Request     map[economy.CandyType]int `json:"request"`
}

// Propose builds a candidate trade from proposer toward partner. Returns
// false when either party holds nothing tradeable. Multi-item proposals
// are attempted with MultiItemChance when enabled; otherwise it is a
// simple one-for-one.
func Propose(rng *rand.Rand, proposer, partner *agents.Agent, multiItemEnabled bool) (Proposal, bool) {
	if multiItemEnabled && rng.Float64() < MultiItemChance {
		return proposeMultiItem(rng, proposer, partner)
	}
	return proposeSingleItem(rng, proposer, partner)
}

// proposeSingleItem offers one random held piece and requests the
// partner's candy the proposer scores highest: preference, halved when the
// proposer already holds some. Ties go to the first candidate encountered.
func proposeSingleItem(rng *rand.Rand, proposer, partner *agents.Agent) (Proposal, bool) {
	held := heldTypes(proposer)
	partnerHeld := heldTypes(partner)
	if len(held) == 0 || len(partnerHeld) == 0 {
		return Proposal{}, false
	}

	offerCandy := held[rng.Intn(len(held))]

	var best economy.CandyType
	bestScore := -1.0
	for _, candy := range partnerHeld {
		score := proposer.Preference(candy)
		if proposer.Quantity(candy) > 0 {
			score *= 0.5
		}
		if score > bestScore {
			bestScore = score
			best = candy
		}
	}

	return Proposal{
		ProposerID:  proposer.ID,
		ResponderID: partner.ID,
		Offer:       map[economy.CandyType]int{offerCandy: 1},
		Request:     map[economy.CandyType]int{best: 1},
	}, true
}

// proposeMultiItem samples 1–3 distinct candy types from each side, 1–2
// pieces apiece capped by held quantity.
func proposeMultiItem(rng *rand.Rand, proposer, partner *agents.Agent) (Proposal, bool) {
	offer := sampleBundle(rng, proposer)
	request := sampleBundle(rng, partner)
	if len(offer) == 0 || len(request) == 0 {
		return Proposal{}, false
	}
	return Proposal{
		ProposerID:  proposer.ID,
		ResponderID: partner.ID,
		Offer:       offer,
		Request:     request,
	}, true
}

func sampleBundle(rng *rand.Rand, a *agents.Agent) map[economy.CandyType]int {
	held := heldTypes(a)
	if len(held) == 0 {
		return nil
	}

	count := 1 + rng.Intn(3)
	if count > len(held) {
		count = len(held)
	}
	rng.Shuffle(len(held), func(i, j int) {
		held[i], held[j] = held[j], held[i]
	})

	bundle := make(map[economy.CandyType]int, count)
	for _, candy := range held[:count] {
		qty := 1 + rng.Intn(2)
		if have := a.Quantity(candy); qty > have {
			qty = have
		}
		bundle[candy] = qty
	}
	return bundle
}

// heldTypes lists the candy types an agent holds, in a stable order so
// tie-breaking and sampling are reproducible under a seeded rng.
func heldTypes(a *agents.Agent) []economy.CandyType {
	inv := a.Inventory()
	types := make([]economy.CandyType, 0, len(inv))
	for candy, qty := range inv {
		if qty > 0 {
			types = append(types, candy)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
