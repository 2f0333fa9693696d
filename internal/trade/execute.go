package trade

import (
	"errors"

	"github.com/talgya/candymarket/internal/agents"
	"github.com/talgya/candymarket/internal/economy"
)

// CooldownDuration is applied to both participants after a trade.
const CooldownDuration = 3.0

// ErrInsufficientInventory is returned when either side cannot cover the
// proposal. It is a normal outcome, not a fault: callers log it and move
// on, and no state has changed.
var ErrInsufficientInventory = errors.New("insufficient inventory for trade")

// Execute atomically applies an accepted proposal: strict verify of both
// legs, then the swap, then market records, belief updates, trade logs,
// and cooldowns. Either everything applies or nothing does.
func Execute(market *economy.Market, proposer, responder *agents.Agent, p Proposal, learningRate float64) error {
	// Verify before touching anything. Inventories change only after both
	// sides are known to cover their legs, so a failed precondition is a
	// pure no-op.
	for candy, qty := range p.Offer {
		if !proposer.HasCandy(candy, qty) {
			return ErrInsufficientInventory
		}
	}
	for candy, qty := range p.Request {
		if !responder.HasCandy(candy, qty) {
			return ErrInsufficientInventory
		}
	}

	// Apply both legs.
	for candy, qty := range p.Offer {
		proposer.RemoveCandy(candy, qty)
		responder.AddCandy(candy, qty)
	}
	for candy, qty := range p.Request {
		responder.RemoveCandy(candy, qty)
		proposer.AddCandy(candy, qty)
	}

	// One market record per distinct offered candy. The recorded price is
	// the offered quantity, a stand-in for a negotiated price.
	for candy, qty := range p.Offer {
		market.RecordTrade(candy, float64(qty), uint64(responder.ID), uint64(proposer.ID))
	}

	// Both sides learn from the trade using their own beliefs.
	proposer.UpdateBeliefsFromTrade(p.Offer, p.Request, learningRate)
	responder.UpdateBeliefsFromTrade(p.Request, p.Offer, learningRate)

	now := market.Now()
	proposer.LogTrade(agents.TradeLogEntry{
		PartnerID: responder.ID,
		Gave:      copyBundle(p.Offer),
		Got:       copyBundle(p.Request),
		Timestamp: now,
	})
	responder.LogTrade(agents.TradeLogEntry{
		PartnerID: proposer.ID,
		Gave:      copyBundle(p.Request),
		Got:       copyBundle(p.Offer),
		Timestamp: now,
	})

	proposer.TradeCooldown = CooldownDuration
	responder.TradeCooldown = CooldownDuration

	proposer.ReactToTrade(totalPieces(p.Request))
	responder.ReactToTrade(totalPieces(p.Offer))

	return nil
}

func copyBundle(b map[economy.CandyType]int) map[economy.CandyType]int {
	out := make(map[economy.CandyType]int, len(b))
	for c, q := range b {
		out[c] = q
	}
	return out
}

func totalPieces(b map[economy.CandyType]int) int {
	total := 0
	for _, q := range b {
		total += q
	}
	return total
}
