// Agent trade-seeking: the four-step protocol every interaction follows,
// should-seek then propose then evaluate then execute.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/candymarket/internal/agents"
	"github.com/talgya/candymarket/internal/trade"
)

// aiTick runs one decision pass for an agent. Called from Step with the
// world lock held; everything below is synchronous and sequential.
func (s *Simulation) aiTick(tick uint64, a *agents.Agent) {
	if !s.shouldSeekTrade(a) {
		return
	}
	s.attemptTrade(tick, a)
}

// shouldSeekTrade gates trade-seeking: the agent needs at least two
// pieces to consider parting with one, an expired cooldown, and a roll
// against its personality's appetite scaled by mood.
func (s *Simulation) shouldSeekTrade(a *agents.Agent) bool {
	if a.TradeCooldown > 0 {
		return false
	}
	if a.TotalCandy() < 2 {
		return false
	}

	prob := a.Personality.SeekProbability() * a.Mood.SeekModifier()
	if prob > 1 {
		prob = 1
	}
	return s.rng.Float64() < prob
}

// attemptTrade finds a partner nearby, builds a proposal, lets the
// partner evaluate it with their own beliefs, and executes on acceptance.
func (s *Simulation) attemptTrade(tick uint64, a *agents.Agent) {
	var candidates []*agents.Agent
	for _, other := range s.NearbyAgents(a.Position, s.TradeRadius) {
		if other.ID == a.ID {
			continue
		}
		if other.TotalCandy() == 0 {
			continue
		}
		candidates = append(candidates, other)
	}
	if len(candidates) == 0 {
		return
	}

	partner := candidates[s.rng.Intn(len(candidates))]

	proposal, ok := trade.Propose(s.rng, a, partner, s.Market.Settings().EnableMultiItem)
	if !ok {
		return
	}

	score, accepted := trade.Evaluate(partner, proposal)
	if !accepted {
		s.stats.TradesRejected++
		return
	}

	learningRate := s.Market.Settings().ConvergenceRate
	if err := trade.Execute(s.Market, a, partner, proposal, learningRate); err != nil {
		if errors.Is(err, trade.ErrInsufficientInventory) {
			// Normal outcome: the proposal overestimated the inventory.
			// Nothing changed.
			s.stats.TradesAborted++
			slog.Debug("trade aborted", "proposer", a.ID, "partner", partner.ID, "reason", err)
			return
		}
		slog.Warn("trade failed", "proposer", a.ID, "partner", partner.ID, "error", err)
		return
	}

	s.stats.TradesExecuted++
	s.Blocs.RecordTrade(a, partner, score)
	s.recordEvent(tick, "trade", fmt.Sprintf("%s traded with %s", a.Name, partner.Name))

	slog.Debug("trade executed",
		"proposer", a.ID,
		"partner", partner.ID,
		"offer", proposal.Offer,
		"request", proposal.Request,
		"partner_score", fmt.Sprintf("%.2f", score),
	)
}
