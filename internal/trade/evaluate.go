package trade

import (
	"github.com/talgya/candymarket/internal/agents"
	"github.com/talgya/candymarket/internal/economy"
)

// Score evaluates an (offer, request) pair using only the evaluating
// agent's own beliefs; information asymmetry is the point. Offer is the
// give side, request the receive side.
//
//	base   = Σ believed(request)·qty − Σ believed(offer)·qty
//	scaled = base × personality multiplier × mood multiplier
//	final  = scaled + Σ pref(request)·qty·0.5 − Σ pref(offer)·qty·0.3
//
// The preference term is additive and deliberately not scaled by
// temperament: taste cuts through mood.
func Score(a *agents.Agent, offer, request map[economy.CandyType]int) float64 {
	var giveValue, receiveValue float64
	for candy, qty := range offer {
		giveValue += a.Belief(candy) * float64(qty)
	}
	for candy, qty := range request {
		receiveValue += a.Belief(candy) * float64(qty)
	}

	base := receiveValue - giveValue
	scaled := base * a.Personality.TradeMultiplier() * a.Mood.TradeMultiplier()

	var prefTerm float64
	for candy, qty := range request {
		prefTerm += a.Preference(candy) * float64(qty) * 0.5
	}
	for candy, qty := range offer {
		prefTerm -= a.Preference(candy) * float64(qty) * 0.3
	}

	return scaled + prefTerm
}

// Evaluate scores a proposal with the responder's beliefs and reports
// acceptance. The proposal is scored as posed: offer as the give side,
// request as the receive side.
func Evaluate(responder *agents.Agent, p Proposal) (float64, bool) {
	score := Score(responder, p.Offer, p.Request)
	return score, score > 0
}
