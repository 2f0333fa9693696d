// Package bloc implements trading blocs: emergent coalitions of agents
// who trade preferentially and pool belief information.
package bloc

import (
	"github.com/talgya/candymarket/internal/agents"
	"github.com/talgya/candymarket/internal/economy"
)

// MinMembersToForm is the membership floor for a bloc to count as formed;
// below MinMembersToSurvive it dissolves.
const (
	MinMembersToForm    = 3
	MinMembersToSurvive = 2
)

// Bloc is one coalition. Membership order is preserved; fracture keeps
// the longest-standing members.
type Bloc struct {
	ID      uint64           `json:"id"`
	Members []agents.AgentID `json:"members"`

	// SharedBeliefs is the coalition's pooled view of candy values,
	// merged 70/30 from member reports.
	SharedBeliefs map[economy.CandyType]float64 `json:"shared_beliefs"`

	InternalTrades int     `json:"internal_trades"`
	ExternalTrades int     `json:"external_trades"`
	TotalProfit    float64 `json:"total_profit"`

	// Strength is derived from membership and internal-trade ratio, [0,1].
	Strength float64 `json:"strength"`

	FormedAt float64 `json:"formed_at"`
}

// NewBloc creates an empty bloc.
func NewBloc(id uint64, formedAt float64) *Bloc {
	return &Bloc{
		ID:            id,
		SharedBeliefs: make(map[economy.CandyType]float64),
		FormedAt:      formedAt,
	}
}

// Clone returns a deep copy for snapshot consumers.
func (b *Bloc) Clone() *Bloc {
	c := *b
	c.Members = append([]agents.AgentID(nil), b.Members...)
	c.SharedBeliefs = make(map[economy.CandyType]float64, len(b.SharedBeliefs))
	for candy, v := range b.SharedBeliefs {
		c.SharedBeliefs[candy] = v
	}
	return &c
}

// AddMember adds an agent, ignoring duplicates.
func (b *Bloc) AddMember(id agents.AgentID) {
	if b.IsMember(id) {
		return
	}
	b.Members = append(b.Members, id)
	b.updateStrength()
}

// RemoveMember drops an agent from the bloc.
func (b *Bloc) RemoveMember(id agents.AgentID) {
	for i, m := range b.Members {
		if m == id {
			b.Members = append(b.Members[:i], b.Members[i+1:]...)
			b.updateStrength()
			return
		}
	}
}

// IsMember reports membership.
func (b *Bloc) IsMember(id agents.AgentID) bool {
	for _, m := range b.Members {
		if m == id {
			return true
		}
	}
	return false
}

// MemberCount returns the number of members.
func (b *Bloc) MemberCount() int {
	return len(b.Members)
}

// CanForm reports whether the bloc has enough members to count as formed.
func (b *Bloc) CanForm() bool {
	return len(b.Members) >= MinMembersToForm
}

// updateStrength recomputes strength: membership contributes up to 1.0 at
// ten members, internal-trade ratio adds up to 0.3, capped at 1.0.
func (b *Bloc) updateStrength() {
	memberStrength := float64(len(b.Members)) / 10.0
	if memberStrength > 1 {
		memberStrength = 1
	}

	var tradingBonus float64
	total := b.InternalTrades + b.ExternalTrades
	if total > 0 {
		tradingBonus = float64(b.InternalTrades) / float64(total) * 0.3
	}

	b.Strength = memberStrength + tradingBonus
	if b.Strength > 1 {
		b.Strength = 1
	}
}

// RecordTrade counts a trade as internal when both participants are
// members, external otherwise.
func (b *Bloc) RecordTrade(a, other agents.AgentID, profit float64) {
	if b.IsMember(a) && b.IsMember(other) {
		b.InternalTrades++
		b.TotalProfit += profit
	} else {
		b.ExternalTrades++
	}
	b.updateStrength()
}

// MergeBeliefs folds a member's belief report into the shared view:
// 70% existing, 30% new. Non-members are ignored.
func (b *Bloc) MergeBeliefs(reporter agents.AgentID, beliefs map[economy.CandyType]float64) {
	if !b.IsMember(reporter) {
		return
	}
	for candy, value := range beliefs {
		if existing, ok := b.SharedBeliefs[candy]; ok {
			b.SharedBeliefs[candy] = existing*0.7 + value*0.3
		} else {
			b.SharedBeliefs[candy] = value
		}
	}
}

// SharedBelief returns the pooled belief for a candy type, if any.
func (b *Bloc) SharedBelief(candy economy.CandyType) (float64, bool) {
	v, ok := b.SharedBeliefs[candy]
	return v, ok
}

// TradingBonus is the rate multiplier members enjoy, 1.0–1.5.
func (b *Bloc) TradingBonus() float64 {
	return 1.0 + b.Strength*0.5
}

// InformationAdvantage is the information-sharing multiplier, 1.0–2.0.
func (b *Bloc) InformationAdvantage() float64 {
	return 1.0 + b.Strength*1.0
}

// ShouldFracture checks the two fracture conditions: membership below the
// survival floor, or members doing most of their trading outside the bloc.
func (b *Bloc) ShouldFracture() bool {
	if len(b.Members) < MinMembersToSurvive {
		return true
	}
	total := b.InternalTrades + b.ExternalTrades
	if total > 0 {
		externalRatio := float64(b.ExternalTrades) / float64(total)
		if externalRatio > 0.7 {
			return true
		}
	}
	return false
}

// Fracture sheds half the membership (keeping the longest-standing half,
// at least one member) and resets the trade counters. The caller decides
// whether what remains survives.
func (b *Bloc) Fracture() []agents.AgentID {
	if len(b.Members) == 0 {
		return nil
	}
	keep := len(b.Members) / 2
	if keep < 1 {
		keep = 1
	}
	remaining := b.Members[:keep]

	b.Members = remaining
	b.InternalTrades = 0
	b.ExternalTrades = 0
	b.TotalProfit = 0
	b.updateStrength()

	return remaining
}
