// Package agents provides the agent data model: personality, mood,
// inventory, and private beliefs about candy values.
package agents

import (
	"github.com/talgya/candymarket/internal/economy"
	"github.com/talgya/candymarket/internal/world"
)

// AgentID is a unique identifier for an agent.
type AgentID uint64

// Personality fixes an agent's trading temperament at spawn. Each variant
// carries its evaluation multiplier and trade-seeking probability so there
// is no string dispatch and no missing-key fallback at decision time.
type Personality uint8

const (
	ValueInvestor  Personality = iota // patient, holds out for value
	MomentumTrader                    // chases whatever is moving
	Hoarder                           // parts with nothing cheaply
	SocialTrader                      // trades for the company
	PanicSeller                       // dumps at the first worry
)

// TradeMultiplier scales the base score when this personality evaluates a
// proposal.
func (p Personality) TradeMultiplier() float64 {
	switch p {
	case ValueInvestor:
		return 1.3
	case MomentumTrader:
		return 1.0
	case Hoarder:
		return 1.5
	case SocialTrader:
		return 0.7
	case PanicSeller:
		return 0.5
	}
	return 1.0
}

// SeekProbability is the base per-AI-tick chance this personality goes
// looking for a trade.
func (p Personality) SeekProbability() float64 {
	switch p {
	case ValueInvestor:
		return 0.4
	case MomentumTrader:
		return 0.7
	case Hoarder:
		return 0.1
	case SocialTrader:
		return 0.8
	case PanicSeller:
		return 0.6
	}
	return 0.5
}

func (p Personality) String() string {
	switch p {
	case ValueInvestor:
		return "VALUE_INVESTOR"
	case MomentumTrader:
		return "MOMENTUM_TRADER"
	case Hoarder:
		return "HOARDER"
	case SocialTrader:
		return "SOCIAL_TRADER"
	case PanicSeller:
		return "PANIC_SELLER"
	}
	return "UNKNOWN"
}

// NumPersonalities is the number of personality variants.
const NumPersonalities = 5

// Mood is an agent's mutable emotional state. It shifts with trade
// outcomes and scales both evaluation and trade-seeking.
type Mood uint8

const (
	MoodHappy Mood = iota
	MoodNeutral
	MoodAnxious
	MoodGreedy
	MoodPanic
)

// TradeMultiplier scales the base score when evaluating in this mood.
func (m Mood) TradeMultiplier() float64 {
	switch m {
	case MoodHappy:
		return 0.9
	case MoodNeutral:
		return 1.0
	case MoodAnxious:
		return 1.2
	case MoodGreedy:
		return 1.3
	case MoodPanic:
		return 0.5
	}
	return 1.0
}

// SeekModifier scales the personality's trade-seeking probability.
// Anxious and panicking agents trade more, not less.
func (m Mood) SeekModifier() float64 {
	switch m {
	case MoodHappy:
		return 1.2
	case MoodAnxious:
		return 1.5
	case MoodPanic:
		return 2.0
	}
	return 1.0
}

func (m Mood) String() string {
	switch m {
	case MoodHappy:
		return "HAPPY"
	case MoodNeutral:
		return "NEUTRAL"
	case MoodAnxious:
		return "ANXIOUS"
	case MoodGreedy:
		return "GREEDY"
	case MoodPanic:
		return "PANIC"
	}
	return "UNKNOWN"
}

// NumMoods is the number of mood variants.
const NumMoods = 5

// Believed values are clamped to this range everywhere they are written.
const (
	BeliefMin = 0.1
	BeliefMax = 10.0
)

// MaxRecentTrades caps each agent's trade log; oldest entries are evicted.
const MaxRecentTrades = 10

// TradeLogEntry records one completed trade from this agent's perspective.
type TradeLogEntry struct {
	PartnerID AgentID                   `json:"partner_id"`
	Gave      map[economy.CandyType]int  `json:"gave"`
	Got       map[economy.CandyType]int  `json:"got"`
	Timestamp float64                   `json:"timestamp"`
}

// Agent is one kid in the simulation. Economic state (inventory, beliefs,
// preferences, trust) is unexported and mutated only through methods so
// the invariants hold at a single choke point.
type Agent struct {
	ID          AgentID     `json:"id"`
	Name        string      `json:"name"`
	Position    world.Vec2  `json:"position"`
	Personality Personality `json:"personality"`
	Mood        Mood        `json:"mood"`

	inventory      map[economy.CandyType]int
	believedValues map[economy.CandyType]float64
	preferences    map[economy.CandyType]float64
	trustLevels    map[AgentID]float64

	// RecentTrades holds up to MaxRecentTrades entries, oldest first.
	RecentTrades []TradeLogEntry `json:"recent_trades"`

	// TradeCooldown blocks trade-seeking until it reaches zero.
	TradeCooldown float64 `json:"trade_cooldown"`

	// AITimer accumulates toward the next AI decision pass.
	AITimer float64 `json:"-"`

	// BlocID is set while the agent belongs to a trading bloc.
	BlocID *uint64 `json:"bloc_id,omitempty"`
}

// NewAgent creates an agent with empty economic state.
func NewAgent(id AgentID, name string, pos world.Vec2) *Agent {
	return &Agent{
		ID:             id,
		Name:           name,
		Position:       pos,
		Personality:    ValueInvestor,
		Mood:           MoodNeutral,
		inventory:      make(map[economy.CandyType]int),
		believedValues: make(map[economy.CandyType]float64),
		preferences:    make(map[economy.CandyType]float64),
		trustLevels:    make(map[AgentID]float64),
	}
}

// RestoreState replaces the agent's economic state wholesale, used when
// rehydrating a saved world. Values pass through the same clamps as live
// mutation so a hand-edited database cannot break the invariants.
func (a *Agent) RestoreState(inv map[economy.CandyType]int, beliefs, prefs map[economy.CandyType]float64, trust map[AgentID]float64) {
	a.inventory = make(map[economy.CandyType]int, len(inv))
	for c, q := range inv {
		if q > 0 {
			a.inventory[c] = q
		}
	}
	a.believedValues = make(map[economy.CandyType]float64, len(beliefs))
	for c, v := range beliefs {
		a.SetBelief(c, v)
	}
	a.preferences = make(map[economy.CandyType]float64, len(prefs))
	for c, p := range prefs {
		a.SetPreference(c, p)
	}
	a.trustLevels = make(map[AgentID]float64, len(trust))
	for id, t := range trust {
		a.AdjustTrust(id, t-0.5)
	}
}

// Clone returns a deep copy of the agent. Snapshot consumers read the
// clone while the live agent keeps trading.
func (a *Agent) Clone() *Agent {
	c := *a
	c.inventory = make(map[economy.CandyType]int, len(a.inventory))
	for candy, q := range a.inventory {
		c.inventory[candy] = q
	}
	c.believedValues = make(map[economy.CandyType]float64, len(a.believedValues))
	for candy, v := range a.believedValues {
		c.believedValues[candy] = v
	}
	c.preferences = make(map[economy.CandyType]float64, len(a.preferences))
	for candy, p := range a.preferences {
		c.preferences[candy] = p
	}
	c.trustLevels = make(map[AgentID]float64, len(a.trustLevels))
	for id, t := range a.trustLevels {
		c.trustLevels[id] = t
	}
	c.RecentTrades = append([]TradeLogEntry(nil), a.RecentTrades...)
	if a.BlocID != nil {
		id := *a.BlocID
		c.BlocID = &id
	}
	return &c
}

// LogTrade appends to the bounded recent-trade log, evicting oldest first.
func (a *Agent) LogTrade(entry TradeLogEntry) {
	a.RecentTrades = append(a.RecentTrades, entry)
	if len(a.RecentTrades) > MaxRecentTrades {
		a.RecentTrades = a.RecentTrades[len(a.RecentTrades)-MaxRecentTrades:]
	}
}

// ReactToTrade drifts mood from a trade outcome: a good haul cheers the
// agent up, a thin one makes a neutral agent anxious.
func (a *Agent) ReactToTrade(receivedPieces int) {
	switch {
	case receivedPieces >= 3:
		a.Mood = MoodHappy
	case receivedPieces == 1 && a.Mood == MoodNeutral:
		a.Mood = MoodAnxious
	}
}
