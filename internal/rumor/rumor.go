// Package rumor implements misinformation: decaying, mutating claims that
// perturb agent beliefs and trust as they spread.
package rumor

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/talgya/candymarket/internal/agents"
	"github.com/talgya/candymarket/internal/economy"
)

// Kind categorizes what a rumor claims to be about.
type Kind uint8

const (
	KindPrice   Kind = iota // "CHOCOLATE will be worth 3x tomorrow!"
	KindQuality             // "The SOUR from Oak Street is stale!"
	KindPerson              // "Don't trade with Max, he's a scammer!"
	KindSupply              // "The corner house is handing out king-size!"
	KindEvent               // "There's a candy recall coming!"
)

func (k Kind) String() string {
	switch k {
	case KindPrice:
		return "PRICE"
	case KindQuality:
		return "QUALITY"
	case KindPerson:
		return "PERSON"
	case KindSupply:
		return "SUPPLY"
	case KindEvent:
		return "EVENT"
	}
	return "UNKNOWN"
}

// State is where a rumor sits in its lifecycle.
type State uint8

const (
	StateActive   State = iota // spreading at full strength
	StateDecaying              // past max age, losing credibility
	StateExpired               // dead, awaiting removal
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StateDecaying:
		return "DECAYING"
	case StateExpired:
		return "EXPIRED"
	}
	return "UNKNOWN"
}

// Rumor is one piece of spreading misinformation. Believability only ever
// goes down: mutation perturbs it but never above its previous value.
type Rumor struct {
	ID       string         `json:"id"`
	Kind     Kind           `json:"kind"`
	Content  string         `json:"content"`
	OriginID agents.AgentID `json:"origin_id"`

	Believability float64 `json:"believability"` // [0, 1], non-increasing
	Age           float64 `json:"age"`           // sim-seconds
	MaxAge        float64 `json:"max_age"`
	SpreadRadius  float64 `json:"spread_radius"`

	SpreadCount int `json:"spread_count"`
	Mutations   int `json:"mutations"`

	EffectStrength float64 `json:"effect_strength"`
	ValueModifier  float64 `json:"value_modifier"`

	// TargetCandy narrows PRICE/QUALITY effects; empty means all types.
	TargetCandy economy.CandyType `json:"target_candy,omitempty"`
	// TargetAgent is who a PERSON rumor is about.
	TargetAgent agents.AgentID `json:"target_agent,omitempty"`

	affected map[agents.AgentID]bool
}

// New creates a rumor originating from an agent.
func New(kind Kind, content string, origin agents.AgentID, believability float64) *Rumor {
	return &Rumor{
		ID:             uuid.New().String(),
		Kind:           kind,
		Content:        content,
		OriginID:       origin,
		Believability:  believability,
		MaxAge:         60.0,
		SpreadRadius:   100.0,
		EffectStrength: 1.0,
		ValueModifier:  1.0,
		affected:       make(map[agents.AgentID]bool),
	}
}

// Update ages the rumor. Past max age, believability and effect strength
// shrink by a factor proportional to the overage.
func (r *Rumor) Update(dt float64) {
	r.Age += dt
	if r.Age <= r.MaxAge {
		return
	}

	over := (r.Age - r.MaxAge) / r.MaxAge
	if over > 1 {
		over = 1
	}
	r.Believability *= 1.0 - over*0.5
	r.EffectStrength *= 1.0 - over*0.3
}

// CurrentState returns where the rumor sits in its lifecycle.
func (r *Rumor) CurrentState() State {
	if r.Believability <= 0.1 || r.Age >= r.MaxAge*2 {
		return StateExpired
	}
	if r.Age >= r.MaxAge {
		return StateDecaying
	}
	return StateActive
}

// Expired reports whether the rumor should be removed.
func (r *Rumor) Expired() bool {
	return r.CurrentState() == StateExpired
}

// CanSpreadTo reports whether the rumor may reach an agent: never the
// origin, never anyone who already heard it.
func (r *Rumor) CanSpreadTo(id agents.AgentID) bool {
	if id == r.OriginID {
		return false
	}
	return !r.affected[id]
}

// SpreadTo marks an agent as having heard the rumor, with a chance to
// mutate on the way. Idempotent: resends are no-ops.
func (r *Rumor) SpreadTo(id agents.AgentID, mutationChance float64, rng *rand.Rand) bool {
	if !r.CanSpreadTo(id) {
		return false
	}
	r.affected[id] = true
	r.SpreadCount++

	if rng.Float64() < mutationChance {
		r.mutate(rng)
	}
	return true
}

// Clone returns a deep copy for snapshot consumers.
func (r *Rumor) Clone() *Rumor {
	c := *r
	c.affected = make(map[agents.AgentID]bool, len(r.affected))
	for id, heard := range r.affected {
		c.affected[id] = heard
	}
	return &c
}

// Affected reports whether an agent has heard this rumor.
func (r *Rumor) Affected(id agents.AgentID) bool {
	return r.affected[id]
}

// AffectedCount returns how many agents have heard the rumor.
func (r *Rumor) AffectedCount() int {
	return len(r.affected)
}

// mutate plays telephone: believability and effect strength drift by up to
// ±0.1, and occasionally the wording shifts. Believability is capped at
// its previous value so it stays non-increasing.
func (r *Rumor) mutate(rng *rand.Rand) {
	r.Mutations++

	b := r.Believability + (rng.Float64()*0.2 - 0.1)
	if b < 0 {
		b = 0
	}
	if b > r.Believability {
		b = r.Believability
	}
	r.Believability = b

	e := r.EffectStrength + (rng.Float64()*0.2 - 0.1)
	if e < 0.1 {
		e = 0.1
	}
	if e > 2.0 {
		e = 2.0
	}
	r.EffectStrength = e

	if rng.Float64() < 0.3 {
		r.mutateContent(rng)
	}
}

func (r *Rumor) mutateContent(rng *rand.Rand) {
	variants := []string{
		"I heard that " + r.Content,
		"Someone told me " + r.Content,
		"I think " + r.Content,
		r.Content + " (I'm not sure though)",
	}
	r.Content = variants[rng.Intn(len(variants))]
}

// PriceEffect returns the multiplier a PRICE rumor applies to an agent's
// believed value for a candy type, clamped to [0.1, 5.0]. Non-price
// rumors and off-target candies return 1.0.
func (r *Rumor) PriceEffect(candy economy.CandyType) float64 {
	if r.Kind != KindPrice {
		return 1.0
	}
	if r.TargetCandy != "" && candy != r.TargetCandy {
		return 1.0
	}
	effect := r.ValueModifier * r.EffectStrength * r.Believability
	if effect < 0.1 {
		effect = 0.1
	}
	if effect > 5.0 {
		effect = 5.0
	}
	return effect
}

// TrustEffect returns the trust delta a PERSON rumor applies toward its
// target agent. Other kinds return 0.
func (r *Rumor) TrustEffect(target agents.AgentID) float64 {
	if r.Kind != KindPerson || target != r.TargetAgent {
		return 0
	}
	return -0.3 * r.EffectStrength * r.Believability
}
