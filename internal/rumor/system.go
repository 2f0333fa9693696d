package rumor

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/candymarket/internal/agents"
	"github.com/talgya/candymarket/internal/economy"
	"github.com/talgya/candymarket/internal/world"
)

// Roster is the slice of the simulation the rumor system needs: who is
// near a position, and agent lookup by ID.
type Roster interface {
	NearbyAgents(pos world.Vec2, radius float64) []*agents.Agent
	AgentByID(id agents.AgentID) (*agents.Agent, bool)
}

// System owns active rumors: creation, propagation, decay, and effects.
type System struct {
	rng    *rand.Rand
	active []*Rumor

	// Propagation tunables.
	SpreadChance   float64
	MutationChance float64
}

// NewSystem creates a rumor system with default propagation settings.
func NewSystem(rng *rand.Rand) *System {
	return &System{
		rng:            rng,
		SpreadChance:   0.3,
		MutationChance: 0.15,
	}
}

// Create starts a rumor from an origin agent and applies its initial
// effect to them. Empty content is filled from kind-specific templates.
func (s *System) Create(kind Kind, origin *agents.Agent, content string, believability float64) *Rumor {
	if content == "" {
		content = s.generateContent(kind, origin)
	}

	r := New(kind, content, origin.ID, believability)
	s.active = append(s.active, r)
	s.applyEffect(r, origin)

	slog.Debug("rumor started",
		"id", r.ID,
		"kind", kind.String(),
		"origin", origin.ID,
		"content", content,
	)
	return r
}

// CreatePriceRumor starts a PRICE rumor aimed at one candy type.
func (s *System) CreatePriceRumor(origin *agents.Agent, candy economy.CandyType, believability float64) *Rumor {
	mult := []int{2, 3, 5}[s.rng.Intn(3)]
	content := fmt.Sprintf(priceTemplates[s.rng.Intn(len(priceTemplates))], candy, mult)

	r := New(KindPrice, content, origin.ID, believability)
	r.TargetCandy = candy
	s.active = append(s.active, r)
	s.applyEffect(r, origin)
	return r
}

// Update ages every rumor, spreads the live ones through the social
// neighborhood, and drops the expired.
func (s *System) Update(dt float64, roster Roster) {
	kept := s.active[:0]
	for _, r := range s.active {
		r.Update(dt)
		if r.Expired() {
			slog.Debug("rumor expired", "id", r.ID, "spread", r.SpreadCount, "mutations", r.Mutations)
			continue
		}
		s.spread(r, roster)
		kept = append(kept, r)
	}
	s.active = kept
}

// spread pushes a rumor to agents near its origin. Each eligible neighbor
// hears it with SpreadChance; hearing is idempotent per agent.
func (s *System) spread(r *Rumor, roster Roster) {
	origin, ok := roster.AgentByID(r.OriginID)
	if !ok {
		return
	}
	for _, a := range roster.NearbyAgents(origin.Position, r.SpreadRadius) {
		if !r.CanSpreadTo(a.ID) {
			continue
		}
		if s.rng.Float64() >= s.SpreadChance {
			continue
		}
		if r.SpreadTo(a.ID, s.MutationChance, s.rng) {
			s.applyEffect(r, a)
		}
	}
}

// applyEffect lands a rumor on an agent. PRICE rumors scale believed
// values; PERSON rumors shift trust. QUALITY and SUPPLY are narrower
// extension points: their effect surfaces (perceived quality, house
// attraction) live outside this core.
func (s *System) applyEffect(r *Rumor, a *agents.Agent) {
	switch r.Kind {
	case KindPrice:
		for candy := range a.Beliefs() {
			if r.TargetCandy != "" && candy != r.TargetCandy {
				continue
			}
			a.SetBelief(candy, a.Belief(candy)*r.PriceEffect(candy))
		}
	case KindPerson:
		if r.TargetAgent == 0 {
			return
		}
		if delta := r.TrustEffect(r.TargetAgent); delta != 0 {
			a.AdjustTrust(r.TargetAgent, delta)
		}
	case KindQuality, KindSupply, KindEvent:
		// Extension points.
	}
}

// Active returns the live rumors. Callers must not mutate the slice.
func (s *System) Active() []*Rumor {
	return s.active
}

// Affecting returns the active rumors a given agent has heard.
func (s *System) Affecting(id agents.AgentID) []*Rumor {
	var out []*Rumor
	for _, r := range s.active {
		if r.Affected(id) {
			out = append(out, r)
		}
	}
	return out
}

// ByKind returns the active rumors of one kind.
func (s *System) ByKind(kind Kind) []*Rumor {
	var out []*Rumor
	for _, r := range s.active {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Stats summarizes the rumor mill for presentation consumers.
type Stats struct {
	ActiveRumors   int            `json:"active_rumors"`
	ByKind         map[string]int `json:"rumors_by_kind"`
	TotalSpread    int            `json:"total_spread_count"`
	TotalMutations int            `json:"total_mutations"`
}

// SystemStats returns aggregate rumor statistics.
func (s *System) SystemStats() Stats {
	stats := Stats{ByKind: make(map[string]int)}
	stats.ActiveRumors = len(s.active)
	for _, r := range s.active {
		stats.ByKind[r.Kind.String()]++
		stats.TotalSpread += r.SpreadCount
		stats.TotalMutations += r.Mutations
	}
	return stats
}

var priceTemplates = []string{
	"%s is going to be worth %dx tomorrow!",
	"someone told me %s will be %dx more valuable!",
}

var qualityTemplates = []string{
	"all the %s this year is stale!",
	"the %s around here tastes amazing now!",
}

var personTemplates = []string{
	"%s is a scammer, don't trade with them!",
	"%s lied about prices!",
}

var supplyTemplates = []string{
	"the corner house is giving out %s!",
	"somebody on Oak Street has piles of %s!",
}

func (s *System) generateContent(kind Kind, origin *agents.Agent) string {
	candies := []economy.CandyType{
		economy.Chocolate, economy.Fruity, economy.Sour,
		economy.Novelty, economy.Health, economy.Trash,
	}
	candy := candies[s.rng.Intn(len(candies))]

	switch kind {
	case KindPrice:
		mult := []int{2, 3, 5}[s.rng.Intn(3)]
		return fmt.Sprintf(priceTemplates[s.rng.Intn(len(priceTemplates))], candy, mult)
	case KindQuality:
		return fmt.Sprintf(qualityTemplates[s.rng.Intn(len(qualityTemplates))], candy)
	case KindPerson:
		return fmt.Sprintf(personTemplates[s.rng.Intn(len(personTemplates))], origin.Name)
	case KindSupply:
		return fmt.Sprintf(supplyTemplates[s.rng.Intn(len(supplyTemplates))], candy)
	}
	return "there's a candy recall coming!"
}
