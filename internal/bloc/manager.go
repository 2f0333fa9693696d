package bloc

import (
	"log/slog"

	"github.com/talgya/candymarket/internal/agents"
)

// Manager owns bloc lifecycle: formation, per-trade bookkeeping, and the
// per-tick fracture check.
type Manager struct {
	blocs  []*Bloc
	nextID uint64
}

// NewManager creates an empty bloc manager.
func NewManager() *Manager {
	return &Manager{nextID: 1}
}

// Blocs returns the live blocs. Callers must not mutate the slice.
func (m *Manager) Blocs() []*Bloc {
	return m.blocs
}

// BlocOf returns the bloc an agent belongs to, if any.
func (m *Manager) BlocOf(id agents.AgentID) (*Bloc, bool) {
	for _, b := range m.blocs {
		if b.IsMember(id) {
			return b, true
		}
	}
	return nil, false
}

// Update runs formation and fracture checks. The qualification rule (the
// first bloc forms from the first three spawned agents once no bloc
// exists) is a deliberate simplification kept for compatibility; a
// frequency-based clustering policy can replace it without touching the
// rest of the lifecycle.
func (m *Manager) Update(all []*agents.Agent, now float64) {
	m.checkFormation(all, now)

	kept := m.blocs[:0]
	for _, b := range m.blocs {
		if !b.ShouldFracture() {
			kept = append(kept, b)
			continue
		}

		remaining := b.Fracture()
		if len(remaining) < MinMembersToSurvive {
			// Too few left, dissolve entirely.
			for _, a := range all {
				if a.BlocID != nil && *a.BlocID == b.ID {
					a.BlocID = nil
				}
			}
			slog.Info("trading bloc dissolved", "bloc", b.ID)
			continue
		}

		// Fractured but surviving: detach the shed members.
		for _, a := range all {
			if a.BlocID != nil && *a.BlocID == b.ID && !b.IsMember(a.ID) {
				a.BlocID = nil
			}
		}
		slog.Info("trading bloc fractured", "bloc", b.ID, "remaining", len(remaining))
		kept = append(kept, b)
	}
	m.blocs = kept
}

func (m *Manager) checkFormation(all []*agents.Agent, now float64) {
	if len(m.blocs) > 0 || len(all) < MinMembersToForm {
		return
	}

	b := NewBloc(m.nextID, now)
	m.nextID++
	for _, a := range all[:MinMembersToForm] {
		b.AddMember(a.ID)
		id := b.ID
		a.BlocID = &id
	}
	m.blocs = append(m.blocs, b)

	slog.Info("trading bloc formed",
		"bloc", b.ID,
		"members", b.MemberCount(),
		"strength", b.Strength,
	)
}

// RecordTrade updates the counters of every bloc a participant belongs
// to and pools the participants' beliefs into those blocs. Trades between
// two outsiders do not touch a bloc's ledger.
func (m *Manager) RecordTrade(a, other *agents.Agent, profit float64) {
	for _, b := range m.blocs {
		aMember := b.IsMember(a.ID)
		otherMember := b.IsMember(other.ID)
		if !aMember && !otherMember {
			continue
		}
		b.RecordTrade(a.ID, other.ID, profit)
		if aMember {
			b.MergeBeliefs(a.ID, a.Beliefs())
		}
		if otherMember {
			b.MergeBeliefs(other.ID, other.Beliefs())
		}
	}
}
