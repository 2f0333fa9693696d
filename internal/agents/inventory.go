package agents

import "github.com/talgya/candymarket/internal/economy"

// AddCandy adds quantity of a candy type. Non-positive quantities are
// ignored, so inventory counts can never go negative through this path.
func (a *Agent) AddCandy(candy economy.CandyType, quantity int) {
	if quantity <= 0 {
		return
	}
	a.inventory[candy] += quantity
}

// RemoveCandy removes quantity of a candy type. Returns false and changes
// nothing if the agent holds fewer than quantity.
func (a *Agent) RemoveCandy(candy economy.CandyType, quantity int) bool {
	if quantity <= 0 {
		return false
	}
	if a.inventory[candy] < quantity {
		return false
	}
	a.inventory[candy] -= quantity
	if a.inventory[candy] == 0 {
		delete(a.inventory, candy)
	}
	return true
}

// HasCandy reports whether the agent holds at least quantity of a candy.
func (a *Agent) HasCandy(candy economy.CandyType, quantity int) bool {
	return a.inventory[candy] >= quantity
}

// Quantity returns how many pieces of a candy type the agent holds.
func (a *Agent) Quantity(candy economy.CandyType) int {
	return a.inventory[candy]
}

// TotalCandy returns the total piece count across all candy types.
func (a *Agent) TotalCandy() int {
	total := 0
	for _, qty := range a.inventory {
		total += qty
	}
	return total
}

// Inventory returns a copy of the agent's holdings.
func (a *Agent) Inventory() map[economy.CandyType]int {
	inv := make(map[economy.CandyType]int, len(a.inventory))
	for c, q := range a.inventory {
		inv[c] = q
	}
	return inv
}

// TotalValue prices the inventory at the given value table.
func (a *Agent) TotalValue(values map[economy.CandyType]float64) float64 {
	total := 0.0
	for c, q := range a.inventory {
		if v, ok := values[c]; ok {
			total += v * float64(q)
		}
	}
	return total
}

// Preference returns the agent's preference for a candy type in [0, 1],
// defaulting to 0.5 for unknown types.
func (a *Agent) Preference(candy economy.CandyType) float64 {
	if p, ok := a.preferences[candy]; ok {
		return p
	}
	return economy.DefaultPreference
}

// SetPreference stores a preference, clamped to [0, 1].
func (a *Agent) SetPreference(candy economy.CandyType, pref float64) {
	if pref < 0 {
		pref = 0
	}
	if pref > 1 {
		pref = 1
	}
	a.preferences[candy] = pref
}

// Preferences returns a copy of the agent's preference table.
func (a *Agent) Preferences() map[economy.CandyType]float64 {
	prefs := make(map[economy.CandyType]float64, len(a.preferences))
	for c, p := range a.preferences {
		prefs[c] = p
	}
	return prefs
}

// Trust returns the agent's trust toward another agent in [0, 1],
// defaulting to 0.5 for strangers.
func (a *Agent) Trust(other AgentID) float64 {
	if t, ok := a.trustLevels[other]; ok {
		return t
	}
	return 0.5
}

// AdjustTrust shifts trust toward another agent by delta, clamped [0, 1].
func (a *Agent) AdjustTrust(other AgentID, delta float64) {
	t := a.Trust(other) + delta
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	a.trustLevels[other] = t
}

// TrustLevels returns a copy of the agent's trust table.
func (a *Agent) TrustLevels() map[AgentID]float64 {
	trust := make(map[AgentID]float64, len(a.trustLevels))
	for id, t := range a.trustLevels {
		trust[id] = t
	}
	return trust
}
