// Agent spawning: creates the starting population with randomized
// personality, mood, preferences, seeded beliefs, and starting candy.
package agents

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/candymarket/internal/economy"
	"github.com/talgya/candymarket/internal/world"
)

var kidNames = []string{
	"Max", "Ruby", "Theo", "Piper", "Eli", "Hazel", "Finn", "Wren",
	"Jude", "Ivy", "Oscar", "Nell", "Gus", "Lola", "Sam", "Mabel",
	"Arlo", "June", "Ezra", "Pearl", "Otis", "Birdie", "Levi", "Opal",
}

// Spawner creates agents. Positions come from a density noise field so the
// population clusters into loose neighborhoods instead of uniform scatter.
type Spawner struct {
	rng     *rand.Rand
	noise   opensimplex.Noise
	nextID  AgentID
	spawned int
}

// NewSpawner creates a spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng:    rand.New(rand.NewSource(seed + 300)),
		noise:  opensimplex.NewNormalized(seed),
		nextID: 1,
	}
}

// SetNextID sets the next agent ID to issue (used when restoring from DB).
func (s *Spawner) SetNextID(id AgentID) {
	s.nextID = id
}

// SpawnPopulation creates count agents inside the given bounds, seeding
// beliefs with the market's configured discovery mode.
func (s *Spawner) SpawnPopulation(count int, width, height float64, market *economy.Market) []*Agent {
	out := make([]*Agent, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, s.spawnOne(width, height, market))
	}
	return out
}

func (s *Spawner) spawnOne(width, height float64, market *economy.Market) *Agent {
	id := s.nextID
	s.nextID++
	s.spawned++

	pos := s.pickPosition(width, height)
	name := fmt.Sprintf("%s #%d", kidNames[s.rng.Intn(len(kidNames))], id)

	a := NewAgent(id, name, pos)
	a.Personality = Personality(s.rng.Intn(NumPersonalities))
	a.Mood = Mood(s.rng.Intn(NumMoods))

	// Preferences: uniform per candy type.
	for candy := range market.Goods() {
		a.SetPreference(candy, s.rng.Float64())
	}

	// Beliefs: seeded once, mode chosen by config.
	a.InitializeBeliefs(market, market.Settings().PriceDiscoveryMode, s.rng)

	// Starting candy: 2–5 pieces, drawn with preference weighting.
	s.giveStartingCandy(a, market)

	return a
}

// pickPosition rejection-samples against the density field so agents
// cluster where the noise runs high. Caps attempts and takes the last
// candidate rather than looping forever on hostile noise.
func (s *Spawner) pickPosition(width, height float64) world.Vec2 {
	var pos world.Vec2
	for attempt := 0; attempt < 8; attempt++ {
		pos = world.Vec2{
			X: 50 + s.rng.Float64()*(width-100),
			Y: 50 + s.rng.Float64()*(height-100),
		}
		density := s.noise.Eval2(pos.X/400, pos.Y/400)
		if s.rng.Float64() < density {
			return pos
		}
	}
	return pos
}

func (s *Spawner) giveStartingCandy(a *Agent, market *economy.Market) {
	types := make([]economy.CandyType, 0, len(market.Goods()))
	for candy := range market.Goods() {
		types = append(types, candy)
	}
	if len(types) == 0 {
		return
	}

	pieces := 2 + s.rng.Intn(4)
	for i := 0; i < pieces; i++ {
		a.AddCandy(s.weightedPick(a, types), 1)
	}
}

// weightedPick draws a candy type weighted by the agent's preferences.
func (s *Spawner) weightedPick(a *Agent, types []economy.CandyType) economy.CandyType {
	var total float64
	for _, c := range types {
		total += a.Preference(c)
	}
	if total <= 0 {
		return types[s.rng.Intn(len(types))]
	}

	r := s.rng.Float64() * total
	for _, c := range types {
		r -= a.Preference(c)
		if r <= 0 {
			return c
		}
	}
	return types[len(types)-1]
}

// SpawnedCount returns how many agents this spawner has created.
func (s *Spawner) SpawnedCount() int {
	return s.spawned
}
