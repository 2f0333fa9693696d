package world

import "math"

// DefaultCellSize works well for trade radii around 150: a radius query
// touches at most a 3x3 block of cells.
const DefaultCellSize = 128.0

type cellKey struct {
	cx, cy int
}

// Grid is a uniform spatial hash over entity positions. It holds IDs, not
// entities, so it stays agnostic of what it is indexing.
type Grid struct {
	cellSize  float64
	cells     map[cellKey][]uint64
	positions map[uint64]Vec2
}

// NewGrid creates a grid with the given cell size; non-positive values
// fall back to DefaultCellSize.
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{
		cellSize:  cellSize,
		cells:     make(map[cellKey][]uint64),
		positions: make(map[uint64]Vec2),
	}
}

func (g *Grid) keyFor(pos Vec2) cellKey {
	return cellKey{
		cx: int(math.Floor(pos.X / g.cellSize)),
		cy: int(math.Floor(pos.Y / g.cellSize)),
	}
}

// Insert adds an ID at a position, replacing any previous position.
func (g *Grid) Insert(id uint64, pos Vec2) {
	if _, ok := g.positions[id]; ok {
		g.Remove(id)
	}
	key := g.keyFor(pos)
	g.cells[key] = append(g.cells[key], id)
	g.positions[id] = pos
}

// Remove deletes an ID from the grid. Unknown IDs are a no-op.
func (g *Grid) Remove(id uint64) {
	pos, ok := g.positions[id]
	if !ok {
		return
	}
	key := g.keyFor(pos)
	bucket := g.cells[key]
	for i, other := range bucket {
		if other == id {
			bucket[i] = bucket[len(bucket)-1]
			g.cells[key] = bucket[:len(bucket)-1]
			break
		}
	}
	if len(g.cells[key]) == 0 {
		delete(g.cells, key)
	}
	delete(g.positions, id)
}

// Position returns an ID's stored position.
func (g *Grid) Position(id uint64) (Vec2, bool) {
	pos, ok := g.positions[id]
	return pos, ok
}

// Nearby returns all IDs within radius of pos, the query point's own ID
// included if present.
func (g *Grid) Nearby(pos Vec2, radius float64) []uint64 {
	minKey := g.keyFor(Vec2{X: pos.X - radius, Y: pos.Y - radius})
	maxKey := g.keyFor(Vec2{X: pos.X + radius, Y: pos.Y + radius})

	var out []uint64
	for cx := minKey.cx; cx <= maxKey.cx; cx++ {
		for cy := minKey.cy; cy <= maxKey.cy; cy++ {
			for _, id := range g.cells[cellKey{cx, cy}] {
				if g.positions[id].DistanceTo(pos) <= radius {
					out = append(out, id)
				}
			}
		}
	}
	return out
}

// Len returns the number of indexed IDs.
func (g *Grid) Len() int {
	return len(g.positions)
}
