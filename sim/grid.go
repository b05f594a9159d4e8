package sim

import (
	"fmt"
	"math/rand"
)

// Position is a lattice coordinate. X grows to the right, Y grows downward.
type Position struct {
	X, Y int
}

// Unplaced marks an agent that does not occupy any cell.
var Unplaced = Position{X: -1, Y: -1}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// SpatialGrid is a fixed-size, non-wrapping lattice holding at most one agent per cell.
//
// Free cells are tracked in a dense slice with a per-cell back-index so that
// place and remove are O(1) and the free set never needs a full scan.
// Memory layout: cells are stored in row-major order (cells[y*width+x]).
type SpatialGrid struct {
	width, height int
	cells         []*Bacterium
	free          []Position // unordered set of empty cells
	freeIdx       []int      // cell index -> position in free, -1 when occupied
}

// NewSpatialGrid allocates an empty width x height grid.
// Dimensions must be positive; Config.Validate enforces this before construction.
func NewSpatialGrid(width, height int) *SpatialGrid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("NewSpatialGrid: dimensions must be positive, got %dx%d", width, height))
	}
	n := width * height
	g := &SpatialGrid{
		width:   width,
		height:  height,
		cells:   make([]*Bacterium, n),
		free:    make([]Position, 0, n),
		freeIdx: make([]int, n),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.freeIdx[g.index(Position{X: x, Y: y})] = len(g.free)
			g.free = append(g.free, Position{X: x, Y: y})
		}
	}
	return g
}

// Width returns the number of columns.
func (g *SpatialGrid) Width() int { return g.width }

// Height returns the number of rows.
func (g *SpatialGrid) Height() int { return g.height }

// Capacity returns width x height.
func (g *SpatialGrid) Capacity() int { return g.width * g.height }

// InBounds reports whether pos lies on the lattice.
func (g *SpatialGrid) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < g.width && pos.Y >= 0 && pos.Y < g.height
}

func (g *SpatialGrid) index(pos Position) int { return pos.Y*g.width + pos.X }

// Place puts agent into the cell at pos and records the position on the agent.
// Returns *OccupiedCellError if the cell is taken and *OutOfBoundsError if pos is off-grid.
func (g *SpatialGrid) Place(agent *Bacterium, pos Position) error {
	if !g.InBounds(pos) {
		return &OutOfBoundsError{Pos: pos, Width: g.width, Height: g.height}
	}
	i := g.index(pos)
	if occ := g.cells[i]; occ != nil {
		return &OccupiedCellError{Pos: pos, Occupant: occ.ID}
	}
	g.cells[i] = agent
	g.takeFree(i)
	agent.Pos = pos
	return nil
}

// Remove frees the cell held by agent. Removing an unplaced agent, or one the
// grid does not hold at its recorded position, is a no-op.
func (g *SpatialGrid) Remove(agent *Bacterium) {
	if !g.InBounds(agent.Pos) {
		return
	}
	i := g.index(agent.Pos)
	if g.cells[i] != agent {
		return
	}
	g.cells[i] = nil
	g.freeIdx[i] = len(g.free)
	g.free = append(g.free, agent.Pos)
	agent.Pos = Unplaced
}

// takeFree drops cell i from the free set by swapping the last entry into its slot.
func (g *SpatialGrid) takeFree(i int) {
	k := g.freeIdx[i]
	last := len(g.free) - 1
	moved := g.free[last]
	g.free[k] = moved
	g.freeIdx[g.index(moved)] = k
	g.free = g.free[:last]
	g.freeIdx[i] = -1
}

// At returns the occupant of pos, or nil when the cell is empty or off-grid.
func (g *SpatialGrid) At(pos Position) *Bacterium {
	if !g.InBounds(pos) {
		return nil
	}
	return g.cells[g.index(pos)]
}

// IsEmpty reports whether pos is on-grid and unoccupied.
func (g *SpatialGrid) IsEmpty(pos Position) bool {
	return g.InBounds(pos) && g.cells[g.index(pos)] == nil
}

// EmptyCells returns the current free cells in unspecified order.
// The slice is a view of the grid's index and is invalidated by the next
// Place or Remove; callers must not modify it.
func (g *SpatialGrid) EmptyCells() []Position {
	return g.free[:len(g.free):len(g.free)]
}

// EmptyCount returns the number of free cells.
func (g *SpatialGrid) EmptyCount() int { return len(g.free) }

// OccupiedCount returns the number of occupied cells.
func (g *SpatialGrid) OccupiedCount() int { return g.Capacity() - len(g.free) }

// RandomEmpty picks a free cell uniformly at random. Returns false when the grid is full.
func (g *SpatialGrid) RandomEmpty(rng *rand.Rand) (Position, bool) {
	if len(g.free) == 0 {
		return Unplaced, false
	}
	return g.free[rng.Intn(len(g.free))], true
}

// Neighborhood returns the Moore neighborhood of pos with the given radius,
// clipped at the grid edges and excluding pos itself. Cells are listed in
// row-major order, so the result is deterministic for a given grid size.
func (g *SpatialGrid) Neighborhood(pos Position, radius int) []Position {
	if radius < 1 {
		return nil
	}
	out := make([]Position, 0, (2*radius+1)*(2*radius+1)-1)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			p := Position{X: pos.X + dx, Y: pos.Y + dy}
			if g.InBounds(p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// EmptyNeighbors returns the free cells of the radius-1 Moore neighborhood of pos.
func (g *SpatialGrid) EmptyNeighbors(pos Position) []Position {
	var out []Position
	for _, p := range g.Neighborhood(pos, 1) {
		if g.cells[g.index(p)] == nil {
			out = append(out, p)
		}
	}
	return out
}
