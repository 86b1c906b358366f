package world

import (
	"fmt"
	"sync"
)

// OccupancyGrid records which chunks have been claimed for generation.
// Entries only ever go from false to true.
type OccupancyGrid struct {
	mu      sync.Mutex
	size    int
	cells   []bool
	claimed int
}

// NewOccupancyGrid creates an all-unclaimed grid of size³ entries.
func NewOccupancyGrid(size int) *OccupancyGrid {
	if size <= 0 {
		panic(fmt.Sprintf("world: invalid grid size %d", size))
	}
	return &OccupancyGrid{
		size:  size,
		cells: make([]bool, size*size*size),
	}
}

// Size returns the edge length of the grid in chunks.
func (g *OccupancyGrid) Size() int {
	return g.size
}

// Claim flips the entry for c to true. It returns true only for the call that
// performed the flip; later calls observe the chunk as already claimed.
func (g *OccupancyGrid) Claim(c ChunkCoord) (bool, error) {
	if !c.InBounds(g.size) {
		return false, fmt.Errorf("claim %v: %w", c, ErrOutOfRange)
	}
	idx := c.Index(g.size)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cells[idx] {
		return false, nil
	}
	g.cells[idx] = true
	g.claimed++
	return true, nil
}

// IsClaimed reports the entry for c.
func (g *OccupancyGrid) IsClaimed(c ChunkCoord) (bool, error) {
	if !c.InBounds(g.size) {
		return false, fmt.Errorf("lookup %v: %w", c, ErrOutOfRange)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cells[c.Index(g.size)], nil
}

// ClaimedCount returns how many chunks have been claimed so far.
func (g *OccupancyGrid) ClaimedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.claimed
}

// NextUnclaimed scans in index order starting at from and returns the first
// unclaimed coordinate together with its index. The result is a hint: a
// concurrent Claim may win the chunk before the caller does.
func (g *OccupancyGrid) NextUnclaimed(from int) (ChunkCoord, int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.claimed == len(g.cells) {
		return ChunkCoord{}, 0, false
	}
	for i := max(from, 0); i < len(g.cells); i++ {
		if !g.cells[i] {
			return CoordFromIndex(i, g.size), i, true
		}
	}
	// wrap around for anything skipped before from
	for i := 0; i < min(from, len(g.cells)); i++ {
		if !g.cells[i] {
			return CoordFromIndex(i, g.size), i, true
		}
	}
	return ChunkCoord{}, 0, false
}
