package flocking

import (
	"math"
	"slices"

	"github.com/Shivam-Bhardwaj/shivambhardwaj.com/pkg/geometry"
)

type gridKey struct {
	x, y int
}

// grid is a uniform spatial hash over the tick snapshot. Cells are
// NeighborRadius wide, so every neighbour any behaviour can see lies in the
// 3x3 block around an agent's cell.
type grid struct {
	cellSize float32
	cells    map[gridKey][]int
}

func newGrid(cellSize float32) *grid {
	return &grid{
		cellSize: cellSize,
		cells:    make(map[gridKey][]int),
	}
}

func (g *grid) key(p geometry.Vector2D) gridKey {
	return gridKey{
		x: int(math.Floor(float64(p.X / g.cellSize))),
		y: int(math.Floor(float64(p.Y / g.cellSize))),
	}
}

// rebuild indexes the snapshot by cell. Cell slices are truncated rather than
// dropped so their backing arrays are reused from tick to tick.
func (g *grid) rebuild(snapshot []State) {
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	for i := range snapshot {
		k := g.key(snapshot[i].Position)
		g.cells[k] = append(g.cells[k], i)
	}
}

// query appends to dst the snapshot indices found in the 3x3 block around p,
// in ascending order. Ascending order makes the neighbour sums add up in the
// same sequence as a full scan, so both broadphases give identical floats.
func (g *grid) query(p geometry.Vector2D, dst []int) []int {
	c := g.key(p)
	for i := c.x - 1; i <= c.x+1; i++ {
		for j := c.y - 1; j <= c.y+1; j++ {
			dst = append(dst, g.cells[gridKey{x: i, y: j}]...)
		}
	}
	slices.Sort(dst)
	return dst
}
