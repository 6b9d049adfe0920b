package boxfit

import (
	"fmt"
	"math"
)

// bruteForceNNThreshold is the cloud size below which a linear scan beats
// building a grid index.
const bruteForceNNThreshold = 48

// ChamferDistance returns the unnormalized symmetric Chamfer distance
// between two non-empty point sets: the sum over every point in a of its
// minimum squared distance to b, plus the same sum in the opposite
// direction. No normalization by cloud size is applied; callers that
// compare clouds of differing sizes must normalize themselves.
func ChamferDistance(a, b PointCloud) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("chamfer distance: %w", ErrEmptyCloud)
	}
	return directedSum(a, newNNIndex(b)) + directedSum(b, newNNIndex(a)), nil
}

// directedSum adds up, for every point in from, the squared distance to
// its nearest neighbour in the indexed cloud.
func directedSum(from PointCloud, to *nnIndex) float64 {
	var sum float64
	for _, p := range from {
		sum += to.nearestSquared(p)
	}
	return sum
}

// nnIndex accelerates exact nearest-neighbour queries with a uniform
// grid over the indexed cloud's bounding region. Cells are visited in
// expanding Chebyshev rings around the query cell, stopping once no
// farther ring can hold a closer point, so the result always equals the
// brute-force minimum. Degenerate clouds (tiny or zero-extent) fall back
// to a linear scan.
type nnIndex struct {
	pts      PointCloud
	cellSize float64
	origin   Point
	dims     [3]int
	cells    map[[3]int][]int32
}

func newNNIndex(pts PointCloud) *nnIndex {
	idx := &nnIndex{pts: pts}
	if len(pts) <= bruteForceNNThreshold {
		return idx
	}
	min, max, err := pts.Extent()
	if err != nil {
		return idx
	}
	span := math.Max(max.X-min.X, math.Max(max.Y-min.Y, max.Z-min.Z))
	if span <= 0 {
		return idx
	}
	cell := span / math.Cbrt(float64(len(pts)))
	idx.origin = min
	idx.cellSize = cell
	idx.dims = [3]int{
		int((max.X-min.X)/cell) + 1,
		int((max.Y-min.Y)/cell) + 1,
		int((max.Z-min.Z)/cell) + 1,
	}
	idx.cells = make(map[[3]int][]int32, len(pts)/4)
	for i, p := range pts {
		c := idx.cellOf(p)
		idx.cells[c] = append(idx.cells[c], int32(i))
	}
	return idx
}

// cellOf returns the grid cell holding p, clamped to the occupied grid
// so points on the max boundary land in the last cell.
func (idx *nnIndex) cellOf(p Point) [3]int {
	c := [3]int{
		int(math.Floor((p.X - idx.origin.X) / idx.cellSize)),
		int(math.Floor((p.Y - idx.origin.Y) / idx.cellSize)),
		int(math.Floor((p.Z - idx.origin.Z) / idx.cellSize)),
	}
	for a := 0; a < 3; a++ {
		if c[a] < 0 {
			c[a] = 0
		}
		if c[a] >= idx.dims[a] {
			c[a] = idx.dims[a] - 1
		}
	}
	return c
}

// nearestSquared returns the minimum squared Euclidean distance from q
// to any indexed point.
func (idx *nnIndex) nearestSquared(q Point) float64 {
	if idx.cells == nil {
		return bruteNearestSquared(idx.pts, q)
	}

	// The query cell is deliberately unclamped: the ring lower bound
	// below is only valid relative to q's true cell.
	qc := [3]int{
		int(math.Floor((q.X - idx.origin.X) / idx.cellSize)),
		int(math.Floor((q.Y - idx.origin.Y) / idx.cellSize)),
		int(math.Floor((q.Z - idx.origin.Z) / idx.cellSize)),
	}
	maxRing := 0
	for a := 0; a < 3; a++ {
		far := qc[a]
		if d := idx.dims[a] - 1 - qc[a]; d > far {
			far = d
		}
		if far > maxRing {
			maxRing = far
		}
	}

	best := math.Inf(1)
	for r := 0; r <= maxRing; r++ {
		if r > 0 {
			// Any point in ring r or beyond is at least
			// (r-1)*cellSize away from q.
			reach := float64(r-1) * idx.cellSize
			if best <= reach*reach {
				break
			}
		}
		idx.scanRing(qc, r, q, &best)
	}
	return best
}

// scanRing visits every cell at exactly Chebyshev distance r from the
// query cell and tightens best.
func (idx *nnIndex) scanRing(qc [3]int, r int, q Point, best *float64) {
	if r == 0 {
		idx.scanCell(qc, q, best)
		return
	}
	for dx := -r; dx <= r; dx++ {
		xEdge := dx == -r || dx == r
		for dy := -r; dy <= r; dy++ {
			yEdge := dy == -r || dy == r
			if xEdge || yEdge {
				for dz := -r; dz <= r; dz++ {
					idx.scanCell([3]int{qc[0] + dx, qc[1] + dy, qc[2] + dz}, q, best)
				}
				continue
			}
			// Interior (dx, dy): only the two z faces are on the ring.
			idx.scanCell([3]int{qc[0] + dx, qc[1] + dy, qc[2] - r}, q, best)
			idx.scanCell([3]int{qc[0] + dx, qc[1] + dy, qc[2] + r}, q, best)
		}
	}
}

func (idx *nnIndex) scanCell(c [3]int, q Point, best *float64) {
	for a := 0; a < 3; a++ {
		if c[a] < 0 || c[a] >= idx.dims[a] {
			return
		}
	}
	for _, i := range idx.cells[c] {
		p := idx.pts[i]
		dx := p.X - q.X
		dy := p.Y - q.Y
		dz := p.Z - q.Z
		if d := dx*dx + dy*dy + dz*dz; d < *best {
			*best = d
		}
	}
}

func bruteNearestSquared(pts PointCloud, q Point) float64 {
	best := math.Inf(1)
	for _, p := range pts {
		dx := p.X - q.X
		dy := p.Y - q.Y
		dz := p.Z - q.Z
		if d := dx*dx + dy*dy + dz*dz; d < best {
			best = d
		}
	}
	return best
}
