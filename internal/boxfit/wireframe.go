package boxfit

import (
	"errors"
	"fmt"
)

// ErrNonPositiveExtent reports a box whose edges cannot be sampled
// because one or more extents are zero or negative.
var ErrNonPositiveExtent = errors.New("boxfit: box extents must be positive")

// edgeCornerSigns enumerates the four parallel edges of one axis family
// by the signs of the two remaining half-extents at the edge's low end.
var edgeCornerSigns = [4][2]float64{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

// WireframePoints maps box parameters to the canonical point-set
// representation used for Chamfer comparison: the origin sentinel point
// (0,0,0) followed by 12*pointsPerEdge points walking the box edges.
//
// The sentinel at index 0 belongs to the representation, not to the box
// geometry; both sides of any comparison carry it. Edges are grouped in
// three axis-parallel families (X first, then Y, then Z), each edge
// running from its low corner toward the positive axis direction and
// sampled at fractional offsets j/pointsPerEdge for j = 1..pointsPerEdge.
// Offset 0 is never emitted. The function is pure: identical inputs
// produce identical clouds.
//
// pointsPerEdge == 0 yields the sentinel-only cloud.
func WireframePoints(p BoxParams, pointsPerEdge int) (PointCloud, error) {
	if p.L <= 0 || p.W <= 0 || p.H <= 0 {
		return nil, fmt.Errorf("%w: L=%g W=%g H=%g", ErrNonPositiveExtent, p.L, p.W, p.H)
	}
	if pointsPerEdge < 0 {
		return nil, fmt.Errorf("wireframe: points per edge must be >= 0, got %d", pointsPerEdge)
	}

	out := make(PointCloud, 0, 12*pointsPerEdge+1)
	out = append(out, Point{}) // origin sentinel
	if pointsPerEdge == 0 {
		return out, nil
	}

	hx, hy, hz := p.L/2, p.W/2, p.H/2
	step := 1.0 / float64(pointsPerEdge)

	// Edges along X: fixed (y, z) corner, x sweeps the edge.
	for _, s := range edgeCornerSigns {
		y := p.YC + s[0]*hy
		z := p.ZC + s[1]*hz
		for j := 1; j <= pointsPerEdge; j++ {
			out = append(out, Point{X: p.XC - hx + p.L*float64(j)*step, Y: y, Z: z})
		}
	}
	// Edges along Y.
	for _, s := range edgeCornerSigns {
		x := p.XC + s[0]*hx
		z := p.ZC + s[1]*hz
		for j := 1; j <= pointsPerEdge; j++ {
			out = append(out, Point{X: x, Y: p.YC - hy + p.W*float64(j)*step, Z: z})
		}
	}
	// Edges along Z.
	for _, s := range edgeCornerSigns {
		x := p.XC + s[0]*hx
		y := p.YC + s[1]*hy
		for j := 1; j <= pointsPerEdge; j++ {
			out = append(out, Point{X: x, Y: y, Z: p.ZC - hz + p.H*float64(j)*step})
		}
	}
	return out, nil
}
