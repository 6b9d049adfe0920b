package boxfit

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// SampleBoxCloud generates a synthetic observation cloud for demos and
// evaluation: the box wireframe with independent Gaussian noise of scale
// p.Sigma added to every coordinate. The origin sentinel is excluded, so
// the cloud has exactly 12*pointsPerEdge points.
//
// This generator samples along box edges while the model likelihood
// assumes a Gaussian cloud around the center; the mismatch is inherited
// from the source material and kept as-is.
func SampleBoxCloud(p BoxParams, pointsPerEdge int, src rand.Source) (PointCloud, error) {
	if p.Sigma <= 0 {
		return nil, fmt.Errorf("synthetic cloud: sigma must be positive, got %g", p.Sigma)
	}
	if pointsPerEdge <= 0 {
		return nil, fmt.Errorf("synthetic cloud: points per edge must be positive, got %d", pointsPerEdge)
	}
	wire, err := WireframePoints(p, pointsPerEdge)
	if err != nil {
		return nil, err
	}
	noise := distuv.Normal{Mu: 0, Sigma: p.Sigma, Src: src}
	out := make(PointCloud, 0, len(wire)-1)
	for _, pt := range wire[1:] {
		out = append(out, Point{
			X: pt.X + noise.Rand(),
			Y: pt.Y + noise.Rand(),
			Z: pt.Z + noise.Rand(),
		})
	}
	return out, nil
}
