package boxfit

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Proposal concentrates center sampling near the observation centroid:
// each center coordinate is drawn from a Gaussian centred on the
// corresponding centroid coordinate with standard deviation Zeta.
//
// Only the center is proposed. Extents and sigma are drawn from their
// model priors directly in the sampler, so their densities cancel out of
// the importance weight.
type Proposal struct {
	Zeta float64
}

func (q Proposal) validate() error {
	if q.Zeta <= 0 {
		return fmt.Errorf("proposal: zeta must be positive, got %g", q.Zeta)
	}
	return nil
}

// Sample draws center coordinates conditioned on the observations and
// returns the draw together with its log density under the proposal.
func (q Proposal) Sample(obs PointCloud, src rand.Source) (xc, yc, zc, logQ float64, err error) {
	if err := q.validate(); err != nil {
		return 0, 0, 0, 0, err
	}
	c, err := obs.Centroid()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("proposal: %w", err)
	}
	xc, yc, zc, logQ = q.sampleAround(c, src)
	return xc, yc, zc, logQ, nil
}

// sampleAround draws around a precomputed centroid. The sampler calls
// this directly so the centroid is computed once per inference call, not
// once per particle.
func (q Proposal) sampleAround(c Point, src rand.Source) (xc, yc, zc, logQ float64) {
	nx := distuv.Normal{Mu: c.X, Sigma: q.Zeta, Src: src}
	ny := distuv.Normal{Mu: c.Y, Sigma: q.Zeta, Src: src}
	nz := distuv.Normal{Mu: c.Z, Sigma: q.Zeta, Src: src}
	xc, yc, zc = nx.Rand(), ny.Rand(), nz.Rand()
	logQ = nx.LogProb(xc) + ny.LogProb(yc) + nz.LogProb(zc)
	return xc, yc, zc, logQ
}

// LogDensity evaluates the proposal log density of a center draw given
// the observations it was conditioned on.
func (q Proposal) LogDensity(obs PointCloud, xc, yc, zc float64) (float64, error) {
	if err := q.validate(); err != nil {
		return 0, err
	}
	c, err := obs.Centroid()
	if err != nil {
		return 0, fmt.Errorf("proposal: %w", err)
	}
	return distuv.Normal{Mu: c.X, Sigma: q.Zeta}.LogProb(xc) +
		distuv.Normal{Mu: c.Y, Sigma: q.Zeta}.LogProb(yc) +
		distuv.Normal{Mu: c.Z, Sigma: q.Zeta}.LogProb(zc), nil
}
