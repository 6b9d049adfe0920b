package boxfit

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidBounds reports prior bounds with min > max or a
// non-positive sigma lower bound.
var ErrInvalidBounds = errors.New("boxfit: invalid prior bounds")

// Bounds delimits the uniform priors over the box center coordinates and
// the observation noise scale. Extents always use the fixed [0,1] prior.
type Bounds struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
	ZMin float64 `json:"z_min"`
	ZMax float64 `json:"z_max"`

	SigmaMin float64 `json:"sigma_min"`
	SigmaMax float64 `json:"sigma_max"`
}

// Validate checks every bound pair. Bounds are rejected as a whole;
// there is no partial acceptance.
func (b Bounds) Validate() error {
	switch {
	case b.XMin > b.XMax:
		return fmt.Errorf("%w: x min %g > max %g", ErrInvalidBounds, b.XMin, b.XMax)
	case b.YMin > b.YMax:
		return fmt.Errorf("%w: y min %g > max %g", ErrInvalidBounds, b.YMin, b.YMax)
	case b.ZMin > b.ZMax:
		return fmt.Errorf("%w: z min %g > max %g", ErrInvalidBounds, b.ZMin, b.ZMax)
	case b.SigmaMin <= 0:
		return fmt.Errorf("%w: sigma min must be > 0, got %g", ErrInvalidBounds, b.SigmaMin)
	case b.SigmaMin > b.SigmaMax:
		return fmt.Errorf("%w: sigma min %g > max %g", ErrInvalidBounds, b.SigmaMin, b.SigmaMax)
	}
	return nil
}

// BoxParams is one full assignment of the latent parameters: box center,
// extents along each axis, and the isotropic point-dispersion scale.
// Fixed fields replace the symbol-keyed parameter maps of dynamic
// probabilistic runtimes; a params value is immutable once sampled.
type BoxParams struct {
	XC, YC, ZC float64 // box center
	L, W, H    float64 // extents along x, y, z
	Sigma      float64 // observation noise scale
}

// Model is the generative model: independent uniform priors over center
// (caller bounds), extents ([0,1]) and sigma (caller bounds), and an
// observation likelihood under which each point is drawn i.i.d. from an
// isotropic 3D Gaussian centred on the box center with covariance
// sigma^2*I. The model is stateless; every sampling operation takes an
// explicit random source.
//
// Note the deliberate mismatch inherited from the source material: the
// synthetic generator (SampleBoxCloud) places points along box edges,
// while this likelihood assumes a Gaussian cloud around the center.
type Model struct {
	Bounds Bounds
}

// unitExtentPrior is the fixed prior over each of L, W, H.
var unitExtentPrior = distuv.Uniform{Min: 0, Max: 1}

// SampleParams draws a full parameter assignment from the priors.
func (m Model) SampleParams(src rand.Source) BoxParams {
	ext := distuv.Uniform{Min: 0, Max: 1, Src: src}
	return BoxParams{
		XC:    distuv.Uniform{Min: m.Bounds.XMin, Max: m.Bounds.XMax, Src: src}.Rand(),
		YC:    distuv.Uniform{Min: m.Bounds.YMin, Max: m.Bounds.YMax, Src: src}.Rand(),
		ZC:    distuv.Uniform{Min: m.Bounds.ZMin, Max: m.Bounds.ZMax, Src: src}.Rand(),
		L:     ext.Rand(),
		W:     ext.Rand(),
		H:     ext.Rand(),
		Sigma: distuv.Uniform{Min: m.Bounds.SigmaMin, Max: m.Bounds.SigmaMax, Src: src}.Rand(),
	}
}

// SamplePoints forward-samples n observation points from the likelihood
// conditioned on p.
func (m Model) SamplePoints(p BoxParams, n int, src rand.Source) PointCloud {
	nx := distuv.Normal{Mu: p.XC, Sigma: p.Sigma, Src: src}
	ny := distuv.Normal{Mu: p.YC, Sigma: p.Sigma, Src: src}
	nz := distuv.Normal{Mu: p.ZC, Sigma: p.Sigma, Src: src}
	out := make(PointCloud, n)
	for i := range out {
		out[i] = Point{X: nx.Rand(), Y: ny.Rand(), Z: nz.Rand()}
	}
	return out
}

// CenterPriorLogDensity returns the log density of the center prior at
// p's center, -Inf outside the bounds.
func (m Model) CenterPriorLogDensity(p BoxParams) float64 {
	return distuv.Uniform{Min: m.Bounds.XMin, Max: m.Bounds.XMax}.LogProb(p.XC) +
		distuv.Uniform{Min: m.Bounds.YMin, Max: m.Bounds.YMax}.LogProb(p.YC) +
		distuv.Uniform{Min: m.Bounds.ZMin, Max: m.Bounds.ZMax}.LogProb(p.ZC)
}

// PriorLogDensity returns the summed log density of all four priors.
func (m Model) PriorLogDensity(p BoxParams) float64 {
	return m.CenterPriorLogDensity(p) +
		unitExtentPrior.LogProb(p.L) +
		unitExtentPrior.LogProb(p.W) +
		unitExtentPrior.LogProb(p.H) +
		distuv.Uniform{Min: m.Bounds.SigmaMin, Max: m.Bounds.SigmaMax}.LogProb(p.Sigma)
}

// LogLikelihood evaluates the log density of the observations under the
// likelihood conditioned on p. The observed points are held fixed, never
// resampled. A non-positive sigma has zero density everywhere.
func (m Model) LogLikelihood(p BoxParams, obs PointCloud) float64 {
	if p.Sigma <= 0 {
		return math.Inf(-1)
	}
	nx := distuv.Normal{Mu: p.XC, Sigma: p.Sigma}
	ny := distuv.Normal{Mu: p.YC, Sigma: p.Sigma}
	nz := distuv.Normal{Mu: p.ZC, Sigma: p.Sigma}
	var ll float64
	for _, pt := range obs {
		ll += nx.LogProb(pt.X) + ny.LogProb(pt.Y) + nz.LogProb(pt.Z)
	}
	return ll
}

// JointLogDensity is the log density of a full assignment: all prior
// terms plus the likelihood of the given points.
func (m Model) JointLogDensity(p BoxParams, pts PointCloud) float64 {
	return m.PriorLogDensity(p) + m.LogLikelihood(p, pts)
}
