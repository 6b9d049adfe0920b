package boxfit

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Particle is one independent sample of box parameters plus its
// importance weight. Both are fixed at creation; particles are only read
// afterwards. LogWeight is finite unless the model assigns zero density
// to the observation, in which case it is the -Inf sentinel and the
// particle is still rankable by Chamfer score.
type Particle struct {
	Params    BoxParams
	LogWeight float64
}

// Sampler runs weighted importance sampling: centers come from the
// proposal, extents and sigma from the model priors, and each particle
// is weighted by prior * likelihood / proposal.
type Sampler struct {
	Model    Model
	Proposal Proposal

	// Workers bounds the number of particle-drawing goroutines.
	// Zero or negative means one per available CPU.
	Workers int
}

// Infer draws k independent particles conditioned on the observations.
// Particle i always uses the random substream (seed, i), so results are
// identical for any worker count. Either all k particles are returned or
// the call fails as a whole.
func (s Sampler) Infer(obs PointCloud, k int, seed uint64) ([]Particle, error) {
	if err := s.Model.Bounds.Validate(); err != nil {
		return nil, err
	}
	if err := s.Proposal.validate(); err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("infer: %w", ErrEmptyCloud)
	}
	if k <= 0 {
		return nil, fmt.Errorf("infer: particle count must be positive, got %d", k)
	}

	centroid, err := obs.Centroid()
	if err != nil {
		return nil, fmt.Errorf("infer: %w", err)
	}

	particles := make([]Particle, k)
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > k {
		workers = k
	}

	idxCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxCh {
				particles[i] = s.drawParticle(obs, centroid, seed, uint64(i))
			}
		}()
	}
	for i := 0; i < k; i++ {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	return particles, nil
}

// drawParticle produces particle id from its own substream.
func (s Sampler) drawParticle(obs PointCloud, centroid Point, seed, id uint64) Particle {
	src := rand.NewPCG(seed, id)

	xc, yc, zc, logQ := s.Proposal.sampleAround(centroid, src)

	b := s.Model.Bounds
	ext := distuv.Uniform{Min: 0, Max: 1, Src: src}
	p := BoxParams{
		XC:    xc,
		YC:    yc,
		ZC:    zc,
		L:     ext.Rand(),
		W:     ext.Rand(),
		H:     ext.Rand(),
		Sigma: distuv.Uniform{Min: b.SigmaMin, Max: b.SigmaMax, Src: src}.Rand(),
	}

	// Extent and sigma priors cancel against their own proposal
	// densities; only the center prior, likelihood and center proposal
	// remain in the weight.
	logW := s.Model.CenterPriorLogDensity(p) + s.Model.LogLikelihood(p, obs) - logQ
	if math.IsNaN(logW) {
		logW = math.Inf(-1) // degenerate likelihood sentinel
	}
	return Particle{Params: p, LogWeight: logW}
}

// NormalizedWeights converts particle log weights into probabilities
// summing to one. Degenerate (-Inf) particles get weight zero; if every
// particle is degenerate, the weights are uniform so downstream
// consumers still have a valid distribution.
func NormalizedWeights(particles []Particle) []float64 {
	logs := make([]float64, len(particles))
	allDegenerate := true
	for i, p := range particles {
		logs[i] = p.LogWeight
		if !math.IsInf(p.LogWeight, -1) {
			allDegenerate = false
		}
	}
	out := make([]float64, len(particles))
	if len(particles) == 0 {
		return out
	}
	if allDegenerate {
		for i := range out {
			out[i] = 1 / float64(len(out))
		}
		return out
	}
	total := floats.LogSumExp(logs)
	for i, lw := range logs {
		out[i] = math.Exp(lw - total)
	}
	return out
}
