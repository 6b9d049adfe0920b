package boxfit

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
)

// RankedHypothesis is a particle re-scored by Chamfer distance against
// the observations. Lower is strictly better. LogWeight is carried over
// from the source particle for interpretation; it plays no part in the
// ordering.
type RankedHypothesis struct {
	Params    BoxParams
	Chamfer   float64
	LogWeight float64
}

// Rank maps every particle to its wireframe representation, scores it
// against the observations with the Chamfer distance, and returns all
// hypotheses sorted ascending by score. The sort is stable, so ties keep
// the original particle order. Scoring is parallel per particle; the
// sort is the only synchronization point.
func Rank(particles []Particle, obs PointCloud, pointsPerEdge int) ([]RankedHypothesis, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("rank: %w", ErrEmptyCloud)
	}

	ranked := make([]RankedHypothesis, len(particles))
	errs := make([]error, len(particles))
	obsIdx := newNNIndex(obs)

	workers := runtime.GOMAXPROCS(0)
	if workers > len(particles) {
		workers = len(particles)
	}
	idxCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxCh {
				p := particles[i]
				wire, err := WireframePoints(p.Params, pointsPerEdge)
				if err != nil {
					errs[i] = fmt.Errorf("rank particle %d: %w", i, err)
					continue
				}
				score := directedSum(wire, obsIdx) + directedSum(obs, newNNIndex(wire))
				ranked[i] = RankedHypothesis{Params: p.Params, Chamfer: score, LogWeight: p.LogWeight}
			}
		}()
	}
	for i := range particles {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Chamfer < ranked[j].Chamfer })
	return ranked, nil
}

// TopK returns the k best hypotheses from an already ranked list,
// clamped to the list length.
func TopK(ranked []RankedHypothesis, k int) []RankedHypothesis {
	if k < 0 {
		k = 0
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}

// ContainedFraction reports the fraction of observed points inside the
// closed box described by p. This is the simple accuracy predicate used
// by downstream evaluation; it is independent of both the weight and the
// Chamfer score.
func ContainedFraction(p BoxParams, obs PointCloud) float64 {
	if len(obs) == 0 {
		return 0
	}
	hx, hy, hz := p.L/2, p.W/2, p.H/2
	inside := 0
	for _, pt := range obs {
		if pt.X >= p.XC-hx && pt.X <= p.XC+hx &&
			pt.Y >= p.YC-hy && pt.Y <= p.YC+hy &&
			pt.Z >= p.ZC-hz && pt.Z <= p.ZC+hz {
			inside++
		}
	}
	return float64(inside) / float64(len(obs))
}
