package boxfit

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func clusteredObservations(t *testing.T, center Point, sigma float64, n int) PointCloud {
	t.Helper()
	m := Model{Bounds: testBounds()}
	p := BoxParams{XC: center.X, YC: center.Y, ZC: center.Z, Sigma: sigma}
	return m.SamplePoints(p, n, rand.NewPCG(12345, 0))
}

func testSampler() Sampler {
	return Sampler{
		Model: Model{Bounds: Bounds{
			XMin: 0, XMax: 1,
			YMin: 0, YMax: 1,
			ZMin: 0, ZMax: 1,
			SigmaMin: 0.01, SigmaMax: 0.1,
		}},
		Proposal: Proposal{Zeta: 0.1},
	}
}

func TestInfer_LengthAndFiniteness(t *testing.T) {
	s := testSampler()
	obs := clusteredObservations(t, Point{X: 0.5, Y: 0.5, Z: 0.5}, 0.02, 60)

	particles, err := s.Infer(obs, 200, 42)
	if err != nil {
		t.Fatalf("Infer error: %v", err)
	}
	if len(particles) != 200 {
		t.Fatalf("len = %d, want 200", len(particles))
	}
	for i, p := range particles {
		if math.IsNaN(p.LogWeight) {
			t.Errorf("particle %d has NaN log weight", i)
		}
		if math.IsInf(p.LogWeight, 1) {
			t.Errorf("particle %d has +Inf log weight", i)
		}
	}
}

func TestInfer_DeterministicAcrossRuns(t *testing.T) {
	s := testSampler()
	obs := clusteredObservations(t, Point{X: 0.5, Y: 0.5, Z: 0.5}, 0.02, 60)

	a, err := s.Infer(obs, 100, 7)
	if err != nil {
		t.Fatalf("Infer error: %v", err)
	}
	b, err := s.Infer(obs, 100, 7)
	if err != nil {
		t.Fatalf("Infer error: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed, different particles (-first +second):\n%s", diff)
	}
}

func TestInfer_DeterministicAcrossWorkerCounts(t *testing.T) {
	obs := clusteredObservations(t, Point{X: 0.5, Y: 0.5, Z: 0.5}, 0.02, 60)

	serial := testSampler()
	serial.Workers = 1
	parallel := testSampler()
	parallel.Workers = 8

	a, err := serial.Infer(obs, 100, 7)
	if err != nil {
		t.Fatalf("Infer error: %v", err)
	}
	b, err := parallel.Infer(obs, 100, 7)
	if err != nil {
		t.Fatalf("Infer error: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("worker count changed results (-serial +parallel):\n%s", diff)
	}
}

func TestInfer_InputValidation(t *testing.T) {
	s := testSampler()
	obs := PointCloud{{X: 0.5, Y: 0.5, Z: 0.5}}

	if _, err := s.Infer(nil, 10, 1); !errors.Is(err, ErrEmptyCloud) {
		t.Errorf("empty obs: error = %v, want ErrEmptyCloud", err)
	}
	if _, err := s.Infer(obs, 0, 1); err == nil {
		t.Error("k = 0: expected error")
	}

	bad := s
	bad.Model.Bounds.SigmaMin = -1
	if _, err := bad.Infer(obs, 10, 1); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("bad bounds: error = %v, want ErrInvalidBounds", err)
	}

	noZeta := s
	noZeta.Proposal.Zeta = 0
	if _, err := noZeta.Infer(obs, 10, 1); err == nil {
		t.Error("zeta = 0: expected error")
	}
}

func TestInfer_DegenerateWeightsAreSentinels(t *testing.T) {
	// Observations far outside the center prior: the proposal follows
	// the centroid, so every sampled center has zero prior density.
	s := testSampler()
	obs := PointCloud{{X: 10, Y: 10, Z: 10}, {X: 10.1, Y: 10, Z: 10}, {X: 10, Y: 10.1, Z: 10}}

	particles, err := s.Infer(obs, 50, 3)
	if err != nil {
		t.Fatalf("Infer error: %v", err)
	}
	for i, p := range particles {
		if math.IsNaN(p.LogWeight) {
			t.Fatalf("particle %d: NaN weight, want -Inf sentinel", i)
		}
		if !math.IsInf(p.LogWeight, -1) {
			t.Errorf("particle %d: weight %v, want -Inf sentinel", i, p.LogWeight)
		}
	}

	// Ranking still proceeds on the Chamfer score alone.
	ranked, err := Rank(particles, obs, 5)
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if len(ranked) != len(particles) {
		t.Errorf("ranked %d of %d degenerate particles", len(ranked), len(particles))
	}
}

func TestNormalizedWeights(t *testing.T) {
	particles := []Particle{
		{LogWeight: -10},
		{LogWeight: -10},
		{LogWeight: math.Inf(-1)},
	}
	w := NormalizedWeights(particles)
	if len(w) != 3 {
		t.Fatalf("len = %d, want 3", len(w))
	}
	sum := w[0] + w[1] + w[2]
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("weights sum to %v, want 1", sum)
	}
	if math.Abs(w[0]-w[1]) > 1e-12 {
		t.Errorf("equal log weights got unequal probabilities: %v vs %v", w[0], w[1])
	}
	if w[2] != 0 {
		t.Errorf("degenerate particle weight = %v, want 0", w[2])
	}

	// All degenerate: uniform fallback.
	degenerate := []Particle{{LogWeight: math.Inf(-1)}, {LogWeight: math.Inf(-1)}}
	dw := NormalizedWeights(degenerate)
	if dw[0] != 0.5 || dw[1] != 0.5 {
		t.Errorf("all-degenerate weights = %v, want uniform", dw)
	}
}

func TestInfer_TopHypothesisNearClusteredCloud(t *testing.T) {
	s := testSampler()
	obs := clusteredObservations(t, Point{X: 0.5, Y: 0.5, Z: 0.5}, 0.02, 80)

	particles, err := s.Infer(obs, 100, 99)
	if err != nil {
		t.Fatalf("Infer error: %v", err)
	}
	ranked, err := Rank(particles, obs, 10)
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}

	min, max, err := obs.Extent()
	if err != nil {
		t.Fatalf("Extent error: %v", err)
	}
	slack := 3 * s.Model.Bounds.SigmaMax
	best := ranked[0].Params
	if best.XC < min.X-slack || best.XC > max.X+slack ||
		best.YC < min.Y-slack || best.YC > max.Y+slack ||
		best.ZC < min.Z-slack || best.ZC > max.Z+slack {
		t.Errorf("top hypothesis center (%v, %v, %v) outside observation extent [%+v, %+v] + %v",
			best.XC, best.YC, best.ZC, min, max, slack)
	}
}
