package boxfit

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestWireframePoints_CountAndSentinel(t *testing.T) {
	box := BoxParams{XC: 0.3, YC: -0.2, ZC: 1.1, L: 2, W: 1, H: 0.5}
	for _, perEdge := range []int{0, 1, 3, 10, 100} {
		cloud, err := WireframePoints(box, perEdge)
		if err != nil {
			t.Fatalf("WireframePoints(perEdge=%d) error: %v", perEdge, err)
		}
		want := 12*perEdge + 1
		if len(cloud) != want {
			t.Errorf("perEdge=%d: len = %d, want %d", perEdge, len(cloud), want)
		}
		if cloud[0] != (Point{}) {
			t.Errorf("perEdge=%d: sentinel = %+v, want origin", perEdge, cloud[0])
		}
	}
}

func TestWireframePoints_ReferenceScenario(t *testing.T) {
	box := BoxParams{L: 0.5, W: 0.25, H: 0.1}
	cloud, err := WireframePoints(box, 1000)
	if err != nil {
		t.Fatalf("WireframePoints error: %v", err)
	}
	if len(cloud) != 12001 {
		t.Fatalf("len = %d, want 12001", len(cloud))
	}

	// Index 1 is the first sample of the first X edge: fractional offset
	// 1/1000 from (-0.25, -0.125, -0.05) toward (0.25, -0.125, -0.05).
	got := cloud[1]
	want := Point{X: -0.25 + 0.5/1000, Y: -0.125, Z: -0.05}
	const tol = 1e-12
	if math.Abs(got.X-want.X) > tol || math.Abs(got.Y-want.Y) > tol || math.Abs(got.Z-want.Z) > tol {
		t.Errorf("point[1] = %+v, want %+v", got, want)
	}
}

func TestWireframePoints_OffsetZeroNeverEmitted(t *testing.T) {
	box := BoxParams{L: 1, W: 1, H: 1}
	cloud, err := WireframePoints(box, 4)
	if err != nil {
		t.Fatalf("WireframePoints error: %v", err)
	}
	// The low corner of the first X edge is (-0.5, -0.5, -0.5); offset 0
	// is excluded, so it must not appear among the edge samples.
	for i, p := range cloud[1:] {
		if p.X == -0.5 && p.Y == -0.5 && p.Z == -0.5 {
			t.Errorf("point %d is the excluded offset-0 corner", i+1)
		}
	}
}

func TestWireframePoints_NonPositiveExtent(t *testing.T) {
	cases := []BoxParams{
		{L: 0, W: 1, H: 1},
		{L: 1, W: -0.5, H: 1},
		{L: 1, W: 1, H: 0},
	}
	for _, box := range cases {
		if _, err := WireframePoints(box, 5); !errors.Is(err, ErrNonPositiveExtent) {
			t.Errorf("WireframePoints(%+v) error = %v, want ErrNonPositiveExtent", box, err)
		}
	}
}

func TestWireframePoints_Deterministic(t *testing.T) {
	box := BoxParams{XC: 1, YC: 2, ZC: 3, L: 0.7, W: 0.3, H: 0.9}
	a, err := WireframePoints(box, 17)
	if err != nil {
		t.Fatalf("WireframePoints error: %v", err)
	}
	b, err := WireframePoints(box, 17)
	if err != nil {
		t.Fatalf("WireframePoints error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated calls with identical inputs differ")
	}
}
