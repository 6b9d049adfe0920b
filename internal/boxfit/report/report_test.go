package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/boxfit/internal/boxfit"
)

func testScene(t *testing.T) (boxfit.PointCloud, []boxfit.RankedHypothesis) {
	t.Helper()
	box := boxfit.BoxParams{XC: 0.5, YC: 0.5, ZC: 0.5, L: 0.5, W: 0.25, H: 0.1, Sigma: 0.02}
	obs, err := boxfit.WireframePoints(box, 6)
	if err != nil {
		t.Fatalf("WireframePoints error: %v", err)
	}
	hyps := []boxfit.RankedHypothesis{
		{Params: box, Chamfer: 0.01, LogWeight: 10},
		{Params: boxfit.BoxParams{XC: 0.4, YC: 0.6, ZC: 0.5, L: 0.3, W: 0.3, H: 0.3, Sigma: 0.05}, Chamfer: 0.4, LogWeight: 2},
	}
	return obs[1:], hyps
}

func TestScatterPNG(t *testing.T) {
	obs, hyps := testScene(t)
	path := filepath.Join(t.TempDir(), "scene.png")

	if err := ScatterPNG(path, obs, hyps, 6, ProjectionXY); err != nil {
		t.Fatalf("ScatterPNG error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}
}

func TestScatterPNG_EmptyObservations(t *testing.T) {
	if err := ScatterPNG(filepath.Join(t.TempDir(), "x.png"), nil, nil, 6, ProjectionXY); err == nil {
		t.Error("expected error for empty observations")
	}
}

func TestScatterHTML(t *testing.T) {
	obs, hyps := testScene(t)
	path := filepath.Join(t.TempDir(), "scene.html")

	if err := ScatterHTML(path, obs, hyps, 6, ProjectionXZ); err != nil {
		t.Fatalf("ScatterHTML error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	html := string(data)
	if !strings.Contains(html, "observations") {
		t.Error("report missing observations series")
	}
	if !strings.Contains(html, "hyp 1") {
		t.Error("report missing hypothesis series")
	}
}

func TestProjection(t *testing.T) {
	p := boxfit.Point{X: 1, Y: 2, Z: 3}
	cases := []struct {
		proj Projection
		x, y float64
		name string
	}{
		{ProjectionXY, 1, 2, "XY"},
		{ProjectionXZ, 1, 3, "XZ"},
		{ProjectionYZ, 2, 3, "YZ"},
	}
	for _, tc := range cases {
		x, y := tc.proj.project(p)
		if x != tc.x || y != tc.y {
			t.Errorf("%s.project = (%v, %v), want (%v, %v)", tc.name, x, y, tc.x, tc.y)
		}
		if tc.proj.String() != tc.name {
			t.Errorf("String() = %q, want %q", tc.proj.String(), tc.name)
		}
	}
}
