// Package report renders boxfit results for human inspection: static
// PNG projections via gonum/plot and interactive HTML via go-echarts.
// It consumes ranked estimates; nothing in the inference path depends on
// it.
package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/boxfit/internal/boxfit"
)

// Projection selects the axis pair of a 2D view of the 3D scene.
type Projection int

const (
	ProjectionXY Projection = iota
	ProjectionXZ
	ProjectionYZ
)

// String returns the axis-pair label, e.g. "XY".
func (pr Projection) String() string {
	switch pr {
	case ProjectionXZ:
		return "XZ"
	case ProjectionYZ:
		return "YZ"
	default:
		return "XY"
	}
}

func (pr Projection) project(p boxfit.Point) (x, y float64) {
	switch pr {
	case ProjectionXZ:
		return p.X, p.Z
	case ProjectionYZ:
		return p.Y, p.Z
	default:
		return p.X, p.Y
	}
}

// hypothesisPalette colors the best hypotheses; entries repeat if more
// hypotheses than colors are plotted.
var hypothesisPalette = []color.RGBA{
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
}

// ScatterPNG writes a projection of the observation cloud overlaid with
// the wireframes of the given hypotheses (best first) to a PNG file.
func ScatterPNG(path string, obs boxfit.PointCloud, hyps []boxfit.RankedHypothesis, pointsPerEdge int, proj Projection) error {
	if len(obs) == 0 {
		return fmt.Errorf("scatter png: %w", boxfit.ErrEmptyCloud)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("boxfit hypotheses (%s projection)", proj)
	p.X.Label.Text = string(proj.String()[0])
	p.Y.Label.Text = string(proj.String()[1])

	obsPts := make(plotter.XYs, len(obs))
	for i, pt := range obs {
		obsPts[i].X, obsPts[i].Y = proj.project(pt)
	}
	obsScatter, err := plotter.NewScatter(obsPts)
	if err != nil {
		return fmt.Errorf("observation scatter: %w", err)
	}
	obsScatter.GlyphStyle.Color = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	obsScatter.GlyphStyle.Radius = vg.Points(1.2)
	p.Add(obsScatter)
	p.Legend.Add(fmt.Sprintf("observations (%d)", len(obs)), obsScatter)

	for i, h := range hyps {
		wire, err := boxfit.WireframePoints(h.Params, pointsPerEdge)
		if err != nil {
			return fmt.Errorf("hypothesis %d wireframe: %w", i, err)
		}
		wirePts := make(plotter.XYs, 0, len(wire)-1)
		for _, pt := range wire[1:] { // skip the origin sentinel
			x, y := proj.project(pt)
			wirePts = append(wirePts, plotter.XY{X: x, Y: y})
		}
		sc, err := plotter.NewScatter(wirePts)
		if err != nil {
			return fmt.Errorf("hypothesis %d scatter: %w", i, err)
		}
		sc.GlyphStyle.Color = hypothesisPalette[i%len(hypothesisPalette)]
		sc.GlyphStyle.Radius = vg.Points(0.9)
		p.Add(sc)
		p.Legend.Add(fmt.Sprintf("hyp %d chamfer=%.4g", i+1, h.Chamfer), sc)
	}

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}
