package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/boxfit/internal/boxfit"
)

// ScatterHTML renders the observation cloud and hypothesis wireframes to
// a standalone HTML file for interactive inspection.
func ScatterHTML(path string, obs boxfit.PointCloud, hyps []boxfit.RankedHypothesis, pointsPerEdge int, proj Projection) error {
	if len(obs) == 0 {
		return fmt.Errorf("scatter html: %w", boxfit.ErrEmptyCloud)
	}

	obsData := make([]opts.ScatterData, 0, len(obs))
	maxAbs := 0.0
	for _, pt := range obs {
		x, y := proj.project(pt)
		if v := abs(x); v > maxAbs {
			maxAbs = v
		}
		if v := abs(y); v > maxAbs {
			maxAbs = v
		}
		obsData = append(obsData, opts.ScatterData{Value: []interface{}{x, y}})
	}

	// Square plot with symmetric ranges so box shapes are not distorted.
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "boxfit hypotheses", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Box hypotheses",
			Subtitle: fmt.Sprintf("projection=%s observations=%d hypotheses=%d", proj, len(obs), len(hyps)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: string(proj.String()[0]), NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: string(proj.String()[1]), NameLocation: "middle", NameGap: 30}),
	)

	scatter.AddSeries("observations", obsData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	for i, h := range hyps {
		wire, err := boxfit.WireframePoints(h.Params, pointsPerEdge)
		if err != nil {
			return fmt.Errorf("hypothesis %d wireframe: %w", i, err)
		}
		data := make([]opts.ScatterData, 0, len(wire)-1)
		for _, pt := range wire[1:] {
			x, y := proj.project(pt)
			data = append(data, opts.ScatterData{Value: []interface{}{x, y}})
		}
		name := fmt.Sprintf("hyp %d chamfer=%.4g", i+1, h.Chamfer)
		scatter.AddSeries(name, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	defer f.Close()
	if err := scatter.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
