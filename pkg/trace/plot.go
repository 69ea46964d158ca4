package trace

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SavePlot renders the named metric across iterations to an image file.
// Entries without a value for the metric (e.g. the first iteration) are
// skipped. The output format follows the file extension (png, svg, pdf).
func SavePlot(entries []Entry, metric, path string) error {
	var pts plotter.XYs
	for _, e := range entries {
		v, ok := e.Values[metric]
		if !ok || v == nil {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(e.Iteration), Y: *v})
	}
	if len(pts) == 0 {
		return fmt.Errorf("trace: no values for metric %q", metric)
	}

	p := plot.New()
	p.Title.Text = metric + " per iteration"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = metric

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("trace: build line: %w", err)
	}
	p.Add(line, plotter.NewGrid())

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("trace: save plot %s: %w", path, err)
	}
	return nil
}
