// Package chart renders the static PNG figures of a scored table.
package chart

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/domain"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/table"
)

const (
	histogramBins = 30
	kdePoints     = 200
	figureWidth   = 8 * vg.Inch
	figureHeight  = 5 * vg.Inch
)

var errNoData = errors.New("no finite values to plot")

// Histogram draws the predicted temperature distribution with a kernel
// density overlay. It implements pipeline.Renderer.
type Histogram struct {
	path   string
	logger *slog.Logger
}

// NewHistogram creates a Histogram renderer writing a PNG to path.
func NewHistogram(path string, logger *slog.Logger) *Histogram {
	return &Histogram{path: path, logger: logger}
}

func (h *Histogram) Name() string { return "histogram" }

func (h *Histogram) Render(_ context.Context, scored *table.Table) error {
	preds, err := scored.Floats(domain.ColPredicted)
	if err != nil {
		return err
	}
	values := finite(preds)
	if len(values) == 0 {
		return fmt.Errorf("histogram: %w", errNoData)
	}

	p := plot.New()
	p.Title.Text = "Predicted Air Temperature Distribution (Lasso Model)"
	p.X.Label.Text = "Predicted Temperature (°C)"
	p.Y.Label.Text = "Frequency"

	hist, err := plotter.NewHist(plotter.Values(values), histogramBins)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	hist.FillColor = color.NRGBA{R: 255, G: 140, B: 0, A: 255}
	hist.LineStyle.Color = color.Black
	p.Add(hist, plotter.NewGrid())

	if curve := kdeCurve(values, hist.Width*float64(len(values))); curve != nil {
		line, err := plotter.NewLine(curve)
		if err != nil {
			return fmt.Errorf("histogram: %w", err)
		}
		line.Color = color.NRGBA{R: 200, A: 255}
		line.Width = vg.Points(1.5)
		p.Add(line)
	}

	if err := save(p, h.path); err != nil {
		return err
	}
	h.logger.Info("histogram saved", "path", h.path, "rows", len(values))
	return nil
}

// Scatter plots NDVI against predicted temperature. It implements
// pipeline.Renderer.
type Scatter struct {
	path   string
	logger *slog.Logger
}

// NewScatter creates a Scatter renderer writing a PNG to path.
func NewScatter(path string, logger *slog.Logger) *Scatter {
	return &Scatter{path: path, logger: logger}
}

func (s *Scatter) Name() string { return "scatter" }

func (s *Scatter) Render(_ context.Context, scored *table.Table) error {
	ndvi, err := scored.Floats(domain.ColNDVI)
	if err != nil {
		return err
	}
	preds, err := scored.Floats(domain.ColPredicted)
	if err != nil {
		return err
	}

	points := make(plotter.XYs, 0, len(ndvi))
	for i := range ndvi {
		if math.IsNaN(ndvi[i]) || math.IsNaN(preds[i]) {
			continue
		}
		points = append(points, plotter.XY{X: ndvi[i], Y: preds[i]})
	}
	if len(points) == 0 {
		return fmt.Errorf("scatter: %w", errNoData)
	}

	p := plot.New()
	p.Title.Text = "NDVI vs Predicted Temperature"
	p.X.Label.Text = "NDVI"
	p.Y.Label.Text = "Predicted Temperature (°C)"

	sc, err := plotter.NewScatter(points)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	sc.GlyphStyle.Color = color.NRGBA{G: 128, A: 102} // green, alpha 0.4
	sc.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(plotter.NewGrid(), sc)

	if err := save(p, s.path); err != nil {
		return err
	}
	s.logger.Info("scatter plot saved", "path", s.path, "points", len(points))
	return nil
}

// kdeCurve evaluates a Gaussian kernel density estimate with Scott's
// bandwidth, multiplied by scale so it overlays a count histogram. It returns
// nil when the sample has no spread.
func kdeCurve(values []float64, scale float64) plotter.XYs {
	n := float64(len(values))
	if n < 2 {
		return nil
	}
	sd := stat.StdDev(values, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	bw := sd * math.Pow(n, -1.0/5)

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	lo, hi = lo-3*bw, hi+3*bw

	norm := scale / (n * bw * math.Sqrt(2*math.Pi))
	curve := make(plotter.XYs, kdePoints)
	step := (hi - lo) / float64(kdePoints-1)
	for i := range curve {
		x := lo + float64(i)*step
		var sum float64
		for _, v := range values {
			z := (x - v) / bw
			sum += math.Exp(-0.5 * z * z)
		}
		curve[i] = plotter.XY{X: x, Y: norm * sum}
	}
	return curve
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func save(p *plot.Plot, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create figure dir: %w", err)
		}
	}
	if err := p.Save(figureWidth, figureHeight, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
