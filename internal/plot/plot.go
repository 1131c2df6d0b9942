// Package plot renders potential-energy curves and optimiser traces, either
// to image files through gonum/plot or to the terminal through asciigraph.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/vqelab/internal/storage"
	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const DPI = 180

var (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch

	ErrNoData = errors.New("plot: nothing to draw")
)

var (
	vqeColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	exactColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	gridColor  = color.NRGBA{A: 77}
)

func newPlot(title, xLabel, yLabel string) *gonumplot.Plot {
	p := gonumplot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	grid := plotter.NewGrid()
	grid.Vertical.Color = gridColor
	grid.Horizontal.Color = gridColor
	p.Add(grid)
	p.Legend.Top = true
	return p
}

// Curve draws VQE energies as a solid line and, when the rows carry them,
// exact energies as a dashed line.
func Curve(rows []storage.CurveRow) (*gonumplot.Plot, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	p := newPlot("Potential Energy Curve", "Bond length (Å)", "Energy (Ha)")

	vqe := make(plotter.XYs, len(rows))
	exact := make(plotter.XYs, 0, len(rows))
	for i, r := range rows {
		vqe[i].X, vqe[i].Y = r.R, r.VQE
		if r.HasExact {
			exact = append(exact, plotter.XY{X: r.R, Y: r.Exact})
		}
	}

	line, err := plotter.NewLine(vqe)
	if err != nil {
		return nil, err
	}
	line.Color = vqeColor
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("VQE", line)

	if len(exact) > 0 {
		ref, err := plotter.NewLine(exact)
		if err != nil {
			return nil, err
		}
		ref.Color = exactColor
		ref.Width = vg.Points(1.5)
		ref.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(ref)
		p.Legend.Add("Exact", ref)
	}
	return p, nil
}

// Trace draws the energy of every objective evaluation. A reference is
// drawn as a dashed horizontal line when hasRef is set.
func Trace(trace []float64, reference float64, hasRef bool) (*gonumplot.Plot, error) {
	if len(trace) == 0 {
		return nil, ErrNoData
	}
	p := newPlot("VQE Convergence", "Evaluation", "Energy (Ha)")

	pts := make(plotter.XYs, len(trace))
	for i, e := range trace {
		pts[i].X, pts[i].Y = float64(i+1), e
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = vqeColor
	p.Add(line)
	p.Legend.Add("VQE", line)

	if hasRef {
		ref, err := plotter.NewLine(plotter.XYs{{X: 1, Y: reference}, {X: float64(max(len(trace), 2)), Y: reference}})
		if err != nil {
			return nil, err
		}
		ref.Color = exactColor
		ref.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(ref)
		p.Legend.Add("Exact", ref)
	}
	return p, nil
}

// SaveCurve writes the curve of rows to path. The format follows the file
// extension; parent directories are created.
func SaveCurve(rows []storage.CurveRow, path string) error {
	p, err := Curve(rows)
	if err != nil {
		return err
	}
	return Save(p, path)
}

func SaveTrace(trace []float64, reference float64, hasRef bool, path string) error {
	p, err := Trace(trace, reference, hasRef)
	if err != nil {
		return err
	}
	return Save(p, path)
}

// Save writes p to path. PNG output is rendered at DPI; other formats
// (svg, pdf, eps, jpg, tif) go through gonum/plot's formatted canvases.
func Save(p *gonumplot.Plot, path string) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "" {
		return fmt.Errorf("plot: %s has no file extension", path)
	}

	var out io.WriterTo
	if format == "png" {
		c := vgimg.NewWith(vgimg.UseWH(Width, Height), vgimg.UseDPI(DPI))
		p.Draw(draw.New(c))
		out = vgimg.PngCanvas{Canvas: c}
	} else {
		w, err := p.WriterTo(Width, Height, format)
		if err != nil {
			return fmt.Errorf("plot: %w", err)
		}
		out = w
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := out.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ASCII renders the curve for the terminal. Exact energies become a second
// series when present.
func ASCII(rows []storage.CurveRow, width, height int) string {
	if len(rows) == 0 {
		return ""
	}
	vqe := make([]float64, len(rows))
	exact := make([]float64, 0, len(rows))
	for i, r := range rows {
		vqe[i] = r.VQE
		if r.HasExact {
			exact = append(exact, r.Exact)
		}
	}

	caption := fmt.Sprintf("Energy (Ha) vs bond length %.3f-%.3f Å", rows[0].R, rows[len(rows)-1].R)
	opts := []asciigraph.Option{
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Precision(4),
		asciigraph.Caption(caption),
	}
	if len(exact) == len(vqe) {
		opts = append(opts,
			asciigraph.SeriesColors(asciigraph.Blue, asciigraph.DarkGray),
			asciigraph.SeriesLegends("VQE", "Exact"),
		)
		return asciigraph.PlotMany([][]float64{vqe, exact}, opts...)
	}
	return asciigraph.Plot(vqe, opts...)
}
