package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var ErrEmptyPlot = errors.New("nothing to plot")

// Figure describes a PNG chart.
type Figure struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length
	DPI    int
}

func DefaultFigure(title string) Figure {
	return Figure{
		Title:  title,
		XLabel: "time",
		YLabel: "output",
		Width:  8 * vg.Inch,
		Height: 5 * vg.Inch,
		DPI:    150,
	}
}

func (f Figure) plot(series []Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = f.XLabel
	p.Y.Label.Text = f.YLabel
	p.Title.Padding = vg.Points(8)
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	n := 0
	for _, s := range series {
		m := min(len(s.X), len(finitePrefix(s.Y)))
		if m == 0 {
			continue
		}
		pts := make(plotter.XYs, m)
		for i := range pts {
			pts[i].X = s.X[i]
			pts[i].Y = s.Y[i]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(n)
		if n > 0 {
			line.LineStyle.Dashes = plotutil.Dashes(n - 1)
		}
		p.Add(line)
		p.Legend.Add(s.Name, line)
		n++
	}
	if n == 0 {
		return nil, ErrEmptyPlot
	}
	return p, nil
}

// WritePNG draws the series onto a raster canvas and encodes it as PNG.
func WritePNG(w io.Writer, f Figure, series []Series) error {
	p, err := f.plot(series)
	if err != nil {
		return err
	}

	c := vgimg.NewWith(
		vgimg.UseWH(f.Width, f.Height),
		vgimg.UseDPI(f.DPI),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return bw.Flush()
}

func SavePNG(path string, f Figure, series []Series) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(out, f, series); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
