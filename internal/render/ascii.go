package render

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

var palette = []asciigraph.AnsiColor{
	asciigraph.Default,
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Blue,
	asciigraph.Magenta,
	asciigraph.Cyan,
}

// ASCII plots the series against sample index, resampled to width
// columns. It returns "" when there is nothing to draw.
func ASCII(series []Series, width, height int, caption string) string {
	data := make([][]float64, 0, len(series))
	colors := make([]asciigraph.AnsiColor, 0, len(series))
	legends := make([]string, 0, len(series))
	for _, s := range series {
		y := finitePrefix(s.Y)
		if len(y) == 0 {
			continue
		}
		data = append(data, y)
		colors = append(colors, palette[len(colors)%len(palette)])
		legends = append(legends, s.Name)
	}
	if len(data) == 0 {
		return ""
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
	)
}

// finitePrefix drops everything from the first non-finite sample on.
func finitePrefix(y []float64) []float64 {
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return y[:i]
		}
	}
	return y
}
