// Package report renders result tables as PNG charts.
package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"feedin_simulator/internal/table"
)

var plotColors = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
	color.RGBA{R: 140, G: 86, B: 75, A: 255},
}

const (
	width  = 800
	height = 400
)

// DurationCurve plots every column of tbl sorted in descending order against
// the number of hours.
func DurationCurve(tbl *table.Table, title string) ([]byte, error) {
	if tbl == nil || tbl.Width() == 0 || tbl.Len() == 0 {
		return nil, fmt.Errorf("no results to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Hours"
	p.Y.Label.Text = "Normalised feed-in"
	p.X.Min = 0
	p.X.Max = float64(tbl.Len())
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	for i, key := range tbl.Keys() {
		col, _ := tbl.Column(key)
		line, err := plotter.NewLine(durationPoints(col.Values))
		if err != nil {
			return nil, fmt.Errorf("creating line for %s: %w", key, err)
		}
		line.Color = plotColors[i%len(plotColors)]
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(key, line)
	}
	p.Legend.Top = true

	return render(p)
}

// TimeSeries plots every column of tbl against time.
func TimeSeries(tbl *table.Table, title string) ([]byte, error) {
	if tbl == nil || tbl.Width() == 0 || tbl.Len() == 0 {
		return nil, fmt.Errorf("no results to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02\n15:04"}
	p.Y.Label.Text = "Normalised feed-in"
	p.Add(plotter.NewGrid())

	index := tbl.Index()
	for i, key := range tbl.Keys() {
		col, _ := tbl.Column(key)
		pts := make(plotter.XYs, 0, len(col.Values))
		for j, v := range col.Values {
			if math.IsNaN(v) {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(index[j].Unix()), Y: v})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("creating line for %s: %w", key, err)
		}
		line.Color = plotColors[i%len(plotColors)]
		p.Add(line)
		p.Legend.Add(key, line)
	}
	p.Legend.Top = true

	return render(p)
}

func durationPoints(values []float64) plotter.XYs {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	pts := make(plotter.XYs, len(sorted))
	for i, v := range sorted {
		pts[i] = plotter.XY{X: float64(i + 1), Y: v}
	}
	return pts
}

func render(p *plot.Plot) ([]byte, error) {
	writer, err := p.WriterTo(vg.Points(width), vg.Points(height), "png")
	if err != nil {
		return nil, fmt.Errorf("creating plot writer: %w", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("writing plot: %w", err)
	}
	return buf.Bytes(), nil
}
