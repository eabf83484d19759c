package chart

import (
	"image/color"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"

	"github.com/tiancaiamao/allocbench"
)

// xTickStride is the number of sizes between two labelled x ticks.
const xTickStride = 6

// UnitPlot draws the per-size mean time of both allocators on log axes:
// log2 sizes horizontally, log10 times vertically.
func UnitPlot(b allocbench.UnitBench, opts Options, logger *zap.Logger) (*plot.Plot, error) {
	m := allocbench.MeanBySize(b.Rows)

	p := setupPlot(b.Name, unitFonts)
	p.X.Scale = plot.LogScale{}
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = relabel(plot.LogTicks{}, allocbench.FormatTime)

	var xTicks []plot.Tick
	for i := 0; i < len(m.Sizes); i += xTickStride {
		if m.Sizes[i] <= 0 {
			continue
		}
		xTicks = append(xTicks, plot.Tick{Value: m.Sizes[i], Label: allocbench.FormatBytes(m.Sizes[i])})
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)

	drawn := 0
	for _, s := range []struct {
		label  string
		values []float64
		color  color.Color
	}{
		{opts.Baseline, m.Baseline, blue},
		{opts.Candidate, m.Candidate, red},
	} {
		xys := make(plotter.XYs, 0, len(m.Sizes))
		for i, size := range m.Sizes {
			if size <= 0 || s.values[i] <= 0 {
				logger.Warn("dropping point outside log axes",
					zap.String("bench", b.Name),
					zap.String("allocator", s.label),
					zap.Float64("size", size),
					zap.Float64("value", s.values[i]))
				continue
			}
			xys = append(xys, plotter.XY{X: size, Y: s.values[i]})
		}
		if len(xys) == 0 {
			continue
		}

		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, err
		}
		line.Color = s.color
		points.Color = s.color
		points.Shape = draw.CircleGlyph{}
		points.Radius = 3

		p.Add(line, points)
		p.Legend.Add(s.label, line, points)
		drawn += len(xys)
	}
	if drawn == 0 {
		return nil, allocbench.ErrEmptySample
	}
	p.Legend.Top = true

	widenLogRange(&p.X)
	widenLogRange(&p.Y)
	return p, nil
}
