package chart

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tiancaiamao/allocbench"
)

type shades struct {
	dark, regular, light color.Color
}

var (
	baselineShades  = shades{dark: darkBlue, regular: blue, light: lightBlue}
	candidateShades = shades{dark: darkRed, regular: red, light: lightCoral}
)

func newBar(x, y float64, width vg.Length, c color.Color) (*plotter.BarChart, error) {
	bc, err := plotter.NewBarChart(plotter.Values{y}, width)
	if err != nil {
		return nil, err
	}
	bc.XMin = x
	bc.Color = c
	bc.LineStyle.Width = 0
	return bc, nil
}

func setupProgramPlot(ps allocbench.ProgramSummary, opts Options, format func(float64) string) *plot.Plot {
	p := setupPlot(ps.Title, programFonts)
	p.NominalX(opts.Baseline, opts.Candidate)
	p.Y.Tick.Marker = relabel(plot.DefaultTicks{}, format)
	return p
}

func fitNominal(p *plot.Plot) {
	p.X.Min = -0.5
	p.X.Max = 1.5
	p.Y.Min = 0
}

// ProgramTimePlot draws, for each allocator, its max, mean and min time as
// superposed bars, darkest for the max.
func ProgramTimePlot(ps allocbench.ProgramSummary, opts Options) (*plot.Plot, error) {
	p := setupProgramPlot(ps, opts, allocbench.FormatTime)
	width := opts.ProgramWidth / 4

	for i, s := range []struct {
		stats  allocbench.Stats
		shades shades
	}{
		{ps.Baseline.Stats, baselineShades},
		{ps.Candidate.Stats, candidateShades},
	} {
		for _, bar := range []struct {
			y float64
			c color.Color
		}{
			{s.stats.Max, s.shades.dark},
			{s.stats.Mean, s.shades.regular},
			{s.stats.Min, s.shades.light},
		} {
			bc, err := newBar(float64(i), bar.y, width, bar.c)
			if err != nil {
				return nil, err
			}
			p.Add(bc)
		}
	}

	for _, entry := range []struct {
		label string
		c     color.Color
	}{
		{"Max", color.Black},
		{"Mean", gray},
		{"Min", lightGray},
	} {
		thumb, err := newBar(0, 0, width, entry.c)
		if err != nil {
			return nil, err
		}
		p.Legend.Add(entry.label, thumb)
	}
	p.Legend.Top = true
	p.Legend.XOffs = -opts.ProgramWidth / 3

	fitNominal(p)
	return p, nil
}

// ProgramMemoryPlot draws one bar per allocator with its peak memory.
func ProgramMemoryPlot(ps allocbench.ProgramSummary, opts Options) (*plot.Plot, error) {
	p := setupProgramPlot(ps, opts, allocbench.FormatBytes)
	width := opts.ProgramWidth / 4

	for i, s := range []struct {
		memory float64
		c      color.Color
	}{
		{ps.Baseline.Memory, blue},
		{ps.Candidate.Memory, red},
	} {
		bc, err := newBar(float64(i), s.memory, width, s.c)
		if err != nil {
			return nil, err
		}
		p.Add(bc)
	}

	fitNominal(p)
	return p, nil
}
