// Package report builds interactive HTML pages of a run with go-echarts.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/tiancaiamao/allocbench"
)

// FileName is the HTML report written next to the charts.
const FileName = "report.html"

func unitChart(u allocbench.UnitBench, baseline, candidate string) *charts.Line {
	m := allocbench.MeanBySize(u.Rows)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: u.Name}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "size"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ns/op", Type: "log"}),
	)

	sizes := make([]string, 0, len(m.Sizes))
	base := make([]opts.LineData, 0, len(m.Sizes))
	cand := make([]opts.LineData, 0, len(m.Sizes))
	for i, size := range m.Sizes {
		sizes = append(sizes, allocbench.FormatBytes(size))
		base = append(base, opts.LineData{Value: m.Baseline[i]})
		cand = append(cand, opts.LineData{Value: m.Candidate[i]})
	}

	line.SetXAxis(sizes)
	line.AddSeries(baseline, base)
	line.AddSeries(candidate, cand)
	return line
}

func programTimeChart(ps allocbench.ProgramSummary, baseline, candidate string) *charts.Bar {
	subtitle := fmt.Sprintf("time (ns): %s %s, %s %s, delta %s",
		baseline, ps.Baseline.Label(), candidate, ps.Candidate.Label(), ps.Comparison.Delta)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: ps.Title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	series := func(pick func(allocbench.Stats) float64) []opts.BarData {
		return []opts.BarData{
			{Value: pick(ps.Baseline.Stats)},
			{Value: pick(ps.Candidate.Stats)},
		}
	}
	bar.SetXAxis([]string{baseline, candidate})
	bar.AddSeries("Min", series(func(s allocbench.Stats) float64 { return s.Min }))
	bar.AddSeries("Mean", series(func(s allocbench.Stats) float64 { return s.Mean }))
	bar.AddSeries("Max", series(func(s allocbench.Stats) float64 { return s.Max }))
	return bar
}

func programMemoryChart(ps allocbench.ProgramSummary, baseline, candidate string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: ps.Title, Subtitle: "peak memory (bytes)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis([]string{baseline, candidate})
	bar.AddSeries("memory", []opts.BarData{
		{Value: ps.Baseline.Memory},
		{Value: ps.Candidate.Memory},
	})
	return bar
}

// UnitPage has one line chart per unit benchmark.
func UnitPage(units []allocbench.UnitBench, baseline, candidate string) *components.Page {
	page := components.NewPage()
	page.SetPageTitle("unit benchmarks")
	for _, u := range units {
		page.AddCharts(unitChart(u, baseline, candidate))
	}
	return page
}

// ProgramPage has a time and a memory chart per program benchmark.
func ProgramPage(sum *allocbench.RunSummary) *components.Page {
	page := components.NewPage()
	page.SetPageTitle("program benchmarks")
	for _, ps := range sum.Programs {
		page.AddCharts(
			programTimeChart(ps, sum.Baseline, sum.Candidate),
			programMemoryChart(ps, sum.Baseline, sum.Candidate),
		)
	}
	return page
}

// Page has every chart of a run.
func Page(res *allocbench.Results, sum *allocbench.RunSummary) *components.Page {
	page := components.NewPage()
	page.SetPageTitle(sum.Baseline + " vs " + sum.Candidate)
	for _, u := range res.Units {
		page.AddCharts(unitChart(u, sum.Baseline, sum.Candidate))
	}
	for _, ps := range sum.Programs {
		page.AddCharts(
			programTimeChart(ps, sum.Baseline, sum.Candidate),
			programMemoryChart(ps, sum.Baseline, sum.Candidate),
		)
	}
	return page
}

// Render writes page as a standalone HTML document.
func Render(w io.Writer, page *components.Page) error {
	return page.Render(w)
}

// WriteFile renders page into path.
func WriteFile(path string, page *components.Page) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Render(f, page); err != nil {
		return err
	}
	return f.Close()
}
