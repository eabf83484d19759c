package chart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gonum.org/v1/plot"

	"github.com/tiancaiamao/allocbench"
)

func testOptions() Options {
	return OptionsFromConfig(allocbench.DefaultConfig())
}

func unitBench() allocbench.UnitBench {
	var rows []allocbench.UnitRow
	for size := 1.0; size <= 1<<20; size *= 2 {
		rows = append(rows, allocbench.UnitRow{Size: size, Baseline: 20 + size/100, Candidate: 10 + size/200})
	}
	return allocbench.UnitBench{Name: "small_alloc", Rows: rows}
}

func programSummary(t *testing.T) allocbench.ProgramSummary {
	ps, err := allocbench.SummarizeProgram(allocbench.ProgramBench{
		Name:      "zeroed_matrix_0x1",
		Baseline:  allocbench.AllocatorRun{Times: []float64{2e6, 3e6, 2.5e6}, Memory: 8 << 20},
		Candidate: allocbench.AllocatorRun{Times: []float64{1e6, 1.5e6}, Memory: 4 << 20},
	}, allocbench.Libc, allocbench.Challoc)
	require.NoError(t, err)
	return ps
}

func TestOptionsFromConfig(t *testing.T) {
	opts := testOptions()
	require.InDelta(t, 6.4*72, float64(opts.UnitWidth), 1e-9)
	require.InDelta(t, 8*72, float64(opts.ProgramHeight), 1e-9)
	require.Equal(t, "svg", opts.Format)
}

func TestRelabel(t *testing.T) {
	ticks := relabel(plot.ConstantTicks([]plot.Tick{
		{Value: 1000, Label: "1000"},
		{Value: 2000},
	}), allocbench.FormatTime).Ticks(0, 0)
	require.Equal(t, "1 µs", ticks[0].Label)
	require.Empty(t, ticks[1].Label)
}

func TestUnitPlot(t *testing.T) {
	p, err := UnitPlot(unitBench(), testOptions(), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, "small_alloc", p.Title.Text)

	ticks := p.X.Tick.Marker.Ticks(p.X.Min, p.X.Max)
	require.Equal(t, "1 o", ticks[0].Label)
	require.Equal(t, "64 o", ticks[1].Label)
	require.Equal(t, 1.0, p.X.Min)
}

func TestUnitPlotSinglePoint(t *testing.T) {
	b := allocbench.UnitBench{Name: "one", Rows: []allocbench.UnitRow{{Size: 8, Baseline: 10, Candidate: 10}}}
	p, err := UnitPlot(b, testOptions(), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, 4.0, p.X.Min)
	require.Equal(t, 16.0, p.X.Max)
	require.Equal(t, 5.0, p.Y.Min)
	require.Equal(t, 20.0, p.Y.Max)
}

func TestUnitPlotNonPositive(t *testing.T) {
	b := allocbench.UnitBench{Name: "zero", Rows: []allocbench.UnitRow{
		{Size: 0, Baseline: 10, Candidate: 10},
		{Size: 8, Baseline: 0, Candidate: -1},
	}}
	_, err := UnitPlot(b, testOptions(), zaptest.NewLogger(t))
	require.ErrorIs(t, err, allocbench.ErrEmptySample)
}

func TestProgramPlots(t *testing.T) {
	ps := programSummary(t)
	opts := testOptions()

	tp, err := ProgramTimePlot(ps, opts)
	require.NoError(t, err)
	require.Equal(t, "Zeroed Matrix 0x1", tp.Title.Text)
	require.Equal(t, 0.0, tp.Y.Min)
	require.Equal(t, 3e6, tp.Y.Max)

	mp, err := ProgramMemoryPlot(ps, opts)
	require.NoError(t, err)
	require.Equal(t, float64(8<<20), mp.Y.Max)
}

func TestRendererAll(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "charts")
	res := &allocbench.Results{Units: []allocbench.UnitBench{unitBench()}}
	sum := &allocbench.RunSummary{
		Baseline:  allocbench.Libc,
		Candidate: allocbench.Challoc,
		Programs:  []allocbench.ProgramSummary{programSummary(t)},
	}

	r := NewRenderer(outDir, testOptions(), zaptest.NewLogger(t))
	paths, err := r.All(res, sum)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(outDir, "small_alloc.svg"),
		filepath.Join(outDir, "zeroed_matrix_0x1_time.svg"),
		filepath.Join(outDir, "zeroed_matrix_0x1_memory.svg"),
	}, paths)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.True(t, strings.Contains(string(data), "<svg"), path)
	}
}

func TestRendererPNG(t *testing.T) {
	cfg := allocbench.DefaultConfig()
	cfg.Format = "png"
	outDir := t.TempDir()

	path, err := NewRenderer(outDir, OptionsFromConfig(cfg), zaptest.NewLogger(t)).Unit(unitBench())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(outDir, "small_alloc.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "\x89PNG"))
}
