package allocbench

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/perf/benchmath"
	"golang.org/x/perf/benchunit"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats is the min/max/mean reduction of a sample.
type Stats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// MinMaxMean reduces a non-empty sequence.
func MinMaxMean(xs []float64) (Stats, error) {
	if len(xs) == 0 {
		return Stats{}, ErrEmptySample
	}
	return Stats{
		Min:  floats.Min(xs),
		Max:  floats.Max(xs),
		Mean: stat.Mean(xs, nil),
	}, nil
}

// SizeMeans holds the per-size means of a unit benchmark, sorted by size.
type SizeMeans struct {
	Sizes     []float64
	Baseline  []float64
	Candidate []float64
}

// MeanBySize averages the rows sharing a size.
func MeanBySize(rows []UnitRow) SizeMeans {
	type acc struct {
		base, cand []float64
	}
	bySize := make(map[float64]*acc)
	for _, r := range rows {
		a := bySize[r.Size]
		if a == nil {
			a = &acc{}
			bySize[r.Size] = a
		}
		a.base = append(a.base, r.Baseline)
		a.cand = append(a.cand, r.Candidate)
	}

	var m SizeMeans
	for size := range bySize {
		m.Sizes = append(m.Sizes, size)
	}
	slices.Sort(m.Sizes)
	for _, size := range m.Sizes {
		a := bySize[size]
		m.Baseline = append(m.Baseline, stat.Mean(a.base, nil))
		m.Candidate = append(m.Candidate, stat.Mean(a.cand, nil))
	}
	return m
}

// Ratios returns candidate/baseline per size; sizes with a zero baseline
// are reported as zero.
func (m SizeMeans) Ratios() []float64 {
	r := make([]float64, len(m.Sizes))
	for i := range m.Sizes {
		if m.Baseline[i] != 0 {
			r[i] = m.Candidate[i] / m.Baseline[i]
		}
	}
	return r
}

// Confidence is the confidence level of summary intervals.
const Confidence = 0.95

// Summary describes the time samples of one allocator.
type Summary struct {
	Stats
	N      int     `json:"n"`
	Center float64 `json:"center"`
	Lo     float64 `json:"lo"`
	Hi     float64 `json:"hi"`
	Memory float64 `json:"memory"`

	Sample *benchmath.Sample `json:"-"`
}

// Summarize computes the statistics of run.
func Summarize(run AllocatorRun) (Summary, error) {
	st, err := MinMaxMean(run.Times)
	if err != nil {
		return Summary{}, err
	}
	thresholds := benchmath.DefaultThresholds
	sample := benchmath.NewSample(slices.Clone(run.Times), &thresholds)
	s := benchmath.AssumeNothing.Summary(sample, Confidence)
	return Summary{
		Stats:  st,
		N:      len(run.Times),
		Center: finiteOr(s.Center, st.Mean),
		Lo:     finiteOr(s.Lo, st.Min),
		Hi:     finiteOr(s.Hi, st.Max),
		Memory: run.Memory,
		Sample: sample,
	}, nil
}

// Label formats the center and the confidence interval of the times, scaled
// with decimal prefixes: "1.20M [1.10M, 1.35M]".
func (s Summary) Label() string {
	return fmt.Sprintf("%s [%s, %s]",
		benchunit.Scale(s.Center, benchunit.Decimal),
		benchunit.Scale(s.Lo, benchunit.Decimal),
		benchunit.Scale(s.Hi, benchunit.Decimal))
}

// Comparison is the outcome of a significance test between two samples.
type Comparison struct {
	P     float64 `json:"p"`
	Alpha float64 `json:"alpha"`
	// Delta is the relative change of the center, or "~" when the
	// difference is not significant.
	Delta string `json:"delta"`
}

// Significant reports whether the samples differ at the configured alpha.
func (c Comparison) Significant() bool {
	return c.P <= c.Alpha
}

// Compare runs a Mann-Whitney U test of candidate against baseline.
func Compare(baseline, candidate Summary) Comparison {
	c := benchmath.AssumeNothing.Compare(baseline.Sample, candidate.Sample)
	return Comparison{
		P:     finiteOr(c.P, 1),
		Alpha: c.Alpha,
		Delta: c.FormatDelta(baseline.Center, candidate.Center),
	}
}

// finiteOr replaces the infinite or NaN bounds benchmath reports for samples
// too small to reach the confidence level.
func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
