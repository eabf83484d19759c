package allocbench

import "fmt"

// SummaryFileName is the JSON digest of a run.
const SummaryFileName = "summary.json"

type UnitSummary struct {
	Name  string    `json:"name"`
	Sizes []float64 `json:"sizes"`
	// Ratios is candidate time over baseline time, per size.
	Ratios []float64 `json:"ratios"`
}

type ProgramSummary struct {
	Name       string             `json:"name"`
	Title      string             `json:"title"`
	Allocators map[string]Summary `json:"allocators"`
	Comparison Comparison         `json:"comparison"`
	// MemoryRatio is candidate peak memory over baseline peak memory.
	MemoryRatio float64 `json:"memory_ratio"`

	Baseline  Summary `json:"-"`
	Candidate Summary `json:"-"`
}

// RunSummary digests all the results of one run.
type RunSummary struct {
	Baseline  string           `json:"baseline"`
	Candidate string           `json:"candidate"`
	Units     []UnitSummary    `json:"units"`
	Programs  []ProgramSummary `json:"programs"`
}

// Summarize computes the digest of res.
func (res *Results) Summarize(baseline, candidate string) (*RunSummary, error) {
	s := &RunSummary{
		Baseline:  baseline,
		Candidate: candidate,
		Units:     make([]UnitSummary, 0, len(res.Units)),
		Programs:  make([]ProgramSummary, 0, len(res.Programs)),
	}
	for _, u := range res.Units {
		m := MeanBySize(u.Rows)
		s.Units = append(s.Units, UnitSummary{
			Name:   u.Name,
			Sizes:  m.Sizes,
			Ratios: m.Ratios(),
		})
	}
	for _, p := range res.Programs {
		ps, err := SummarizeProgram(p, baseline, candidate)
		if err != nil {
			return nil, err
		}
		s.Programs = append(s.Programs, ps)
	}
	return s, nil
}

// SummarizeProgram computes the statistics of both allocators of p.
func SummarizeProgram(p ProgramBench, baseline, candidate string) (ProgramSummary, error) {
	b, err := Summarize(p.Baseline)
	if err != nil {
		return ProgramSummary{}, fmt.Errorf("%s: %s: %w", p.Name, baseline, err)
	}
	c, err := Summarize(p.Candidate)
	if err != nil {
		return ProgramSummary{}, fmt.Errorf("%s: %s: %w", p.Name, candidate, err)
	}
	ps := ProgramSummary{
		Name:  p.Name,
		Title: ProgramTitle(p.Name),
		Allocators: map[string]Summary{
			baseline:  b,
			candidate: c,
		},
		Comparison: Compare(b, c),
		Baseline:   b,
		Candidate:  c,
	}
	if p.Baseline.Memory != 0 {
		ps.MemoryRatio = p.Candidate.Memory / p.Baseline.Memory
	}
	return ps, nil
}
