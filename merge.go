package allocbench

import "slices"

// Merge combines two runs of the same program: time samples are
// concatenated per allocator and the peak memory is the larger of both.
func Merge(a, b ProgramBench) ProgramBench {
	merge := func(x, y AllocatorRun) AllocatorRun {
		return AllocatorRun{
			Times:  append(slices.Clone(x.Times), y.Times...),
			Memory: max(x.Memory, y.Memory),
		}
	}
	return ProgramBench{
		Name:      a.Name,
		Baseline:  merge(a.Baseline, b.Baseline),
		Candidate: merge(a.Candidate, b.Candidate),
	}
}
