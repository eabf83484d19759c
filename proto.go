package allocbench

// Default allocator names written by the benchmark harness.
const (
	Libc    = "libc"
	Challoc = "challoc"
)

// UnitRow is one line of a unit benchmark table: the time, in nanoseconds
// per operation, each allocator needed for one allocation size.
type UnitRow struct {
	Size      float64
	Baseline  float64
	Candidate float64
}

// UnitBench is a per-allocation-size timing comparison between two allocators.
type UnitBench struct {
	Name string
	Rows []UnitRow
}

// AllocatorRun holds every wall time sample (ns) of one program run under
// one allocator and its peak resident memory in bytes.
type AllocatorRun struct {
	Times  []float64 `json:"times"`
	Memory float64   `json:"memory"`
}

// ProgramBench is a whole-program timing and memory comparison between two
// allocators.
type ProgramBench struct {
	Name      string
	Baseline  AllocatorRun
	Candidate AllocatorRun
}

// Results is everything found in a results directory.
type Results struct {
	Dir      string
	Units    []UnitBench
	Programs []ProgramBench
}
