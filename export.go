package allocbench

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/perf/benchfmt"
)

// BenchFileName is the Go benchmark format export of a run.
const BenchFileName = "results.bench"

// WriteBench writes every measurement of res in the Go benchmark format, one
// result per sample, keyed so that "benchstat -col /alloc" compares the two
// allocators.
func WriteBench(w io.Writer, res *Results, baseline, candidate string) error {
	bw := benchfmt.NewWriter(w)
	config := []benchfmt.Config{
		{Key: "baseline", Value: []byte(baseline), File: true},
		{Key: "candidate", Value: []byte(candidate), File: true},
	}
	write := func(name string, v float64, unit string) error {
		return bw.Write(&benchfmt.Result{
			Config: config,
			Name:   benchfmt.Name(name),
			Iters:  1,
			Values: []benchfmt.Value{{Value: v, Unit: unit}},
		})
	}

	for _, u := range res.Units {
		for _, row := range u.Rows {
			size := strconv.FormatFloat(row.Size, 'f', -1, 64)
			prefix := fmt.Sprintf("Unit/bench=%s/size=%s/alloc=", u.Name, size)
			if err := write(prefix+baseline, row.Baseline, "ns/op"); err != nil {
				return err
			}
			if err := write(prefix+candidate, row.Candidate, "ns/op"); err != nil {
				return err
			}
		}
	}

	for _, p := range res.Programs {
		for _, r := range []struct {
			alloc string
			run   AllocatorRun
		}{
			{baseline, p.Baseline},
			{candidate, p.Candidate},
		} {
			name := fmt.Sprintf("Program/prog=%s/alloc=%s", p.Name, r.alloc)
			for _, t := range r.run.Times {
				if err := write(name, t, "ns/op"); err != nil {
					return err
				}
			}
			if err := write(name, r.run.Memory, "peak-B"); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteBenchFile stores the benchmark format export at path.
func WriteBenchFile(path string, res *Results, baseline, candidate string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := WriteBench(bw, res, baseline, candidate); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}
