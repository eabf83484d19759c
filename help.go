package allocbench

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Subdirectories of a results directory.
const (
	UnitDir    = "unit"
	ProgramDir = "program"
)

// LoadResultsDir reads every unit table and program record below dir. A
// missing unit or program subdirectory counts as empty; a missing dir does
// not.
func LoadResultsDir(dir, baseline, candidate string) (*Results, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	res := &Results{Dir: dir}

	unitFiles, err := listFiles(filepath.Join(dir, UnitDir), ".csv")
	if err != nil {
		return nil, err
	}
	for _, name := range unitFiles {
		b, err := LoadUnitFile(name, baseline, candidate)
		if err != nil {
			return nil, err
		}
		res.Units = append(res.Units, b)
	}

	res.Programs, err = LoadProgramDir(filepath.Join(dir, ProgramDir), baseline, candidate)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// LoadProgramDir reads every program record of dir, in name order.
func LoadProgramDir(dir, baseline, candidate string) ([]ProgramBench, error) {
	files, err := listFiles(dir, ".json")
	if err != nil {
		return nil, err
	}
	programs := make([]ProgramBench, 0, len(files))
	for _, name := range files {
		p, err := LoadProgramFile(name, baseline, candidate)
		if err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, nil
}

func listFiles(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// BenchName is the file base name without its extension.
func BenchName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadUnitFile parses a unit benchmark table with a header naming the size
// column and one column per allocator.
func LoadUnitFile(path, baseline, candidate string) (UnitBench, error) {
	f, err := os.Open(path)
	if err != nil {
		return UnitBench{}, err
	}
	defer f.Close()

	b, err := ReadUnit(f, BenchName(path), baseline, candidate)
	if err != nil {
		return UnitBench{}, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// ReadUnit parses a unit benchmark table from r.
func ReadUnit(r io.Reader, name, baseline, candidate string) (UnitBench, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return UnitBench{}, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if len(records) == 0 {
		return UnitBench{}, fmt.Errorf("%w: no header", ErrBadFormat)
	}

	column := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		column[strings.TrimSpace(h)] = i
	}
	sizeCol, ok := column["size"]
	if !ok {
		return UnitBench{}, fmt.Errorf("%w: no size column", ErrBadFormat)
	}
	baseCol, ok := column[baseline]
	if !ok {
		return UnitBench{}, fmt.Errorf("%w: no %q column", ErrMissingAllocator, baseline)
	}
	candCol, ok := column[candidate]
	if !ok {
		return UnitBench{}, fmt.Errorf("%w: no %q column", ErrMissingAllocator, candidate)
	}

	b := UnitBench{
		Name: name,
		Rows: make([]UnitRow, 0, len(records)-1),
	}
	for i, rec := range records[1:] {
		var row UnitRow
		for _, c := range []struct {
			col int
			dst *float64
		}{
			{sizeCol, &row.Size},
			{baseCol, &row.Baseline},
			{candCol, &row.Candidate},
		} {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[c.col]), 64)
			if err != nil {
				// +2: one for the header, one for 1-based lines.
				return UnitBench{}, fmt.Errorf("%w: line %d: %v", ErrBadFormat, i+2, err)
			}
			*c.dst = v
		}
		b.Rows = append(b.Rows, row)
	}
	if len(b.Rows) == 0 {
		return UnitBench{}, fmt.Errorf("%w: no rows", ErrEmptySample)
	}
	return b, nil
}

type programRecord struct {
	Times  []float64 `json:"times"`
	Memory *float64  `json:"memory"`
}

// LoadProgramFile parses a program benchmark record keyed by allocator name.
func LoadProgramFile(path, baseline, candidate string) (ProgramBench, error) {
	f, err := os.Open(path)
	if err != nil {
		return ProgramBench{}, err
	}
	defer f.Close()

	p, err := ReadProgram(f, BenchName(path), baseline, candidate)
	if err != nil {
		return ProgramBench{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ReadProgram parses a program benchmark record from r.
func ReadProgram(r io.Reader, name, baseline, candidate string) (ProgramBench, error) {
	var raw map[string]programRecord
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return ProgramBench{}, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}

	run := func(alloc string) (AllocatorRun, error) {
		rec, ok := raw[alloc]
		if !ok {
			return AllocatorRun{}, fmt.Errorf("%w: no %q record", ErrMissingAllocator, alloc)
		}
		if len(rec.Times) == 0 {
			return AllocatorRun{}, fmt.Errorf("%w: %q has no times", ErrEmptySample, alloc)
		}
		if rec.Memory == nil {
			return AllocatorRun{}, fmt.Errorf("%w: %q has no memory", ErrBadFormat, alloc)
		}
		return AllocatorRun{Times: rec.Times, Memory: *rec.Memory}, nil
	}

	p := ProgramBench{Name: name}
	var err error
	if p.Baseline, err = run(baseline); err != nil {
		return ProgramBench{}, err
	}
	if p.Candidate, err = run(candidate); err != nil {
		return ProgramBench{}, err
	}
	return p, nil
}

// WriteProgramFile stores p in the layout ReadProgram expects.
func WriteProgramFile(path string, p ProgramBench, baseline, candidate string) error {
	return WriteJSONFile(path, map[string]AllocatorRun{
		baseline:  p.Baseline,
		candidate: p.Candidate,
	})
}

func WriteJSONFile(outputFile string, data interface{}) error {
	out, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "\t")
	if err := enc.Encode(data); err != nil {
		return err
	}
	return out.Close()
}
