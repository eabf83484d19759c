package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tiancaiamao/allocbench"
)

func writeProgram(t *testing.T, dir string, p allocbench.ProgramBench) {
	t.Helper()
	programDir := filepath.Join(dir, allocbench.ProgramDir)
	require.NoError(t, os.MkdirAll(programDir, 0o755))
	require.NoError(t, allocbench.WriteProgramFile(filepath.Join(programDir, p.Name+".json"), p, allocbench.Libc, allocbench.Challoc))
}

func TestMergeDirs(t *testing.T) {
	dataDir := t.TempDir()
	patchDir := t.TempDir()

	writeProgram(t, dataDir, allocbench.ProgramBench{
		Name:      "shared",
		Baseline:  allocbench.AllocatorRun{Times: []float64{1, 2}, Memory: 10},
		Candidate: allocbench.AllocatorRun{Times: []float64{3}, Memory: 30},
	})
	writeProgram(t, patchDir, allocbench.ProgramBench{
		Name:      "shared",
		Baseline:  allocbench.AllocatorRun{Times: []float64{4}, Memory: 20},
		Candidate: allocbench.AllocatorRun{Times: []float64{5}, Memory: 5},
	})
	fresh := allocbench.ProgramBench{
		Name:      "fresh",
		Baseline:  allocbench.AllocatorRun{Times: []float64{7}, Memory: 1},
		Candidate: allocbench.AllocatorRun{Times: []float64{8}, Memory: 2},
	}
	writeProgram(t, patchDir, fresh)

	require.NoError(t, mergeDirs(dataDir, patchDir, allocbench.Libc, allocbench.Challoc, zaptest.NewLogger(t)))

	programs, err := allocbench.LoadProgramDir(filepath.Join(dataDir, allocbench.ProgramDir), allocbench.Libc, allocbench.Challoc)
	require.NoError(t, err)
	require.Equal(t, []allocbench.ProgramBench{
		fresh,
		{
			Name:      "shared",
			Baseline:  allocbench.AllocatorRun{Times: []float64{1, 2, 4}, Memory: 20},
			Candidate: allocbench.AllocatorRun{Times: []float64{3, 5}, Memory: 30},
		},
	}, programs)

	_, err = os.Stat(filepath.Join(patchDir, allocbench.ProgramDir, "fresh.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMergeDirsIntoEmpty(t *testing.T) {
	dataDir := t.TempDir()
	patchDir := t.TempDir()
	p := allocbench.ProgramBench{
		Name:      "only",
		Baseline:  allocbench.AllocatorRun{Times: []float64{1}, Memory: 1},
		Candidate: allocbench.AllocatorRun{Times: []float64{2}, Memory: 2},
	}
	writeProgram(t, patchDir, p)

	require.NoError(t, mergeDirs(dataDir, patchDir, allocbench.Libc, allocbench.Challoc, zaptest.NewLogger(t)))

	got, err := allocbench.LoadProgramFile(filepath.Join(dataDir, allocbench.ProgramDir, "only.json"), allocbench.Libc, allocbench.Challoc)
	require.NoError(t, err)
	require.Equal(t, p, got)
}
