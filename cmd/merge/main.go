package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tiancaiamao/allocbench"
)

func main() {
	dataDir := flag.String("data", "results", "results directory to merge into")
	patchDir := flag.String("patch", "patch", "results directory of the additional run")
	baseline := flag.String("baseline", allocbench.Libc, "name of the reference allocator")
	candidate := flag.String("candidate", allocbench.Challoc, "name of the allocator under test")
	flag.Parse()

	logger, err := allocbench.NewLogger(false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := mergeDirs(*dataDir, *patchDir, *baseline, *candidate, logger); err != nil {
		logger.Fatal("merge failed", zap.Error(err))
	}
}

// mergeDirs folds every program result of patchDir into dataDir: results
// of programs already present are merged, the others are moved over.
func mergeDirs(dataDir, patchDir, baseline, candidate string, logger *zap.Logger) error {
	originDir := filepath.Join(dataDir, allocbench.ProgramDir)
	origin, err := allocbench.LoadProgramDir(originDir, baseline, candidate)
	if err != nil {
		return err
	}
	patch, err := allocbench.LoadProgramDir(filepath.Join(patchDir, allocbench.ProgramDir), baseline, candidate)
	if err != nil {
		return err
	}

	byName := make(map[string]allocbench.ProgramBench, len(origin))
	for _, o := range origin {
		byName[o.Name] = o
	}

	if err := os.MkdirAll(originDir, 0o755); err != nil {
		return err
	}
	for _, p := range patch {
		o, ok := byName[p.Name]
		if !ok {
			if err := moveProgram(patchDir, dataDir, p.Name); err != nil {
				return err
			}
			logger.Info("program moved", zap.String("program", p.Name))
			continue
		}

		merged := allocbench.Merge(o, p)
		outputFile := filepath.Join(originDir, p.Name+".json")
		if err := allocbench.WriteProgramFile(outputFile, merged, baseline, candidate); err != nil {
			return err
		}
		logger.Info("program merged",
			zap.String("program", p.Name),
			zap.Int(baseline, len(merged.Baseline.Times)),
			zap.Int(candidate, len(merged.Candidate.Times)))
	}
	return nil
}

func moveProgram(fromDir, toDir, name string) error {
	fileName := name + ".json"
	return os.Rename(
		filepath.Join(fromDir, allocbench.ProgramDir, fileName),
		filepath.Join(toDir, allocbench.ProgramDir, fileName),
	)
}
