package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/tiancaiamao/allocbench"
	"github.com/tiancaiamao/allocbench/internal/chart"
	"github.com/tiancaiamao/allocbench/internal/history"
	"github.com/tiancaiamao/allocbench/internal/report"
	"github.com/tiancaiamao/allocbench/internal/upload"
)

var errUsage = errors.New("usage")

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(fs.Output(), `Usage:
    allocplot [flags] <results-dir> <output-dir>

<results-dir> holds unit/*.csv and program/*.json benchmark results.

Flags:
`)
		fs.PrintDefaults()
	}
}

func parseFlags(args []string) (allocbench.Config, []string, error) {
	cfg := allocbench.DefaultConfig()
	fs := flag.NewFlagSet("allocplot", flag.ContinueOnError)
	fs.Usage = usage(fs)
	fs.StringVar(&cfg.Baseline, "baseline", cfg.Baseline, "name of the reference allocator")
	fs.StringVar(&cfg.Candidate, "candidate", cfg.Candidate, "name of the allocator under test")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "chart image format: svg, png, pdf, eps, jpg or tif")
	fs.Float64Var(&cfg.UnitWidth, "unit-width", cfg.UnitWidth, "unit chart width in inches")
	fs.Float64Var(&cfg.UnitHeight, "unit-height", cfg.UnitHeight, "unit chart height in inches")
	fs.Float64Var(&cfg.ProgramWidth, "program-width", cfg.ProgramWidth, "program chart width in inches")
	fs.Float64Var(&cfg.ProgramHeight, "program-height", cfg.ProgramHeight, "program chart height in inches")
	fs.BoolVar(&cfg.HTML, "html", cfg.HTML, "also write an interactive HTML report")
	fs.BoolVar(&cfg.Archive, "archive", cfg.Archive, "archive the results directory into the output directory")
	fs.StringVar(&cfg.DSN, "dsn", cfg.DSN, "MySQL DSN to record program summaries into")
	fs.StringVar(&cfg.RunID, "run-id", cfg.RunID, "identifier of this run (default: current UTC time)")
	fs.StringVar(&cfg.GCSBucket, "gcs-bucket", cfg.GCSBucket, "Cloud Storage bucket to upload the archive to")
	fs.StringVar(&cfg.GCSPrefix, "gcs-prefix", cfg.GCSPrefix, "object prefix of uploaded archives")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout of network operations")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return cfg, nil, errUsage
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return cfg, nil, errUsage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(fs.Output(), err)
		return cfg, nil, errUsage
	}
	if cfg.RunID == "" {
		cfg.RunID = allocbench.RunIDAt(time.Now())
	}
	return cfg, fs.Args(), nil
}

func run(cfg allocbench.Config, dataDir, outDir string, logger *zap.Logger) error {
	start := time.Now()
	res, err := allocbench.LoadResultsDir(dataDir, cfg.Baseline, cfg.Candidate)
	if err != nil {
		return err
	}
	logger.Info("results loaded",
		zap.String("dir", dataDir),
		zap.Int("units", len(res.Units)),
		zap.Int("programs", len(res.Programs)))

	sum, err := res.Summarize(cfg.Baseline, cfg.Candidate)
	if err != nil {
		return err
	}
	for _, ps := range sum.Programs {
		logger.Info("program compared",
			zap.String("program", ps.Name),
			zap.String(cfg.Baseline, ps.Baseline.Label()),
			zap.String(cfg.Candidate, ps.Candidate.Label()),
			zap.String("delta", ps.Comparison.Delta),
			zap.Bool("significant", ps.Comparison.Significant()),
			zap.Float64("p", ps.Comparison.P),
			zap.Float64("memory_ratio", ps.MemoryRatio))
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	r := chart.NewRenderer(outDir, chart.OptionsFromConfig(cfg), logger)
	paths, err := r.All(res, sum)
	if err != nil {
		return err
	}
	logger.Info("charts rendered", zap.Int("files", len(paths)), zap.String("dir", outDir))

	if err := allocbench.WriteJSONFile(filepath.Join(outDir, allocbench.SummaryFileName), sum); err != nil {
		return err
	}
	if err := allocbench.WriteBenchFile(filepath.Join(outDir, allocbench.BenchFileName), res, cfg.Baseline, cfg.Candidate); err != nil {
		return err
	}
	if cfg.HTML {
		if err := report.WriteFile(filepath.Join(outDir, report.FileName), report.Page(res, sum)); err != nil {
			return err
		}
	}

	if cfg.DSN != "" {
		if err := recordHistory(cfg, sum, logger); err != nil {
			return err
		}
	}

	if cfg.Archive {
		archive, err := allocbench.Archive(dataDir, outDir)
		if err != nil {
			return fmt.Errorf("archiving %s: %w", dataDir, err)
		}
		logger.Info("results archived", zap.String("archive", archive))

		if cfg.GCSBucket != "" {
			if err := uploadArchive(cfg, archive, logger); err != nil {
				return err
			}
		}
	}

	logger.Info("done", zap.Duration("duration", time.Since(start)))
	return nil
}

func recordHistory(cfg allocbench.Config, sum *allocbench.RunSummary, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	store, err := history.Open(ctx, cfg.DSN, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(ctx, cfg.RunID, sum)
}

func uploadArchive(cfg allocbench.Config, archive string, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	gcs, err := upload.NewGCS(ctx, cfg.GCSBucket, logger)
	if err != nil {
		return err
	}
	defer gcs.Close()
	return upload.File(ctx, gcs, upload.ObjectName(cfg.GCSPrefix, cfg.RunID, archive), archive)
}

func main() {
	cfg, args, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	logger, err := allocbench.NewLogger(cfg.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, args[0], args[1], logger); err != nil {
		logger.Error("allocplot failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
