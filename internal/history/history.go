// Package history keeps program benchmark summaries of successive runs in
// MySQL so regressions can be tracked over time.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/tiancaiamao/allocbench"
)

const createTable = `CREATE TABLE IF NOT EXISTS program_results (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	run_id VARCHAR(64) NOT NULL,
	program VARCHAR(255) NOT NULL,
	allocator VARCHAR(64) NOT NULL,
	samples INT NOT NULL,
	min_ns DOUBLE NOT NULL,
	max_ns DOUBLE NOT NULL,
	mean_ns DOUBLE NOT NULL,
	memory_bytes DOUBLE NOT NULL,
	created_at DATETIME NOT NULL,
	INDEX idx_program (program, allocator)
)`

const insertPrefix = `INSERT INTO program_results
	(run_id, program, allocator, samples, min_ns, max_ns, mean_ns, memory_bytes, created_at) VALUES `

const rowPlaceholders = "(?, ?, ?, ?, ?, ?, ?, ?, ?)"

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Store records run summaries.
type Store struct {
	db     execer
	closer func() error
	logger *zap.Logger
	now    func() time.Time
}

// Open connects to the MySQL server named by dsn and makes sure the results
// table exists.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: connecting to %s: %w", cfg.Addr, err)
	}

	s := newStore(db, logger)
	s.closer = db.Close
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("history store ready", zap.String("addr", cfg.Addr), zap.String("db", cfg.DBName))
	return s, nil
}

func newStore(db execer, logger *zap.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("history: creating table: %w", err)
	}
	return nil
}

// Record inserts one row per program and allocator of sum in a single
// statement.
func (s *Store) Record(ctx context.Context, runID string, sum *allocbench.RunSummary) error {
	if len(sum.Programs) == 0 {
		return nil
	}
	createdAt := s.now().UTC()

	rows := make([]string, 0, 2*len(sum.Programs))
	args := make([]interface{}, 0, 9*2*len(sum.Programs))
	for _, ps := range sum.Programs {
		for _, r := range []struct {
			alloc string
			s     allocbench.Summary
		}{
			{sum.Baseline, ps.Baseline},
			{sum.Candidate, ps.Candidate},
		} {
			rows = append(rows, rowPlaceholders)
			args = append(args, runID, ps.Name, r.alloc, r.s.N,
				r.s.Min, r.s.Max, r.s.Mean, r.s.Memory, createdAt)
		}
	}

	res, err := s.db.ExecContext(ctx, insertPrefix+strings.Join(rows, ", "), args...)
	if err != nil {
		return fmt.Errorf("history: recording run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		s.logger.Warn("history recorded, row count unavailable", zap.String("run", runID), zap.Error(err))
		return nil
	}
	s.logger.Info("history recorded", zap.String("run", runID), zap.Int64("rows", n))
	return nil
}

func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
