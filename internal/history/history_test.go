package history

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tiancaiamao/allocbench"
)

type execCall struct {
	query string
	args  []interface{}
}

type fakeDB struct {
	calls []execCall
	err   error
	// result overrides the row count reported back.
	result sql.Result
}

func (f *fakeDB) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	f.calls = append(f.calls, execCall{query: query, args: args})
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return driverResult(len(args) / 9), nil
}

type driverResult int64

func (r driverResult) LastInsertId() (int64, error) { return 0, nil }
func (r driverResult) RowsAffected() (int64, error) { return int64(r), nil }

func testSummary(t *testing.T) *allocbench.RunSummary {
	res := &allocbench.Results{Programs: []allocbench.ProgramBench{
		{
			Name:      "alpha",
			Baseline:  allocbench.AllocatorRun{Times: []float64{10, 20}, Memory: 100},
			Candidate: allocbench.AllocatorRun{Times: []float64{5}, Memory: 50},
		},
		{
			Name:      "beta",
			Baseline:  allocbench.AllocatorRun{Times: []float64{1, 2, 3}, Memory: 7},
			Candidate: allocbench.AllocatorRun{Times: []float64{4}, Memory: 8},
		},
	}}
	sum, err := res.Summarize(allocbench.Libc, allocbench.Challoc)
	require.NoError(t, err)
	return sum
}

func TestInit(t *testing.T) {
	db := &fakeDB{}
	s := newStore(db, zaptest.NewLogger(t))
	require.NoError(t, s.init(context.Background()))
	require.Len(t, db.calls, 1)
	require.True(t, strings.HasPrefix(db.calls[0].query, "CREATE TABLE IF NOT EXISTS program_results"))

	db.err = errors.New("denied")
	require.ErrorIs(t, s.init(context.Background()), db.err)
}

func TestRecord(t *testing.T) {
	db := &fakeDB{}
	s := newStore(db, zaptest.NewLogger(t))
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return at }

	require.NoError(t, s.Record(context.Background(), "run-1", testSummary(t)))
	require.Len(t, db.calls, 1)

	call := db.calls[0]
	require.True(t, strings.HasPrefix(call.query, "INSERT INTO program_results"))
	require.Equal(t, 4, strings.Count(call.query, rowPlaceholders))
	require.Len(t, call.args, 4*9)

	require.Equal(t, []interface{}{
		"run-1", "alpha", allocbench.Libc, 2, 10.0, 20.0, 15.0, 100.0, at,
	}, call.args[:9])
	require.Equal(t, []interface{}{
		"run-1", "beta", allocbench.Challoc, 1, 4.0, 4.0, 4.0, 8.0, at,
	}, call.args[27:])
}

func TestRecordEmpty(t *testing.T) {
	db := &fakeDB{}
	s := newStore(db, zaptest.NewLogger(t))
	require.NoError(t, s.Record(context.Background(), "run", &allocbench.RunSummary{}))
	require.Empty(t, db.calls)
}

func TestRecordError(t *testing.T) {
	db := &fakeDB{err: errors.New("gone away")}
	s := newStore(db, zaptest.NewLogger(t))
	err := s.Record(context.Background(), "run-2", testSummary(t))
	require.ErrorIs(t, err, db.err)
	require.Contains(t, err.Error(), "run-2")
}

func TestOpenBadDSN(t *testing.T) {
	_, err := Open(context.Background(), "not a dsn", zaptest.NewLogger(t))
	require.Error(t, err)
}

func TestCloseWithoutConnection(t *testing.T) {
	s := newStore(&fakeDB{}, zaptest.NewLogger(t))
	require.NoError(t, s.Close())
}

type noRowCount struct{}

func (noRowCount) LastInsertId() (int64, error) { return 0, errors.New("unsupported") }
func (noRowCount) RowsAffected() (int64, error) { return 0, errors.New("unsupported") }

func TestRecordWithoutRowCount(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	db := &fakeDB{result: noRowCount{}}
	s := newStore(db, zap.New(core))

	require.NoError(t, s.Record(context.Background(), "run-3", testSummary(t)))
	require.Len(t, db.calls, 1)

	entries := logs.FilterField(zap.String("run", "run-3")).All()
	require.Len(t, entries, 1)
	require.Equal(t, zap.WarnLevel, entries[0].Level)
	require.Contains(t, entries[0].ContextMap(), "error")
	require.NotContains(t, entries[0].ContextMap(), "rows")
}
