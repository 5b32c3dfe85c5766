package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lithium/internal/atomize"
	"lithium/internal/oracle"
	"lithium/internal/strategy"
	"lithium/internal/testcase"
	"lithium/pkg/contract"
	mockoracle "lithium/plugins/oracle/mock"
)

type failingInitOracle struct {
	cleanupCalls int
}

func (f *failingInitOracle) Init(ctx context.Context, args []string) error {
	return errors.New("cannot reach infrastructure")
}

func (f *failingInitOracle) Test(ctx context.Context, prefix string) (contract.Verdict, error) {
	return contract.Uninteresting, nil
}

func (f *failingInitOracle) Cleanup(ctx context.Context) error {
	f.cleanupCalls++
	return nil
}

type panicStrategy struct{}

func (panicStrategy) Run(ctx context.Context, tc *testcase.Testcase, drv *oracle.Driver, cfg strategy.Config) (contract.ReductionReport, error) {
	panic("strategy exploded")
}

func writeCase(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "case.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunEndToEndWithMockOracle(t *testing.T) {
	path := writeCase(t, "keep1\nneedle\nkeep2\nextra\n")
	o := mockoracle.New(mockoracle.Options{
		TestcasePath: path,
		Predicate:    func(d []byte) bool { return bytes.Contains(d, []byte("needle")) },
	})

	report, err := Run(context.Background(), o, Options{
		TestcasePath: path,
		OracleArgs:   []string{path},
		Atomizer:     atomize.Line{},
		Strategy:     strategy.Minimize{},
		StrategyCfg:  strategy.Config{Repeat: contract.RepeatLast},
		WorkDir:      filepath.Join(t.TempDir(), "work"),
	}, nil)

	require.NoError(t, err)
	assert.True(t, report.AnyRemoved)
	assert.Equal(t, 1, o.InitCalls())
	assert.Equal(t, 1, o.CleanupCalls())
}

func TestRunPropagatesOracleInitFailure(t *testing.T) {
	path := writeCase(t, "a\nb\n")
	o := &failingInitOracle{}

	_, err := Run(context.Background(), o, Options{
		TestcasePath: path,
		Atomizer:     atomize.Line{},
		Strategy:     strategy.Minimize{},
		WorkDir:      filepath.Join(t.TempDir(), "work"),
	}, nil)

	assert.ErrorIs(t, err, contract.ErrOracleFatal)
	assert.Equal(t, 1, o.cleanupCalls, "Cleanup must run even when Init itself failed")
}

func TestRunAlwaysCleansUpOnStrategyError(t *testing.T) {
	path := writeCase(t, "a\nb\n")
	o := mockoracle.New(mockoracle.Options{
		TestcasePath: path,
		Predicate:    func(d []byte) bool { return false },
	})

	_, err := Run(context.Background(), o, Options{
		TestcasePath: path,
		Atomizer:     atomize.Line{},
		Strategy:     strategy.Minimize{},
		WorkDir:      filepath.Join(t.TempDir(), "work"),
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, o.CleanupCalls(), "Cleanup must run even when the strategy returns an error")
}

func TestRunRecoversPanickingStrategy(t *testing.T) {
	path := writeCase(t, "a\nb\n")
	o := mockoracle.New(mockoracle.Options{
		TestcasePath: path,
		Predicate:    func(d []byte) bool { return true },
	})

	_, err := Run(context.Background(), o, Options{
		TestcasePath: path,
		Atomizer:     atomize.Line{},
		Strategy:     panicStrategy{},
		WorkDir:      filepath.Join(t.TempDir(), "work"),
	}, nil)

	assert.ErrorIs(t, err, contract.ErrInvariantViolation)
	assert.Equal(t, 1, o.CleanupCalls())
}

func TestRunCreatesWorkDir(t *testing.T) {
	path := writeCase(t, "needle\n")
	o := mockoracle.New(mockoracle.Options{
		TestcasePath: path,
		Predicate:    func(d []byte) bool { return true },
	})
	workdir := filepath.Join(t.TempDir(), "nested", "work")

	_, err := Run(context.Background(), o, Options{
		TestcasePath: path,
		Atomizer:     atomize.Line{},
		Strategy:     strategy.CheckOnly{},
		WorkDir:      workdir,
	}, nil)

	require.NoError(t, err)
	info, statErr := os.Stat(workdir)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}
