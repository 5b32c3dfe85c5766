package strategy

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lithium/internal/atomize"
	"lithium/internal/oracle"
	"lithium/internal/testcase"
	mockoracle "lithium/plugins/oracle/mock"
	"lithium/pkg/contract"
)

func newMockDriver(t *testing.T, path string, predicate func([]byte) bool) *oracle.Driver {
	t.Helper()
	o := mockoracle.New(mockoracle.Options{TestcasePath: path, Predicate: predicate})
	drv := oracle.NewDriver(o, t.TempDir())
	require.NoError(t, drv.Init(context.Background(), []string{path}))
	return drv
}

func loadLines(t *testing.T, dir string, content string) *testcase.Testcase {
	t.Helper()
	path := filepath.Join(dir, "case.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	tc, err := testcase.Load(path, atomize.Line{})
	require.NoError(t, err)
	return tc
}

func TestCheckOnlyNeverMutates(t *testing.T) {
	dir := t.TempDir()
	tc := loadLines(t, dir, "a\nb\nc\n")
	drv := newMockDriver(t, tc.Path, func(d []byte) bool { return bytes.Contains(d, []byte("b")) })

	report, err := CheckOnly{}.Run(context.Background(), tc, drv, Config{})
	require.NoError(t, err)
	assert.Equal(t, contract.Interesting, report.InitialVerdict)
	assert.False(t, report.AnyRemoved)
	assert.Equal(t, 3, tc.Len())
}

func TestCheckOnlyReturnsErrorOnUninterestingVerdict(t *testing.T) {
	dir := t.TempDir()
	tc := loadLines(t, dir, "a\nb\nc\n")
	drv := newMockDriver(t, tc.Path, func(d []byte) bool { return bytes.Contains(d, []byte("zzz")) })

	report, err := CheckOnly{}.Run(context.Background(), tc, drv, Config{})
	assert.ErrorIs(t, err, contract.ErrInitialNotInteresting)
	assert.Equal(t, contract.Uninteresting, report.InitialVerdict)
	assert.Equal(t, 3, tc.Len())
}

func TestMinimizeRemovesUninterestingLines(t *testing.T) {
	dir := t.TempDir()
	tc := loadLines(t, dir, "keep1\nneedle\nkeep2\nextra1\nextra2\n")
	drv := newMockDriver(t, tc.Path, func(d []byte) bool { return bytes.Contains(d, []byte("needle")) })

	report, err := Minimize{}.Run(context.Background(), tc, drv, Config{Repeat: contract.RepeatLast})
	require.NoError(t, err)
	assert.True(t, report.AnyRemoved)
	assert.Contains(t, string(tc.Bytes()), "needle")
	assert.Less(t, tc.Len(), report.InitialAtoms)
}

func TestMinimizeFailsWhenInitialNotInteresting(t *testing.T) {
	dir := t.TempDir()
	tc := loadLines(t, dir, "a\nb\n")
	drv := newMockDriver(t, tc.Path, func(d []byte) bool { return false })

	_, err := Minimize{}.Run(context.Background(), tc, drv, Config{})
	assert.ErrorIs(t, err, contract.ErrInitialNotInteresting)
}

func TestMinimizeReachesFixedPointOnNonMonotoneOracle(t *testing.T) {
	dir := t.TempDir()
	tc := loadLines(t, dir, "a\nb\nc\nd\ne\nf\ng\nh\n")
	calls := 0
	drv := newMockDriver(t, tc.Path, func(d []byte) bool {
		calls++
		// Interesting whenever the file still has 4 or more lines or
		// exactly contains "a"; this is non-monotone with respect to
		// chunk removal order but the algorithm must still terminate.
		return bytes.Count(d, []byte("\n")) >= 4 || bytes.Contains(d, []byte("a\n"))
	})

	report, err := Minimize{}.Run(context.Background(), tc, drv, Config{Repeat: contract.RepeatNever})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.OracleCalls, 1)
	assert.Contains(t, string(tc.Bytes()), "a")
}

func TestMinimizeChunkSizeOneIsEquivalentToResume(t *testing.T) {
	dir := t.TempDir()
	tc := loadLines(t, dir, "x\ny\nneedle\nz\n")
	drv := newMockDriver(t, tc.Path, func(d []byte) bool { return bytes.Contains(d, []byte("needle")) })

	report, err := Minimize{}.Run(context.Background(), tc, drv, Config{ChunkMax: 1, ChunkMin: 1, Repeat: contract.RepeatNever})
	require.NoError(t, err)
	assert.Equal(t, "needle\n", string(tc.Bytes()))
	assert.True(t, report.AnyRemoved)
}

func TestMinimizeSurroundingPairsRemovesMirroredChunks(t *testing.T) {
	dir := t.TempDir()
	tc := loadLines(t, dir, "pad1\npad2\nneedle\npad3\npad4\n")
	drv := newMockDriver(t, tc.Path, func(d []byte) bool { return bytes.Contains(d, []byte("needle")) })

	report, err := MinimizeSurroundingPairs{}.Run(context.Background(), tc, drv, Config{Repeat: contract.RepeatLast})
	require.NoError(t, err)
	assert.Contains(t, string(tc.Bytes()), "needle")
	assert.Less(t, tc.Len(), report.InitialAtoms)
}

func TestMinimizeBalancedPairsRemovesMatchedBrackets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "case.js")
	require.NoError(t, os.WriteFile(path, []byte("f({a,b,c});"), 0o644))
	tc, err := testcase.Load(path, atomize.Char{})
	require.NoError(t, err)

	drv := newMockDriver(t, path, func(d []byte) bool { return bytes.Contains(d, []byte("f(")) })
	report, err := MinimizeBalancedPairs{}.Run(context.Background(), tc, drv, Config{Repeat: contract.RepeatNever})
	require.NoError(t, err)
	assert.Contains(t, string(tc.Bytes()), "f(")
	assert.Less(t, tc.Len(), report.InitialAtoms, "the matched {...} range should have been dropped")
}

func TestCollapseEmptyBracesRemovesEmptyPairs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "case.js")
	require.NoError(t, os.WriteFile(path, []byte("f({});"), 0o644))
	tc, err := testcase.Load(path, atomize.Char{})
	require.NoError(t, err)

	drv := newMockDriver(t, path, func(d []byte) bool { return bytes.Contains(d, []byte("f(") ) })
	report, err := CollapseEmptyBraces{}.Run(context.Background(), tc, drv, Config{})
	require.NoError(t, err)
	assert.Equal(t, "minimize-collapse-brace", report.Strategy)
	assert.Equal(t, "f();", string(tc.Bytes()))
}

func TestReplacePropertiesByGlobalsRewritesMatches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "case.js")
	require.NoError(t, os.WriteFile(path, []byte("this.value + this.other"), 0o644))
	tc, err := testcase.Load(path, atomize.Char{})
	require.NoError(t, err)

	drv := newMockDriver(t, path, func(d []byte) bool { return bytes.Contains(d, []byte("value")) })
	report, err := ReplacePropertiesByGlobals{}.Run(context.Background(), tc, drv, Config{})
	require.NoError(t, err)
	assert.True(t, report.AnyRemoved)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "this.")
}
