package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corani/minic/internal/analyzer"
	"github.com/corani/minic/internal/interp"
	"github.com/corani/minic/internal/vm"
)

func TestCompileSource(t *testing.T) {
	res, err := CompileSource("test.mc", `
		int add(int x, int y) { return x + y; }
		int main() { return add(2, 3); }
	`)
	require.NoError(t, err)
	require.NotNil(t, res.Unit)
	require.NotNil(t, res.Program)
	require.Contains(t, res.Listing, "CALL main -> t_exit")
	require.Contains(t, res.Listing, "LABEL func_add_entry")
}

func TestCompileSourceFaults(t *testing.T) {
	_, err := CompileSource("test.mc", "int main() { return missing; }")
	require.ErrorIs(t, err, analyzer.ErrUnresolvedIdentifier)

	_, err = CompileSource("test.mc", "int f() { return 0;")
	require.ErrorContains(t, err, "unterminated block")
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.mc")
	require.NoError(t, os.WriteFile(path, []byte("int main() { return 42; }"), 0o644))

	res, err := Compile(path)
	require.NoError(t, err)

	machine, err := vm.New(res.Program)
	require.NoError(t, err)

	got, err := machine.Run()
	require.NoError(t, err)
	require.EqualValues(t, 42, got)
}

func TestCompileMissingFile(t *testing.T) {
	_, err := Compile(filepath.Join(t.TempDir(), "nope.mc"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompileCached(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "prog.mc")
	require.NoError(t, os.WriteFile(path, []byte("int main() { return 1; }"), 0o644))

	cache, err := OpenListingCacheAt(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	first, err := CompileCached(path, cache)
	require.NoError(t, err)

	// The first compile populated the cache.
	src, err := os.ReadFile(path)
	require.NoError(t, err)

	var payload ListingPayload

	hit, err := cache.Get(cacheKey(src), &payload)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, first.Listing, payload.Listing)

	second, err := CompileCached(path, cache)
	require.NoError(t, err)
	require.Equal(t, first.Listing, second.Listing)

	// Editing the file changes the key, so the stale entry is not served.
	require.NoError(t, os.WriteFile(path, []byte("int main() { return 2; }"), 0o644))

	third, err := CompileCached(path, cache)
	require.NoError(t, err)
	require.NotEqual(t, first.Listing, third.Listing)
}

func TestCompileCachedNilCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.mc")
	require.NoError(t, os.WriteFile(path, []byte("int main() { return 3; }"), 0o644))

	res, err := CompileCached(path, nil)
	require.NoError(t, err)
	require.Contains(t, res.Listing, "HALT")
}

// The lowered program and the tree-walking evaluator must agree on every
// program, faults included.
func TestExecutionMatchesEvaluator(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name string
		src  string
	}{
		{
			name: "arithmetic",
			src:  "int main() { return (1 + 2 * 3 - 4) / 2 + 17 % 4; }",
		},
		{
			name: "loops and calls",
			src: `
				int square(int n) { return n * n; }
				int main() {
					int total = 0;
					int i = 1;
					while (i <= 5) {
						total = total + square(i);
						i = i + 1;
					}
					return total;
				}
			`,
		},
		{
			name: "globals and side effects",
			src: `
				int hits = 0;
				bool probe(bool v) {
					hits = hits + 1;
					return v;
				}
				int main() {
					bool a = probe(false) && probe(true);
					bool b = probe(true) || probe(false);
					if (a || !b) {
						return -1;
					}
					return hits;
				}
			`,
		},
		{
			name: "negative modulo",
			src:  "int main() { return -17 % 5 + 100; }",
		},
		{
			name: "branching",
			src: `
				int clamp(int n, int lo, int hi) {
					if (n < lo) {
						return lo;
					}
					if (n > hi) {
						return hi;
					}
					return n;
				}
				int main() {
					return clamp(15, 0, 10) * 100 + clamp(-5, 0, 10) * 10 + clamp(7, 0, 10);
				}
			`,
		},
	}

	for _, tc := range tt {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res, err := CompileSource("test.mc", tc.src)
			require.NoError(t, err)

			machine, err := vm.New(res.Program, vm.WithMaxSteps(100000))
			require.NoError(t, err)

			got, err := machine.Run()
			require.NoError(t, err)

			want, err := interp.Run(res.Unit, interp.WithMaxSteps(100000))
			require.NoError(t, err)

			require.Equal(t, want, got)
		})
	}
}

func TestExecutionMatchesEvaluatorOnFaults(t *testing.T) {
	res, err := CompileSource("test.mc", "int main() { return 7 / 0; }")
	require.NoError(t, err)

	machine, err := vm.New(res.Program)
	require.NoError(t, err)

	_, err = machine.Run()
	require.ErrorIs(t, err, vm.ErrDivisionByZero)

	_, err = interp.Run(res.Unit)
	require.ErrorIs(t, err, interp.ErrDivisionByZero)
}
