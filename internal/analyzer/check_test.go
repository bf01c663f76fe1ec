package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corani/minic/internal/ast"
	"github.com/corani/minic/internal/lexer"
	"github.com/corani/minic/internal/parser"
)

func parse(t *testing.T, src string) *ast.CompilationUnit {
	t.Helper()

	scan, err := lexer.NewScanner("test.mc", strings.NewReader(src))
	require.NoError(t, err)

	tokens, err := lexer.NewLexer(scan).Tokens()
	require.NoError(t, err)

	unit, err := parser.New("test.mc", tokens).Parse()
	require.NoError(t, err)

	return unit
}

func TestCheckValid(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name string
		src  string
	}{
		{
			name: "minimal",
			src:  "int main() { return 0; }",
		},
		{
			name: "globals and calls",
			src: `
				int base = 10;
				int add(int x, int y) { return x + y; }
				int main() { return add(base, 1); }
			`,
		},
		{
			name: "shadowing in nested block",
			src: `
				int main() {
					int x = 1;
					if (x > 0) {
						int x = 2;
						return x;
					}
					return x;
				}
			`,
		},
		{
			name: "forward call from global initializer",
			src: `
				int g = ten();
				int ten() { return 10; }
				int main() { return g; }
			`,
		},
		{
			name: "if else on all paths",
			src: `
				int sign(int n) {
					if (n < 0) {
						return -1;
					} else {
						return 1;
					}
				}
				int main() { return sign(-5); }
			`,
		},
		{
			name: "void function without return",
			src: `
				int g = 0;
				void bump() { g = g + 1; }
				int main() { bump(); return g; }
			`,
		},
	}

	for _, tc := range tt {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.NoError(t, Check(parse(t, tc.src)))
		})
	}
}

func TestCheckFaults(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name string
		src  string
		want error
	}{
		{
			name: "unresolved variable",
			src:  "int main() { return missing; }",
			want: ErrUnresolvedIdentifier,
		},
		{
			name: "unresolved function",
			src:  "int main() { return missing(); }",
			want: ErrUnresolvedIdentifier,
		},
		{
			name: "duplicate in same scope",
			src:  "int main() { int x = 1; int x = 2; return x; }",
			want: ErrDuplicateDeclaration,
		},
		{
			name: "duplicate global",
			src:  "int g = 1; int g = 2;\nint main() { return g; }",
			want: ErrDuplicateDeclaration,
		},
		{
			name: "duplicate function",
			src: `
				int f() { return 1; }
				int f() { return 2; }
				int main() { return f(); }
			`,
			want: ErrDuplicateDeclaration,
		},
		{
			name: "too few arguments",
			src: `
				int add(int x, int y) { return x + y; }
				int main() { return add(1); }
			`,
			want: ErrArityMismatch,
		},
		{
			name: "too many arguments",
			src: `
				int add(int x, int y) { return x + y; }
				int main() { return add(1, 2, 3); }
			`,
			want: ErrArityMismatch,
		},
		{
			name: "missing return on fallthrough",
			src: `
				int f(int n) {
					if (n > 0) {
						return 1;
					}
				}
				int main() { return f(1); }
			`,
			want: ErrMissingReturn,
		},
		{
			name: "while does not guarantee return",
			src: `
				int f(int n) {
					while (n > 0) {
						return n;
					}
				}
				int main() { return f(1); }
			`,
			want: ErrMissingReturn,
		},
		{
			name: "no main",
			src:  "int f() { return 1; }",
			want: ErrUnresolvedIdentifier,
		},
		{
			name: "main with parameters",
			src:  "int main(int argc) { return argc; }",
			want: ErrArityMismatch,
		},
	}

	for _, tc := range tt {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := Check(parse(t, tc.src))
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCheckTypeErrors(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "bool arithmetic",
			src:  "int main() { int x = true + 1; return x; }",
			want: `operator "+" requires int operands`,
		},
		{
			name: "int condition",
			src:  "int main() { if (1) { return 1; } return 0; }",
			want: "condition must be bool",
		},
		{
			name: "mixed equality",
			src:  "int main() { bool b = 1 == true; return 0; }",
			want: `operator "==" requires matching operands`,
		},
		{
			name: "logical on ints",
			src:  "int main() { bool b = 1 && 2; return 0; }",
			want: `operator "&&" requires bool operands`,
		},
		{
			name: "not on int",
			src:  "int main() { bool b = !1; return 0; }",
			want: `unary "!" requires bool`,
		},
		{
			name: "minus on bool",
			src:  "int main() { int x = -true; return 0; }",
			want: `unary "-" requires int`,
		},
		{
			name: "assign bool to int",
			src:  "int main() { int x = 1; x = true; return x; }",
			want: "cannot assign bool to int",
		},
		{
			name: "wrong argument type",
			src: `
				int id(int x) { return x; }
				int main() { return id(true); }
			`,
			want: `argument 1 of "id" must be int`,
		},
		{
			name: "return type mismatch",
			src:  "int main() { return true; }",
			want: `function "main" returns int, got bool`,
		},
		{
			name: "value return from void",
			src: `
				void f() { return 1; }
				int main() { f(); return 0; }
			`,
			want: `void function "f" cannot return a value`,
		},
		{
			name: "main returns bool",
			src:  "bool main() { return true; }",
			want: "main must return int",
		},
		{
			name: "function used as value",
			src: `
				int f() { return 1; }
				int main() { return f; }
			`,
			want: `function "f" used as a value`,
		},
		{
			name: "assign to function",
			src: `
				int f() { return 1; }
				int main() { f = 1; return 0; }
			`,
			want: `cannot assign to function "f"`,
		},
	}

	for _, tc := range tt {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := Check(parse(t, tc.src))
			require.ErrorContains(t, err, tc.want)
		})
	}
}

// All faults in a unit are reported together, not just the first.
func TestCheckCollectsAllErrors(t *testing.T) {
	err := Check(parse(t, `
		int main() {
			int x = missing;
			int x = 2;
			return alsoMissing;
		}
	`))

	require.ErrorIs(t, err, ErrUnresolvedIdentifier)
	require.ErrorIs(t, err, ErrDuplicateDeclaration)
	require.ErrorContains(t, err, "alsoMissing")
}

func TestCheckBindsCalls(t *testing.T) {
	unit := parse(t, `
		int add(int x, int y) { return x + y; }
		int main() { return add(1, 2); }
	`)

	require.NoError(t, Check(unit))

	ret := unit.Funcs[1].Body.Statements[0].(*ast.Return)
	call, ok := ret.Value.(*ast.Call)
	require.True(t, ok)
	require.Same(t, unit.Funcs[0], call.FuncDef)
}
