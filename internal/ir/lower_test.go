package ir_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corani/minic/internal/analyzer"
	"github.com/corani/minic/internal/codegen"
	"github.com/corani/minic/internal/ir"
	"github.com/corani/minic/internal/lexer"
	"github.com/corani/minic/internal/parser"
)

func lower(t *testing.T, src string) *ir.Program {
	t.Helper()

	scan, err := lexer.NewScanner("test.mc", strings.NewReader(src))
	require.NoError(t, err)

	tokens, err := lexer.NewLexer(scan).Tokens()
	require.NoError(t, err)

	unit, err := parser.New("test.mc", tokens).Parse()
	require.NoError(t, err)

	require.NoError(t, analyzer.Check(unit))

	prog, err := ir.Lower(unit)
	require.NoError(t, err)

	return prog
}

func lines(src string) []string {
	var out []string

	for _, line := range strings.Split(src, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}

	return out
}

func TestLower(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "call",
			src: `
				int add(int x, int y) { return x + y; }
				int main() { return add(2, 3); }
			`,
			want: `
				CALL main -> t_exit
				HALT
				LABEL func_add_entry
				ADD t1, x, y
				MOV t_ret, t1
				RET
				LABEL func_main_entry
				CALL add, 2, 3 -> t2
				MOV t_ret, t2
				RET
			`,
		},
		{
			name: "global initializers run before main",
			src: `
				int g = 42;
				int main() { return g; }
			`,
			want: `
				MOV g, 42
				CALL main -> t_exit
				HALT
				LABEL func_main_entry
				MOV t_ret, g
				RET
			`,
		},
		{
			name: "while re-evaluates its condition",
			src: `
				int main() {
					int x = 5;
					while (x < 10) {
						x = x + 3;
					}
					return x;
				}
			`,
			want: `
				CALL main -> t_exit
				HALT
				LABEL func_main_entry
				MOV x, 5
				LABEL while_start_1
				CMP x, 10
				SETL t1
				CMP t1, 0
				JE while_end_2
				ADD t2, x, 3
				MOV x, t2
				JMP while_start_1
				LABEL while_end_2
				MOV t_ret, x
				RET
			`,
		},
		{
			name: "logical and evaluates both operands",
			src: `
				int main() {
					bool b = false && (1 > 0);
					if (b) {
						return 1;
					}
					return 2;
				}
			`,
			want: `
				CALL main -> t_exit
				HALT
				LABEL func_main_entry
				CMP 1, 0
				SETG t1
				AND t2, 0, t1
				MOV b, t2
				CMP b, 0
				JE if_end_1
				MOV t_ret, 1
				RET
				LABEL if_end_1
				MOV t_ret, 2
				RET
			`,
		},
		{
			name: "if else branches through labels",
			src: `
				int main() {
					if (1 < 2) {
						return 1;
					} else {
						return 2;
					}
				}
			`,
			want: `
				CALL main -> t_exit
				HALT
				LABEL func_main_entry
				CMP 1, 2
				SETL t1
				CMP t1, 0
				JE if_else_1
				MOV t_ret, 1
				RET
				JMP if_end_2
				LABEL if_else_1
				MOV t_ret, 2
				RET
				LABEL if_end_2
				RET
			`,
		},
		{
			name: "modulo is synthesized from div mul sub",
			src: `
				int main() { return 13 % 5; }
			`,
			want: `
				CALL main -> t_exit
				HALT
				LABEL func_main_entry
				DIV t1, 13, 5
				MUL t2, t1, 5
				SUB t3, 13, t2
				MOV t_ret, t3
				RET
			`,
		},
		{
			name: "unary operators",
			src: `
				int main() {
					int x = -3;
					bool b = !(x > 0);
					return x;
				}
			`,
			want: `
				CALL main -> t_exit
				HALT
				LABEL func_main_entry
				SUB t1, 0, 3
				MOV x, t1
				CMP x, 0
				SETG t2
				CMP t2, 0
				SETE t3
				MOV b, t3
				MOV t_ret, x
				RET
			`,
		},
		{
			name: "void function gets trailing ret",
			src: `
				int g = 0;
				void bump() { g = g + 1; }
				int main() { bump(); return g; }
			`,
			want: `
				MOV g, 0
				CALL main -> t_exit
				HALT
				LABEL func_bump_entry
				ADD t1, g, 1
				MOV g, t1
				RET
				LABEL func_main_entry
				CALL bump -> t2
				MOV t_ret, g
				RET
			`,
		},
	}

	for _, tc := range tt {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			prog := lower(t, tc.src)
			require.Equal(t, lines(tc.want), lines(codegen.Listing(prog)))
		})
	}
}

func TestLowerFuncInfo(t *testing.T) {
	prog := lower(t, `
		int add(int x, int y) { return x + y; }
		void noop() { return; }
		int main() { noop(); return add(1, 2); }
	`)

	add, ok := prog.Func("add")
	require.True(t, ok)
	require.Equal(t, []string{"x", "y"}, add.Params)
	require.Equal(t, "func_add_entry", add.Entry)
	require.True(t, add.ReturnsValue)

	noop, ok := prog.Func("noop")
	require.True(t, ok)
	require.Empty(t, noop.Params)
	require.False(t, noop.ReturnsValue)

	_, ok = prog.Func("missing")
	require.False(t, ok)
}

// Every jump target must resolve to a label defined exactly once.
func TestLowerJumpTargetsClosed(t *testing.T) {
	prog := lower(t, `
		int collatz(int n) {
			int steps = 0;
			while (n != 1) {
				if (n % 2 == 0) {
					n = n / 2;
				} else {
					n = 3 * n + 1;
				}
				steps = steps + 1;
			}
			return steps;
		}
		int main() { return collatz(27); }
	`)

	labels := make(map[string]int)

	for _, instr := range prog.Instructions {
		if l, ok := instr.(*ir.Label); ok {
			labels[l.Name]++
		}
	}

	for name, count := range labels {
		require.Equal(t, 1, count, "label %q defined %d times", name, count)
	}

	for _, instr := range prog.Instructions {
		switch in := instr.(type) {
		case *ir.Je:
			require.Contains(t, labels, in.Target)
		case *ir.Jmp:
			require.Contains(t, labels, in.Target)
		}
	}
}

// Temporaries are never reused and the reserved names never leak out of the
// allocator.
func TestLowerTempUniqueness(t *testing.T) {
	prog := lower(t, `
		int f(int a, int b) { return a * b + a / b - a % b; }
		int main() { return f(17, 5) + f(9, 2); }
	`)

	seen := make(map[string]bool)

	for _, instr := range prog.Instructions {
		var dst ir.Operand

		switch in := instr.(type) {
		case *ir.Binop:
			dst = in.Dst
		case *ir.Set:
			dst = in.Dst
		case *ir.Call:
			dst = in.Dst
		default:
			continue
		}

		require.Equal(t, ir.OperandTemp, dst.Kind)

		if dst.Name == ir.ExitTemp {
			continue
		}

		require.False(t, seen[dst.Name], "temp %q assigned twice", dst.Name)
		seen[dst.Name] = true
	}
}
