package interp

import (
	"errors"
	"fmt"

	"github.com/corani/minic/internal/ast"
)

// The interpreter mirrors the language semantics directly on the AST, so its
// results can be compared against the lowered program's execution. It shares
// no code with the lowering path on purpose.
var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrStepLimit      = errors.New("step limit exceeded")

	// ErrInvariant indicates an unchecked tree reached the interpreter.
	ErrInvariant = errors.New("internal invariant violation")
)

type Option func(*Interp)

// WithMaxSteps bounds the number of executed statements; 0 disables the
// limit.
func WithMaxSteps(n int) Option {
	return func(in *Interp) {
		in.maxSteps = n
	}
}

// Interp is a direct tree-walking evaluator over a checked compilation unit.
type Interp struct {
	globals  map[string]int64
	funcs    map[string]*ast.FuncDef
	maxSteps int
	steps    int
}

func New(unit *ast.CompilationUnit, opts ...Option) *Interp {
	in := &Interp{
		globals: make(map[string]int64),
		funcs:   make(map[string]*ast.FuncDef),
	}

	for _, opt := range opts {
		opt(in)
	}

	for _, fn := range unit.Funcs {
		in.funcs[fn.Ident] = fn
	}

	return in
}

// Run evaluates the global initializers in declaration order, then calls main
// and returns its result.
func Run(unit *ast.CompilationUnit, opts ...Option) (int64, error) {
	in := New(unit, opts...)

	for _, g := range unit.Globals {
		val, err := in.eval(nil, g.Value)
		if err != nil {
			return 0, err
		}

		in.globals[g.Ident] = val
	}

	mainFn, ok := in.funcs["main"]
	if !ok {
		return 0, fmt.Errorf("%w: no main function", ErrInvariant)
	}

	return in.call(mainFn, nil)
}

// env is a function frame: a stack of lexical scopes, innermost last.
// Globals are not part of the frame; lookups fall through to the global map.
type env struct {
	scopes []map[string]int64
}

func (e *env) enter() {
	e.scopes = append(e.scopes, make(map[string]int64))
}

func (e *env) exit() {
	e.scopes = e.scopes[:len(e.scopes)-1]
}

func (e *env) declare(name string, val int64) {
	e.scopes[len(e.scopes)-1][name] = val
}

func (e *env) lookup(name string) (int64, bool) {
	if e == nil {
		return 0, false
	}

	for i := len(e.scopes) - 1; i >= 0; i-- {
		if val, ok := e.scopes[i][name]; ok {
			return val, true
		}
	}

	return 0, false
}

func (e *env) assign(name string, val int64) bool {
	if e == nil {
		return false
	}

	for i := len(e.scopes) - 1; i >= 0; i-- {
		if _, ok := e.scopes[i][name]; ok {
			e.scopes[i][name] = val

			return true
		}
	}

	return false
}

func (in *Interp) call(fn *ast.FuncDef, args []int64) (int64, error) {
	if len(args) != len(fn.Params) {
		return 0, fmt.Errorf("%w: %q takes %d argument(s), got %d",
			ErrInvariant, fn.Ident, len(fn.Params), len(args))
	}

	frame := &env{}
	frame.enter()

	for i, param := range fn.Params {
		frame.declare(param.Ident, args[i])
	}

	// A void function falling off the end returns zero by convention.
	ret, _, err := in.execBody(frame, fn.Body)

	return ret, err
}

// execBody runs a block in its own nested scope. The bool reports whether a
// return statement fired, which unwinds any enclosing statements.
func (in *Interp) execBody(frame *env, body *ast.Body) (int64, bool, error) {
	frame.enter()
	defer frame.exit()

	for _, stmt := range body.Statements {
		ret, returned, err := in.exec(frame, stmt)
		if err != nil || returned {
			return ret, returned, err
		}
	}

	return 0, false, nil
}

// tick enforces the step limit; loops call it once per iteration so even an
// empty body counts.
func (in *Interp) tick() error {
	if in.maxSteps == 0 {
		return nil
	}

	in.steps++

	if in.steps > in.maxSteps {
		return fmt.Errorf("%w: %d statement(s)", ErrStepLimit, in.maxSteps)
	}

	return nil
}

func (in *Interp) exec(frame *env, stmt ast.Statement) (int64, bool, error) {
	if err := in.tick(); err != nil {
		return 0, false, err
	}

	switch s := stmt.(type) {
	case *ast.Declare:
		val, err := in.eval(frame, s.Value)
		if err != nil {
			return 0, false, err
		}

		frame.declare(s.Ident, val)

		return 0, false, nil
	case *ast.Assign:
		val, err := in.eval(frame, s.Value)
		if err != nil {
			return 0, false, err
		}

		if !frame.assign(s.Ident, val) {
			if _, ok := in.globals[s.Ident]; !ok {
				return 0, false, fmt.Errorf("%s: %w: assignment to undeclared %q",
					s.Location(), ErrInvariant, s.Ident)
			}

			in.globals[s.Ident] = val
		}

		return 0, false, nil
	case *ast.If:
		cond, err := in.eval(frame, s.Cond)
		if err != nil {
			return 0, false, err
		}

		if cond != 0 {
			return in.execBody(frame, s.Then)
		}

		if s.Else != nil {
			return in.execBody(frame, s.Else)
		}

		return 0, false, nil
	case *ast.While:
		for {
			if err := in.tick(); err != nil {
				return 0, false, err
			}

			cond, err := in.eval(frame, s.Cond)
			if err != nil {
				return 0, false, err
			}

			if cond == 0 {
				return 0, false, nil
			}

			ret, returned, err := in.execBody(frame, s.Body)
			if err != nil || returned {
				return ret, returned, err
			}
		}
	case *ast.Return:
		if s.Value == nil {
			return 0, true, nil
		}

		val, err := in.eval(frame, s.Value)

		return val, true, err
	case *ast.ExprStmt:
		_, err := in.eval(frame, s.Expr)

		return 0, false, err
	default:
		return 0, false, fmt.Errorf("%w: unknown statement %T", ErrInvariant, stmt)
	}
}

func (in *Interp) eval(frame *env, expr ast.Expression) (int64, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		if e.Type != nil && e.Type.Kind == ast.TypeBool {
			if e.BoolValue {
				return 1, nil
			}

			return 0, nil
		}

		return e.IntValue, nil
	case *ast.VariableRef:
		if val, ok := frame.lookup(e.Ident); ok {
			return val, nil
		}

		if val, ok := in.globals[e.Ident]; ok {
			return val, nil
		}

		return 0, fmt.Errorf("%s: %w: unresolved %q", e.Location(), ErrInvariant, e.Ident)
	case *ast.UnaryOp:
		val, err := in.eval(frame, e.Expr)
		if err != nil {
			return 0, err
		}

		switch e.Operation {
		case ast.UnaryOpMinus:
			return -val, nil
		case ast.UnaryOpNot:
			if val == 0 {
				return 1, nil
			}

			return 0, nil
		default:
			return 0, fmt.Errorf("%w: unknown unary operator %q", ErrInvariant, e.Operation)
		}
	case *ast.Binop:
		return in.evalBinop(frame, e)
	case *ast.Call:
		fn, ok := in.funcs[e.Ident]
		if !ok {
			return 0, fmt.Errorf("%s: %w: call to unknown function %q",
				e.Location(), ErrInvariant, e.Ident)
		}

		var args []int64

		for _, arg := range e.Args {
			val, err := in.eval(frame, arg)
			if err != nil {
				return 0, err
			}

			args = append(args, val)
		}

		return in.call(fn, args)
	default:
		return 0, fmt.Errorf("%w: unknown expression %T", ErrInvariant, expr)
	}
}

func (in *Interp) evalBinop(frame *env, e *ast.Binop) (int64, error) {
	// Both operands are evaluated unconditionally, left first. && and || are
	// not short-circuited: the right operand's side effects always happen.
	lhs, err := in.eval(frame, e.Lhs)
	if err != nil {
		return 0, err
	}

	rhs, err := in.eval(frame, e.Rhs)
	if err != nil {
		return 0, err
	}

	switch e.Operation {
	case ast.BinOpAdd:
		return lhs + rhs, nil
	case ast.BinOpSub:
		return lhs - rhs, nil
	case ast.BinOpMul:
		return lhs * rhs, nil
	case ast.BinOpDiv:
		if rhs == 0 {
			return 0, fmt.Errorf("%s: %w", e.Location(), ErrDivisionByZero)
		}

		return lhs / rhs, nil
	case ast.BinOpMod:
		if rhs == 0 {
			return 0, fmt.Errorf("%s: %w", e.Location(), ErrDivisionByZero)
		}

		return lhs % rhs, nil
	case ast.BinOpLt:
		return boolVal(lhs < rhs), nil
	case ast.BinOpGt:
		return boolVal(lhs > rhs), nil
	case ast.BinOpLe:
		return boolVal(lhs <= rhs), nil
	case ast.BinOpGe:
		return boolVal(lhs >= rhs), nil
	case ast.BinOpEq:
		return boolVal(lhs == rhs), nil
	case ast.BinOpNe:
		return boolVal(lhs != rhs), nil
	case ast.BinOpLogAnd:
		return boolVal(lhs != 0 && rhs != 0), nil
	case ast.BinOpLogOr:
		return boolVal(lhs != 0 || rhs != 0), nil
	default:
		return 0, fmt.Errorf("%w: unknown binary operation %q", ErrInvariant, e.Operation)
	}
}

func boolVal(b bool) int64 {
	if b {
		return 1
	}

	return 0
}
