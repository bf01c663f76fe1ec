package ir

import (
	"errors"
	"fmt"

	"github.com/corani/minic/internal/analyzer"
	"github.com/corani/minic/internal/ast"
	"github.com/corani/minic/internal/lexer"
)

// Lower translates a checked compilation unit into the flat IR program:
// first the preamble (global initializers, CALL main -> t_exit, HALT), then
// each function in declaration order.
func Lower(unit *ast.CompilationUnit) (*Program, error) {
	v := newVisitor()

	unit.Accept(v)

	if err := errors.Join(v.errs...); err != nil {
		return nil, err
	}

	return v.program, nil
}

// visitor walks the AST emitting instructions in program order. It keeps its
// own scope stack so variable references resolve to the storage class that
// decides their operand form.
type visitor struct {
	program *Program
	alloc   *Alloc
	symbols *analyzer.SymbolTable
	lastVal Operand // result operand of the most recently lowered expression
	errs    []error
}

func newVisitor() *visitor {
	return &visitor{
		program: NewProgram(),
		alloc:   NewAlloc(),
		symbols: analyzer.NewSymbolTable(),
	}
}

func (v *visitor) VisitCompilationUnit(cu *ast.CompilationUnit) {
	// The global scope outlives all function scopes.
	v.symbols.EnterScope()
	defer v.symbols.ExitScope()

	for _, fn := range cu.Funcs {
		if _, err := v.symbols.Declare(analyzer.NewSymbolFunc(fn.Ident, fn)); err != nil {
			v.errorf(fn.Location(), "%w", err)
		}
	}

	// Preamble: global initializers run before main.
	for _, g := range cu.Globals {
		g.Accept(v)
	}

	v.emit(NewCall(cu.Location(), "main", NewTemp(ExitTemp)))
	v.emit(NewHalt(cu.Location()))

	for _, fn := range cu.Funcs {
		fn.Accept(v)
	}
}

func (v *visitor) VisitFuncDef(fd *ast.FuncDef) {
	info := &FuncInfo{
		Ident:        fd.Ident,
		Entry:        fmt.Sprintf("func_%s_entry", fd.Ident),
		ReturnsValue: fd.ReturnType != nil && fd.ReturnType.Kind != ast.TypeVoid,
	}

	for _, param := range fd.Params {
		info.Params = append(info.Params, param.Ident)
	}

	v.program.Funcs = append(v.program.Funcs, info)

	// One scope for the parameters; the body pushes its own nested scope.
	v.symbols.EnterScope()
	defer v.symbols.ExitScope()

	for _, param := range fd.Params {
		param.Accept(v)
	}

	v.emit(NewLabel(fd.Location(), info.Entry))

	if fd.Body != nil {
		fd.Body.Accept(v)
	}

	// Close the function stream: a void function may fall off the end, and
	// every function body must be terminated by RET.
	if _, ok := v.program.Instructions[len(v.program.Instructions)-1].(*Ret); !ok {
		v.emit(NewRet(fd.Location()))
	}
}

func (v *visitor) VisitFuncParam(param *ast.FuncParam) {
	sym := analyzer.NewSymbolVariable(param.Ident, param.Type, analyzer.StorageLocal)

	if _, err := v.symbols.Declare(sym); err != nil {
		v.errorf(param.Location(), "%w", err)
	}
}

func (v *visitor) VisitBody(body *ast.Body) {
	v.symbols.EnterScope()
	defer v.symbols.ExitScope()

	for _, stmt := range body.Statements {
		stmt.Accept(v)
	}
}

func (v *visitor) VisitDeclare(d *ast.Declare) {
	value := v.lower(d.Value)

	storage := analyzer.StorageLocal
	if v.symbols.Depth() == 1 {
		storage = analyzer.StorageGlobal
	}

	sym, err := v.symbols.Declare(analyzer.NewSymbolVariable(d.Ident, d.Type, storage))
	if err != nil {
		v.errorf(d.Location(), "%w", err)

		return
	}

	v.emit(NewMov(d.Location(), NewVar(sym.Name, sym.Storage), value))
}

func (v *visitor) VisitAssign(a *ast.Assign) {
	value := v.lower(a.Value)

	sym, err := v.symbols.Resolve(a.Ident)
	if err != nil {
		v.errorf(a.Location(), "%w", err)

		return
	}

	v.emit(NewMov(a.Location(), NewVar(sym.Name, sym.Storage), value))
}

func (v *visitor) VisitIf(i *ast.If) {
	// Shape of an If statement when lowered (JE taken when cond == 0):
	// 		<cond> -> t
	// 		CMP t, 0
	// 		JE if_else
	// 		<then block>
	// 		JMP if_end
	// 	if_else:
	// 		<else block>
	// 	if_end:
	// Without an else-block the else and end labels coincide.
	cond := v.lower(i.Cond)
	v.emit(NewCmp(i.Cond.Location(), cond, NewImm(0)))

	if i.Else == nil {
		endLabel := v.alloc.FreshLabel("if_end")

		v.emit(NewJe(i.Cond.Location(), endLabel))
		i.Then.Accept(v)
		v.emit(NewLabel(i.Location(), endLabel))

		return
	}

	elseLabel := v.alloc.FreshLabel("if_else")
	endLabel := v.alloc.FreshLabel("if_end")

	v.emit(NewJe(i.Cond.Location(), elseLabel))
	i.Then.Accept(v)
	v.emit(NewJmp(i.Then.Location(), endLabel))
	v.emit(NewLabel(i.Else.Location(), elseLabel))
	i.Else.Accept(v)
	v.emit(NewLabel(i.Location(), endLabel))
}

func (v *visitor) VisitWhile(w *ast.While) {
	// Shape of a While loop when lowered; the condition is fully re-lowered
	// inline so it is re-evaluated on every iteration:
	// 	while_start:
	// 		<cond> -> t
	// 		CMP t, 0
	// 		JE while_end
	// 		<body>
	// 		JMP while_start
	// 	while_end:
	startLabel := v.alloc.FreshLabel("while_start")
	endLabel := v.alloc.FreshLabel("while_end")

	v.emit(NewLabel(w.Location(), startLabel))

	cond := v.lower(w.Cond)
	v.emit(NewCmp(w.Cond.Location(), cond, NewImm(0)))
	v.emit(NewJe(w.Cond.Location(), endLabel))

	w.Body.Accept(v)

	v.emit(NewJmp(w.Body.Location(), startLabel))
	v.emit(NewLabel(w.Location(), endLabel))
}

func (v *visitor) VisitReturn(r *ast.Return) {
	if r.Value != nil {
		value := v.lower(r.Value)
		v.emit(NewMov(r.Location(), NewTemp(RetTemp), value))
	}

	v.emit(NewRet(r.Location()))
}

func (v *visitor) VisitExprStmt(e *ast.ExprStmt) {
	// Instructions (including any CALL side effect) are kept, the result
	// operand is discarded.
	v.lower(e.Expr)
}

func (v *visitor) VisitLiteral(l *ast.Literal) {
	if l.Type != nil && l.Type.Kind == ast.TypeBool {
		if l.BoolValue {
			v.lastVal = NewImm(1)
		} else {
			v.lastVal = NewImm(0)
		}

		return
	}

	v.lastVal = NewImm(l.IntValue)
}

func (v *visitor) VisitVariableRef(vr *ast.VariableRef) {
	sym, err := v.symbols.Resolve(vr.Ident)
	if err != nil {
		v.errorf(vr.Location(), "%w", err)

		return
	}

	v.lastVal = NewVar(sym.Name, sym.Storage)
}

func (v *visitor) VisitUnaryOp(u *ast.UnaryOp) {
	operand := v.lower(u.Expr)

	switch u.Operation {
	case ast.UnaryOpMinus:
		result := v.alloc.FreshTemp()
		v.emit(NewBinop(u.Location(), OpSub, result, NewImm(0), operand))
		v.lastVal = result
	case ast.UnaryOpNot:
		// !e is 1 exactly when e == 0.
		result := v.alloc.FreshTemp()
		v.emit(NewCmp(u.Location(), operand, NewImm(0)))
		v.emit(NewSet(u.Location(), CondE, result))
		v.lastVal = result
	default:
		v.errorf(u.Location(), "unsupported unary operator: %s", u.Operation)
	}
}

var binOpMap = map[ast.BinOpKind]BinOp{
	ast.BinOpAdd: OpAdd,
	ast.BinOpSub: OpSub,
	ast.BinOpMul: OpMul,
	ast.BinOpDiv: OpDiv,
}

var condMap = map[ast.BinOpKind]Cond{
	ast.BinOpLt: CondL,
	ast.BinOpGt: CondG,
	ast.BinOpLe: CondLE,
	ast.BinOpGe: CondGE,
	ast.BinOpEq: CondE,
	ast.BinOpNe: CondNE,
}

func (v *visitor) VisitBinop(b *ast.Binop) {
	// Both operands are always lowered, left first. For && and || this is
	// the point: the instruction set has no branch-on-first-operand form, so
	// both sides evaluate unconditionally, side effects included.
	lhs := v.lower(b.Lhs)
	rhs := v.lower(b.Rhs)

	switch b.Operation {
	case ast.BinOpAdd, ast.BinOpSub, ast.BinOpMul, ast.BinOpDiv:
		result := v.alloc.FreshTemp()
		v.emit(NewBinop(b.Location(), binOpMap[b.Operation], result, lhs, rhs))
		v.lastVal = result
	case ast.BinOpMod:
		// No native modulo opcode: a % b is a - (a / b) * b, which matches
		// the truncating division semantics of DIV.
		quot := v.alloc.FreshTemp()
		prod := v.alloc.FreshTemp()
		result := v.alloc.FreshTemp()

		v.emit(NewBinop(b.Location(), OpDiv, quot, lhs, rhs))
		v.emit(NewBinop(b.Location(), OpMul, prod, quot, rhs))
		v.emit(NewBinop(b.Location(), OpSub, result, lhs, prod))
		v.lastVal = result
	case ast.BinOpLt, ast.BinOpGt, ast.BinOpLe, ast.BinOpGe, ast.BinOpEq, ast.BinOpNe:
		result := v.alloc.FreshTemp()
		v.emit(NewCmp(b.Location(), lhs, rhs))
		v.emit(NewSet(b.Location(), condMap[b.Operation], result))
		v.lastVal = result
	case ast.BinOpLogAnd:
		result := v.alloc.FreshTemp()
		v.emit(NewBinop(b.Location(), OpAnd, result, lhs, rhs))
		v.lastVal = result
	case ast.BinOpLogOr:
		result := v.alloc.FreshTemp()
		v.emit(NewBinop(b.Location(), OpOr, result, lhs, rhs))
		v.lastVal = result
	default:
		v.errorf(b.Location(), "unsupported binary operation: %s", b.Operation)
	}
}

func (v *visitor) VisitCall(c *ast.Call) {
	// Defensive: the checker has already verified arity against the bound
	// FuncDef.
	if c.FuncDef != nil && len(c.Args) != len(c.FuncDef.Params) {
		v.errorf(c.Location(), "%w: %q takes %d argument(s), got %d",
			analyzer.ErrArityMismatch, c.Ident, len(c.FuncDef.Params), len(c.Args))

		return
	}

	// Arguments are lowered left to right: each argument's instructions are
	// emitted before the next argument's, preserving side-effect order.
	var args []Operand

	for _, arg := range c.Args {
		args = append(args, v.lower(arg))
	}

	result := v.alloc.FreshTemp()
	v.emit(NewCall(c.Location(), c.Ident, result, args...))
	v.lastVal = result
}

// lower lowers an expression and returns its result operand, so the caller
// can reference it without re-lowering.
func (v *visitor) lower(expr ast.Expression) Operand {
	v.lastVal = Operand{}
	expr.Accept(v)

	return v.lastVal
}

func (v *visitor) emit(instr Instruction) {
	v.program.Instructions = append(v.program.Instructions, instr)
}

func (v *visitor) errorf(loc lexer.Location, format string, args ...any) {
	v.errs = append(v.errs,
		fmt.Errorf("%s: "+format, append([]any{loc}, args...)...))
}
