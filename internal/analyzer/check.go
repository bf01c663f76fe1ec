package analyzer

import (
	"errors"
	"fmt"

	"github.com/corani/minic/internal/ast"
	"github.com/corani/minic/internal/lexer"
)

// Checker implements a visitor for semantic analysis: name resolution,
// scalar type agreement, call arity and the missing-return analysis. It also
// binds each Call to its FuncDef so later passes never re-resolve functions.
type Checker struct {
	symbols   *SymbolTable
	errors    []error
	lastType  *ast.Type
	currentFn *ast.FuncDef
}

func NewChecker() *Checker {
	return &Checker{
		symbols: NewSymbolTable(),
	}
}

// Check runs semantic analysis on the given compilation unit.
func Check(unit *ast.CompilationUnit) error {
	c := NewChecker()

	unit.Accept(c)

	return errors.Join(c.errors...)
}

func (c *Checker) errorf(loc lexer.Location, format string, args ...any) {
	c.errors = append(c.errors,
		fmt.Errorf("%s: "+format, append([]any{loc}, args...)...))
}

func (c *Checker) VisitCompilationUnit(unit *ast.CompilationUnit) {
	// Global scope: functions first, so global initializers may call them.
	c.symbols.EnterScope()
	defer c.symbols.ExitScope()

	for _, fn := range unit.Funcs {
		if _, err := c.symbols.Declare(NewSymbolFunc(fn.Ident, fn)); err != nil {
			c.errorf(fn.Location(), "%w", err)
		}
	}

	for _, g := range unit.Globals {
		g.Accept(c)
	}

	for _, fn := range unit.Funcs {
		fn.Accept(c)
	}

	c.checkMain(unit)
}

// checkMain requires an `int main()` entry point: the program preamble is a
// zero-argument call whose result becomes the halt value.
func (c *Checker) checkMain(unit *ast.CompilationUnit) {
	sym, err := c.symbols.Resolve("main")
	if err != nil || !sym.IsFunc {
		c.errorf(unit.Location(), "%w: program entry point %q", ErrUnresolvedIdentifier, "main")

		return
	}

	fn := sym.FuncDef

	if len(fn.Params) != 0 {
		c.errorf(fn.Location(), "%w: main takes no parameters, got %d",
			ErrArityMismatch, len(fn.Params))
	}

	if fn.ReturnType == nil || fn.ReturnType.Kind != ast.TypeInt {
		c.errorf(fn.Location(), "main must return int, got %s", fn.ReturnType)
	}
}

func (c *Checker) VisitFuncDef(fn *ast.FuncDef) {
	c.currentFn = fn

	// One scope for the parameters; the body pushes its own nested scope.
	c.symbols.EnterScope()
	defer c.symbols.ExitScope()

	for _, param := range fn.Params {
		param.Accept(c)
	}

	if fn.Body != nil {
		fn.Body.Accept(c)
	}

	if fn.ReturnType != nil && fn.ReturnType.Kind != ast.TypeVoid && !guaranteesReturn(fn.Body) {
		c.errorf(fn.Location(), "%w: function %q does not return on all paths",
			ErrMissingReturn, fn.Ident)
	}

	c.currentFn = nil
}

func (c *Checker) VisitFuncParam(param *ast.FuncParam) {
	if _, err := c.symbols.Declare(NewSymbolVariable(param.Ident, param.Type, StorageLocal)); err != nil {
		c.errorf(param.Location(), "%w", err)
	}
}

func (c *Checker) VisitBody(body *ast.Body) {
	c.symbols.EnterScope()
	defer c.symbols.ExitScope()

	for _, stmt := range body.Statements {
		stmt.Accept(c)
	}
}

func (c *Checker) VisitDeclare(d *ast.Declare) {
	valueType := c.visitExpr(d.Value)

	if valueType != nil && !valueType.Equal(d.Type) {
		c.errorf(d.Location(), "cannot initialize %s %q with %s",
			d.Type, d.Ident, valueType)
	}

	storage := StorageLocal
	if c.currentFn == nil {
		storage = StorageGlobal
	}

	if _, err := c.symbols.Declare(NewSymbolVariable(d.Ident, d.Type, storage)); err != nil {
		c.errorf(d.Location(), "%w", err)
	}
}

func (c *Checker) VisitAssign(a *ast.Assign) {
	valueType := c.visitExpr(a.Value)

	sym, err := c.symbols.Resolve(a.Ident)
	if err != nil {
		c.errorf(a.Location(), "%w", err)

		return
	}

	if sym.IsFunc {
		c.errorf(a.Location(), "cannot assign to function %q", a.Ident)

		return
	}

	if valueType != nil && !valueType.Equal(sym.Type) {
		c.errorf(a.Location(), "cannot assign %s to %s %q",
			valueType, sym.Type, a.Ident)
	}
}

func (c *Checker) VisitIf(i *ast.If) {
	c.checkCondition(i.Cond)

	i.Then.Accept(c)

	if i.Else != nil {
		i.Else.Accept(c)
	}
}

func (c *Checker) VisitWhile(w *ast.While) {
	c.checkCondition(w.Cond)

	w.Body.Accept(c)
}

func (c *Checker) checkCondition(cond ast.Expression) {
	condType := c.visitExpr(cond)

	if condType != nil && condType.Kind != ast.TypeBool {
		c.errorf(cond.Location(), "condition must be bool, got %s", condType)
	}
}

func (c *Checker) VisitReturn(r *ast.Return) {
	if c.currentFn == nil {
		c.errorf(r.Location(), "return outside of function")

		return
	}

	retType := c.currentFn.ReturnType

	if r.Value == nil {
		if retType != nil && retType.Kind != ast.TypeVoid {
			c.errorf(r.Location(), "function %q must return %s",
				c.currentFn.Ident, retType)
		}

		return
	}

	if retType != nil && retType.Kind == ast.TypeVoid {
		c.errorf(r.Location(), "void function %q cannot return a value", c.currentFn.Ident)

		return
	}

	valueType := c.visitExpr(r.Value)

	if valueType != nil && !valueType.Equal(retType) {
		c.errorf(r.Location(), "function %q returns %s, got %s",
			c.currentFn.Ident, retType, valueType)
	}
}

func (c *Checker) VisitExprStmt(e *ast.ExprStmt) {
	c.visitExpr(e.Expr)
}

func (c *Checker) VisitLiteral(l *ast.Literal) {
	c.lastType = l.Type
}

func (c *Checker) VisitVariableRef(vr *ast.VariableRef) {
	sym, err := c.symbols.Resolve(vr.Ident)
	if err != nil {
		c.errorf(vr.Location(), "%w", err)

		return
	}

	if sym.IsFunc {
		c.errorf(vr.Location(), "function %q used as a value", vr.Ident)

		return
	}

	c.lastType = sym.Type
}

func (c *Checker) VisitUnaryOp(u *ast.UnaryOp) {
	operandType := c.visitExpr(u.Expr)
	if operandType == nil {
		return
	}

	switch u.Operation {
	case ast.UnaryOpMinus:
		if operandType.Kind != ast.TypeInt {
			c.errorf(u.Location(), "unary %q requires int, got %s", u.Operation, operandType)

			return
		}

		c.lastType = operandType
	case ast.UnaryOpNot:
		if operandType.Kind != ast.TypeBool {
			c.errorf(u.Location(), "unary %q requires bool, got %s", u.Operation, operandType)

			return
		}

		c.lastType = operandType
	}
}

func (c *Checker) VisitBinop(b *ast.Binop) {
	lhs := c.visitExpr(b.Lhs)
	rhs := c.visitExpr(b.Rhs)

	if lhs == nil || rhs == nil {
		return
	}

	switch b.Operation {
	case ast.BinOpAdd, ast.BinOpSub, ast.BinOpMul, ast.BinOpDiv, ast.BinOpMod:
		if lhs.Kind != ast.TypeInt || rhs.Kind != ast.TypeInt {
			c.errorf(b.Location(), "operator %q requires int operands, got %s and %s",
				b.Operation, lhs, rhs)

			return
		}

		c.lastType = lhs
	case ast.BinOpLt, ast.BinOpLe, ast.BinOpGt, ast.BinOpGe:
		if lhs.Kind != ast.TypeInt || rhs.Kind != ast.TypeInt {
			c.errorf(b.Location(), "operator %q requires int operands, got %s and %s",
				b.Operation, lhs, rhs)

			return
		}

		c.lastType = ast.NewType(ast.TypeBool, b.Location())
	case ast.BinOpEq, ast.BinOpNe:
		if !lhs.Equal(rhs) {
			c.errorf(b.Location(), "operator %q requires matching operands, got %s and %s",
				b.Operation, lhs, rhs)

			return
		}

		c.lastType = ast.NewType(ast.TypeBool, b.Location())
	case ast.BinOpLogAnd, ast.BinOpLogOr:
		if lhs.Kind != ast.TypeBool || rhs.Kind != ast.TypeBool {
			c.errorf(b.Location(), "operator %q requires bool operands, got %s and %s",
				b.Operation, lhs, rhs)

			return
		}

		c.lastType = ast.NewType(ast.TypeBool, b.Location())
	}
}

func (c *Checker) VisitCall(call *ast.Call) {
	sym, err := c.symbols.Resolve(call.Ident)
	if err != nil {
		c.errorf(call.Location(), "%w", err)

		return
	}

	if !sym.IsFunc {
		c.errorf(call.Location(), "%q is not a function", call.Ident)

		return
	}

	fn := sym.FuncDef

	if len(call.Args) != len(fn.Params) {
		c.errorf(call.Location(), "%w: %q takes %d argument(s), got %d",
			ErrArityMismatch, call.Ident, len(fn.Params), len(call.Args))

		return
	}

	for i, arg := range call.Args {
		argType := c.visitExpr(arg)

		if argType != nil && !argType.Equal(fn.Params[i].Type) {
			c.errorf(arg.Location(), "argument %d of %q must be %s, got %s",
				i+1, call.Ident, fn.Params[i].Type, argType)
		}
	}

	call.FuncDef = fn
	c.lastType = fn.ReturnType
}

func (c *Checker) visitExpr(expr ast.Expression) *ast.Type {
	if expr == nil {
		return nil
	}

	c.lastType = nil
	expr.Accept(c)

	return c.lastType
}

// guaranteesReturn reports whether every control path through the body ends
// in a return statement. While loops never guarantee a return: their
// condition may be false on first evaluation.
func guaranteesReturn(body *ast.Body) bool {
	if body == nil {
		return false
	}

	for _, stmt := range body.Statements {
		switch s := stmt.(type) {
		case *ast.Return:
			return true
		case *ast.If:
			if s.Else != nil && guaranteesReturn(s.Then) && guaranteesReturn(s.Else) {
				return true
			}
		}
	}

	return false
}
