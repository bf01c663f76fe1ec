package ast

import (
	"fmt"
	"strings"
)

func (cu *CompilationUnit) String() string {
	var globals, funcs []string

	for _, g := range cu.Globals {
		globals = append(globals, g.String())
	}

	for _, f := range cu.Funcs {
		funcs = append(funcs, f.String())
	}

	return fmt.Sprintf("(unit %q (%s) (%s))",
		cu.Path,
		strings.Join(globals, " "),
		strings.Join(funcs, " "))
}

func (fd *FuncDef) String() string {
	var params []string

	for _, param := range fd.Params {
		params = append(params, param.String())
	}

	body := ""

	if fd.Body != nil {
		body = fd.Body.String()
	}

	return fmt.Sprintf("\n\t(func %q %s (%s) %s)",
		fd.Ident, fd.ReturnType, strings.Join(params, " "), body)
}

func (fp *FuncParam) String() string {
	return fmt.Sprintf("(param %q %s)", fp.Ident, fp.Type)
}

func (b *Body) String() string {
	var stmts []string

	for _, stmt := range b.Statements {
		stmts = append(stmts, stmtString(stmt))
	}

	return fmt.Sprintf("(body %s)", strings.Join(stmts, " "))
}

func stmtString(s Statement) string {
	if str, ok := s.(fmt.Stringer); ok {
		return str.String()
	}

	return fmt.Sprintf("%T", s)
}

func (d *Declare) String() string {
	return fmt.Sprintf("(declare %q %s %s)", d.Ident, d.Type, exprString(d.Value))
}

func (a *Assign) String() string {
	return fmt.Sprintf("(assign %q %s)", a.Ident, exprString(a.Value))
}

func (i *If) String() string {
	if i.Else == nil {
		return fmt.Sprintf("(if %s %s)", exprString(i.Cond), i.Then)
	}

	return fmt.Sprintf("(if %s %s %s)", exprString(i.Cond), i.Then, i.Else)
}

func (w *While) String() string {
	return fmt.Sprintf("(while %s %s)", exprString(w.Cond), w.Body)
}

func (r *Return) String() string {
	if r.Value == nil {
		return "(return)"
	}

	return fmt.Sprintf("(return %s)", exprString(r.Value))
}

func (e *ExprStmt) String() string {
	return fmt.Sprintf("(expr %s)", exprString(e.Expr))
}

func exprString(e Expression) string {
	if e == nil {
		return "()"
	}

	if str, ok := e.(fmt.Stringer); ok {
		return str.String()
	}

	return fmt.Sprintf("%T", e)
}

func (l *Literal) String() string {
	if l.Type != nil && l.Type.Kind == TypeBool {
		return fmt.Sprintf("%t", l.BoolValue)
	}

	return fmt.Sprintf("%d", l.IntValue)
}

func (vr *VariableRef) String() string {
	return fmt.Sprintf("(ref %q)", vr.Ident)
}

func (u *UnaryOp) String() string {
	return fmt.Sprintf("(%s %s)", u.Operation, exprString(u.Expr))
}

func (b *Binop) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Operation, exprString(b.Lhs), exprString(b.Rhs))
}

func (c *Call) String() string {
	var args []string

	for _, arg := range c.Args {
		args = append(args, exprString(arg))
	}

	return fmt.Sprintf("(call %q %s)", c.Ident, strings.Join(args, " "))
}
