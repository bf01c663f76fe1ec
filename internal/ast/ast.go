package ast

import (
	"github.com/corani/minic/internal/lexer"
)

// Visitor interface for double-dispatch on AST nodes.
type Visitor interface {
	VisitCompilationUnit(*CompilationUnit)
	VisitDeclare(*Declare)
	VisitFuncDef(*FuncDef)
	VisitFuncParam(*FuncParam)
	VisitBody(*Body)
	VisitAssign(*Assign)
	VisitIf(*If)
	VisitWhile(*While)
	VisitReturn(*Return)
	VisitExprStmt(*ExprStmt)
	VisitLiteral(*Literal)
	VisitVariableRef(*VariableRef)
	VisitUnaryOp(*UnaryOp)
	VisitBinop(*Binop)
	VisitCall(*Call)
}

// Statement is implemented by all statement nodes.
type Statement interface {
	Location() lexer.Location
	Accept(Visitor)
	isStatement()
}

// Expression is implemented by all expression nodes.
type Expression interface {
	Location() lexer.Location
	Accept(Visitor)
	isExpression()
}

var _ = []Statement{
	(*Declare)(nil),
	(*Assign)(nil),
	(*If)(nil),
	(*While)(nil),
	(*Return)(nil),
	(*ExprStmt)(nil),
}

var _ = []Expression{
	(*Literal)(nil),
	(*VariableRef)(nil),
	(*UnaryOp)(nil),
	(*Binop)(nil),
	(*Call)(nil),
}

// CompilationUnit is the root of the AST: the globals and functions of one
// source file, in declaration order.
type CompilationUnit struct {
	Path    string // source filename
	Globals []*Declare
	Funcs   []*FuncDef
	Loc     lexer.Location
}

func NewCompilationUnit(path string, location lexer.Location) *CompilationUnit {
	return &CompilationUnit{
		Path:    path,
		Globals: nil,
		Funcs:   nil,
		Loc:     location,
	}
}

func (cu *CompilationUnit) Location() lexer.Location {
	return cu.Loc
}

func (cu *CompilationUnit) Accept(v Visitor) {
	v.VisitCompilationUnit(cu)
}

type FuncDef struct {
	Ident      string
	Params     []*FuncParam
	ReturnType *Type
	Body       *Body
	Loc        lexer.Location
}

func NewFuncDef(ident string, returnType *Type, location lexer.Location) *FuncDef {
	return &FuncDef{
		Ident:      ident,
		Params:     nil,
		ReturnType: returnType,
		Body:       nil,
		Loc:        location,
	}
}

func (fd *FuncDef) Location() lexer.Location {
	return fd.Loc
}

func (fd *FuncDef) Accept(v Visitor) {
	v.VisitFuncDef(fd)
}

type FuncParam struct {
	Ident string
	Type  *Type
	Loc   lexer.Location
}

func NewFuncParam(ident string, ty *Type, location lexer.Location) *FuncParam {
	return &FuncParam{
		Ident: ident,
		Type:  ty,
		Loc:   location,
	}
}

func (fp *FuncParam) Location() lexer.Location {
	return fp.Loc
}

func (fp *FuncParam) Accept(v Visitor) {
	v.VisitFuncParam(fp)
}

// Body is a braced statement sequence. Each body introduces a new scope.
type Body struct {
	Statements []Statement
	Loc        lexer.Location
}

func NewBody(location lexer.Location) *Body {
	return &Body{
		Statements: nil,
		Loc:        location,
	}
}

func (b *Body) Location() lexer.Location {
	return b.Loc
}

func (b *Body) Accept(v Visitor) {
	v.VisitBody(b)
}

// Declare is a variable declaration with a mandatory initializer. It doubles
// as the node for global declarations at the unit level.
type Declare struct {
	Ident string
	Type  *Type
	Value Expression
	Loc   lexer.Location
}

func NewDeclare(ident string, ty *Type, value Expression, location lexer.Location) *Declare {
	return &Declare{
		Ident: ident,
		Type:  ty,
		Value: value,
		Loc:   location,
	}
}

func (d *Declare) Location() lexer.Location {
	return d.Loc
}

func (d *Declare) Accept(v Visitor) {
	v.VisitDeclare(d)
}

func (d *Declare) isStatement() {}

type Assign struct {
	Ident string
	Value Expression
	Loc   lexer.Location
}

func NewAssign(ident string, value Expression, location lexer.Location) *Assign {
	return &Assign{
		Ident: ident,
		Value: value,
		Loc:   location,
	}
}

func (a *Assign) Location() lexer.Location {
	return a.Loc
}

func (a *Assign) Accept(v Visitor) {
	v.VisitAssign(a)
}

func (a *Assign) isStatement() {}

type If struct {
	Cond Expression
	Then *Body
	Else *Body // nil if there is no else-block
	Loc  lexer.Location
}

func NewIf(cond Expression, then, els *Body, location lexer.Location) *If {
	return &If{
		Cond: cond,
		Then: then,
		Else: els,
		Loc:  location,
	}
}

func (i *If) Location() lexer.Location {
	return i.Loc
}

func (i *If) Accept(v Visitor) {
	v.VisitIf(i)
}

func (i *If) isStatement() {}

type While struct {
	Cond Expression
	Body *Body
	Loc  lexer.Location
}

func NewWhile(cond Expression, body *Body, location lexer.Location) *While {
	return &While{
		Cond: cond,
		Body: body,
		Loc:  location,
	}
}

func (w *While) Location() lexer.Location {
	return w.Loc
}

func (w *While) Accept(v Visitor) {
	v.VisitWhile(w)
}

func (w *While) isStatement() {}

type Return struct {
	Value Expression // nil for a bare return
	Loc   lexer.Location
}

func NewReturn(value Expression, location lexer.Location) *Return {
	return &Return{
		Value: value,
		Loc:   location,
	}
}

func (r *Return) Location() lexer.Location {
	return r.Loc
}

func (r *Return) Accept(v Visitor) {
	v.VisitReturn(r)
}

func (r *Return) isStatement() {}

// ExprStmt is an expression in statement position; its value is discarded,
// its side effects are kept.
type ExprStmt struct {
	Expr Expression
	Loc  lexer.Location
}

func NewExprStmt(expr Expression, location lexer.Location) *ExprStmt {
	return &ExprStmt{
		Expr: expr,
		Loc:  location,
	}
}

func (e *ExprStmt) Location() lexer.Location {
	return e.Loc
}

func (e *ExprStmt) Accept(v Visitor) {
	v.VisitExprStmt(e)
}

func (e *ExprStmt) isStatement() {}

type Literal struct {
	Type      *Type
	IntValue  int64
	BoolValue bool
	Loc       lexer.Location
}

func NewIntLiteral(value int64, location lexer.Location) *Literal {
	return &Literal{
		Type:     NewType(TypeInt, location),
		IntValue: value,
		Loc:      location,
	}
}

func NewBoolLiteral(value bool, location lexer.Location) *Literal {
	return &Literal{
		Type:      NewType(TypeBool, location),
		BoolValue: value,
		Loc:       location,
	}
}

func (l *Literal) Location() lexer.Location {
	return l.Loc
}

func (l *Literal) Accept(v Visitor) {
	v.VisitLiteral(l)
}

func (l *Literal) isExpression() {}

type VariableRef struct {
	Ident string
	Loc   lexer.Location
}

func NewVariableRef(ident string, location lexer.Location) *VariableRef {
	return &VariableRef{
		Ident: ident,
		Loc:   location,
	}
}

func (vr *VariableRef) Location() lexer.Location {
	return vr.Loc
}

func (vr *VariableRef) Accept(v Visitor) {
	v.VisitVariableRef(vr)
}

func (vr *VariableRef) isExpression() {}

type UnaryOpKind string

const (
	UnaryOpMinus UnaryOpKind = "-"
	UnaryOpNot   UnaryOpKind = "!"
)

type UnaryOp struct {
	Operation UnaryOpKind
	Expr      Expression
	Loc       lexer.Location
}

func NewUnaryOp(op UnaryOpKind, expr Expression, location lexer.Location) *UnaryOp {
	return &UnaryOp{
		Operation: op,
		Expr:      expr,
		Loc:       location,
	}
}

func (u *UnaryOp) Location() lexer.Location {
	return u.Loc
}

func (u *UnaryOp) Accept(v Visitor) {
	v.VisitUnaryOp(u)
}

func (u *UnaryOp) isExpression() {}

type BinOpKind string

const (
	BinOpAdd    BinOpKind = "+"
	BinOpSub    BinOpKind = "-"
	BinOpMul    BinOpKind = "*"
	BinOpDiv    BinOpKind = "/"
	BinOpMod    BinOpKind = "%"
	BinOpEq     BinOpKind = "=="
	BinOpNe     BinOpKind = "!="
	BinOpLt     BinOpKind = "<"
	BinOpLe     BinOpKind = "<="
	BinOpGt     BinOpKind = ">"
	BinOpGe     BinOpKind = ">="
	BinOpLogAnd BinOpKind = "&&"
	BinOpLogOr  BinOpKind = "||"
)

type Binop struct {
	Operation BinOpKind
	Lhs, Rhs  Expression
	Loc       lexer.Location
}

func NewBinop(op BinOpKind, lhs, rhs Expression, location lexer.Location) *Binop {
	return &Binop{
		Operation: op,
		Lhs:       lhs,
		Rhs:       rhs,
		Loc:       location,
	}
}

func (b *Binop) Location() lexer.Location {
	return b.Loc
}

func (b *Binop) Accept(v Visitor) {
	v.VisitBinop(b)
}

func (b *Binop) isExpression() {}

type Call struct {
	Ident string
	Args  []Expression
	// FuncDef is bound during semantic analysis; nil before analyzer.Check.
	FuncDef *FuncDef
	Loc     lexer.Location
}

func NewCall(ident string, args []Expression, location lexer.Location) *Call {
	return &Call{
		Ident: ident,
		Args:  args,
		Loc:   location,
	}
}

func (c *Call) Location() lexer.Location {
	return c.Loc
}

func (c *Call) Accept(v Visitor) {
	v.VisitCall(c)
}

func (c *Call) isExpression() {}
