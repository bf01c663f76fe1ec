package ir

import (
	"fmt"

	"github.com/corani/minic/internal/analyzer"
	"github.com/corani/minic/internal/lexer"
)

// Visitor defines the visitor interface for IR text emission.
type Visitor interface {
	VisitProgram(*Program) string
	VisitMov(*Mov) string
	VisitBinop(*Binop) string
	VisitCmp(*Cmp) string
	VisitSet(*Set) string
	VisitJe(*Je) string
	VisitJmp(*Jmp) string
	VisitLabel(*Label) string
	VisitCall(*Call) string
	VisitRet(*Ret) string
	VisitHalt(*Halt) string
}

// Reserved temporary names. The allocator never issues either: t_ret is the
// designated per-frame return temporary, t_exit receives main's result in
// the program preamble.
const (
	RetTemp  = "t_ret"
	ExitTemp = "t_exit"
)

type OperandKind string

const (
	OperandTemp OperandKind = "temp"
	OperandVar  OperandKind = "var"
	OperandImm  OperandKind = "imm"
)

// Operand is a tagged value: a temporary, a named variable with its storage
// class, or an immediate. Operands are value types and never shared mutable
// state. Jump targets are carried as label strings on the instructions
// themselves.
type Operand struct {
	Kind    OperandKind
	Name    string                // temp or variable name
	Storage analyzer.StorageClass // only for OperandVar
	Value   int64                 // only for OperandImm
}

func NewTemp(name string) Operand {
	return Operand{Kind: OperandTemp, Name: name}
}

func NewVar(name string, storage analyzer.StorageClass) Operand {
	return Operand{Kind: OperandVar, Name: name, Storage: storage}
}

func NewImm(value int64) Operand {
	return Operand{Kind: OperandImm, Value: value}
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandImm:
		return fmt.Sprintf("%d", o.Value)
	default:
		return o.Name
	}
}

// FuncInfo carries the per-function metadata the executor needs for the call
// convention: parameter names to bind into the fresh frame and the entry
// label to jump to.
type FuncInfo struct {
	Ident        string
	Params       []string
	Entry        string
	ReturnsValue bool
}

// Program is the flat IR instruction sequence: the preamble (global
// initializers, CALL main -> t_exit, HALT) followed by each function's body,
// delimited by its entry label and terminated by RET.
type Program struct {
	Instructions []Instruction
	Funcs        []*FuncInfo
}

func NewProgram() *Program {
	return &Program{}
}

func (p *Program) Accept(visitor Visitor) string {
	return visitor.VisitProgram(p)
}

// Func looks up the metadata for a function by name.
func (p *Program) Func(name string) (*FuncInfo, bool) {
	for _, fn := range p.Funcs {
		if fn.Ident == name {
			return fn, true
		}
	}

	return nil, false
}

type BinOp string

const (
	OpAdd BinOp = "ADD"
	OpSub BinOp = "SUB"
	OpMul BinOp = "MUL"
	OpDiv BinOp = "DIV"
	OpAnd BinOp = "AND"
	OpOr  BinOp = "OR"
)

// Cond selects the SETx variant; it answers an ordering query against the
// most recent CMP.
type Cond string

const (
	CondL  Cond = "L"
	CondG  Cond = "G"
	CondLE Cond = "LE"
	CondGE Cond = "GE"
	CondE  Cond = "E"
	CondNE Cond = "NE"
)

// Instruction is a marker interface for all instruction types.
type Instruction interface {
	isInstruction()
	Accept(visitor Visitor) string
	Location() lexer.Location
}

var _ = []Instruction{
	(*Mov)(nil),
	(*Binop)(nil),
	(*Cmp)(nil),
	(*Set)(nil),
	(*Je)(nil),
	(*Jmp)(nil),
	(*Label)(nil),
	(*Call)(nil),
	(*Ret)(nil),
	(*Halt)(nil),
}

// Mov copies a value into a temporary or variable.
type Mov struct {
	Loc      lexer.Location
	Dst, Src Operand
}

func NewMov(loc lexer.Location, dst, src Operand) *Mov {
	return &Mov{Loc: loc, Dst: dst, Src: src}
}

func (m *Mov) isInstruction() {}

func (m *Mov) Accept(visitor Visitor) string {
	return visitor.VisitMov(m)
}

func (m *Mov) Location() lexer.Location {
	return m.Loc
}

// Binop is a three-address binary operation into a fresh temporary.
type Binop struct {
	Loc      lexer.Location
	Op       BinOp
	Dst      Operand
	Lhs, Rhs Operand
}

func NewBinop(loc lexer.Location, op BinOp, dst, lhs, rhs Operand) *Binop {
	return &Binop{Loc: loc, Op: op, Dst: dst, Lhs: lhs, Rhs: rhs}
}

func (b *Binop) isInstruction() {}

func (b *Binop) Accept(visitor Visitor) string {
	return visitor.VisitBinop(b)
}

func (b *Binop) Location() lexer.Location {
	return b.Loc
}

// Cmp sets the flag register to the comparison of its operands. The flag is
// consumed by the SETx family and by JE.
type Cmp struct {
	Loc      lexer.Location
	Lhs, Rhs Operand
}

func NewCmp(loc lexer.Location, lhs, rhs Operand) *Cmp {
	return &Cmp{Loc: loc, Lhs: lhs, Rhs: rhs}
}

func (c *Cmp) isInstruction() {}

func (c *Cmp) Accept(visitor Visitor) string {
	return visitor.VisitCmp(c)
}

func (c *Cmp) Location() lexer.Location {
	return c.Loc
}

// Set materializes the preceding CMP's outcome as 0/1 in its destination.
type Set struct {
	Loc  lexer.Location
	Cond Cond
	Dst  Operand
}

func NewSet(loc lexer.Location, cond Cond, dst Operand) *Set {
	return &Set{Loc: loc, Cond: cond, Dst: dst}
}

func (s *Set) isInstruction() {}

func (s *Set) Accept(visitor Visitor) string {
	return visitor.VisitSet(s)
}

func (s *Set) Location() lexer.Location {
	return s.Loc
}

// Je jumps to its target when the preceding CMP compared equal.
type Je struct {
	Loc    lexer.Location
	Target string
}

func NewJe(loc lexer.Location, target string) *Je {
	return &Je{Loc: loc, Target: target}
}

func (j *Je) isInstruction() {}

func (j *Je) Accept(visitor Visitor) string {
	return visitor.VisitJe(j)
}

func (j *Je) Location() lexer.Location {
	return j.Loc
}

// Jmp is an unconditional jump.
type Jmp struct {
	Loc    lexer.Location
	Target string
}

func NewJmp(loc lexer.Location, target string) *Jmp {
	return &Jmp{Loc: loc, Target: target}
}

func (j *Jmp) isInstruction() {}

func (j *Jmp) Accept(visitor Visitor) string {
	return visitor.VisitJmp(j)
}

func (j *Jmp) Location() lexer.Location {
	return j.Loc
}

// Label marks a jump target in the instruction stream; it executes as a
// no-op.
type Label struct {
	Loc  lexer.Location
	Name string
}

func NewLabel(loc lexer.Location, name string) *Label {
	return &Label{Loc: loc, Name: name}
}

func (l *Label) isInstruction() {}

func (l *Label) Accept(visitor Visitor) string {
	return visitor.VisitLabel(l)
}

func (l *Label) Location() lexer.Location {
	return l.Loc
}

// Call invokes a function with already-evaluated argument operands; the
// callee's return value lands in Dst.
type Call struct {
	Loc    lexer.Location
	Callee string
	Args   []Operand
	Dst    Operand
}

func NewCall(loc lexer.Location, callee string, dst Operand, args ...Operand) *Call {
	return &Call{Loc: loc, Callee: callee, Args: args, Dst: dst}
}

func (c *Call) isInstruction() {}

func (c *Call) Accept(visitor Visitor) string {
	return visitor.VisitCall(c)
}

func (c *Call) Location() lexer.Location {
	return c.Loc
}

// Ret returns to the caller; the frame's t_ret holds the return value, if
// any.
type Ret struct {
	Loc lexer.Location
}

func NewRet(loc lexer.Location) *Ret {
	return &Ret{Loc: loc}
}

func (r *Ret) isInstruction() {}

func (r *Ret) Accept(visitor Visitor) string {
	return visitor.VisitRet(r)
}

func (r *Ret) Location() lexer.Location {
	return r.Loc
}

// Halt terminates execution; the machine result is the root frame's t_exit.
type Halt struct {
	Loc lexer.Location
}

func NewHalt(loc lexer.Location) *Halt {
	return &Halt{Loc: loc}
}

func (h *Halt) isInstruction() {}

func (h *Halt) Accept(visitor Visitor) string {
	return visitor.VisitHalt(h)
}

func (h *Halt) Location() lexer.Location {
	return h.Loc
}
