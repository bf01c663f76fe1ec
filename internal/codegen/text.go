package codegen

import (
	"fmt"
	"os"
	"strings"

	"github.com/corani/minic/internal/ir"
)

// TextVisitor renders the IR text form, one instruction per line:
//
//	MOV a, 5
//	ADD t1, a, b
//	CMP t1, 0
//	SETL t2
//	JE while_end_2
//	CALL add, 2, 3 -> t3
//	RET
//	HALT
type TextVisitor struct{}

func NewTextVisitor() *TextVisitor {
	return &TextVisitor{}
}

// Listing renders a whole program.
func Listing(prog *ir.Program) string {
	return prog.Accept(NewTextVisitor())
}

// Write renders a whole program to a file.
func Write(prog *ir.Program, filename string) error {
	return os.WriteFile(filename, []byte(Listing(prog)), 0644)
}

func (tv *TextVisitor) VisitProgram(prog *ir.Program) string {
	var sb strings.Builder

	for _, instr := range prog.Instructions {
		sb.WriteString(instr.Accept(tv))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (tv *TextVisitor) VisitMov(m *ir.Mov) string {
	return fmt.Sprintf("MOV %s, %s", m.Dst, m.Src)
}

func (tv *TextVisitor) VisitBinop(b *ir.Binop) string {
	return fmt.Sprintf("%s %s, %s, %s", b.Op, b.Dst, b.Lhs, b.Rhs)
}

func (tv *TextVisitor) VisitCmp(c *ir.Cmp) string {
	return fmt.Sprintf("CMP %s, %s", c.Lhs, c.Rhs)
}

func (tv *TextVisitor) VisitSet(s *ir.Set) string {
	return fmt.Sprintf("SET%s %s", s.Cond, s.Dst)
}

func (tv *TextVisitor) VisitJe(j *ir.Je) string {
	return fmt.Sprintf("JE %s", j.Target)
}

func (tv *TextVisitor) VisitJmp(j *ir.Jmp) string {
	return fmt.Sprintf("JMP %s", j.Target)
}

func (tv *TextVisitor) VisitLabel(l *ir.Label) string {
	return fmt.Sprintf("LABEL %s", l.Name)
}

func (tv *TextVisitor) VisitCall(c *ir.Call) string {
	var args []string

	for _, arg := range c.Args {
		args = append(args, arg.String())
	}

	if len(args) == 0 {
		return fmt.Sprintf("CALL %s -> %s", c.Callee, c.Dst)
	}

	return fmt.Sprintf("CALL %s, %s -> %s", c.Callee, strings.Join(args, ", "), c.Dst)
}

func (tv *TextVisitor) VisitRet(*ir.Ret) string {
	return "RET"
}

func (tv *TextVisitor) VisitHalt(*ir.Halt) string {
	return "HALT"
}
