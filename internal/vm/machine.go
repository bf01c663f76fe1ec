package vm

import (
	"errors"
	"fmt"

	"github.com/corani/minic/internal/analyzer"
	"github.com/corani/minic/internal/codegen"
	"github.com/corani/minic/internal/ir"
)

// Runtime faults. Execution halts immediately on any of these; none is
// silently recovered.
var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrUndefinedLabel = errors.New("undefined label")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrStepLimit      = errors.New("step limit exceeded")

	// ErrInvariant indicates a malformed instruction stream: well-formed
	// lowering never produces one, but the machine checks defensively.
	ErrInvariant = errors.New("internal invariant violation")
)

// frame is the per-call execution context: one map holding both temporaries
// and local variables, the return address, and the caller's destination for
// the pending CALL.
type frame struct {
	vals    map[string]int64
	retAddr int
	dst     ir.Operand
}

func newFrame() *frame {
	return &frame{
		vals: make(map[string]int64),
	}
}

// Machine executes an IR program against an explicit machine state: a flag
// register holding the signed difference of the most recent CMP, a single
// global store, and a stack of call frames. Execution is deterministic and
// single-threaded; state is created fresh per run and discarded afterwards.
type Machine struct {
	prog     *ir.Program
	labels   map[string]int
	globals  map[string]int64
	frames   []*frame
	flag     int64
	flagSet  bool
	pc       int
	maxSteps int
	trace    bool
}

type Option func(*Machine)

// WithMaxSteps bounds the number of executed instructions; 0 disables the
// limit.
func WithMaxSteps(n int) Option {
	return func(m *Machine) {
		m.maxSteps = n
	}
}

// WithTrace prints every executed instruction.
func WithTrace(enabled bool) Option {
	return func(m *Machine) {
		m.trace = enabled
	}
}

func New(prog *ir.Program, opts ...Option) (*Machine, error) {
	m := &Machine{
		prog:    prog,
		labels:  make(map[string]int),
		globals: make(map[string]int64),
		frames:  []*frame{newFrame()}, // root frame for the preamble
	}

	for _, opt := range opts {
		opt(m)
	}

	for idx, instr := range prog.Instructions {
		label, ok := instr.(*ir.Label)
		if !ok {
			continue
		}

		if _, dup := m.labels[label.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate label %q", ErrInvariant, label.Name)
		}

		m.labels[label.Name] = idx
	}

	return m, nil
}

// Run is the fetch-decode-execute loop. It returns the halt-time result:
// the value main's RET moved into t_exit.
func (m *Machine) Run() (int64, error) {
	var steps int

	tv := codegen.NewTextVisitor()

	for m.pc < len(m.prog.Instructions) {
		if m.maxSteps > 0 && steps >= m.maxSteps {
			return 0, fmt.Errorf("%w: %d instruction(s)", ErrStepLimit, m.maxSteps)
		}

		steps++

		instr := m.prog.Instructions[m.pc]

		if m.trace {
			fmt.Printf("[%04d] %s\n", m.pc, instr.Accept(tv))
		}

		switch in := instr.(type) {
		case *ir.Mov:
			if err := m.store(in.Dst, m.load(in.Src)); err != nil {
				return 0, err
			}

			m.pc++
		case *ir.Binop:
			val, err := m.binop(in)
			if err != nil {
				return 0, err
			}

			if err := m.store(in.Dst, val); err != nil {
				return 0, err
			}

			m.pc++
		case *ir.Cmp:
			m.flag = m.load(in.Lhs) - m.load(in.Rhs)
			m.flagSet = true
			m.pc++
		case *ir.Set:
			val, err := m.setCond(in.Cond)
			if err != nil {
				return 0, err
			}

			if err := m.store(in.Dst, val); err != nil {
				return 0, err
			}

			m.pc++
		case *ir.Je:
			if !m.flagSet {
				return 0, fmt.Errorf("%w: JE without preceding CMP", ErrInvariant)
			}

			if m.flag == 0 {
				if err := m.jump(in.Target); err != nil {
					return 0, err
				}
			} else {
				m.pc++
			}
		case *ir.Jmp:
			if err := m.jump(in.Target); err != nil {
				return 0, err
			}
		case *ir.Label:
			m.pc++
		case *ir.Call:
			if err := m.call(in); err != nil {
				return 0, err
			}
		case *ir.Ret:
			if err := m.ret(); err != nil {
				return 0, err
			}
		case *ir.Halt:
			return m.frames[0].vals[tempKey(ir.ExitTemp)], nil
		default:
			return 0, fmt.Errorf("%w: unknown instruction %T", ErrInvariant, instr)
		}
	}

	return 0, fmt.Errorf("%w: fell off the end of the instruction stream", ErrInvariant)
}

func (m *Machine) binop(in *ir.Binop) (int64, error) {
	lhs, rhs := m.load(in.Lhs), m.load(in.Rhs)

	switch in.Op {
	case ir.OpAdd:
		return lhs + rhs, nil
	case ir.OpSub:
		return lhs - rhs, nil
	case ir.OpMul:
		return lhs * rhs, nil
	case ir.OpDiv:
		if rhs == 0 {
			return 0, fmt.Errorf("%w: %s", ErrDivisionByZero, in.Location())
		}

		// Go's integer division truncates toward zero, which is the
		// semantics the modulo synthesis relies on.
		return lhs / rhs, nil
	case ir.OpAnd:
		return lhs & rhs, nil
	case ir.OpOr:
		return lhs | rhs, nil
	default:
		return 0, fmt.Errorf("%w: unknown binary op %q", ErrInvariant, in.Op)
	}
}

func (m *Machine) setCond(cond ir.Cond) (int64, error) {
	if !m.flagSet {
		return 0, fmt.Errorf("%w: SET%s without preceding CMP", ErrInvariant, cond)
	}

	var result bool

	switch cond {
	case ir.CondL:
		result = m.flag < 0
	case ir.CondG:
		result = m.flag > 0
	case ir.CondLE:
		result = m.flag <= 0
	case ir.CondGE:
		result = m.flag >= 0
	case ir.CondE:
		result = m.flag == 0
	case ir.CondNE:
		result = m.flag != 0
	default:
		return 0, fmt.Errorf("%w: unknown condition %q", ErrInvariant, cond)
	}

	if result {
		return 1, nil
	}

	return 0, nil
}

func (m *Machine) jump(target string) error {
	idx, ok := m.labels[target]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUndefinedLabel, target)
	}

	m.pc = idx

	return nil
}

func (m *Machine) call(in *ir.Call) error {
	fn, ok := m.prog.Func(in.Callee)
	if !ok {
		return fmt.Errorf("%w: call to unknown function %q", ErrUndefinedLabel, in.Callee)
	}

	if len(in.Args) != len(fn.Params) {
		return fmt.Errorf("%w: %q takes %d argument(s), got %d",
			ErrInvariant, in.Callee, len(fn.Params), len(in.Args))
	}

	entry, ok := m.labels[fn.Entry]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUndefinedLabel, fn.Entry)
	}

	// Arguments are evaluated in the caller's frame before the callee's
	// frame exists.
	callee := newFrame()

	for i, arg := range in.Args {
		callee.vals[fn.Params[i]] = m.load(arg)
	}

	callee.retAddr = m.pc + 1
	callee.dst = in.Dst

	m.frames = append(m.frames, callee)
	m.pc = entry

	return nil
}

func (m *Machine) ret() error {
	if len(m.frames) == 1 {
		return fmt.Errorf("%w: RET with no active call frame", ErrStackUnderflow)
	}

	popped := m.frames[len(m.frames)-1]
	m.frames = m.frames[:len(m.frames)-1]

	// An unset t_ret (void function, bare return) yields zero by
	// convention.
	if err := m.store(popped.dst, popped.vals[tempKey(ir.RetTemp)]); err != nil {
		return err
	}

	m.pc = popped.retAddr

	return nil
}

func (m *Machine) top() *frame {
	return m.frames[len(m.frames)-1]
}

// tempKey namespaces temporaries within the frame map so a source variable
// can never collide with an allocator-issued temp.
func tempKey(name string) string {
	return "%" + name
}

func (m *Machine) load(op ir.Operand) int64 {
	switch op.Kind {
	case ir.OperandImm:
		return op.Value
	case ir.OperandTemp:
		return m.top().vals[tempKey(op.Name)]
	case ir.OperandVar:
		if op.Storage == analyzer.StorageGlobal {
			return m.globals[op.Name]
		}

		return m.top().vals[op.Name]
	default:
		return 0
	}
}

func (m *Machine) store(op ir.Operand, val int64) error {
	switch op.Kind {
	case ir.OperandTemp:
		m.top().vals[tempKey(op.Name)] = val
	case ir.OperandVar:
		if op.Storage == analyzer.StorageGlobal {
			m.globals[op.Name] = val
		} else {
			m.top().vals[op.Name] = val
		}
	default:
		return fmt.Errorf("%w: store into %s operand", ErrInvariant, op.Kind)
	}

	return nil
}
