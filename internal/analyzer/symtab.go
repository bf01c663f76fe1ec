package analyzer

import (
	"errors"
	"fmt"

	"github.com/corani/minic/internal/ast"
)

// Compile-time faults. Lowering aborts on any of these; no partial IR is
// considered valid.
var (
	ErrDuplicateDeclaration = errors.New("duplicate declaration")
	ErrUnresolvedIdentifier = errors.New("unresolved identifier")
	ErrArityMismatch        = errors.New("arity mismatch")
	ErrMissingReturn        = errors.New("missing return")
)

// StorageClass decides how a variable reference is turned into an operand:
// globals live in the single global store, locals in the current frame.
type StorageClass string

const (
	StorageGlobal StorageClass = "global"
	StorageLocal  StorageClass = "local"
)

// Symbol represents a variable, parameter or function.
type Symbol struct {
	Name    string
	Type    *ast.Type
	Storage StorageClass
	Slot    int
	IsFunc  bool
	FuncDef *ast.FuncDef // Only set if IsFunc
}

func NewSymbolFunc(name string, def *ast.FuncDef) *Symbol {
	return &Symbol{
		Name:    name,
		Type:    def.ReturnType,
		Storage: StorageGlobal,
		IsFunc:  true,
		FuncDef: def,
	}
}

func NewSymbolVariable(name string, ty *ast.Type, storage StorageClass) *Symbol {
	return &Symbol{
		Name:    name,
		Type:    ty,
		Storage: storage,
		IsFunc:  false,
	}
}

// SymbolTable is a scope-stack name resolver. The outermost scope holds the
// globals and outlives all function scopes; each function pushes one scope
// for its parameters and one nested scope per block.
type SymbolTable struct {
	scopes     []map[string]*Symbol
	globalSlot int
	localSlot  int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

func (st *SymbolTable) EnterScope() {
	st.scopes = append(st.scopes, make(map[string]*Symbol))
}

// ExitScope pops the innermost scope. Exiting without a matching EnterScope
// is a bug in the caller, not a user-facing condition.
func (st *SymbolTable) ExitScope() {
	if len(st.scopes) == 0 {
		panic("analyzer: ExitScope without matching EnterScope")
	}

	st.scopes = st.scopes[:len(st.scopes)-1]
}

// Depth returns the number of open scopes.
func (st *SymbolTable) Depth() int {
	return len(st.scopes)
}

// Declare adds a symbol to the current scope and assigns its storage slot.
// Redeclaring a name in the same scope fails; shadowing an outer scope is
// allowed.
func (st *SymbolTable) Declare(sym *Symbol) (*Symbol, error) {
	if len(st.scopes) == 0 {
		panic("analyzer: Declare without an open scope")
	}

	scope := st.scopes[len(st.scopes)-1]

	if _, ok := scope[sym.Name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateDeclaration, sym.Name)
	}

	if !sym.IsFunc {
		switch sym.Storage {
		case StorageGlobal:
			sym.Slot = st.globalSlot
			st.globalSlot++
		case StorageLocal:
			sym.Slot = st.localSlot
			st.localSlot++
		}
	}

	scope[sym.Name] = sym

	return sym, nil
}

// Resolve walks the scopes from innermost to outermost.
func (st *SymbolTable) Resolve(name string) (*Symbol, error) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if sym, ok := st.scopes[i][name]; ok {
			return sym, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnresolvedIdentifier, name)
}
