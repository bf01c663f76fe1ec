package ast

import (
	"github.com/corani/minic/internal/lexer"
)

// TypeKind represents the scalar types in the language.
type TypeKind int

const (
	TypeUnknown TypeKind = iota
	TypeInt
	TypeBool
	TypeVoid
)

type Type struct {
	Kind TypeKind
	Loc  lexer.Location
}

func NewType(kind TypeKind, location lexer.Location) *Type {
	return &Type{
		Kind: kind,
		Loc:  location,
	}
}

func (t *Type) Location() lexer.Location {
	return t.Loc
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind {
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeVoid:
		return "void"
	default:
		return "unknown"
	}
}

// Equal reports whether two types have the same kind. A nil type is not
// equal to anything, including another nil type.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return false
	}

	return t.Kind == other.Kind
}
