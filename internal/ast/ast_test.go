package ast

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corani/minic/internal/lexer"
)

func TestTypeEqual(t *testing.T) {
	loc := lexer.Location{}

	intTy := NewType(TypeInt, loc)
	boolTy := NewType(TypeBool, loc)

	require.True(t, intTy.Equal(NewType(TypeInt, loc)))
	require.False(t, intTy.Equal(boolTy))
	require.False(t, intTy.Equal(nil))

	var nilTy *Type
	require.False(t, nilTy.Equal(intTy))
}

func TestTypeString(t *testing.T) {
	loc := lexer.Location{}

	require.Equal(t, "int", NewType(TypeInt, loc).String())
	require.Equal(t, "bool", NewType(TypeBool, loc).String())
	require.Equal(t, "void", NewType(TypeVoid, loc).String())
}

func TestString(t *testing.T) {
	loc := lexer.Location{}

	tt := []struct {
		name string
		node fmt.Stringer
		want string
	}{
		{
			name: "declare",
			node: NewDeclare("x", NewType(TypeInt, loc), NewIntLiteral(5, loc), loc),
			want: `(declare "x" int 5)`,
		},
		{
			name: "assign binop",
			node: NewAssign("x",
				NewBinop(BinOpAdd, NewVariableRef("x", loc), NewIntLiteral(3, loc), loc), loc),
			want: `(assign "x" (+ (ref "x") 3))`,
		},
		{
			name: "bool literal",
			node: NewBoolLiteral(true, loc),
			want: "true",
		},
		{
			name: "unary not",
			node: NewUnaryOp(UnaryOpNot, NewVariableRef("b", loc), loc),
			want: `(! (ref "b"))`,
		},
		{
			name: "call",
			node: NewCall("add", []Expression{
				NewIntLiteral(2, loc),
				NewIntLiteral(3, loc),
			}, loc),
			want: `(call "add" 2 3)`,
		},
		{
			name: "bare return",
			node: NewReturn(nil, loc),
			want: "(return)",
		},
		{
			name: "while",
			node: NewWhile(
				NewBinop(BinOpLt, NewVariableRef("x", loc), NewIntLiteral(10, loc), loc),
				NewBody(loc), loc),
			want: `(while (< (ref "x") 10) (body ))`,
		},
	}

	for _, tc := range tt {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.node.String())
		})
	}
}
