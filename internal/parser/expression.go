package parser

import (
	"github.com/corani/minic/internal/ast"
	"github.com/corani/minic/internal/lexer"
)

// Pratt parser operator info
type opInfo struct {
	precedence int
	kind       ast.BinOpKind
}

var opPrecedence = map[lexer.TokenType]opInfo{
	lexer.TypeLogOr:   {precedence: 1, kind: ast.BinOpLogOr},
	lexer.TypeLogAnd:  {precedence: 2, kind: ast.BinOpLogAnd},
	lexer.TypeEq:      {precedence: 3, kind: ast.BinOpEq},
	lexer.TypeNe:      {precedence: 3, kind: ast.BinOpNe},
	lexer.TypeLt:      {precedence: 4, kind: ast.BinOpLt},
	lexer.TypeLe:      {precedence: 4, kind: ast.BinOpLe},
	lexer.TypeGt:      {precedence: 4, kind: ast.BinOpGt},
	lexer.TypeGe:      {precedence: 4, kind: ast.BinOpGe},
	lexer.TypePlus:    {precedence: 5, kind: ast.BinOpAdd},
	lexer.TypeMinus:   {precedence: 5, kind: ast.BinOpSub},
	lexer.TypeStar:    {precedence: 6, kind: ast.BinOpMul},
	lexer.TypeSlash:   {precedence: 6, kind: ast.BinOpDiv},
	lexer.TypePercent: {precedence: 6, kind: ast.BinOpMod},
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseExpressionPratt(0)
}

// All binary operators are left-associative, so the right-hand side is always
// parsed at one precedence level higher than the operator itself.
func (p *Parser) parseExpressionPratt(minPrec int) (ast.Expression, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		peek := p.peek()

		info, ok := opPrecedence[peek.Type]
		if !ok || info.precedence < minPrec {
			return lhs, nil
		}

		p.next() // consume the operator

		rhs, err := p.parseExpressionPratt(info.precedence + 1)
		if err != nil {
			return nil, err
		}

		lhs = ast.NewBinop(info.kind, lhs, rhs, lhs.Location())
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	switch p.peek().Type {
	case lexer.TypeMinus:
		start := p.next()

		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return ast.NewUnaryOp(ast.UnaryOpMinus, expr, start.Location), nil
	case lexer.TypeNot:
		start := p.next()

		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return ast.NewUnaryOp(ast.UnaryOpNot, expr, start.Location), nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	start := p.next()

	switch start.Type {
	case lexer.TypeNumber:
		return ast.NewIntLiteral(int64(start.NumberVal), start.Location), nil
	case lexer.TypeKeyword:
		switch start.Keyword {
		case lexer.KeywordTrue:
			return ast.NewBoolLiteral(true, start.Location), nil
		case lexer.KeywordFalse:
			return ast.NewBoolLiteral(false, start.Location), nil
		default:
			return nil, start.Location.Errorf("unexpected keyword %q in expression", start.StringVal)
		}
	case lexer.TypeIdent:
		if _, ok := p.acceptType(lexer.TypeLparen); ok {
			return p.parseCall(start)
		}

		return ast.NewVariableRef(start.Identifier, start.Location), nil
	case lexer.TypeLparen:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if _, err := p.expectType(lexer.TypeRparen); err != nil {
			return nil, err
		}

		return expr, nil
	default:
		return nil, start.Location.Errorf("expected start of expression, got %q", start.StringVal)
	}
}

// parseCall parses the argument list of `name(...)`; the identifier and the
// opening paren have already been consumed.
func (p *Parser) parseCall(name lexer.Token) (ast.Expression, error) {
	var args []ast.Expression

	for {
		if _, ok := p.acceptType(lexer.TypeRparen); ok {
			return ast.NewCall(name.Identifier, args, name.Location), nil
		}

		if len(args) > 0 {
			if _, err := p.expectType(lexer.TypeComma); err != nil {
				return nil, err
			}
		}

		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)
	}
}
