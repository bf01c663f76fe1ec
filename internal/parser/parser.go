package parser

import (
	"fmt"
	"strings"

	"github.com/corani/minic/internal/ast"
	"github.com/corani/minic/internal/lexer"
)

type Parser struct {
	tok   []lexer.Token
	index int
	unit  *ast.CompilationUnit
}

func New(path string, tok []lexer.Token) *Parser {
	var loc lexer.Location
	if len(tok) > 0 {
		loc = tok[0].Location
	}

	return &Parser{
		tok:   tok,
		index: 0,
		unit:  ast.NewCompilationUnit(path, loc),
	}
}

// Parse consumes the whole token stream and returns the compilation unit:
// a sequence of global declarations and function definitions.
func (p *Parser) Parse() (*ast.CompilationUnit, error) {
	for !p.atEOF() {
		ty, err := p.parseType()
		if err != nil {
			return p.unit, err
		}

		name, err := p.expectType(lexer.TypeIdent)
		if err != nil {
			return p.unit, err
		}

		next, err := p.expectType(lexer.TypeAssign, lexer.TypeLparen)
		if err != nil {
			return p.unit, err
		}

		switch next.Type {
		case lexer.TypeAssign:
			// Global declaration: `int g = 42;`
			if ty.Kind == ast.TypeVoid {
				return p.unit, ty.Location().Errorf("global %q cannot have type void", name.Identifier)
			}

			value, err := p.parseExpression()
			if err != nil {
				return p.unit, err
			}

			if _, err := p.expectType(lexer.TypeSemicolon); err != nil {
				return p.unit, err
			}

			p.unit.Globals = append(p.unit.Globals,
				ast.NewDeclare(name.Identifier, ty, value, name.Location))
		case lexer.TypeLparen:
			// Function definition: `int add(int x, int y) { ... }`
			fn, err := p.parseFunc(name, ty)
			if err != nil {
				return p.unit, err
			}

			p.unit.Funcs = append(p.unit.Funcs, fn)
		}
	}

	return p.unit, nil
}

func (p *Parser) parseFunc(name lexer.Token, retTy *ast.Type) (*ast.FuncDef, error) {
	fn := ast.NewFuncDef(name.Identifier, retTy, name.Location)

	// Parameter list; the opening paren has already been consumed.
	for {
		if _, ok := p.acceptType(lexer.TypeRparen); ok {
			break
		}

		if len(fn.Params) > 0 {
			if _, err := p.expectType(lexer.TypeComma); err != nil {
				return nil, err
			}
		}

		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}

		if ty.Kind == ast.TypeVoid {
			return nil, ty.Location().Errorf("parameter cannot have type void")
		}

		ident, err := p.expectType(lexer.TypeIdent)
		if err != nil {
			return nil, err
		}

		fn.Params = append(fn.Params,
			ast.NewFuncParam(ident.Identifier, ty, ident.Location))
	}

	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	fn.Body = body

	return fn, nil
}

func (p *Parser) parseBody() (*ast.Body, error) {
	open, err := p.expectType(lexer.TypeLbrace)
	if err != nil {
		return nil, err
	}

	body := ast.NewBody(open.Location)

	for {
		if _, ok := p.acceptType(lexer.TypeRbrace); ok {
			return body, nil
		}

		if p.atEOF() {
			return nil, open.Location.Errorf("unterminated block")
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		body.Statements = append(body.Statements, stmt)
	}
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	start := p.peek()

	switch {
	case start.Type == lexer.TypeKeyword:
		switch start.Keyword {
		case lexer.KeywordInt, lexer.KeywordBool:
			return p.parseDeclare()
		case lexer.KeywordIf:
			return p.parseIf()
		case lexer.KeywordWhile:
			return p.parseWhile()
		case lexer.KeywordReturn:
			return p.parseReturn()
		case lexer.KeywordTrue, lexer.KeywordFalse:
			return p.parseExprStmt()
		default:
			return nil, start.Location.Errorf("unexpected keyword %q", start.StringVal)
		}
	case start.Type == lexer.TypeIdent && p.peekAt(1).Type == lexer.TypeAssign:
		return p.parseAssign()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseDeclare() (ast.Statement, error) {
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}

	name, err := p.expectType(lexer.TypeIdent)
	if err != nil {
		return nil, err
	}

	if _, err := p.expectType(lexer.TypeAssign); err != nil {
		return nil, err
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectType(lexer.TypeSemicolon); err != nil {
		return nil, err
	}

	return ast.NewDeclare(name.Identifier, ty, value, name.Location), nil
}

func (p *Parser) parseAssign() (ast.Statement, error) {
	name, err := p.expectType(lexer.TypeIdent)
	if err != nil {
		return nil, err
	}

	if _, err := p.expectType(lexer.TypeAssign); err != nil {
		return nil, err
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectType(lexer.TypeSemicolon); err != nil {
		return nil, err
	}

	return ast.NewAssign(name.Identifier, value, name.Location), nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	start, err := p.expectKeyword(lexer.KeywordIf)
	if err != nil {
		return nil, err
	}

	if _, err := p.expectType(lexer.TypeLparen); err != nil {
		return nil, err
	}

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectType(lexer.TypeRparen); err != nil {
		return nil, err
	}

	then, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	var els *ast.Body

	if p.acceptKeyword(lexer.KeywordElse) {
		els, err = p.parseBody()
		if err != nil {
			return nil, err
		}
	}

	return ast.NewIf(cond, then, els, start.Location), nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	start, err := p.expectKeyword(lexer.KeywordWhile)
	if err != nil {
		return nil, err
	}

	if _, err := p.expectType(lexer.TypeLparen); err != nil {
		return nil, err
	}

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectType(lexer.TypeRparen); err != nil {
		return nil, err
	}

	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	return ast.NewWhile(cond, body, start.Location), nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	start, err := p.expectKeyword(lexer.KeywordReturn)
	if err != nil {
		return nil, err
	}

	if _, ok := p.acceptType(lexer.TypeSemicolon); ok {
		return ast.NewReturn(nil, start.Location), nil
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectType(lexer.TypeSemicolon); err != nil {
		return nil, err
	}

	return ast.NewReturn(value, start.Location), nil
}

func (p *Parser) parseExprStmt() (ast.Statement, error) {
	start := p.peek()

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectType(lexer.TypeSemicolon); err != nil {
		return nil, err
	}

	return ast.NewExprStmt(expr, start.Location), nil
}

func (p *Parser) parseType() (*ast.Type, error) {
	tok, err := p.expectType(lexer.TypeKeyword)
	if err != nil {
		return nil, err
	}

	switch tok.Keyword {
	case lexer.KeywordInt:
		return ast.NewType(ast.TypeInt, tok.Location), nil
	case lexer.KeywordBool:
		return ast.NewType(ast.TypeBool, tok.Location), nil
	case lexer.KeywordVoid:
		return ast.NewType(ast.TypeVoid, tok.Location), nil
	default:
		return nil, tok.Location.Errorf("expected type, got %q", tok.StringVal)
	}
}

// --- token stream helpers ---

func (p *Parser) atEOF() bool {
	return p.index >= len(p.tok)
}

func (p *Parser) peek() lexer.Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(offset int) lexer.Token {
	if p.index+offset >= len(p.tok) {
		loc := lexer.Location{Filename: p.unit.Path}
		if len(p.tok) > 0 {
			loc = p.tok[len(p.tok)-1].Location
		}

		return lexer.Token{Type: lexer.TypeEOF, Location: loc}
	}

	return p.tok[p.index+offset]
}

func (p *Parser) next() lexer.Token {
	tok := p.peek()

	if !p.atEOF() {
		p.index++
	}

	return tok
}

func (p *Parser) expectType(types ...lexer.TokenType) (lexer.Token, error) {
	tok := p.next()

	for _, ty := range types {
		if tok.Type == ty {
			return tok, nil
		}
	}

	var names []string
	for _, ty := range types {
		names = append(names, string(ty))
	}

	return tok, fmt.Errorf("expected %s at %s, got %q",
		strings.Join(names, " or "), tok.Location, tok.StringVal)
}

func (p *Parser) expectKeyword(kw lexer.Keyword) (lexer.Token, error) {
	tok := p.next()

	if tok.Type != lexer.TypeKeyword || tok.Keyword != kw {
		return tok, fmt.Errorf("expected keyword %q at %s, got %q",
			kw, tok.Location, tok.StringVal)
	}

	return tok, nil
}

func (p *Parser) acceptType(ty lexer.TokenType) (lexer.Token, bool) {
	if p.peek().Type == ty {
		return p.next(), true
	}

	return lexer.Token{}, false
}

func (p *Parser) acceptKeyword(kw lexer.Keyword) bool {
	tok := p.peek()

	if tok.Type == lexer.TypeKeyword && tok.Keyword == kw {
		p.next()

		return true
	}

	return false
}
