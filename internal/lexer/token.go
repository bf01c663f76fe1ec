package lexer

import (
	"strconv"
)

type TokenType string

const (
	TypeEOF       TokenType = "EOF"
	TypeIdent     TokenType = "Identifier"
	TypeKeyword   TokenType = "Keyword"
	TypeNumber    TokenType = "Number"
	TypeLparen    TokenType = "LeftParen"  // "("
	TypeRparen    TokenType = "RightParen" // ")"
	TypeLbrace    TokenType = "LeftBrace"  // "{"
	TypeRbrace    TokenType = "RightBrace" // "}"
	TypeComma     TokenType = "Comma"      // ","
	TypeSemicolon TokenType = "Semicolon"  // ";"
	TypeAssign    TokenType = "Assign"     // "="
	TypePlus      TokenType = "Plus"       // "+"
	TypeMinus     TokenType = "Minus"      // "-"
	TypeStar      TokenType = "Star"       // "*"
	TypeSlash     TokenType = "Slash"      // "/"
	TypePercent   TokenType = "Percent"    // "%"
	TypeNot       TokenType = "Not"        // "!"
	TypeEq        TokenType = "Eq"         // "=="
	TypeNe        TokenType = "Ne"         // "!="
	TypeLt        TokenType = "Lt"         // "<"
	TypeLe        TokenType = "Le"         // "<="
	TypeGt        TokenType = "Gt"         // ">"
	TypeGe        TokenType = "Ge"         // ">="
	TypeLogAnd    TokenType = "LogicalAnd" // "&&"
	TypeLogOr     TokenType = "LogicalOr"  // "||"
)

// symbols maps punctuation to TokenType for maximal munch: two-character
// operators are tried before their one-character prefixes.
var symbols = map[string]TokenType{
	"(":  TypeLparen,
	")":  TypeRparen,
	"{":  TypeLbrace,
	"}":  TypeRbrace,
	",":  TypeComma,
	";":  TypeSemicolon,
	"+":  TypePlus,
	"-":  TypeMinus,
	"*":  TypeStar,
	"/":  TypeSlash,
	"%":  TypePercent,
	"=":  TypeAssign,
	"==": TypeEq,
	"!":  TypeNot,
	"!=": TypeNe,
	"<":  TypeLt,
	"<=": TypeLe,
	">":  TypeGt,
	">=": TypeGe,
	"&&": TypeLogAnd,
	"||": TypeLogOr,
}

type Token struct {
	Type       TokenType
	Keyword    Keyword
	Identifier string
	StringVal  string
	NumberVal  int
	Location   Location
}

func NewNumberToken(val string, location Location) (Token, error) {
	num, err := strconv.Atoi(val)
	if err != nil {
		return Token{}, err
	}

	return Token{
		Type:      TypeNumber,
		NumberVal: num,
		StringVal: val,
		Location:  location,
	}, nil
}

func NewIdentOrKeywordToken(val string, location Location) Token {
	kw, ok := checkKeyword(val)
	if !ok {
		// If it's not a keyword, it's an identifier.
		return Token{
			Type:       TypeIdent,
			Identifier: val,
			StringVal:  val,
			Location:   location,
		}
	}

	return Token{
		Type:      TypeKeyword,
		Keyword:   kw,
		StringVal: val,
		Location:  location,
	}
}

func NewSymbolToken(ty TokenType, val string, location Location) Token {
	return Token{
		Type:      ty,
		StringVal: val,
		Location:  location,
	}
}
