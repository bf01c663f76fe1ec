package lexer

import "slices"

type Keyword string

const (
	KeywordInt    Keyword = "int"
	KeywordBool   Keyword = "bool"
	KeywordVoid   Keyword = "void"
	KeywordIf     Keyword = "if"
	KeywordElse   Keyword = "else"
	KeywordWhile  Keyword = "while"
	KeywordReturn Keyword = "return"
	KeywordTrue   Keyword = "true"
	KeywordFalse  Keyword = "false"
)

var keywords = []Keyword{
	KeywordInt,
	KeywordBool,
	KeywordVoid,
	KeywordIf,
	KeywordElse,
	KeywordWhile,
	KeywordReturn,
	KeywordTrue,
	KeywordFalse,
}

func checkKeyword(ident string) (Keyword, bool) {
	if slices.Contains(keywords, Keyword(ident)) {
		return Keyword(ident), true
	}

	return "", false
}
