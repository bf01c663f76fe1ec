package lexer

import (
	"errors"
	"io"
)

type Lexer struct {
	scan *Scanner
}

func NewLexer(scan *Scanner) *Lexer {
	return &Lexer{scan: scan}
}

func (t *Lexer) Tokens() ([]Token, error) {
	var tokens []Token

	for {
		token, err := t.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return tokens, nil
			}

			return nil, err
		}

		tokens = append(tokens, token)
	}
}

func (t *Lexer) Next() (Token, error) {
	for {
		c, err := t.scan.Next()
		if err != nil {
			return Token{}, err // EOF
		}

		start := t.scan.Location()

		switch {
		case isWhitespace(c):
			continue
		case c == '/':
			c2, err := t.scan.Next()
			if err != nil {
				// EOF, we still want to return the token
				return NewSymbolToken(TypeSlash, "/", start), nil
			}

			switch c2 {
			case '/':
				t.skipLineComment()
				continue
			case '*':
				if err := t.skipBlockComment(start); err != nil {
					return Token{}, err
				}
				continue
			default:
				t.scan.Unread(1)
				return NewSymbolToken(TypeSlash, "/", start), nil
			}
		case isDigit(c):
			buf := []byte{c}

			for {
				c, err = t.scan.Next()
				if err != nil {
					break // EOF
				}
				if !isDigit(c) {
					t.scan.Unread(1)
					break
				}
				buf = append(buf, c)
			}

			return NewNumberToken(string(buf), start)
		case isAlpha(c):
			buf := []byte{c}

			for {
				c, err = t.scan.Next()
				if err != nil {
					break // EOF
				}
				if !isAlpha(c) && !isDigit(c) {
					t.scan.Unread(1)
					break
				}
				buf = append(buf, c)
			}

			return NewIdentOrKeywordToken(string(buf), start), nil
		default:
			// Maximal munch: try the two-character symbol first.
			if c2, err := t.scan.Next(); err == nil {
				two := string([]byte{c, c2})
				if ty, ok := symbols[two]; ok {
					return NewSymbolToken(ty, two, start), nil
				}
				t.scan.Unread(1)
			}

			one := string(c)
			if ty, ok := symbols[one]; ok {
				return NewSymbolToken(ty, one, start), nil
			}

			return Token{}, start.Errorf("unexpected character %q", string(c))
		}
	}
}

func (t *Lexer) skipLineComment() {
	for {
		c, err := t.scan.Next()
		if err != nil {
			return // EOF
		}
		if c == '\n' {
			return
		}
	}
}

func (t *Lexer) skipBlockComment(start Location) error {
	var prev byte

	for {
		c, err := t.scan.Next()
		if err != nil {
			return start.Errorf("unterminated block comment")
		}
		if prev == '*' && c == '/' {
			return nil
		}
		prev = c
	}
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
