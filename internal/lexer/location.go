package lexer

import "fmt"

// Location is a position in a source file, carried on every token and AST
// node so diagnostics can point back at the source.
type Location struct {
	Filename     string
	Line, Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Filename, l.Line, l.Column)
}

// Errorf returns an error prefixed with the location.
func (l Location) Errorf(format string, args ...any) error {
	return fmt.Errorf("%s: "+format, append([]any{l}, args...)...)
}
