package loader

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/corani/minic/internal/ast"
	"github.com/corani/minic/internal/lexer"
	"github.com/corani/minic/internal/parser"
)

type Loader struct {
	visited map[string]*ast.CompilationUnit
}

func NewLoader() *Loader {
	return &Loader{
		visited: make(map[string]*ast.CompilationUnit),
	}
}

// Load parses the given file into a compilation unit. Repeated loads of the
// same file return the cached unit.
func (l *Loader) Load(filename string) (*ast.CompilationUnit, error) {
	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}

	if cu, ok := l.visited[absPath]; ok {
		return cu, nil // already parsed
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cu, err := parse(absPath, f)
	if err != nil {
		return nil, err
	}

	l.visited[absPath] = cu

	return cu, nil
}

// LoadSource parses in-memory source, mainly for tests and the cache key
// path. The path only labels locations in diagnostics.
func (l *Loader) LoadSource(path, source string) (*ast.CompilationUnit, error) {
	return parse(path, strings.NewReader(source))
}

func parse(path string, r io.Reader) (*ast.CompilationUnit, error) {
	scanner, err := lexer.NewScanner(path, r)
	if err != nil {
		return nil, err
	}

	tokens, err := lexer.NewLexer(scanner).Tokens()
	if err != nil {
		return nil, err
	}

	cu, err := parser.New(path, tokens).Parse()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return cu, nil
}
