package driver

import (
	"os"

	"github.com/corani/minic/internal/analyzer"
	"github.com/corani/minic/internal/ast"
	"github.com/corani/minic/internal/codegen"
	"github.com/corani/minic/internal/ir"
	"github.com/corani/minic/internal/loader"
)

// Result is the output of one compilation: the checked tree, the lowered
// program and its rendered listing. A listing served from the cache carries
// no tree or program.
type Result struct {
	Unit    *ast.CompilationUnit
	Program *ir.Program
	Listing string
}

// Compile runs the whole pipeline on a source file: load, check, lower,
// render.
func Compile(filename string) (*Result, error) {
	unit, err := loader.NewLoader().Load(filename)
	if err != nil {
		return nil, err
	}

	return compile(unit)
}

// CompileSource runs the pipeline on in-memory source; the path only labels
// diagnostics.
func CompileSource(path, source string) (*Result, error) {
	unit, err := loader.NewLoader().LoadSource(path, source)
	if err != nil {
		return nil, err
	}

	return compile(unit)
}

// CompileCached consults the listing cache before compiling. The cache key is
// the file's content, so any edit misses. A nil cache degrades to Compile.
func CompileCached(filename string, cache *ListingCache) (*Result, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	key := cacheKey(src)

	var payload ListingPayload

	// A hit skips the whole pipeline: only the listing is cached, so Unit
	// and Program are nil on the returned result.
	if ok, err := cache.Get(key, &payload); err == nil && ok {
		return &Result{Listing: payload.Listing}, nil
	}

	res, err := CompileSource(filename, string(src))
	if err != nil {
		return nil, err
	}

	// Best-effort: a failed cache write never fails the build.
	_ = cache.Put(key, &ListingPayload{
		Schema:  listingCacheSchemaVersion,
		Path:    filename,
		Listing: res.Listing,
	})

	return res, nil
}

func compile(unit *ast.CompilationUnit) (*Result, error) {
	if err := analyzer.Check(unit); err != nil {
		return nil, err
	}

	prog, err := ir.Lower(unit)
	if err != nil {
		return nil, err
	}

	return &Result{
		Unit:    unit,
		Program: prog,
		Listing: codegen.Listing(prog),
	}, nil
}
