package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.mc")
	require.NoError(t, os.WriteFile(path, []byte(`
		int g = 1;
		int main() { return g; }
	`), 0o644))

	l := NewLoader()

	unit, err := l.Load(path)
	require.NoError(t, err)
	require.Len(t, unit.Globals, 1)
	require.Len(t, unit.Funcs, 1)

	// A second load of the same file returns the cached unit.
	again, err := l.Load(path)
	require.NoError(t, err)
	require.Same(t, unit, again)
}

func TestLoadMissing(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "nope.mc"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSource(t *testing.T) {
	unit, err := NewLoader().LoadSource("inline.mc", "int main() { return 0; }")
	require.NoError(t, err)
	require.Len(t, unit.Funcs, 1)
	require.Equal(t, "inline.mc", unit.Path)
}

func TestLoadSourceError(t *testing.T) {
	_, err := NewLoader().LoadSource("inline.mc", "int main() {")
	require.ErrorContains(t, err, "unterminated block")
}

func TestLoadExample(t *testing.T) {
	unit, err := NewLoader().Load(filepath.Join("..", "..", "examples", "example.mc"))
	require.NoError(t, err)
	require.Len(t, unit.Globals, 2)
	require.Len(t, unit.Funcs, 3)
}
