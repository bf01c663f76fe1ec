package lexer

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScannerNext(t *testing.T) {
	scan, err := NewScanner("test.mc", strings.NewReader("ab"))
	require.NoError(t, err)

	b, err := scan.Next()
	require.NoError(t, err)
	require.Equal(t, byte('a'), b)

	b, err = scan.Next()
	require.NoError(t, err)
	require.Equal(t, byte('b'), b)

	_, err = scan.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestScannerLocation(t *testing.T) {
	scan, err := NewScanner("test.mc", strings.NewReader("ab\ncd"))
	require.NoError(t, err)

	require.Equal(t, Location{"test.mc", 1, 0}, scan.Location())

	want := []Location{
		{"test.mc", 1, 1}, // a
		{"test.mc", 1, 2}, // b
		{"test.mc", 2, 0}, // newline
		{"test.mc", 2, 1}, // c
		{"test.mc", 2, 2}, // d
	}

	for _, loc := range want {
		_, err := scan.Next()
		require.NoError(t, err)
		require.Equal(t, loc, scan.Location())
	}
}

func TestScannerUnread(t *testing.T) {
	scan, err := NewScanner("test.mc", strings.NewReader("ab"))
	require.NoError(t, err)

	_, err = scan.Next()
	require.NoError(t, err)
	_, err = scan.Next()
	require.NoError(t, err)

	scan.Unread(1)
	require.Equal(t, Location{"test.mc", 1, 1}, scan.Location())

	// The unread byte is served again.
	b, err := scan.Next()
	require.NoError(t, err)
	require.Equal(t, byte('b'), b)

	// Out-of-range counts are ignored.
	scan.Unread(-1)
	scan.Unread(100)
	require.Equal(t, Location{"test.mc", 1, 2}, scan.Location())
}

// Stepping back over a newline must restore the previous line's column, the
// path the lexer hits when a lookahead byte turns out to be a line break.
func TestScannerUnreadAcrossNewline(t *testing.T) {
	scan, err := NewScanner("test.mc", strings.NewReader("xy\nz"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ { // x, y, newline
		_, err := scan.Next()
		require.NoError(t, err)
	}

	require.Equal(t, Location{"test.mc", 2, 0}, scan.Location())

	scan.Unread(1)
	require.Equal(t, Location{"test.mc", 1, 2}, scan.Location())

	b, err := scan.Next()
	require.NoError(t, err)
	require.Equal(t, byte('\n'), b)
	require.Equal(t, Location{"test.mc", 2, 0}, scan.Location())
}
