package lexer

import (
	"io"
)

// Scanner is a byte source over a fully buffered input. It tracks the
// line/column of the most recently read byte incrementally, so Location is
// O(1) no matter how large the input grows.
type Scanner struct {
	filename string
	data     []byte
	index    int
	line     int
	column   int
}

func NewScanner(filename string, r io.Reader) (*Scanner, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return &Scanner{
		filename: filename,
		data:     data,
		line:     1,
	}, nil
}

func (s *Scanner) Next() (byte, error) {
	if s.index >= len(s.data) {
		return 0, io.EOF
	}

	b := s.data[s.index]
	s.index++

	if b == '\n' {
		s.line++
		s.column = 0
	} else {
		s.column++
	}

	return b, nil
}

// Unread steps back over the given number of bytes, rewinding the position
// tracking with them. An out-of-range count is ignored.
func (s *Scanner) Unread(count int) {
	if count < 0 || count > s.index {
		return
	}

	for i := 0; i < count; i++ {
		s.index--

		if s.data[s.index] == '\n' {
			s.line--
			s.column = s.columnAt(s.index)
		} else {
			s.column--
		}
	}
}

// Location returns the position of the most recently read byte.
func (s *Scanner) Location() Location {
	return Location{
		Filename: s.filename,
		Line:     s.line,
		Column:   s.column,
	}
}

// columnAt counts the bytes between the previous newline and the given
// offset. Only reached when an Unread crosses a line boundary, which the
// lexer never does more than one byte at a time.
func (s *Scanner) columnAt(idx int) int {
	col := 0

	for j := idx - 1; j >= 0 && s.data[j] != '\n'; j-- {
		col++
	}

	return col
}
