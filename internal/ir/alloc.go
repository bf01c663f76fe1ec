package ir

import "fmt"

// Alloc issues unique temporary names and unique control-flow labels. Both
// counters are monotonic for the whole compilation and never reset, so
// temporaries are unique within every function and labels are unique across
// the whole program. Determinism of the numbering is a tested property.
type Alloc struct {
	temp  int
	label int
}

func NewAlloc() *Alloc {
	return &Alloc{}
}

// FreshTemp returns the next temporary: t1, t2, ...
func (a *Alloc) FreshTemp() Operand {
	a.temp++

	return NewTemp(fmt.Sprintf("t%d", a.temp))
}

// FreshLabel returns the next label for the given human-readable kind, e.g.
// while_start_3.
func (a *Alloc) FreshLabel(kind string) string {
	a.label++

	return fmt.Sprintf("%s_%d", kind, a.label)
}
