package layout

import "fmt"

// InputError rejects a single generation or placement call.
type InputError struct {
	Op  string
	Msg string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// BoundsWarning records a cell write that fell outside the grid and was skipped.
type BoundsWarning struct {
	Row  int
	Col  int
	Rows int
	Cols int
}

func (w BoundsWarning) String() string {
	return fmt.Sprintf("cell %d-%d outside %dx%d grid", w.Row, w.Col, w.Rows, w.Cols)
}
