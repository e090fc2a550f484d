package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell values stored in a Grid.
const (
	CellLane      = 0
	CellSlot      = 1
	CellEntry     = 2
	CellExit      = 3
	CellSeparator = 4
)

// Grid is a rows x cols matrix of cell codes. It marshals as a plain 2D int array.
type Grid [][]int

func NewGrid(rows, cols int) Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	g := make(Grid, rows)
	for r := range g {
		g[r] = make([]int, cols)
	}
	return g
}

func (g Grid) Rows() int { return len(g) }

func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

func (g Grid) InBounds(row, col int) bool {
	return row >= 0 && row < len(g) && col >= 0 && col < len(g[row])
}

// At returns the cell value and whether (row, col) is inside the grid.
func (g Grid) At(row, col int) (int, bool) {
	if !g.InBounds(row, col) {
		return 0, false
	}
	return g[row][col], true
}

// Set writes value at (row, col). Out-of-range writes are skipped and report false.
func (g Grid) Set(row, col, value int) bool {
	if !g.InBounds(row, col) {
		return false
	}
	g[row][col] = value
	return true
}

func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for r := range g {
		out[r] = append([]int(nil), g[r]...)
	}
	return out
}

// SlotCells lists every position holding CellSlot in row-major order.
func (g Grid) SlotCells() []Position {
	var cells []Position
	for r := range g {
		for c := range g[r] {
			if g[r][c] == CellSlot {
				cells = append(cells, Position{Row: r, Col: c})
			}
		}
	}
	return cells
}

// Position addresses one grid cell.
type Position struct {
	Row int
	Col int
}

// ID is the persisted "row-col" key.
func (p Position) ID() string {
	return strconv.Itoa(p.Row) + "-" + strconv.Itoa(p.Col)
}

func (p Position) String() string { return p.ID() }

// Less orders positions row-major.
func (p Position) Less(o Position) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Col < o.Col
}

// ParsePosition decodes a "row-col" key.
func ParsePosition(id string) (Position, error) {
	rowPart, colPart, ok := strings.Cut(id, "-")
	if !ok {
		return Position{}, fmt.Errorf("position id %q is not in row-col form", id)
	}
	row, err := strconv.Atoi(rowPart)
	if err != nil {
		return Position{}, fmt.Errorf("position id %q: bad row: %w", id, err)
	}
	col, err := strconv.Atoi(colPart)
	if err != nil {
		return Position{}, fmt.Errorf("position id %q: bad col: %w", id, err)
	}
	if row < 0 || col < 0 {
		return Position{}, fmt.Errorf("position id %q is negative", id)
	}
	return Position{Row: row, Col: col}, nil
}
