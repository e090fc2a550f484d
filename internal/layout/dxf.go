package layout

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

const (
	DXFTemplateID   = "dxf-import"
	DXFTemplateName = "DXF Imported Layout"

	dxfMinCells  = 6
	dxfMaxCells  = 20
	dxfBaseCells = 8
)

type Point struct {
	X float64
	Y float64
}

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// ParseDXF extracts LWPOLYLINE and POLYLINE vertices (group codes 10/20) from
// an ASCII DXF drawing.
func ParseDXF(r io.Reader) ([][]Point, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dxf: %w", err)
	}

	var polylines [][]Point
	for i := 0; i < len(lines); {
		if lines[i] != "LWPOLYLINE" && lines[i] != "POLYLINE" {
			i++
			continue
		}
		entity := lines[i]
		i++
		var verts []Point
		// group code / value pairs until the entity ends; old-style POLYLINE
		// carries its points in VERTEX sub-entities up to SEQEND.
		for i+1 < len(lines) {
			if lines[i] == "0" {
				if entity == "POLYLINE" && lines[i+1] == "VERTEX" {
					i += 2
					continue
				}
				break
			}
			if lines[i] == "10" {
				x, errX := strconv.ParseFloat(lines[i+1], 64)
				if y, ok := findGroup(lines, i+2, "20"); ok && errX == nil {
					p := Point{X: x, Y: y}
					if !p.finite() {
						return nil, &InputError{Op: "import dxf", Msg: fmt.Sprintf("non-finite vertex (%v, %v)", x, y)}
					}
					verts = append(verts, p)
				}
			}
			i += 2
		}
		if len(verts) > 0 {
			polylines = append(polylines, verts)
		}
	}
	return polylines, nil
}

func findGroup(lines []string, from int, code string) (float64, bool) {
	for j := from; j+1 < len(lines); j += 2 {
		if lines[j] == "0" {
			return 0, false
		}
		if lines[j] == code {
			v, err := strconv.ParseFloat(lines[j+1], 64)
			return v, err == nil
		}
	}
	return 0, false
}

// FromPolylines rasterizes polyline vertices onto a grid sized from the
// drawing's aspect ratio. Every vertex cell becomes a car slot.
func FromPolylines(polylines [][]Point, pricePerHour float64) (*domain.Layout, error) {
	var pts []Point
	for _, p := range polylines {
		pts = append(pts, p...)
	}
	if len(pts) == 0 {
		return nil, &InputError{Op: "import dxf", Msg: "drawing has no polyline vertices"}
	}
	for _, p := range pts {
		if !p.finite() {
			return nil, &InputError{Op: "import dxf", Msg: fmt.Sprintf("non-finite vertex (%v, %v)", p.X, p.Y)}
		}
	}
	if !(pricePerHour > 0) || math.IsInf(pricePerHour, 0) {
		pricePerHour = DefaultPricePerHour
	}

	minX, maxX, minY, maxY := pts[0].X, pts[0].X, pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	w, h := maxX-minX, maxY-minY
	cols := clampCells(math.Round(w / math.Max(1, h) * dxfBaseCells))
	rows := clampCells(math.Round(h / math.Max(1, w) * dxfBaseCells))

	grid := domain.NewGrid(rows, cols)
	slots := make(domain.SlotMap)
	for _, p := range pts {
		col := int(math.Floor((p.X - minX) / nonZero(w) * float64(cols-1)))
		row := int(math.Floor((p.Y - minY) / nonZero(h) * float64(rows-1)))
		if v, ok := grid.At(row, col); !ok || v != domain.CellLane {
			continue
		}
		grid.Set(row, col, domain.CellSlot)
		pos := domain.Position{Row: row, Col: col}
		slots[pos] = domain.Slot{
			ID:           pos.ID(),
			SlotNumber:   "S" + strconv.Itoa(len(slots)+1),
			Status:       domain.SlotAvailable,
			VehicleType:  domain.VehicleCar,
			PricePerHour: pricePerHour,
		}
	}

	l := &domain.Layout{
		TemplateID:   DXFTemplateID,
		TemplateName: DXFTemplateName,
		Grid:         grid,
		Slots:        slots,
		EntryExit:    domain.EntryExit{Entry: "bottom", Exit: "bottom"},
	}
	l.Recount()
	return l, nil
}

func clampCells(v float64) int {
	return int(math.Min(dxfMaxCells, math.Max(dxfMinCells, v)))
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
