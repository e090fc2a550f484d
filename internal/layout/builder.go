package layout

import (
	"github.com/rs/zerolog"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/metrics"
)

// builder carries the mutable state of one generation run.
type builder struct {
	kind     Kind
	req      Request
	grid     domain.Grid
	slots    domain.SlotMap
	order    []domain.Position
	counters map[domain.VehicleType]int
	warnings []BoundsWarning
	log      *zerolog.Logger

	description string
	entryExit   domain.EntryExit
}

func newBuilder(kind Kind, req Request, rows, cols int, log *zerolog.Logger) *builder {
	return &builder{
		kind:     kind,
		req:      req,
		grid:     domain.NewGrid(rows, cols),
		slots:    make(domain.SlotMap),
		counters: make(map[domain.VehicleType]int),
		log:      log,
	}
}

func (b *builder) total() int { return b.req.CarSlots + b.req.BikeSlots }

func (b *builder) placed() int { return len(b.order) }

func (b *builder) full() bool { return b.placed() >= b.total() }

// setCell writes one cell; out-of-range writes are logged and skipped.
func (b *builder) setCell(row, col, value int) bool {
	if b.grid.Set(row, col, value) {
		return true
	}
	w := BoundsWarning{Row: row, Col: col, Rows: b.grid.Rows(), Cols: b.grid.Cols()}
	b.warnings = append(b.warnings, w)
	metrics.IncBoundsWarning(b.kind.String())
	b.log.Warn().
		Str("template", b.kind.String()).
		Int("row", row).Int("col", col).
		Int("rows", w.Rows).Int("cols", w.Cols).
		Msg("Layout bounds exceeded, cell skipped")
	return false
}

func (b *builder) fillRow(row, fromCol, toCol, value int) {
	for c := fromCol; c <= toCol; c++ {
		b.setCell(row, c, value)
	}
}

func (b *builder) fillCol(col, fromRow, toRow, value int) {
	for r := fromRow; r <= toRow; r++ {
		b.setCell(r, col, value)
	}
}

// nextType applies the cars-then-bikes fill order.
func (b *builder) nextType() domain.VehicleType {
	if b.placed() < b.req.CarSlots {
		return domain.VehicleCar
	}
	return domain.VehicleBike
}

func (b *builder) placeNext(row, col int, direction, zone string) bool {
	return b.place(row, col, b.nextType(), direction, zone)
}

// place turns (row, col) into a slot of type vt. Entry, exit and existing slot
// cells are never overwritten.
func (b *builder) place(row, col int, vt domain.VehicleType, direction, zone string) bool {
	if current, ok := b.grid.At(row, col); ok {
		if current == domain.CellEntry || current == domain.CellExit || current == domain.CellSlot {
			return false
		}
	}
	if !b.setCell(row, col, domain.CellSlot) {
		return false
	}
	pos := domain.Position{Row: row, Col: col}
	idx := b.counters[vt]
	b.counters[vt] = idx + 1
	b.slots[pos] = domain.Slot{
		ID:           pos.ID(),
		SlotNumber:   domain.SlotNumber(idx, vt),
		Status:       domain.SlotAvailable,
		VehicleType:  vt,
		PricePerHour: b.req.PricePerHour,
		Direction:    direction,
		Zone:         zone,
	}
	b.order = append(b.order, pos)
	return true
}

func (b *builder) layout() *domain.Layout {
	l := &domain.Layout{
		TemplateID:   b.kind.String(),
		TemplateName: b.kind.LayoutName(),
		Description:  b.description,
		Grid:         b.grid,
		Slots:        b.slots,
		EntryExit:    b.entryExit,
	}
	l.Recount()
	return l
}
