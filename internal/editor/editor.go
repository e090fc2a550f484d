// Package editor applies interactive edits to a layout before it is saved.
package editor

import (
	"fmt"
	"math"
	"strconv"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/layout"
)

type Mode string

const (
	ModeSelect Mode = "select"
	ModeAdd    Mode = "add"
	ModeDelete Mode = "delete"
	ModeMove   Mode = "move"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeSelect, ModeAdd, ModeDelete, ModeMove:
		return true
	}
	return false
}

const (
	ManualTemplateID   = "manual-blank"
	ManualTemplateName = "Manual Layout"
	CustomTemplateID   = "custom"
	CustomTemplateName = "Custom Layout"

	blankDefaultCars = 6
	blankMinRows     = 6
	blankMinCols     = 8
)

// Editor holds a working copy of a layout plus the interaction state. It is not
// safe for concurrent use.
type Editor struct {
	layout       *domain.Layout
	mode         Mode
	moveFrom     *domain.Position
	newSlotType  domain.VehicleType
	pricePerHour float64
}

// New starts an editing session on a copy of l. New slots are priced at
// pricePerHour, or the default when it is not positive.
func New(l *domain.Layout, pricePerHour float64) *Editor {
	if pricePerHour <= 0 {
		pricePerHour = layout.DefaultPricePerHour
	}
	working := &domain.Layout{Slots: make(domain.SlotMap)}
	if l != nil {
		working = l.Clone()
		if working.Slots == nil {
			working.Slots = make(domain.SlotMap)
		}
	}
	return &Editor{
		layout:       working,
		mode:         ModeSelect,
		newSlotType:  domain.VehicleCar,
		pricePerHour: pricePerHour,
	}
}

func (e *Editor) Mode() Mode { return e.mode }

func (e *Editor) NewSlotType() domain.VehicleType { return e.newSlotType }

// MoveSource returns the pending move source, if any.
func (e *Editor) MoveSource() (domain.Position, bool) {
	if e.moveFrom == nil {
		return domain.Position{}, false
	}
	return *e.moveFrom, true
}

// SetMode switches modes and drops any pending move source.
func (e *Editor) SetMode(m Mode) error {
	if !m.Valid() {
		return &layout.InputError{Op: "set mode", Msg: fmt.Sprintf("unknown mode %q", m)}
	}
	e.mode = m
	e.moveFrom = nil
	return nil
}

func (e *Editor) SetNewSlotType(vt domain.VehicleType) error {
	if !vt.Valid() {
		return &layout.InputError{Op: "set slot type", Msg: fmt.Sprintf("unknown vehicle type %q", vt)}
	}
	e.newSlotType = vt
	return nil
}

// Click handles a click on (row, col) in the current mode and reports whether
// the layout changed.
func (e *Editor) Click(row, col int) (bool, error) {
	if !e.layout.Grid.InBounds(row, col) {
		return false, &layout.InputError{
			Op:  "click",
			Msg: fmt.Sprintf("cell %d-%d outside %dx%d grid", row, col, e.layout.Grid.Rows(), e.layout.Grid.Cols()),
		}
	}
	pos := domain.Position{Row: row, Col: col}
	switch e.mode {
	case ModeSelect:
		return e.toggleStatus(pos), nil
	case ModeAdd:
		return e.addSlot(pos), nil
	case ModeDelete:
		return e.deleteSlot(pos), nil
	case ModeMove:
		return e.move(pos), nil
	}
	return false, &layout.InputError{Op: "click", Msg: fmt.Sprintf("unknown mode %q", e.mode)}
}

// toggleStatus flips available and unavailable. Booked slots are left alone.
func (e *Editor) toggleStatus(pos domain.Position) bool {
	s, ok := e.layout.Slots[pos]
	if !ok {
		return false
	}
	switch s.Status {
	case domain.SlotAvailable:
		s.Status = domain.SlotUnavailable
	case domain.SlotUnavailable:
		s.Status = domain.SlotAvailable
	default:
		return false
	}
	e.layout.Slots[pos] = s
	return true
}

func (e *Editor) addSlot(pos domain.Position) bool {
	if _, ok := e.layout.Slots[pos]; ok {
		return false
	}
	e.layout.Grid.Set(pos.Row, pos.Col, domain.CellSlot)
	e.layout.Slots[pos] = domain.Slot{
		ID:           pos.ID(),
		SlotNumber:   "S" + strconv.Itoa(len(e.layout.Slots)+1),
		Status:       domain.SlotAvailable,
		VehicleType:  e.newSlotType,
		PricePerHour: e.pricePerHour,
	}
	return true
}

func (e *Editor) deleteSlot(pos domain.Position) bool {
	if _, ok := e.layout.Slots[pos]; !ok {
		return false
	}
	delete(e.layout.Slots, pos)
	e.layout.Grid.Set(pos.Row, pos.Col, domain.CellLane)
	return true
}

// move is the two-click protocol: pick an occupied source, then an empty
// destination. An occupied destination keeps the source pending.
func (e *Editor) move(pos domain.Position) bool {
	_, occupied := e.layout.Slots[pos]
	if e.moveFrom == nil {
		if occupied {
			src := pos
			e.moveFrom = &src
		}
		return false
	}
	if occupied {
		return false
	}

	from := *e.moveFrom
	s := e.layout.Slots[from]
	delete(e.layout.Slots, from)
	e.layout.Grid.Set(from.Row, from.Col, domain.CellLane)

	s.ID = pos.ID()
	e.layout.Slots[pos] = s
	e.layout.Grid.Set(pos.Row, pos.Col, domain.CellSlot)

	e.moveFrom = nil
	e.mode = ModeSelect
	return true
}

// ToggleVehicleType switches the slot at (row, col) between car and bike.
func (e *Editor) ToggleVehicleType(row, col int) bool {
	pos := domain.Position{Row: row, Col: col}
	s, ok := e.layout.Slots[pos]
	if !ok {
		return false
	}
	if s.VehicleType == domain.VehicleCar {
		s.VehicleType = domain.VehicleBike
	} else {
		s.VehicleType = domain.VehicleCar
	}
	e.layout.Slots[pos] = s
	return true
}

// ResetBlank replaces the working layout with an empty grid sized from the
// declared slot counts. All slot metadata is discarded.
func (e *Editor) ResetBlank(carSlots, bikeSlots int) {
	if carSlots <= 0 {
		carSlots = blankDefaultCars
	}
	if bikeSlots < 0 {
		bikeSlots = 0
	}
	rows := max(blankMinRows, carSlots+int(math.Ceil(float64(bikeSlots)/4)))
	cols := max(blankMinCols, int(math.Ceil(float64(carSlots)/4))+4)

	e.layout = &domain.Layout{
		TemplateID:   ManualTemplateID,
		TemplateName: ManualTemplateName,
		Grid:         domain.NewGrid(rows, cols),
		Slots:        make(domain.SlotMap),
	}
	e.mode = ModeSelect
	e.moveFrom = nil
}

// Snapshot returns a copy of the working layout with totals recomputed. The
// copy may still violate the grid/slot bijection.
func (e *Editor) Snapshot() *domain.Layout {
	l := e.layout.Clone()
	l.Recount()
	return l
}

// Save finalizes the layout for persistence: names it, recomputes totals from
// the slot map and requires the grid and slot map to agree.
func (e *Editor) Save() (*domain.Layout, error) {
	l := e.Snapshot()
	switch l.TemplateID {
	case ManualTemplateID:
		l.TemplateName = ManualTemplateName
	case layout.DXFTemplateID:
		l.TemplateName = layout.DXFTemplateName
	case "":
		l.TemplateID = CustomTemplateID
		l.TemplateName = CustomTemplateName
	default:
		if l.TemplateName == "" {
			l.TemplateName = CustomTemplateName
		}
	}
	if err := l.CheckBijection(); err != nil {
		return nil, err
	}
	return l, nil
}
