package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrLayoutMismatch = errors.New("grid and slot map disagree")

type EntryExit struct {
	Entry string `json:"entry"`
	Exit  string `json:"exit"`
}

type Dimensions struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Layout is the grid plus slot metadata saved on a property.
type Layout struct {
	TemplateID     string     `json:"templateId"`
	TemplateName   string     `json:"templateName"`
	Description    string     `json:"description,omitempty"`
	Grid           Grid       `json:"layout"`
	Slots          SlotMap    `json:"slots"`
	EntryExit      EntryExit  `json:"entryExit"`
	Dimensions     Dimensions `json:"dimensions"`
	TotalSlots     int        `json:"totalSlots"`
	AvailableSlots int        `json:"availableSlots"`
	CarSlots       int        `json:"carSlots"`
	BikeSlots      int        `json:"bikeSlots"`
}

// Recount derives the totals and dimensions from the grid and slot map.
func (l *Layout) Recount() {
	l.Dimensions = Dimensions{Rows: l.Grid.Rows(), Cols: l.Grid.Cols()}
	l.TotalSlots, l.AvailableSlots, l.CarSlots, l.BikeSlots = 0, 0, 0, 0
	for _, s := range l.Slots {
		l.TotalSlots++
		if s.Status == SlotAvailable {
			l.AvailableSlots++
		}
		switch s.VehicleType {
		case VehicleCar:
			l.CarSlots++
		case VehicleBike:
			l.BikeSlots++
		}
	}
}

// CheckBijection verifies that the slot cells of the grid are exactly the keys
// of the slot map.
func (l *Layout) CheckBijection() error {
	var problems []string
	for _, p := range l.Grid.SlotCells() {
		if _, ok := l.Slots[p]; !ok {
			problems = append(problems, fmt.Sprintf("cell %s has no slot entry", p))
		}
	}
	for _, p := range l.Slots.Positions() {
		v, ok := l.Grid.At(p.Row, p.Col)
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("slot %s is outside the grid", p))
		case v != CellSlot:
			problems = append(problems, fmt.Sprintf("slot %s sits on cell value %d", p, v))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrLayoutMismatch, strings.Join(problems, "; "))
	}
	return nil
}

func (l *Layout) Clone() *Layout {
	out := *l
	out.Grid = l.Grid.Clone()
	out.Slots = l.Slots.Clone()
	return &out
}
