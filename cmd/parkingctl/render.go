package main

import (
	"fmt"
	"strings"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

// renderASCII draws a layout one character per cell:
// '.' lane, 'C'/'B' car or bike slot (lowercase when booked, 'x' when
// unavailable), 'E' entry, 'X' exit, '#' separator.
func renderASCII(l *domain.Layout) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s) %dx%d, %d slots: %d car, %d bike\n",
		l.TemplateName, l.TemplateID, l.Grid.Cols(), l.Grid.Rows(), l.TotalSlots, l.CarSlots, l.BikeSlots)
	for r := range l.Grid {
		for c, cell := range l.Grid[r] {
			sb.WriteByte(cellRune(l, domain.Position{Row: r, Col: c}, cell))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func cellRune(l *domain.Layout, pos domain.Position, cell int) byte {
	switch cell {
	case domain.CellSlot:
		s, ok := l.Slots[pos]
		if !ok {
			return '?'
		}
		ch := byte('C')
		if s.VehicleType == domain.VehicleBike {
			ch = 'B'
		}
		switch s.Status {
		case domain.SlotBooked:
			ch += 'a' - 'A'
		case domain.SlotUnavailable:
			ch = 'x'
		}
		return ch
	case domain.CellEntry:
		return 'E'
	case domain.CellExit:
		return 'X'
	case domain.CellSeparator:
		return '#'
	}
	return '.'
}
