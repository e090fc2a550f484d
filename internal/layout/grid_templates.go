package layout

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

const (
	driveThroughRowSlots = 8
	linearFlowAisleSlots = 10
	linearFlowCols       = linearFlowAisleSlots + 6
)

// driveThrough builds paired parking rows per aisle between a wide entry road
// on the left and a wide exit road on the right. Top rows face down, bottom rows up.
func driveThrough(req Request, log *zerolog.Logger) *builder {
	total := req.CarSlots + req.BikeSlots
	aisles := ceilDiv(total, driveThroughRowSlots*2)
	rows := aisles * 4
	cols := driveThroughRowSlots + 4

	b := newBuilder(DriveThrough, req, rows, cols, log)
	b.description = fmt.Sprintf("Every car can exit easily! %d cars + %d bikes with wide entry/exit roads", req.CarSlots, req.BikeSlots)
	b.entryExit = domain.EntryExit{Entry: "LEFT SIDE (Wide Entry)", Exit: "RIGHT SIDE (Wide Exit)"}

	b.fillCol(0, 0, rows-1, domain.CellEntry)
	b.fillCol(1, 0, rows-1, domain.CellEntry)
	b.fillCol(cols-1, 0, rows-1, domain.CellExit)
	b.fillCol(cols-2, 0, rows-1, domain.CellExit)

	for aisle := 0; aisle < aisles && !b.full(); aisle++ {
		start := aisle * 4
		for col := 2; col < cols-2 && !b.full(); col++ {
			b.placeNext(start, col, "down", "")
		}
		for col := 2; col < cols-2 && !b.full(); col++ {
			b.placeNext(start+2, col, "up", "")
		}
	}
	return b
}

// linearFlow builds single-direction aisles between a top entry boulevard and a
// bottom exit boulevard. Each lane row carries a two-cell arrow marker.
func linearFlow(req Request, log *zerolog.Logger) *builder {
	total := req.CarSlots + req.BikeSlots
	aisles := ceilDiv(total, linearFlowAisleSlots)
	rows := aisles*2 + 4
	cols := linearFlowCols

	b := newBuilder(LinearFlow, req, rows, cols, log)
	b.description = fmt.Sprintf("Like shopping mall parking! %d cars + %d bikes. Enter top, drive around, exit bottom", req.CarSlots, req.BikeSlots)
	b.entryExit = domain.EntryExit{Entry: "TOP ENTRANCE (Main Entry)", Exit: "BOTTOM EXIT (Main Exit)"}

	b.fillRow(0, 0, cols-1, domain.CellEntry)
	b.fillRow(1, 0, cols-1, domain.CellEntry)
	b.fillRow(rows-1, 0, cols-1, domain.CellExit)
	b.fillRow(rows-2, 0, cols-1, domain.CellExit)

	for aisle := 0; aisle < aisles && !b.full(); aisle++ {
		row := 2 + aisle*2
		for col := 3; col < cols-3 && !b.full(); col++ {
			b.placeNext(row, col, "diagonal-exit", "")
		}
	}
	for aisle := 0; aisle < aisles; aisle++ {
		lane := 2 + aisle*2 + 1
		b.setCell(lane, 1, domain.CellSeparator)
		b.setCell(lane, 2, domain.CellSeparator)
	}
	return b
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
