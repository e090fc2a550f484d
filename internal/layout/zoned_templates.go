package layout

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

const (
	zoneCols        = 16
	zoneCarsPerRow  = 8
	zoneBikesPerRow = 12

	mallMaxPerAisle = 12
	mallAisleGap    = 2

	urbanMaxCols = 25
)

// separatedZones is the airport layout: triple-wide boulevards at top and
// bottom, a car zone of 8-slot rows, one separator row, then a bike zone of
// 12-slot rows. Rows are centered on the 16-column grid.
func separatedZones(req Request, log *zerolog.Logger) *builder {
	carRows := ceilDiv(req.CarSlots, zoneCarsPerRow)
	bikeRows := ceilDiv(req.BikeSlots, zoneBikesPerRow)
	rows := 3 + carRows*2 + 1 + bikeRows*2 + 3
	cols := zoneCols

	b := newBuilder(SeparatedZones, req, rows, cols, log)
	b.description = fmt.Sprintf("Like airport parking! %d cars (premium zone) + %d bikes (compact zone). Wide boulevards for easy navigation!", req.CarSlots, req.BikeSlots)
	b.entryExit = domain.EntryExit{Entry: "MAIN ENTRANCE BOULEVARD (Top)", Exit: "MAIN EXIT BOULEVARD (Bottom)"}

	for r := 0; r < 3; r++ {
		b.fillRow(r, 0, cols-1, domain.CellEntry)
		b.fillRow(rows-1-r, 0, cols-1, domain.CellExit)
	}

	row := 3
	carStart := (cols - zoneCarsPerRow) / 2
	for i := 0; i < carRows && b.counters[domain.VehicleCar] < req.CarSlots; i++ {
		for col := carStart; col < carStart+zoneCarsPerRow && b.counters[domain.VehicleCar] < req.CarSlots; col++ {
			b.place(row, col, domain.VehicleCar, "pull-through", "premium-car")
		}
		row += 2 // slot row + drive lane
	}

	b.fillRow(row, 0, cols-1, domain.CellSeparator)
	row++

	bikeStart := (cols - zoneBikesPerRow) / 2
	for i := 0; i < bikeRows && b.counters[domain.VehicleBike] < req.BikeSlots; i++ {
		for col := bikeStart; col < bikeStart+zoneBikesPerRow && b.counters[domain.VehicleBike] < req.BikeSlots; col++ {
			b.place(row, col, domain.VehicleBike, "any-direction", "bike-zone")
		}
		row += 2
	}
	return b
}

// mallStyle repeats 3-row aisles (parking row, lane, parking row) separated by
// a two-row gap.
func mallStyle(req Request, log *zerolog.Logger) *builder {
	total := req.CarSlots + req.BikeSlots
	perAisle := min(mallMaxPerAisle, ceilDiv(total, 4))
	aisles := ceilDiv(total, perAisle)
	rows := aisles*3 + (aisles-1)*mallAisleGap
	cols := perAisle + 4

	b := newBuilder(MallStyle, req, rows, cols, log)
	b.description = fmt.Sprintf("Shopping mall style with wide aisles for %d cars and %d bikes", req.CarSlots, req.BikeSlots)
	b.entryExit = domain.EntryExit{Entry: "center-bottom", Exit: "center-bottom"}

	for aisle := 0; aisle < aisles && !b.full(); aisle++ {
		start := aisle * (3 + mallAisleGap)
		for col := 1; col < cols-1 && !b.full(); col++ {
			b.placeNext(start, col, "", "")
		}
		for col := 1; col < cols-1 && !b.full(); col++ {
			b.placeNext(start+2, col, "", "")
		}
	}
	return b
}

// compactUrban packs slots row-major into a near-square grid, leaving every
// cell with row%3==1 && col%5==2 as a lane.
func compactUrban(req Request, log *zerolog.Logger) *builder {
	total := req.CarSlots + req.BikeSlots
	cols := min(urbanMaxCols, int(math.Ceil(math.Sqrt(float64(total)*1.2))))
	rows := ceilDiv(total, cols) + 1

	b := newBuilder(CompactUrban, req, rows, cols, log)
	b.description = fmt.Sprintf("High-density urban arrangement for %d cars and %d bikes", req.CarSlots, req.BikeSlots)
	b.entryExit = domain.EntryExit{Entry: "multiple", Exit: "multiple"}

	for row := 0; row < rows && !b.full(); row++ {
		for col := 0; col < cols && !b.full(); col++ {
			if row%3 == 1 && col%5 == 2 {
				continue
			}
			b.placeNext(row, col, "", "")
		}
	}
	return b
}
