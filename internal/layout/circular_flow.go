package layout

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

const (
	circularMinSize    = 20
	outerRingStepDeg   = 15
	innerRingStepDeg   = 30
	circularEdgeMargin = 2
)

// circularFlow places slots on two concentric rings around the grid center,
// sweeping the angle and filling the outer ring before the inner one at each
// step. Entries sit at the top and left cardinal points, exits at bottom and right.
func circularFlow(req Request, log *zerolog.Logger) *builder {
	total := req.CarSlots + req.BikeSlots
	size := int(math.Max(circularMinSize, math.Ceil(math.Sqrt(float64(total)/2))+8))
	// Odd sides give the grid a true center cell so both rings stay symmetric.
	if size%2 == 0 {
		size++
	}

	b := newBuilder(CircularFlow, req, size, size, log)
	b.description = fmt.Sprintf("Central roundabout design! %d cars + %d bikes. Enter from 4 sides, circle around, easy exit!", req.CarSlots, req.BikeSlots)
	b.entryExit = domain.EntryExit{Entry: "TOP & LEFT (Multiple Entries)", Exit: "BOTTOM & RIGHT (Multiple Exits)"}

	centerRow, centerCol := size/2, size/2
	outerRadius := size/2 - 2
	clearRadius := size / 4
	innerRadius := (clearRadius + outerRadius) / 2

	carveCardinal(b, 0, centerCol, domain.CellEntry, true)
	carveCardinal(b, size-1, centerCol, domain.CellExit, true)
	carveCardinal(b, centerRow, 0, domain.CellEntry, false)
	carveCardinal(b, centerRow, size-1, domain.CellExit, false)

	// Cells closer than clearRadius to the center stay driving lane.
	inBand := func(r, c int) bool {
		return r >= circularEdgeMargin && r < size-circularEdgeMargin &&
			c >= circularEdgeMargin && c < size-circularEdgeMargin &&
			distance(r, c, centerRow, centerCol) >= float64(clearRadius)
	}

	for angle := 0; angle < 360 && !b.full(); angle += outerRingStepDeg {
		rad := float64(angle) * math.Pi / 180
		r, c := polar(centerRow, centerCol, outerRadius, rad)
		if inBand(r, c) {
			b.placeNext(r, c, "facing-center", "")
		}
		if b.full() || angle%innerRingStepDeg != 0 {
			continue
		}
		r, c = polar(centerRow, centerCol, innerRadius, rad)
		if inBand(r, c) {
			b.placeNext(r, c, "facing-out", "")
		}
	}
	return b
}

// carveCardinal marks a three-cell wide opening centered on (row, col).
func carveCardinal(b *builder, row, col, value int, horizontal bool) {
	b.setCell(row, col, value)
	if horizontal {
		b.setCell(row, col-1, value)
		b.setCell(row, col+1, value)
		return
	}
	b.setCell(row-1, col, value)
	b.setCell(row+1, col, value)
}

func polar(centerRow, centerCol, radius int, rad float64) (int, int) {
	r := int(math.Round(float64(centerRow) + float64(radius)*math.Sin(rad)))
	c := int(math.Round(float64(centerCol) + float64(radius)*math.Cos(rad)))
	return r, c
}

func distance(r, c, centerRow, centerCol int) float64 {
	dr := float64(r - centerRow)
	dc := float64(c - centerCol)
	return math.Sqrt(dr*dr + dc*dc)
}
