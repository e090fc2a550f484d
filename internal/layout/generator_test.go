package layout

import (
	"errors"
	"fmt"
	"io"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

func newTestGenerator() *Generator {
	log := zerolog.New(io.Discard)
	return NewGenerator(&log)
}

func TestGenerateConservesSlotCounts(t *testing.T) {
	g := newTestGenerator()
	req := Request{CarSlots: 10, BikeSlots: 6, PricePerHour: 35}

	for _, kind := range AllKinds() {
		t.Run(kind.String(), func(t *testing.T) {
			l, err := g.Generate(kind, req)
			require.NoError(t, err)

			assert.Equal(t, kind.String(), l.TemplateID)
			assert.Equal(t, kind.LayoutName(), l.TemplateName)
			assert.Equal(t, 16, l.TotalSlots)
			assert.Equal(t, 10, l.CarSlots)
			assert.Equal(t, 6, l.BikeSlots)
			assert.Equal(t, 16, l.AvailableSlots)
			assert.Equal(t, domain.Dimensions{Rows: l.Grid.Rows(), Cols: l.Grid.Cols()}, l.Dimensions)
			assert.NoError(t, l.CheckBijection())
			for _, s := range l.Slots {
				assert.Equal(t, 35.0, s.PricePerHour)
				assert.Equal(t, domain.SlotAvailable, s.Status)
			}
		})
	}
}

func TestGenerateFillsCarsBeforeBikes(t *testing.T) {
	g := newTestGenerator()
	cases := []Request{
		{CarSlots: 7, BikeSlots: 3},
		{CarSlots: 0, BikeSlots: 5},
		{CarSlots: 12, BikeSlots: 0},
		{CarSlots: 1, BikeSlots: 20},
	}

	for _, kind := range AllKinds() {
		for _, req := range cases {
			t.Run(fmt.Sprintf("%s/%d+%d", kind, req.CarSlots, req.BikeSlots), func(t *testing.T) {
				b, err := g.build(kind, req)
				require.NoError(t, err)
				for i, pos := range b.order {
					want := domain.VehicleBike
					if i < req.CarSlots {
						want = domain.VehicleCar
					}
					assert.Equal(t, want, b.slots[pos].VehicleType, "slot %d at %s", i, pos)
				}
			})
		}
	}
}

func TestGenerateNumbersPerVehicleType(t *testing.T) {
	g := newTestGenerator()
	for _, kind := range AllKinds() {
		t.Run(kind.String(), func(t *testing.T) {
			b, err := g.build(kind, Request{CarSlots: 11, BikeSlots: 4})
			require.NoError(t, err)

			seen := make(map[string]bool)
			cars, bikes := 0, 0
			for _, pos := range b.order {
				s := b.slots[pos]
				assert.False(t, seen[s.SlotNumber], "duplicate %s", s.SlotNumber)
				seen[s.SlotNumber] = true
				if s.VehicleType == domain.VehicleCar {
					assert.Equal(t, domain.SlotNumber(cars, domain.VehicleCar), s.SlotNumber)
					cars++
				} else {
					assert.Equal(t, domain.SlotNumber(bikes, domain.VehicleBike), s.SlotNumber)
					bikes++
				}
			}
			assert.Equal(t, "C01", b.slots[b.order[0]].SlotNumber)
		})
	}
}

func TestGenerateNeverOverwritesRoads(t *testing.T) {
	g := newTestGenerator()
	for _, kind := range []Kind{DriveThrough, LinearFlow, CircularFlow, SeparatedZones} {
		l, err := g.Generate(kind, Request{CarSlots: 30, BikeSlots: 10})
		require.NoError(t, err)

		roads := 0
		for r := range l.Grid {
			for _, v := range l.Grid[r] {
				if v == domain.CellEntry || v == domain.CellExit {
					roads++
				}
			}
		}
		assert.Positive(t, roads, kind.String())
		for pos := range l.Slots {
			v, _ := l.Grid.At(pos.Row, pos.Col)
			assert.Equal(t, domain.CellSlot, v)
		}
	}
}

func TestGenerateRejectsInvalidRequests(t *testing.T) {
	g := newTestGenerator()
	cases := map[string]Request{
		"zero total":     {},
		"negative car":   {CarSlots: -1, BikeSlots: 4},
		"negative bike":  {CarSlots: 4, BikeSlots: -2},
		"negative price": {CarSlots: 4, PricePerHour: -5},
		"nan price":      {CarSlots: 4, PricePerHour: math.NaN()},
		"too many cars":  {CarSlots: MaxSlots + 1},
		"total too big":  {CarSlots: MaxSlots, BikeSlots: 1},
		"sum overflows":  {CarSlots: math.MaxInt, BikeSlots: 1},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			l, err := g.Generate(DriveThrough, req)
			assert.Nil(t, l)
			var inputErr *InputError
			require.True(t, errors.As(err, &inputErr), "got %v", err)
			assert.Equal(t, "generate", inputErr.Op)
		})
	}
}

func TestNormalizeAcceptsMaxSlots(t *testing.T) {
	req, err := Request{CarSlots: MaxSlots - 10, BikeSlots: 10}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, DefaultPricePerHour, req.PricePerHour)
}

func TestGenerateDefaultsPrice(t *testing.T) {
	l, err := newTestGenerator().Generate(CompactUrban, Request{CarSlots: 2, BikeSlots: 1})
	require.NoError(t, err)
	for _, s := range l.Slots {
		assert.Equal(t, DefaultPricePerHour, s.PricePerHour)
	}
}

func TestGenerateReportsUnderPlacement(t *testing.T) {
	l, err := newTestGenerator().Generate(CircularFlow, Request{CarSlots: 80, BikeSlots: 20})
	require.NoError(t, err)

	assert.Less(t, l.TotalSlots, 100)
	assert.Positive(t, l.TotalSlots)
	assert.Len(t, l.Slots, l.TotalSlots)
	assert.Equal(t, l.TotalSlots, l.CarSlots)
	assert.NoError(t, l.CheckBijection())
}

func TestCircularFlowKeepsCenterClear(t *testing.T) {
	l, err := newTestGenerator().Generate(CircularFlow, Request{CarSlots: 20, BikeSlots: 10})
	require.NoError(t, err)

	size := l.Dimensions.Rows
	center := size / 2
	for pos := range l.Slots {
		assert.GreaterOrEqual(t, distance(pos.Row, pos.Col, center, center), float64(size/4), pos.String())
	}
	assert.Equal(t, domain.CellEntry, l.Grid[0][center])
	assert.Equal(t, domain.CellExit, l.Grid[size-1][center])
	assert.Equal(t, domain.CellEntry, l.Grid[center][0])
	assert.Equal(t, domain.CellExit, l.Grid[center][size-1])
}

func TestCircularFlowRingIsSymmetric(t *testing.T) {
	l, err := newTestGenerator().Generate(CircularFlow, Request{CarSlots: 40})
	require.NoError(t, err)

	size := l.Dimensions.Rows
	require.Equal(t, 1, size%2)
	center := size / 2
	outer := center - circularEdgeMargin
	for _, pos := range []domain.Position{
		{Row: center, Col: center + outer},
		{Row: center, Col: center - outer},
		{Row: center + outer, Col: center},
		{Row: center - outer, Col: center},
	} {
		_, ok := l.Slots[pos]
		assert.True(t, ok, pos.String())
	}

	minRow, maxRow, minCol, maxCol := size, -1, size, -1
	for pos := range l.Slots {
		minRow, maxRow = min(minRow, pos.Row), max(maxRow, pos.Row)
		minCol, maxCol = min(minCol, pos.Col), max(maxCol, pos.Col)
	}
	assert.Equal(t, minRow, size-1-maxRow)
	assert.Equal(t, minCol, size-1-maxCol)
}

func TestSeparatedZonesSplitsVehicleTypes(t *testing.T) {
	l, err := newTestGenerator().Generate(SeparatedZones, Request{CarSlots: 9, BikeSlots: 13})
	require.NoError(t, err)

	separator := -1
	for r, row := range l.Grid {
		if row[0] == domain.CellSeparator {
			separator = r
		}
	}
	require.NotEqual(t, -1, separator)
	for pos, s := range l.Slots {
		if s.VehicleType == domain.VehicleCar {
			assert.Less(t, pos.Row, separator)
			assert.Equal(t, "premium-car", s.Zone)
		} else {
			assert.Greater(t, pos.Row, separator)
			assert.Equal(t, "bike-zone", s.Zone)
		}
	}
}

func TestGenerateByIDFallsBackToDriveThrough(t *testing.T) {
	g := newTestGenerator()
	l, err := g.GenerateByID("no-such-template", Request{CarSlots: 3})
	require.NoError(t, err)
	assert.Equal(t, "efficient-grid", l.TemplateID)

	l, err = g.GenerateByID("mall-style", Request{CarSlots: 3})
	require.NoError(t, err)
	assert.Equal(t, "mall-style", l.TemplateID)
}

func TestSetCellOutOfBoundsIsSkipped(t *testing.T) {
	log := zerolog.New(io.Discard)
	b := newBuilder(DriveThrough, Request{CarSlots: 1}, 2, 2, &log)

	assert.False(t, b.setCell(-1, 0, domain.CellSlot))
	assert.False(t, b.setCell(0, 2, domain.CellSlot))
	assert.False(t, b.place(5, 5, domain.VehicleCar, "", ""))
	assert.True(t, b.place(1, 1, domain.VehicleCar, "", ""))

	require.Len(t, b.warnings, 3)
	assert.Equal(t, BoundsWarning{Row: 5, Col: 5, Rows: 2, Cols: 2}, b.warnings[2])
	assert.Len(t, b.slots, 1)
	assert.Equal(t, 0, b.counters[domain.VehicleBike])
}

func TestParseKind(t *testing.T) {
	for _, k := range AllKinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("grid")
	var inputErr *InputError
	assert.ErrorAs(t, err, &inputErr)
}
