package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotNumber(t *testing.T) {
	assert.Equal(t, "C01", SlotNumber(0, VehicleCar))
	assert.Equal(t, "C10", SlotNumber(9, VehicleCar))
	assert.Equal(t, "B03", SlotNumber(2, VehicleBike))
	assert.Equal(t, "C120", SlotNumber(119, VehicleCar))
}

func TestParsePosition(t *testing.T) {
	p, err := ParsePosition("12-4")
	require.NoError(t, err)
	assert.Equal(t, Position{Row: 12, Col: 4}, p)
	assert.Equal(t, "12-4", p.ID())

	for _, bad := range []string{"", "12", "a-1", "1-b", "-1-2", "S1"} {
		_, err := ParsePosition(bad)
		assert.Error(t, err, bad)
	}
}

func TestGridSetOutOfBounds(t *testing.T) {
	g := NewGrid(2, 3)
	assert.True(t, g.Set(1, 2, CellSlot))
	assert.False(t, g.Set(2, 0, CellSlot))
	assert.False(t, g.Set(0, -1, CellSlot))
	assert.False(t, g.Set(0, 3, CellSlot))
	v, ok := g.At(1, 2)
	assert.True(t, ok)
	assert.Equal(t, CellSlot, v)
	assert.Equal(t, []Position{{Row: 1, Col: 2}}, g.SlotCells())
}

func TestLayoutJSONKeepsFieldNames(t *testing.T) {
	l := &Layout{
		TemplateID:   "mall-style",
		TemplateName: "Mall Style Layout",
		Grid:         Grid{{1, 0}, {0, 1}},
		Slots: SlotMap{
			{Row: 0, Col: 0}: {SlotNumber: "C01", Status: SlotAvailable, VehicleType: VehicleCar, PricePerHour: 20},
			{Row: 1, Col: 1}: {SlotNumber: "B01", Status: SlotBooked, VehicleType: VehicleBike, PricePerHour: 20},
		},
		EntryExit: EntryExit{Entry: "center-bottom", Exit: "center-bottom"},
	}
	l.Recount()

	data, err := json.Marshal(l)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"templateId", "templateName", "layout", "slots", "entryExit", "dimensions", "totalSlots", "availableSlots", "carSlots", "bikeSlots"} {
		assert.Contains(t, raw, key)
	}
	slots := raw["slots"].(map[string]any)
	assert.Contains(t, slots, "0-0")
	assert.Contains(t, slots, "1-1")
	assert.Equal(t, "1-1", slots["1-1"].(map[string]any)["id"])

	var back Layout
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 2, back.TotalSlots)
	assert.Equal(t, 1, back.AvailableSlots)
	assert.Equal(t, Dimensions{Rows: 2, Cols: 2}, back.Dimensions)
	assert.NoError(t, back.CheckBijection())
}

func TestSlotMapSkipsUnplaceableKeys(t *testing.T) {
	var m SlotMap
	require.NoError(t, json.Unmarshal([]byte(`{"2-3":{"slotNumber":"C01"},"S1":{"slotNumber":"S1"}}`), &m))
	assert.Len(t, m, 1)
	s, ok := m.Lookup("2-3")
	require.True(t, ok)
	assert.Equal(t, "2-3", s.ID)
}

func TestCheckBijection(t *testing.T) {
	l := &Layout{
		Grid:  Grid{{1, 1}, {0, 0}},
		Slots: SlotMap{{Row: 0, Col: 0}: {}},
	}
	err := l.CheckBijection()
	require.ErrorIs(t, err, ErrLayoutMismatch)
	assert.Contains(t, err.Error(), "0-1")

	l.Slots[Position{Row: 0, Col: 1}] = Slot{}
	l.Slots[Position{Row: 5, Col: 5}] = Slot{}
	err = l.CheckBijection()
	require.ErrorIs(t, err, ErrLayoutMismatch)
	assert.Contains(t, err.Error(), "outside the grid")

	delete(l.Slots, Position{Row: 5, Col: 5})
	assert.NoError(t, l.CheckBijection())
}

func TestBookingIsActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := Booking{Status: BookingConfirmed, EndTime: now.Add(time.Minute)}
	assert.True(t, b.IsActive(now))

	b.EndTime = now
	assert.False(t, b.IsActive(now))

	b.EndTime = now.Add(time.Hour)
	b.Status = BookingCancelled
	assert.False(t, b.IsActive(now))

	b.Status = BookingActive
	assert.True(t, b.IsActive(now))
}

func TestLegacySlotsFor(t *testing.T) {
	slots := LegacySlotsFor(&Property{ID: 7, CarSlots: 2, BikeSlots: 1, PricePerHour: 30})
	require.Len(t, slots, 3)
	assert.Equal(t, "Car-1", slots[0].SlotNumber)
	assert.Equal(t, "Car-2", slots[1].SlotNumber)
	assert.Equal(t, "Bike-1", slots[2].SlotNumber)
	assert.Equal(t, VehicleBike, slots[2].Type)
	assert.Equal(t, 7, slots[2].PropertyID)
}
