package domain

import (
	"strconv"
	"time"
)

// PropertySlot is the per-row slot record used by properties that have no saved layout.
type PropertySlot struct {
	ID           int         `json:"id"`
	PropertyID   int         `json:"property_id"`
	SlotNumber   string      `json:"slot_number"`
	Type         VehicleType `json:"type"`
	IsBooked     bool        `json:"is_booked"`
	PricePerHour float64     `json:"price_per_hour"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Ref is the identifier bookings store for a legacy slot.
func (s PropertySlot) Ref() string {
	return strconv.Itoa(s.ID)
}

// LegacySlotsFor builds the Car-i / Bike-i rows created when a property is approved.
func LegacySlotsFor(p *Property) []PropertySlot {
	slots := make([]PropertySlot, 0, p.CarSlots+p.BikeSlots)
	for i := 1; i <= p.CarSlots; i++ {
		slots = append(slots, PropertySlot{
			PropertyID:   p.ID,
			SlotNumber:   "Car-" + strconv.Itoa(i),
			Type:         VehicleCar,
			PricePerHour: p.PricePerHour,
		})
	}
	for i := 1; i <= p.BikeSlots; i++ {
		slots = append(slots, PropertySlot{
			PropertyID:   p.ID,
			SlotNumber:   "Bike-" + strconv.Itoa(i),
			Type:         VehicleBike,
			PricePerHour: p.PricePerHour,
		})
	}
	return slots
}
