package domain

import "time"

// SlotAvailability is one row of the slot listing returned to booking UIs.
type SlotAvailability struct {
	ID           string      `json:"_id"`
	SlotNumber   string      `json:"slotNumber"`
	Type         VehicleType `json:"type"`
	PricePerHour float64     `json:"pricePerHour"`
	Property     int         `json:"property"`
	IsBooked     bool        `json:"isBooked"`
	IsAvailable  bool        `json:"isAvailable"`
	Status       SlotStatus  `json:"status"`
}

const (
	SlotEventBooked   = "slot.booked"
	SlotEventReleased = "slot.released"
)

// SlotEvent is pushed to websocket clients when a slot changes hands.
type SlotEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	PropertyID int       `json:"property_id"`
	Slot       string    `json:"slot"`
	SlotKind   SlotKind  `json:"slot_kind"`
	BookingID  int       `json:"booking_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
