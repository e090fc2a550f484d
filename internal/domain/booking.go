package domain

import (
	"encoding/json"
	"time"

	"gopkg.in/guregu/null.v4"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingActive    BookingStatus = "active"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed" // slot released after end time
)

// HoldsSlot reports whether a booking in this status blocks its slot.
func (s BookingStatus) HoldsSlot() bool {
	return s == BookingPending || s == BookingConfirmed || s == BookingActive
}

// SlotKind tells how Booking.Slot should be resolved.
type SlotKind string

const (
	SlotKindLayout SlotKind = "layout" // "row-col" key into the property's layout
	SlotKindLegacy SlotKind = "legacy" // PropertySlot id
)

type Booking struct {
	ID          int             `json:"id"`
	UserID      int             `json:"user_id"`
	PropertyID  int             `json:"property_id"`
	Slot        string          `json:"slot"`
	SlotKind    SlotKind        `json:"slot_kind"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
	TotalAmount float64         `json:"total_amount"`
	Status      BookingStatus   `json:"status"`
	SlotInfo    json.RawMessage `json:"slot_info,omitempty"`
	PaymentRef  null.String     `json:"payment_ref"`
	CancelledAt null.Time       `json:"cancelled_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsActive reports whether the booking still blocks its slot at now.
func (b Booking) IsActive(now time.Time) bool {
	return b.Status.HoldsSlot() && b.EndTime.After(now)
}

type CreateBookingDTO struct {
	PropertyID  int        `json:"property_id" binding:"required"`
	Slot        string     `json:"slot" binding:"required"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Hours       int        `json:"hours"`
	TotalAmount float64    `json:"total_amount"`
}

// SlotSnapshot is the copy of slot details stored with a booking.
type SlotSnapshot struct {
	ID           string      `json:"id"`
	SlotNumber   string      `json:"slotNumber"`
	VehicleType  VehicleType `json:"vehicleType"`
	PricePerHour float64     `json:"pricePerHour"`
	Coordinates  []float64   `json:"coordinates,omitempty"`
}

// Snapshot decodes SlotInfo. ok is false when none was stored.
func (b Booking) Snapshot() (snap SlotSnapshot, ok bool) {
	if len(b.SlotInfo) == 0 || string(b.SlotInfo) == "null" {
		return snap, false
	}
	if err := json.Unmarshal(b.SlotInfo, &snap); err != nil {
		return snap, false
	}
	return snap, true
}

// BookingView is a booking enriched for the "my bookings" listing.
type BookingView struct {
	Booking
	Hours           int       `json:"hours"`
	PropertyName    string    `json:"propertyName"`
	PropertyAddress string    `json:"propertyAddress"`
	PropertyContact string    `json:"propertyContact"`
	SlotNumber      string    `json:"slotNumber"`
	SlotType        string    `json:"slotType"`
	Coordinates     []float64 `json:"coordinates,omitempty"`
}

// PaymentEvent is published by the payment gateway integration.
type PaymentEvent struct {
	Type       string `json:"type"` // payment.succeeded | payment.failed
	BookingID  int    `json:"booking_id"`
	PaymentRef string `json:"payment_ref"`
}

const (
	PaymentSucceeded = "payment.succeeded"
	PaymentFailed    = "payment.failed"
)
