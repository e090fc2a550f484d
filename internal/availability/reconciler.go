// Package availability joins layout or legacy slots against bookings to derive
// live slot state. Nothing here is cached; callers recompute on every read.
package availability

import (
	"errors"
	"sort"
	"time"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

var (
	ErrUnknownSlot = errors.New("slot not found")
	ErrSlotTaken   = errors.New("slot is booked or unavailable")
)

// State is the computed availability of one slot.
type State struct {
	IsBooked    bool              `json:"isBooked"`
	IsAvailable bool              `json:"isAvailable"`
	Status      domain.SlotStatus `json:"status"`
}

// BookedSet collects the slot refs held by active bookings of the given kind.
// Bookings without a kind match either path.
func BookedSet(bookings []domain.Booking, kind domain.SlotKind, now time.Time) map[string]struct{} {
	set := make(map[string]struct{})
	for _, b := range bookings {
		if b.SlotKind != "" && b.SlotKind != kind {
			continue
		}
		if b.IsActive(now) {
			set[b.Slot] = struct{}{}
		}
	}
	return set
}

func stateFor(booked bool, status domain.SlotStatus) State {
	st := State{
		IsBooked:    booked,
		IsAvailable: !booked && status != domain.SlotUnavailable,
		Status:      status,
	}
	switch {
	case booked:
		st.Status = domain.SlotBooked
	case st.Status == "":
		st.Status = domain.SlotAvailable
	}
	return st
}

// Compute maps every layout slot id to its live state.
func Compute(l *domain.Layout, bookings []domain.Booking, now time.Time) map[string]State {
	out := make(map[string]State)
	if l == nil {
		return out
	}
	booked := BookedSet(bookings, domain.SlotKindLayout, now)
	for pos, s := range l.Slots {
		id := pos.ID()
		_, held := booked[id]
		out[id] = stateFor(held || s.Status == domain.SlotBooked, s.Status)
	}
	return out
}

// List renders the slot listing for a layout property in row-major order. A
// non-empty vehicle filter marks slots of the other type unavailable.
func List(propertyID int, l *domain.Layout, bookings []domain.Booking, now time.Time, vehicle domain.VehicleType) []domain.SlotAvailability {
	if l == nil {
		return []domain.SlotAvailability{}
	}
	states := Compute(l, bookings, now)
	out := make([]domain.SlotAvailability, 0, len(l.Slots))
	for _, pos := range l.Slots.Positions() {
		s := l.Slots[pos]
		st := states[pos.ID()]
		out = append(out, filtered(domain.SlotAvailability{
			ID:           pos.ID(),
			SlotNumber:   s.SlotNumber,
			Type:         s.VehicleType,
			PricePerHour: s.PricePerHour,
			Property:     propertyID,
			IsBooked:     st.IsBooked,
			IsAvailable:  st.IsAvailable,
			Status:       st.Status,
		}, vehicle))
	}
	return out
}

// ListLegacy renders the slot listing for a property served by per-row slots.
func ListLegacy(propertyID int, slots []domain.PropertySlot, bookings []domain.Booking, now time.Time, vehicle domain.VehicleType) []domain.SlotAvailability {
	booked := BookedSet(bookings, domain.SlotKindLegacy, now)
	sorted := append([]domain.PropertySlot(nil), slots...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	out := make([]domain.SlotAvailability, 0, len(sorted))
	for _, s := range sorted {
		_, held := booked[s.Ref()]
		status := domain.SlotAvailable
		if s.IsBooked {
			status = domain.SlotBooked
		}
		st := stateFor(held || s.IsBooked, status)
		out = append(out, filtered(domain.SlotAvailability{
			ID:           s.Ref(),
			SlotNumber:   s.SlotNumber,
			Type:         s.Type,
			PricePerHour: s.PricePerHour,
			Property:     propertyID,
			IsBooked:     st.IsBooked,
			IsAvailable:  st.IsAvailable,
			Status:       st.Status,
		}, vehicle))
	}
	return out
}

func filtered(a domain.SlotAvailability, vehicle domain.VehicleType) domain.SlotAvailability {
	if vehicle == "" || a.Type == vehicle {
		return a
	}
	a.IsAvailable = false
	a.Status = domain.SlotUnavailable
	return a
}

// Admit checks a layout slot before reservation. It is advisory; the storage
// layer's conditional update is what prevents double booking.
func Admit(l *domain.Layout, bookings []domain.Booking, now time.Time, slotID string) (domain.Slot, error) {
	if l == nil {
		return domain.Slot{}, ErrUnknownSlot
	}
	s, ok := l.Slots.Lookup(slotID)
	if !ok {
		return domain.Slot{}, ErrUnknownSlot
	}
	if st := Compute(l, bookings, now)[s.ID]; !st.IsAvailable {
		return s, ErrSlotTaken
	}
	return s, nil
}
