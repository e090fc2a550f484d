package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")

// ErrSlotConflict means the slot exists but is already booked or unavailable.
var ErrSlotConflict = errors.New("slot already booked or unavailable")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

type PropertyRepository interface {
	Create(ctx context.Context, p *domain.Property) (*domain.Property, error)
	FindByID(ctx context.Context, id int) (*domain.Property, error)
	FindApprovedActive(ctx context.Context) ([]domain.Property, error)
	FindByRental(ctx context.Context, rentalID int) ([]domain.Property, error)
	FindPending(ctx context.Context) ([]domain.Property, error)
	// FindApprovedWithoutSlots lists approved properties that have no legacy slot rows.
	FindApprovedWithoutSlots(ctx context.Context) ([]domain.Property, error)
	Approve(ctx context.Context, id, ownerID int) (*domain.Property, error)
	SetActive(ctx context.Context, id int, active bool) (*domain.Property, error)
	UpdateLayout(ctx context.Context, id int, layout json.RawMessage) (*domain.Property, error)
	// Delete removes the property together with its bookings and legacy slots.
	Delete(ctx context.Context, id int) error

	// ReserveLayoutSlot marks a layout slot booked only if it is neither booked
	// nor unavailable. Returns ErrNotFound or ErrSlotConflict otherwise.
	ReserveLayoutSlot(ctx context.Context, propertyID int, slotID string) error
	ReleaseLayoutSlot(ctx context.Context, propertyID int, slotID string) error
}

type PropertySlotRepository interface {
	CreateBatch(ctx context.Context, slots []domain.PropertySlot) ([]domain.PropertySlot, error)
	FindByID(ctx context.Context, id int) (*domain.PropertySlot, error)
	FindByProperty(ctx context.Context, propertyID int) ([]domain.PropertySlot, error)
	FindByProperties(ctx context.Context, propertyIDs []int) ([]domain.PropertySlot, error)
	CountByProperty(ctx context.Context, propertyID int) (int, error)

	// Reserve sets is_booked only if it was false. Returns ErrNotFound or ErrSlotConflict otherwise.
	Reserve(ctx context.Context, id int) error
	Release(ctx context.Context, id int) error
}

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	FindByID(ctx context.Context, id int) (*domain.Booking, error)
	FindByUser(ctx context.Context, userID int) ([]domain.Booking, error)
	FindByProperty(ctx context.Context, propertyID int) ([]domain.Booking, error)
	FindByProperties(ctx context.Context, propertyIDs []int) ([]domain.Booking, error)
	// FindExpiredHolding lists bookings whose status still holds a slot but whose end time is <= now.
	FindExpiredHolding(ctx context.Context, now time.Time) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id int, status domain.BookingStatus) (*domain.Booking, error)
	SetPaymentRef(ctx context.Context, id int, ref string) error
}
