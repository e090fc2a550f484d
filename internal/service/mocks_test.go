package service

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockPropertyRepo struct {
	mock.Mock
}

func (m *mockPropertyRepo) property(args mock.Arguments) (*domain.Property, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}

func (m *mockPropertyRepo) list(args mock.Arguments) ([]domain.Property, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Property), args.Error(1)
}

func (m *mockPropertyRepo) Create(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	return m.property(m.Called(ctx, p))
}

func (m *mockPropertyRepo) FindByID(ctx context.Context, id int) (*domain.Property, error) {
	return m.property(m.Called(ctx, id))
}

func (m *mockPropertyRepo) FindApprovedActive(ctx context.Context) ([]domain.Property, error) {
	return m.list(m.Called(ctx))
}

func (m *mockPropertyRepo) FindByRental(ctx context.Context, rentalID int) ([]domain.Property, error) {
	return m.list(m.Called(ctx, rentalID))
}

func (m *mockPropertyRepo) FindPending(ctx context.Context) ([]domain.Property, error) {
	return m.list(m.Called(ctx))
}

func (m *mockPropertyRepo) FindApprovedWithoutSlots(ctx context.Context) ([]domain.Property, error) {
	return m.list(m.Called(ctx))
}

func (m *mockPropertyRepo) Approve(ctx context.Context, id, ownerID int) (*domain.Property, error) {
	return m.property(m.Called(ctx, id, ownerID))
}

func (m *mockPropertyRepo) SetActive(ctx context.Context, id int, active bool) (*domain.Property, error) {
	return m.property(m.Called(ctx, id, active))
}

func (m *mockPropertyRepo) UpdateLayout(ctx context.Context, id int, layout json.RawMessage) (*domain.Property, error) {
	return m.property(m.Called(ctx, id, layout))
}

func (m *mockPropertyRepo) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPropertyRepo) ReserveLayoutSlot(ctx context.Context, propertyID int, slotID string) error {
	return m.Called(ctx, propertyID, slotID).Error(0)
}

func (m *mockPropertyRepo) ReleaseLayoutSlot(ctx context.Context, propertyID int, slotID string) error {
	return m.Called(ctx, propertyID, slotID).Error(0)
}

type mockSlotRepo struct {
	mock.Mock
}

func (m *mockSlotRepo) slots(args mock.Arguments) ([]domain.PropertySlot, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PropertySlot), args.Error(1)
}

func (m *mockSlotRepo) CreateBatch(ctx context.Context, slots []domain.PropertySlot) ([]domain.PropertySlot, error) {
	return m.slots(m.Called(ctx, slots))
}

func (m *mockSlotRepo) FindByID(ctx context.Context, id int) (*domain.PropertySlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PropertySlot), args.Error(1)
}

func (m *mockSlotRepo) FindByProperty(ctx context.Context, propertyID int) ([]domain.PropertySlot, error) {
	return m.slots(m.Called(ctx, propertyID))
}

func (m *mockSlotRepo) FindByProperties(ctx context.Context, propertyIDs []int) ([]domain.PropertySlot, error) {
	return m.slots(m.Called(ctx, propertyIDs))
}

func (m *mockSlotRepo) CountByProperty(ctx context.Context, propertyID int) (int, error) {
	args := m.Called(ctx, propertyID)
	return args.Int(0), args.Error(1)
}

func (m *mockSlotRepo) Reserve(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSlotRepo) Release(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) booking(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) list(args mock.Arguments) ([]domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, b))
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id int) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *mockBookingRepo) FindByUser(ctx context.Context, userID int) ([]domain.Booking, error) {
	return m.list(m.Called(ctx, userID))
}

func (m *mockBookingRepo) FindByProperty(ctx context.Context, propertyID int) ([]domain.Booking, error) {
	return m.list(m.Called(ctx, propertyID))
}

func (m *mockBookingRepo) FindByProperties(ctx context.Context, propertyIDs []int) ([]domain.Booking, error) {
	return m.list(m.Called(ctx, propertyIDs))
}

func (m *mockBookingRepo) FindExpiredHolding(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	return m.list(m.Called(ctx, now))
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id int, status domain.BookingStatus) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, status))
}

func (m *mockBookingRepo) SetPaymentRef(ctx context.Context, id int, ref string) error {
	return m.Called(ctx, id, ref).Error(0)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.SlotEvent
}

func (n *recordingNotifier) BroadcastSlotEvent(ev domain.SlotEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) Events() []domain.SlotEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.SlotEvent(nil), n.events...)
}

// twoSlotLayout is a 1x3 grid with car slot 0-0 and bike slot 0-2.
func twoSlotLayout() *domain.Layout {
	l := &domain.Layout{
		TemplateID:   "custom",
		TemplateName: "Custom Layout",
		Grid:         domain.Grid{{domain.CellSlot, domain.CellLane, domain.CellSlot}},
		Slots: domain.SlotMap{
			{Row: 0, Col: 0}: {ID: "0-0", SlotNumber: "C01", Status: domain.SlotAvailable, VehicleType: domain.VehicleCar, PricePerHour: 30},
			{Row: 0, Col: 2}: {ID: "0-2", SlotNumber: "B01", Status: domain.SlotAvailable, VehicleType: domain.VehicleBike, PricePerHour: 10},
		},
	}
	l.Recount()
	return l
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
