package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/availability"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/metrics"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/repository"
)

// Notifier receives slot changes for live listeners.
type Notifier interface {
	BroadcastSlotEvent(ev domain.SlotEvent)
}

type BookingService struct {
	propRepo    repository.PropertyRepository
	slotRepo    repository.PropertySlotRepository
	bookingRepo repository.BookingRepository
	notifier    Notifier
	log         *zerolog.Logger
	now         func() time.Time
}

func NewBookingService(
	propRepo repository.PropertyRepository,
	slotRepo repository.PropertySlotRepository,
	bookingRepo repository.BookingRepository,
	notifier Notifier,
	log *zerolog.Logger,
) *BookingService {
	return &BookingService{
		propRepo:    propRepo,
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
		notifier:    notifier,
		log:         orNop(log),
		now:         time.Now,
	}
}

// resolvedSlot is the slot a booking request points at.
type resolvedSlot struct {
	kind     domain.SlotKind
	ref      string
	legacyID int
	snapshot domain.SlotSnapshot
}

// resolveSlot looks the reference up as a layout slot first, then as a legacy
// slot row. Slots held by an active booking in held are rejected.
func (s *BookingService) resolveSlot(ctx context.Context, p *domain.Property, held []domain.Booking, ref string) (*resolvedSlot, error) {
	l, err := p.Layout()
	if err != nil {
		s.log.Warn().Err(err).Int("property_id", p.ID).Msg("Stored layout is unreadable, trying legacy slots")
	}
	if l != nil {
		slot, err := availability.Admit(l, held, s.now(), ref)
		switch {
		case err == nil:
			pos, _ := domain.ParsePosition(slot.ID)
			return &resolvedSlot{
				kind: domain.SlotKindLayout,
				ref:  slot.ID,
				snapshot: domain.SlotSnapshot{
					ID:           slot.ID,
					SlotNumber:   slot.SlotNumber,
					VehicleType:  slot.VehicleType,
					PricePerHour: slot.PricePerHour,
					Coordinates:  []float64{float64(pos.Col), float64(pos.Row)},
				},
			}, nil
		case errors.Is(err, availability.ErrSlotTaken):
			return nil, fmt.Errorf("%w: slot %s", repository.ErrSlotConflict, ref)
		}
	}

	id, convErr := strconv.Atoi(ref)
	if convErr != nil {
		return nil, fmt.Errorf("%w: slot %q", repository.ErrNotFound, ref)
	}
	ps, err := s.slotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ps.PropertyID != p.ID {
		return nil, fmt.Errorf("%w: slot %q", repository.ErrNotFound, ref)
	}
	if _, taken := availability.BookedSet(held, domain.SlotKindLegacy, s.now())[ps.Ref()]; taken {
		return nil, fmt.Errorf("%w: slot %s", repository.ErrSlotConflict, ref)
	}
	return &resolvedSlot{
		kind:     domain.SlotKindLegacy,
		ref:      ps.Ref(),
		legacyID: ps.ID,
		snapshot: domain.SlotSnapshot{
			ID:           ps.Ref(),
			SlotNumber:   ps.SlotNumber,
			VehicleType:  ps.Type,
			PricePerHour: ps.PricePerHour,
		},
	}, nil
}

func (s *BookingService) reserve(ctx context.Context, propertyID int, rs *resolvedSlot) error {
	if rs.kind == domain.SlotKindLayout {
		return s.propRepo.ReserveLayoutSlot(ctx, propertyID, rs.ref)
	}
	return s.slotRepo.Reserve(ctx, rs.legacyID)
}

// release frees the slot held by b. Releasing an already free slot is not an error.
func (s *BookingService) release(ctx context.Context, b *domain.Booking) error {
	kind := b.SlotKind
	if kind == "" {
		kind = domain.SlotKindLegacy
		if strings.Contains(b.Slot, "-") {
			kind = domain.SlotKindLayout
		}
	}
	if kind == domain.SlotKindLayout {
		return s.propRepo.ReleaseLayoutSlot(ctx, b.PropertyID, b.Slot)
	}
	id, err := strconv.Atoi(b.Slot)
	if err != nil {
		return fmt.Errorf("%w: slot %q", repository.ErrNotFound, b.Slot)
	}
	return s.slotRepo.Release(ctx, id)
}

func (s *BookingService) notify(eventType string, b *domain.Booking) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastSlotEvent(domain.SlotEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		PropertyID: b.PropertyID,
		Slot:       b.Slot,
		SlotKind:   b.SlotKind,
		BookingID:  b.ID,
		Timestamp:  s.now().UTC(),
	})
}

func bookedHours(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours()))
}

// Create reserves the slot and records a confirmed booking.
func (s *BookingService) Create(ctx context.Context, id *domain.Identity, dto domain.CreateBookingDTO) (*domain.Booking, error) {
	if id == nil {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(dto.Slot) == "" {
		return nil, fmt.Errorf("%w: slot is required", ErrInvalidInput)
	}
	if dto.Hours < 0 || dto.TotalAmount < 0 {
		return nil, fmt.Errorf("%w: hours and amount must be non-negative", ErrInvalidInput)
	}

	start := s.now().UTC()
	if dto.StartTime != nil {
		start = dto.StartTime.UTC()
	}
	var end time.Time
	switch {
	case dto.EndTime != nil:
		end = dto.EndTime.UTC()
	case dto.Hours > 0:
		end = start.Add(time.Duration(dto.Hours) * time.Hour)
	default:
		return nil, fmt.Errorf("%w: end time or hours is required", ErrInvalidInput)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrInvalidInput)
	}

	p, err := s.propRepo.FindByID(ctx, dto.PropertyID)
	if err != nil {
		return nil, err
	}
	if !p.Approved {
		return nil, ErrPropertyNotApproved
	}
	if !p.Active {
		return nil, fmt.Errorf("%w: property is inactive", ErrPropertyNotApproved)
	}

	held, err := s.bookingRepo.FindByProperty(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	rs, err := s.resolveSlot(ctx, p, held, strings.TrimSpace(dto.Slot))
	if err != nil {
		if errors.Is(err, repository.ErrSlotConflict) {
			metrics.IncBookingConflict()
		}
		return nil, err
	}
	if err := s.reserve(ctx, p.ID, rs); err != nil {
		if errors.Is(err, repository.ErrSlotConflict) {
			metrics.IncBookingConflict()
			s.log.Info().Int("property_id", p.ID).Str("slot", rs.ref).Int("user_id", id.UserID).Msg("Booking rejected, slot already taken")
		}
		return nil, err
	}

	amount := dto.TotalAmount
	if amount == 0 {
		price := rs.snapshot.PricePerHour
		if price <= 0 {
			price = p.PricePerHour
		}
		amount = float64(bookedHours(start, end)) * price
	}
	info, err := json.Marshal(rs.snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode slot snapshot: %w", err)
	}

	b := &domain.Booking{
		UserID:      id.UserID,
		PropertyID:  p.ID,
		Slot:        rs.ref,
		SlotKind:    rs.kind,
		StartTime:   start,
		EndTime:     end,
		TotalAmount: amount,
		Status:      domain.BookingConfirmed,
		SlotInfo:    info,
	}
	created, err := s.bookingRepo.Create(ctx, b)
	if err != nil {
		if relErr := s.release(ctx, b); relErr != nil {
			s.log.Error().Err(relErr).Int("property_id", p.ID).Str("slot", rs.ref).Msg("Failed to release slot after booking insert failed")
		}
		return nil, err
	}

	metrics.IncBookingCreated(string(rs.kind))
	s.notify(domain.SlotEventBooked, created)
	s.log.Info().
		Int("booking_id", created.ID).
		Int("property_id", p.ID).
		Str("slot", rs.ref).
		Str("slot_kind", string(rs.kind)).
		Float64("amount", amount).
		Msg("Booking created")
	return created, nil
}

// Mine lists the caller's bookings enriched with property and slot details.
func (s *BookingService) Mine(ctx context.Context, id *domain.Identity) ([]domain.BookingView, error) {
	if id == nil {
		return nil, ErrForbidden
	}
	bookings, err := s.bookingRepo.FindByUser(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	props := make(map[int]*domain.Property)
	layouts := make(map[int]*domain.Layout)
	views := make([]domain.BookingView, 0, len(bookings))
	for _, b := range bookings {
		v := domain.BookingView{Booking: b, Hours: bookedHours(b.StartTime, b.EndTime)}

		p, seen := props[b.PropertyID]
		if !seen {
			p, err = s.propRepo.FindByID(ctx, b.PropertyID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			props[b.PropertyID] = p
			if p != nil {
				if l, lerr := p.Layout(); lerr == nil {
					layouts[b.PropertyID] = l
				}
			}
		}
		if p != nil {
			v.PropertyName = p.Name
			v.PropertyAddress = p.FullAddress
			v.PropertyContact = p.ContactNumber
		}
		s.describeSlot(ctx, &v, layouts[b.PropertyID])
		views = append(views, v)
	}
	return views, nil
}

func (s *BookingService) describeSlot(ctx context.Context, v *domain.BookingView, l *domain.Layout) {
	if l != nil && v.SlotKind != domain.SlotKindLegacy {
		if slot, ok := l.Slots.Lookup(v.Slot); ok {
			pos, _ := domain.ParsePosition(slot.ID)
			v.SlotNumber = slot.SlotNumber
			v.SlotType = string(slot.VehicleType)
			v.Coordinates = []float64{float64(pos.Col), float64(pos.Row)}
			return
		}
	}
	if snap, ok := v.Snapshot(); ok && snap.SlotNumber != "" {
		v.SlotNumber = snap.SlotNumber
		v.SlotType = string(snap.VehicleType)
		v.Coordinates = snap.Coordinates
		return
	}
	if legacyID, err := strconv.Atoi(v.Slot); err == nil {
		if ps, err := s.slotRepo.FindByID(ctx, legacyID); err == nil {
			v.SlotNumber = ps.SlotNumber
			v.SlotType = string(ps.Type)
			return
		}
	}
	v.SlotNumber = v.Slot
}

// Cancel cancels the caller's booking and frees its slot.
func (s *BookingService) Cancel(ctx context.Context, id *domain.Identity, bookingID int) (*domain.Booking, error) {
	if id == nil {
		return nil, ErrForbidden
	}
	b, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != id.UserID {
		return nil, ErrForbidden
	}
	if b.Status == domain.BookingCancelled {
		return b, nil
	}
	return s.cancel(ctx, b, "user")
}

func (s *BookingService) cancel(ctx context.Context, b *domain.Booking, reason string) (*domain.Booking, error) {
	held := b.Status.HoldsSlot()
	updated, err := s.bookingRepo.UpdateStatus(ctx, b.ID, domain.BookingCancelled)
	if err != nil {
		return nil, err
	}
	if held {
		if err := s.release(ctx, b); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("release slot for booking %d: %w", b.ID, err)
		}
		s.notify(domain.SlotEventReleased, updated)
	}
	metrics.IncBookingCancelled(reason)
	s.log.Info().Int("booking_id", b.ID).Str("reason", reason).Msg("Booking cancelled")
	return updated, nil
}

// HandlePaymentEvent applies a payment gateway outcome to its booking.
func (s *BookingService) HandlePaymentEvent(ctx context.Context, ev domain.PaymentEvent) error {
	b, err := s.bookingRepo.FindByID(ctx, ev.BookingID)
	if err != nil {
		return err
	}
	switch ev.Type {
	case domain.PaymentSucceeded:
		if !b.Status.HoldsSlot() {
			s.log.Warn().Int("booking_id", b.ID).Str("status", string(b.Status)).Msg("Payment succeeded for a booking that no longer holds its slot")
			return nil
		}
		if err := s.bookingRepo.SetPaymentRef(ctx, b.ID, ev.PaymentRef); err != nil {
			return err
		}
		if b.Status != domain.BookingConfirmed {
			if _, err := s.bookingRepo.UpdateStatus(ctx, b.ID, domain.BookingConfirmed); err != nil {
				return err
			}
		}
		s.log.Info().Int("booking_id", b.ID).Str("payment_ref", ev.PaymentRef).Msg("Payment recorded")
		return nil
	case domain.PaymentFailed:
		if b.Status == domain.BookingCancelled {
			return nil
		}
		_, err := s.cancel(ctx, b, "payment_failed")
		return err
	}
	return fmt.Errorf("%w: unknown payment event %q", ErrInvalidInput, ev.Type)
}

// ReleaseExpired completes bookings whose end time has passed and frees their slots.
func (s *BookingService) ReleaseExpired(ctx context.Context) (int, error) {
	now := s.now().UTC()
	expired, err := s.bookingRepo.FindExpiredHolding(ctx, now)
	if err != nil {
		return 0, err
	}
	released := 0
	for i := range expired {
		b := &expired[i]
		updated, err := s.bookingRepo.UpdateStatus(ctx, b.ID, domain.BookingCompleted)
		if err != nil {
			return released, err
		}
		if err := s.release(ctx, b); err != nil && !isNotFound(err) {
			return released, fmt.Errorf("release slot for booking %d: %w", b.ID, err)
		}
		s.notify(domain.SlotEventReleased, updated)
		released++
	}
	if released > 0 {
		s.log.Info().Int("released", released).Msg("Released expired bookings")
	}
	return released, nil
}
