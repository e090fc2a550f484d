package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/availability"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/consistency"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/repository"
)

const (
	minFullAddressLen   = 10
	earthRadiusMeters   = 6371000.0
	DefaultSearchRadius = 40000.0
)

type PropertyService struct {
	propRepo    repository.PropertyRepository
	slotRepo    repository.PropertySlotRepository
	bookingRepo repository.BookingRepository
	log         *zerolog.Logger
	now         func() time.Time
}

func NewPropertyService(
	propRepo repository.PropertyRepository,
	slotRepo repository.PropertySlotRepository,
	bookingRepo repository.BookingRepository,
	log *zerolog.Logger,
) *PropertyService {
	return &PropertyService{
		propRepo:    propRepo,
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
		log:         orNop(log),
		now:         time.Now,
	}
}

func requireRole(id *domain.Identity, roles ...string) error {
	if id == nil {
		return ErrForbidden
	}
	for _, r := range roles {
		if id.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

func validateProperty(dto domain.CreatePropertyDTO) error {
	switch {
	case strings.TrimSpace(dto.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case strings.TrimSpace(dto.ContactNumber) == "":
		return fmt.Errorf("%w: contact number is required", ErrInvalidInput)
	case len(strings.TrimSpace(dto.FullAddress)) < minFullAddressLen:
		return fmt.Errorf("%w: complete address is required (minimum %d characters)", ErrInvalidInput, minFullAddressLen)
	case dto.Longitude < -180 || dto.Longitude > 180 || dto.Latitude < -90 || dto.Latitude > 90:
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	case dto.CarSlots < 0 || dto.BikeSlots < 0:
		return fmt.Errorf("%w: slot counts must be non-negative", ErrInvalidInput)
	case dto.PricePerHour <= 0 || math.IsNaN(dto.PricePerHour) || math.IsInf(dto.PricePerHour, 0):
		return fmt.Errorf("%w: price per hour must be positive", ErrInvalidInput)
	}
	return nil
}

// encodeLayout recounts and checks a layout before it is persisted.
func encodeLayout(l *domain.Layout) (json.RawMessage, error) {
	if l == nil {
		return nil, nil
	}
	l = l.Clone()
	if err := l.CheckBijection(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	l.Recount()
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return data, nil
}

// Create submits a property for owner approval.
func (s *PropertyService) Create(ctx context.Context, id *domain.Identity, dto domain.CreatePropertyDTO) (*domain.Property, error) {
	if err := requireRole(id, domain.RoleRental); err != nil {
		return nil, err
	}
	if err := validateProperty(dto); err != nil {
		return nil, err
	}
	layoutData, err := encodeLayout(dto.LayoutData)
	if err != nil {
		return nil, err
	}
	if dto.Longitude < 68 || dto.Longitude > 97 || dto.Latitude < 8 || dto.Latitude > 37 {
		s.log.Warn().Float64("lng", dto.Longitude).Float64("lat", dto.Latitude).Msg("Property coordinates outside the expected service region")
	}

	p := &domain.Property{
		RentalID:      id.UserID,
		Name:          strings.TrimSpace(dto.Name),
		Address:       dto.Address,
		FullAddress:   strings.TrimSpace(dto.FullAddress),
		ContactNumber: strings.TrimSpace(dto.ContactNumber),
		Longitude:     dto.Longitude,
		Latitude:      dto.Latitude,
		CarSlots:      dto.CarSlots,
		BikeSlots:     dto.BikeSlots,
		PricePerHour:  dto.PricePerHour,
		Active:        true,
		LayoutData:    layoutData,
	}
	created, err := s.propRepo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("property_id", created.ID).Int("rental_id", id.UserID).Bool("has_layout", created.HasLayout()).Msg("Property submitted for approval")
	return created, nil
}

func (s *PropertyService) ListApproved(ctx context.Context) ([]domain.Property, error) {
	return s.propRepo.FindApprovedActive(ctx)
}

// SearchNearby returns approved active properties within radius meters, nearest first.
func (s *PropertyService) SearchNearby(ctx context.Context, lat, lng, radius float64) ([]domain.NearbyProperty, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}
	if radius <= 0 {
		radius = DefaultSearchRadius
	}
	props, err := s.propRepo.FindApprovedActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.NearbyProperty, 0, len(props))
	for _, p := range props {
		d := haversine(lat, lng, p.Latitude, p.Longitude)
		if d <= radius {
			out = append(out, domain.NearbyProperty{Property: p, Distance: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

func haversine(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Get returns an approved property.
func (s *PropertyService) Get(ctx context.Context, propertyID int) (*domain.Property, error) {
	p, err := s.propRepo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !p.Approved {
		return nil, ErrPropertyNotApproved
	}
	return p, nil
}

func (s *PropertyService) Mine(ctx context.Context, id *domain.Identity) ([]domain.Property, error) {
	if err := requireRole(id, domain.RoleRental); err != nil {
		return nil, err
	}
	return s.propRepo.FindByRental(ctx, id.UserID)
}

func (s *PropertyService) Pending(ctx context.Context, id *domain.Identity) ([]domain.Property, error) {
	if err := requireRole(id, domain.RoleOwner); err != nil {
		return nil, err
	}
	return s.propRepo.FindPending(ctx)
}

// Approve marks the property approved and creates its legacy slot rows when it has none.
func (s *PropertyService) Approve(ctx context.Context, id *domain.Identity, propertyID int) (*domain.Property, error) {
	if err := requireRole(id, domain.RoleOwner); err != nil {
		return nil, err
	}
	p, err := s.propRepo.Approve(ctx, propertyID, id.UserID)
	if err != nil {
		return nil, err
	}
	created, err := s.ensureLegacySlots(ctx, p)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("property_id", p.ID).Int("owner_id", id.UserID).Int("slots_created", created).Msg("Property approved")
	return p, nil
}

func (s *PropertyService) ensureLegacySlots(ctx context.Context, p *domain.Property) (int, error) {
	count, err := s.slotRepo.CountByProperty(ctx, p.ID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	slots := domain.LegacySlotsFor(p)
	if len(slots) == 0 {
		return 0, nil
	}
	created, err := s.slotRepo.CreateBatch(ctx, slots)
	if err != nil {
		return 0, fmt.Errorf("create slots for property %d: %w", p.ID, err)
	}
	return len(created), nil
}

// BackfillLegacySlots creates legacy slot rows for approved properties that lack them.
func (s *PropertyService) BackfillLegacySlots(ctx context.Context) (int, error) {
	props, err := s.propRepo.FindApprovedWithoutSlots(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for i := range props {
		n, err := s.ensureLegacySlots(ctx, &props[i])
		if err != nil {
			return total, err
		}
		total += n
		s.log.Info().Int("property_id", props[i].ID).Int("slots_created", n).Msg("Backfilled legacy slots")
	}
	return total, nil
}

func (s *PropertyService) SetActive(ctx context.Context, id *domain.Identity, propertyID int, active bool) (*domain.Property, error) {
	if err := requireRole(id, domain.RoleOwner); err != nil {
		return nil, err
	}
	return s.propRepo.SetActive(ctx, propertyID, active)
}

// Delete removes the property along with its bookings and legacy slots.
func (s *PropertyService) Delete(ctx context.Context, id *domain.Identity, propertyID int) error {
	if err := requireRole(id, domain.RoleOwner); err != nil {
		return err
	}
	if err := s.propRepo.Delete(ctx, propertyID); err != nil {
		return err
	}
	s.log.Info().Int("property_id", propertyID).Int("owner_id", id.UserID).Msg("Property deleted")
	return nil
}

// UpdateLayout replaces the stored layout. Only the property's rental may do this.
func (s *PropertyService) UpdateLayout(ctx context.Context, id *domain.Identity, propertyID int, l *domain.Layout) (*domain.Property, error) {
	if err := requireRole(id, domain.RoleRental); err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("%w: layout data is required", ErrInvalidInput)
	}
	p, err := s.propRepo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p.RentalID != id.UserID {
		return nil, ErrForbidden
	}
	bookings, err := s.bookingRepo.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	l, err = carryHeldSlots(l, bookings, s.now())
	if err != nil {
		return nil, err
	}
	data, err := encodeLayout(l)
	if err != nil {
		return nil, err
	}
	updated, err := s.propRepo.UpdateLayout(ctx, propertyID, data)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("property_id", propertyID).Str("template", l.TemplateID).Msg("Property layout updated")
	return updated, nil
}

// carryHeldSlots marks every slot held by an active layout booking as booked in
// the replacement layout. Dropping such a slot is a conflict.
func carryHeldSlots(l *domain.Layout, bookings []domain.Booking, now time.Time) (*domain.Layout, error) {
	held := availability.BookedSet(bookings, domain.SlotKindLayout, now)
	if len(held) == 0 {
		return l, nil
	}
	refs := make([]string, 0, len(held))
	for ref := range held {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	out := l.Clone()
	for _, ref := range refs {
		pos, err := domain.ParsePosition(ref)
		if err != nil {
			continue // legacy slot id
		}
		slot, ok := out.Slots[pos]
		if !ok {
			return nil, fmt.Errorf("%w: slot %s has an active booking", repository.ErrSlotConflict, ref)
		}
		slot.Status = domain.SlotBooked
		out.Slots[pos] = slot
	}
	return out, nil
}

// Slots lists live slot availability, from the layout when one is stored and
// from legacy slot rows otherwise.
func (s *PropertyService) Slots(ctx context.Context, propertyID int, vehicle domain.VehicleType) ([]domain.SlotAvailability, error) {
	if vehicle != "" && !vehicle.Valid() {
		return nil, fmt.Errorf("%w: unknown vehicle type %q", ErrInvalidInput, vehicle)
	}
	p, err := s.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookingRepo.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	l, err := p.Layout()
	if err != nil {
		s.log.Warn().Err(err).Int("property_id", propertyID).Msg("Stored layout is unreadable, using legacy slots")
	}
	if l != nil && len(l.Slots) > 0 {
		return availability.List(p.ID, l, bookings, now, vehicle), nil
	}

	slots, err := s.slotRepo.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return availability.ListLegacy(p.ID, slots, bookings, now, vehicle), nil
}

func (s *PropertyService) ownedBy(ctx context.Context, id *domain.Identity, propertyID int) (*domain.Property, error) {
	p, err := s.propRepo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if id.Role != domain.RoleOwner && p.RentalID != id.UserID {
		return nil, ErrForbidden
	}
	return p, nil
}

// ValidateLayout checks the stored layout against the declared slot counts.
func (s *PropertyService) ValidateLayout(ctx context.Context, id *domain.Identity, propertyID int) (*consistency.Report, error) {
	if err := requireRole(id, domain.RoleRental, domain.RoleOwner); err != nil {
		return nil, err
	}
	p, err := s.ownedBy(ctx, id, propertyID)
	if err != nil {
		return nil, err
	}
	r := consistency.Validate(p)
	if !r.IsValid {
		s.log.Info().Int("property_id", p.ID).Strs("issues", r.Issues).Msg("Layout consistency issues")
	}
	return r, nil
}

func (s *PropertyService) DebugLayout(ctx context.Context, id *domain.Identity, propertyID int) (*consistency.Analysis, error) {
	if err := requireRole(id, domain.RoleOwner); err != nil {
		return nil, err
	}
	p, err := s.propRepo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return consistency.Analyze(p), nil
}

// RentalStats aggregates the dashboard numbers for the caller's properties.
func (s *PropertyService) RentalStats(ctx context.Context, id *domain.Identity) (*domain.RentalStats, error) {
	if err := requireRole(id, domain.RoleRental); err != nil {
		return nil, err
	}
	props, err := s.propRepo.FindByRental(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	stats := &domain.RentalStats{TotalProperties: len(props)}
	if len(props) == 0 {
		return stats, nil
	}

	ids := make([]int, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
		stats.TotalCarSlots += p.CarSlots
		stats.TotalBikeSlots += p.BikeSlots
	}
	bookings, err := s.bookingRepo.FindByProperties(ctx, ids)
	if err != nil {
		return nil, err
	}
	slots, err := s.slotRepo.FindByProperties(ctx, ids)
	if err != nil {
		return nil, err
	}
	legacyTypes := make(map[string]domain.VehicleType, len(slots))
	for _, sl := range slots {
		legacyTypes[sl.Ref()] = sl.Type
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	stats.TotalBookings = len(bookings)
	for _, b := range bookings {
		if b.Status != domain.BookingCancelled {
			stats.TotalRevenue += b.TotalAmount
			if !b.CreatedAt.Before(monthStart) {
				stats.MonthlyRevenue += b.TotalAmount
			}
		}
		if !b.IsActive(now) {
			continue
		}
		stats.ActiveBookings++
		switch bookedVehicle(b, legacyTypes) {
		case domain.VehicleCar:
			stats.CarsBooked++
		case domain.VehicleBike:
			stats.BikesBooked++
		}
	}

	if total := stats.TotalCarSlots + stats.TotalBikeSlots; total > 0 {
		rate := float64(stats.CarsBooked+stats.BikesBooked) / float64(total) * 100
		stats.OccupancyRate = math.Round(rate*10) / 10
	}
	stats.AvailableCarSlots = stats.TotalCarSlots - stats.CarsBooked
	stats.AvailableBikeSlots = stats.TotalBikeSlots - stats.BikesBooked
	return stats, nil
}

func bookedVehicle(b domain.Booking, legacyTypes map[string]domain.VehicleType) domain.VehicleType {
	if snap, ok := b.Snapshot(); ok && snap.VehicleType != "" {
		return snap.VehicleType
	}
	if b.SlotKind != domain.SlotKindLayout {
		return legacyTypes[b.Slot]
	}
	return ""
}

// isNotFound reports whether err means the requested record does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, availability.ErrUnknownSlot)
}
