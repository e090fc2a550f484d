package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/repository"
)

const propertyColumns = `id, rental_id, owner_id, name, address, full_address, contact_number,
	longitude, latitude, car_slots, bike_slots, price_per_hour, approved, active, layout_data,
	created_at, updated_at`

type pgPropertyRepository struct {
	db *sql.DB
}

func NewPgPropertyRepository(db *sql.DB) repository.PropertyRepository {
	return &pgPropertyRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*domain.Property, error) {
	p := &domain.Property{}
	var layout []byte
	err := row.Scan(&p.ID, &p.RentalID, &p.OwnerID, &p.Name, &p.Address, &p.FullAddress, &p.ContactNumber,
		&p.Longitude, &p.Latitude, &p.CarSlots, &p.BikeSlots, &p.PricePerHour, &p.Approved, &p.Active, &layout,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(layout) > 0 {
		p.LayoutData = json.RawMessage(layout)
	}
	p.CreatedAt = p.CreatedAt.In(time.UTC)
	p.UpdatedAt = p.UpdatedAt.In(time.UTC)
	return p, nil
}

// nullableJSON maps an empty document to SQL NULL.
func nullableJSON(data json.RawMessage) any {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return []byte(data)
}

func (r *pgPropertyRepository) Create(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	query := `INSERT INTO parking_properties
	           (rental_id, name, address, full_address, contact_number, longitude, latitude,
	            car_slots, bike_slots, price_per_hour, approved, active, layout_data, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false, true, $11, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING ` + propertyColumns
	created, err := scanProperty(r.db.QueryRowContext(ctx, query,
		p.RentalID, p.Name, p.Address, p.FullAddress, p.ContactNumber, p.Longitude, p.Latitude,
		p.CarSlots, p.BikeSlots, p.PricePerHour, nullableJSON(p.LayoutData)))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: property '%s' already exists", repository.ErrDuplicateEntry, p.Name)
		}
		return nil, fmt.Errorf("PropertyRepository.Create: %w", err)
	}
	return created, nil
}

func (r *pgPropertyRepository) FindByID(ctx context.Context, id int) (*domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM parking_properties WHERE id = $1`
	p, err := scanProperty(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("PropertyRepository.FindByID: %w", err)
	}
	return p, nil
}

func (r *pgPropertyRepository) FindApprovedActive(ctx context.Context) ([]domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM parking_properties WHERE approved AND active ORDER BY created_at DESC`
	return r.list(ctx, "FindApprovedActive", query)
}

func (r *pgPropertyRepository) FindByRental(ctx context.Context, rentalID int) ([]domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM parking_properties WHERE rental_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, "FindByRental", query, rentalID)
}

func (r *pgPropertyRepository) FindPending(ctx context.Context) ([]domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM parking_properties WHERE NOT approved ORDER BY created_at`
	return r.list(ctx, "FindPending", query)
}

func (r *pgPropertyRepository) FindApprovedWithoutSlots(ctx context.Context) ([]domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM parking_properties p
	           WHERE p.approved
	             AND NOT EXISTS (SELECT 1 FROM property_slots s WHERE s.property_id = p.id)
	           ORDER BY p.id`
	return r.list(ctx, "FindApprovedWithoutSlots", query)
}

func (r *pgPropertyRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.Property, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("PropertyRepository.%s: %w", op, err)
	}
	defer rows.Close()

	properties := []domain.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("PropertyRepository.%s (scanning row): %w", op, err)
		}
		properties = append(properties, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("PropertyRepository.%s (rows error): %w", op, err)
	}
	return properties, nil
}

func (r *pgPropertyRepository) Approve(ctx context.Context, id, ownerID int) (*domain.Property, error) {
	query := `UPDATE parking_properties SET approved = true, owner_id = $2, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1 RETURNING ` + propertyColumns
	return r.update(ctx, "Approve", query, id, ownerID)
}

func (r *pgPropertyRepository) SetActive(ctx context.Context, id int, active bool) (*domain.Property, error) {
	query := `UPDATE parking_properties SET active = $2, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1 RETURNING ` + propertyColumns
	return r.update(ctx, "SetActive", query, id, active)
}

func (r *pgPropertyRepository) UpdateLayout(ctx context.Context, id int, layout json.RawMessage) (*domain.Property, error) {
	query := `UPDATE parking_properties SET layout_data = $2, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1 RETURNING ` + propertyColumns
	return r.update(ctx, "UpdateLayout", query, id, nullableJSON(layout))
}

func (r *pgPropertyRepository) update(ctx context.Context, op, query string, args ...any) (*domain.Property, error) {
	p, err := scanProperty(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("PropertyRepository.%s: %w", op, err)
	}
	return p, nil
}

func (r *pgPropertyRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("PropertyRepository.Delete (begin): %w", err)
	}
	defer rollback(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE property_id = $1`, id); err != nil {
		return fmt.Errorf("PropertyRepository.Delete (bookings): %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM property_slots WHERE property_id = $1`, id); err != nil {
		return fmt.Errorf("PropertyRepository.Delete (slots): %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM parking_properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("PropertyRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("PropertyRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("PropertyRepository.Delete (commit): %w", err)
	}
	return nil
}

// ReserveLayoutSlot is a single conditional UPDATE: the status check and the
// write cannot interleave with another reservation of the same slot.
func (r *pgPropertyRepository) ReserveLayoutSlot(ctx context.Context, propertyID int, slotID string) error {
	query := `UPDATE parking_properties
	           SET layout_data = jsonb_set(
	                   jsonb_set(layout_data, ARRAY['slots', $2::text, 'status'], '"booked"'::jsonb),
	                   '{availableSlots}',
	                   to_jsonb(GREATEST(COALESCE((layout_data ->> 'availableSlots')::int, 0) - 1, 0))),
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1
	             AND layout_data -> 'slots' -> $2::text IS NOT NULL
	             AND COALESCE(layout_data -> 'slots' -> $2::text ->> 'status', 'available') NOT IN ('booked', 'unavailable')`
	result, err := r.db.ExecContext(ctx, query, propertyID, slotID)
	if err != nil {
		return fmt.Errorf("PropertyRepository.ReserveLayoutSlot: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("PropertyRepository.ReserveLayoutSlot (checking rows affected): %w", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	var exists bool
	probe := `SELECT layout_data -> 'slots' -> $2::text IS NOT NULL FROM parking_properties WHERE id = $1`
	if err := r.db.QueryRowContext(ctx, probe, propertyID, slotID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("PropertyRepository.ReserveLayoutSlot (probe): %w", err)
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrSlotConflict
}

// ReleaseLayoutSlot returns a booked slot to available. Releasing a slot that
// is not booked changes nothing.
func (r *pgPropertyRepository) ReleaseLayoutSlot(ctx context.Context, propertyID int, slotID string) error {
	query := `UPDATE parking_properties
	           SET layout_data = jsonb_set(
	                   jsonb_set(layout_data, ARRAY['slots', $2::text, 'status'], '"available"'::jsonb),
	                   '{availableSlots}',
	                   to_jsonb(COALESCE((layout_data ->> 'availableSlots')::int, 0) + 1)),
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1
	             AND layout_data -> 'slots' -> $2::text ->> 'status' = 'booked'`
	if _, err := r.db.ExecContext(ctx, query, propertyID, slotID); err != nil {
		return fmt.Errorf("PropertyRepository.ReleaseLayoutSlot: %w", err)
	}
	return nil
}
