package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/repository"
)

const propertySlotColumns = `id, property_id, slot_number, type, is_booked, price_per_hour, created_at, updated_at`

type pgPropertySlotRepository struct {
	db *sql.DB
}

func NewPgPropertySlotRepository(db *sql.DB) repository.PropertySlotRepository {
	return &pgPropertySlotRepository{db: db}
}

func scanPropertySlot(row rowScanner) (*domain.PropertySlot, error) {
	s := &domain.PropertySlot{}
	if err := row.Scan(&s.ID, &s.PropertyID, &s.SlotNumber, &s.Type, &s.IsBooked, &s.PricePerHour, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.CreatedAt = s.CreatedAt.In(time.UTC)
	s.UpdatedAt = s.UpdatedAt.In(time.UTC)
	return s, nil
}

// CreateBatch inserts all slots in one transaction.
func (r *pgPropertySlotRepository) CreateBatch(ctx context.Context, slots []domain.PropertySlot) ([]domain.PropertySlot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("PropertySlotRepository.CreateBatch (begin): %w", err)
	}
	defer rollback(tx)

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO property_slots
	           (property_id, slot_number, type, is_booked, price_per_hour, created_at, updated_at)
	           VALUES ($1, $2, $3, false, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING `+propertySlotColumns)
	if err != nil {
		return nil, fmt.Errorf("PropertySlotRepository.CreateBatch (prepare): %w", err)
	}
	defer stmt.Close()

	created := make([]domain.PropertySlot, 0, len(slots))
	for _, s := range slots {
		row, err := scanPropertySlot(stmt.QueryRowContext(ctx, s.PropertyID, s.SlotNumber, s.Type, s.PricePerHour))
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w: slot '%s' already exists for property %d", repository.ErrDuplicateEntry, s.SlotNumber, s.PropertyID)
			}
			return nil, fmt.Errorf("PropertySlotRepository.CreateBatch: %w", err)
		}
		created = append(created, *row)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("PropertySlotRepository.CreateBatch (commit): %w", err)
	}
	return created, nil
}

func (r *pgPropertySlotRepository) FindByID(ctx context.Context, id int) (*domain.PropertySlot, error) {
	query := `SELECT ` + propertySlotColumns + ` FROM property_slots WHERE id = $1`
	s, err := scanPropertySlot(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("PropertySlotRepository.FindByID: %w", err)
	}
	return s, nil
}

func (r *pgPropertySlotRepository) FindByProperty(ctx context.Context, propertyID int) ([]domain.PropertySlot, error) {
	query := `SELECT ` + propertySlotColumns + ` FROM property_slots WHERE property_id = $1 ORDER BY id`
	return r.list(ctx, "FindByProperty", query, propertyID)
}

func (r *pgPropertySlotRepository) FindByProperties(ctx context.Context, propertyIDs []int) ([]domain.PropertySlot, error) {
	if len(propertyIDs) == 0 {
		return []domain.PropertySlot{}, nil
	}
	query := `SELECT ` + propertySlotColumns + ` FROM property_slots WHERE property_id = ANY($1) ORDER BY id`
	return r.list(ctx, "FindByProperties", query, pq.Array(propertyIDs))
}

func (r *pgPropertySlotRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.PropertySlot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("PropertySlotRepository.%s: %w", op, err)
	}
	defer rows.Close()

	slots := []domain.PropertySlot{}
	for rows.Next() {
		s, err := scanPropertySlot(rows)
		if err != nil {
			return nil, fmt.Errorf("PropertySlotRepository.%s (scanning row): %w", op, err)
		}
		slots = append(slots, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("PropertySlotRepository.%s (rows error): %w", op, err)
	}
	return slots, nil
}

func (r *pgPropertySlotRepository) CountByProperty(ctx context.Context, propertyID int) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM property_slots WHERE property_id = $1`, propertyID).Scan(&n); err != nil {
		return 0, fmt.Errorf("PropertySlotRepository.CountByProperty: %w", err)
	}
	return n, nil
}

func (r *pgPropertySlotRepository) Reserve(ctx context.Context, id int) error {
	query := `UPDATE property_slots SET is_booked = true, updated_at = CURRENT_TIMESTAMP WHERE id = $1 AND is_booked = false`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("PropertySlotRepository.Reserve: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("PropertySlotRepository.Reserve (checking rows affected): %w", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM property_slots WHERE id = $1`, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("PropertySlotRepository.Reserve (probe): %w", err)
	}
	return repository.ErrSlotConflict
}

func (r *pgPropertySlotRepository) Release(ctx context.Context, id int) error {
	query := `UPDATE property_slots SET is_booked = false, updated_at = CURRENT_TIMESTAMP WHERE id = $1 AND is_booked = true`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("PropertySlotRepository.Release: %w", err)
	}
	return nil
}
