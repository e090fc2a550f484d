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

const bookingColumns = `id, user_id, property_id, slot_ref, slot_kind, start_time, end_time, total_amount,
	status, slot_info, payment_ref, cancelled_at, created_at, updated_at`

type pgBookingRepository struct {
	db *sql.DB
}

func NewPgBookingRepository(db *sql.DB) repository.BookingRepository {
	return &pgBookingRepository{db: db}
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var slotInfo []byte
	err := row.Scan(&b.ID, &b.UserID, &b.PropertyID, &b.Slot, &b.SlotKind, &b.StartTime, &b.EndTime, &b.TotalAmount,
		&b.Status, &slotInfo, &b.PaymentRef, &b.CancelledAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(slotInfo) > 0 {
		b.SlotInfo = slotInfo
	}
	b.StartTime = b.StartTime.In(time.UTC)
	b.EndTime = b.EndTime.In(time.UTC)
	if b.CancelledAt.Valid {
		b.CancelledAt.Time = b.CancelledAt.Time.In(time.UTC)
	}
	b.CreatedAt = b.CreatedAt.In(time.UTC)
	b.UpdatedAt = b.UpdatedAt.In(time.UTC)
	return b, nil
}

func (r *pgBookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	query := `INSERT INTO bookings
	           (user_id, property_id, slot_ref, slot_kind, start_time, end_time, total_amount, status, slot_info, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING ` + bookingColumns
	created, err := scanBooking(r.db.QueryRowContext(ctx, query,
		b.UserID, b.PropertyID, b.Slot, b.SlotKind, b.StartTime, b.EndTime, b.TotalAmount, b.Status, nullableJSON(b.SlotInfo)))
	if err != nil {
		return nil, fmt.Errorf("BookingRepository.Create: %w", err)
	}
	return created, nil
}

func (r *pgBookingRepository) FindByID(ctx context.Context, id int) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("BookingRepository.FindByID: %w", err)
	}
	return b, nil
}

func (r *pgBookingRepository) FindByUser(ctx context.Context, userID int) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY start_time DESC`
	return r.list(ctx, "FindByUser", query, userID)
}

func (r *pgBookingRepository) FindByProperty(ctx context.Context, propertyID int) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE property_id = $1 ORDER BY start_time`
	return r.list(ctx, "FindByProperty", query, propertyID)
}

func (r *pgBookingRepository) FindByProperties(ctx context.Context, propertyIDs []int) ([]domain.Booking, error) {
	if len(propertyIDs) == 0 {
		return []domain.Booking{}, nil
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE property_id = ANY($1) ORDER BY start_time`
	return r.list(ctx, "FindByProperties", query, pq.Array(propertyIDs))
}

func (r *pgBookingRepository) FindExpiredHolding(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	           WHERE status = ANY($1) AND end_time <= $2
	           ORDER BY end_time`
	holding := []string{string(domain.BookingPending), string(domain.BookingConfirmed), string(domain.BookingActive)}
	return r.list(ctx, "FindExpiredHolding", query, pq.Array(holding), now)
}

func (r *pgBookingRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("BookingRepository.%s: %w", op, err)
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("BookingRepository.%s (scanning row): %w", op, err)
		}
		bookings = append(bookings, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("BookingRepository.%s (rows error): %w", op, err)
	}
	return bookings, nil
}

// UpdateStatus also stamps cancelled_at when the new status is cancelled.
func (r *pgBookingRepository) UpdateStatus(ctx context.Context, id int, status domain.BookingStatus) (*domain.Booking, error) {
	query := `UPDATE bookings
	           SET status = $2,
	               cancelled_at = CASE WHEN $2 = 'cancelled' THEN CURRENT_TIMESTAMP ELSE cancelled_at END,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1 RETURNING ` + bookingColumns
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id, string(status)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("BookingRepository.UpdateStatus: %w", err)
	}
	return b, nil
}

func (r *pgBookingRepository) SetPaymentRef(ctx context.Context, id int, ref string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE bookings SET payment_ref = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id, ref)
	if err != nil {
		return fmt.Errorf("BookingRepository.SetPaymentRef: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("BookingRepository.SetPaymentRef (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
