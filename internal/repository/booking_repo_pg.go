package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
)

// BookingRepository is the sole writer of booking rows and of the seat
// counts and READY flips on queue entries.
type BookingRepository interface {
	CreateBookings(ctx context.Context, bookings []domain.Booking) (*BookingWrite, error)
	GetByCode(ctx context.Context, code string) (*domain.Booking, error)
	ListByQueue(ctx context.Context, queueID int64) ([]domain.Booking, error)
	Verify(ctx context.Context, code, staffID string) (*domain.Booking, bool, error)
}

// BookingWrite reports what one booking transaction did: the persisted
// rows plus any queue entries that hit zero seats, which the caller turns
// into trip-start records.
type BookingWrite struct {
	Bookings    []domain.Booking
	BecameReady []domain.QueueEntry
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

// CreateBookings commits a whole multi-vehicle booking in one transaction.
// Each leg decrements seats with a conditional update; a vehicle whose
// availability changed since the caller's snapshot fails the condition and
// rolls back every leg, so either all bookings exist or none do. The
// conditional update is the only guard needed, so the transaction runs at
// read committed: under repeatable read the loser of a same-row race would
// abort with a serialization failure instead of failing the condition.
func (r *PGBookingRepository) CreateBookings(ctx context.Context, bookings []domain.Booking) (*BookingWrite, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, domain.StoreError{Op: "booking.create", Err: err}
	}
	defer tx.Rollback(ctx)

	result := &BookingWrite{Bookings: make([]domain.Booking, 0, len(bookings))}
	for _, b := range bookings {
		entry, err := scanEntry(tx.QueryRow(ctx, `UPDATE vehicle_queue
			SET available_seats = available_seats - $1
			WHERE id=$2 AND available_seats >= $1 AND `+activeFilter+`
			RETURNING `+entryColumns, b.SeatsBooked, b.QueueID))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInsufficientSeats
		}
		if err != nil {
			return nil, domain.StoreError{Op: "booking.create", Err: err}
		}

		if err := tx.QueryRow(ctx, `INSERT INTO bookings
			(queue_id, seats_booked, total_amount, booking_type, payment_status, verification_code, is_verified, created_by, customer_phone, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, false, $7, $8, now())
			RETURNING id, created_at`,
			b.QueueID, b.SeatsBooked, b.TotalAmountCents, b.BookingType, b.PaymentStatus,
			b.VerificationCode, b.CreatedBy, b.CustomerPhone).
			Scan(&b.ID, &b.CreatedAt); err != nil {
			return nil, domain.StoreError{Op: "booking.create", Err: err}
		}
		result.Bookings = append(result.Bookings, b)

		if entry.AvailableSeats == 0 {
			// The condition makes the READY flip one-shot: only the
			// transaction that performs it reports the entry as newly
			// ready, so the trip-start record is produced once.
			tag, err := tx.Exec(ctx, `UPDATE vehicle_queue SET status='READY' WHERE id=$1 AND status <> 'READY'`, entry.ID)
			if err != nil {
				return nil, domain.StoreError{Op: "booking.create", Err: err}
			}
			if tag.RowsAffected() == 1 {
				entry.Status = domain.QueueStatusReady
				result.BecameReady = append(result.BecameReady, *entry)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StoreError{Op: "booking.create", Err: err}
	}
	return result, nil
}

const bookingColumns = `id, queue_id, seats_booked, total_amount, booking_type, payment_status,
	verification_code, is_verified, verified_at, verified_by, created_by, customer_phone, created_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var verifiedBy, phone *string
	if err := row.Scan(&b.ID, &b.QueueID, &b.SeatsBooked, &b.TotalAmountCents, &b.BookingType,
		&b.PaymentStatus, &b.VerificationCode, &b.IsVerified, &b.VerifiedAt, &verifiedBy,
		&b.CreatedBy, &phone, &b.CreatedAt); err != nil {
		return nil, err
	}
	if verifiedBy != nil {
		b.VerifiedBy = *verifiedBy
	}
	if phone != nil {
		b.CustomerPhone = *phone
	}
	return &b, nil
}

func (r *PGBookingRepository) GetByCode(ctx context.Context, code string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE verification_code=$1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvalidVerificationCode
	}
	if err != nil {
		return nil, domain.StoreError{Op: "booking.get", Err: err}
	}
	return b, nil
}

func (r *PGBookingRepository) ListByQueue(ctx context.Context, queueID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE queue_id=$1 ORDER BY created_at ASC`, queueID)
	if err != nil {
		return nil, domain.StoreError{Op: "booking.list", Err: err}
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, domain.StoreError{Op: "booking.list", Err: err}
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// Verify flips is_verified once. The conditional update decides: if it
// touches no row, the code is either unknown or already verified, and a
// follow-up read distinguishes the two without altering verified_at.
func (r *PGBookingRepository) Verify(ctx context.Context, code, staffID string) (*domain.Booking, bool, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings
		SET is_verified=true, verified_at=$2, verified_by=$3
		WHERE verification_code=$1 AND is_verified=false
		RETURNING `+bookingColumns, code, time.Now(), staffID))
	if err == nil {
		return b, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, domain.StoreError{Op: "booking.verify", Err: err}
	}

	existing, err := r.GetByCode(ctx, code)
	if err != nil {
		return nil, false, err
	}
	return existing, true, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
