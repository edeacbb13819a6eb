package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
)

// DB is the slice of pgxpool.Pool the repositories use. Tests substitute a
// mock connection for it.
type DB interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// QueueRepository owns VehicleQueue rows: position assignment, reordering,
// and the atomic exit/move/depart operations. It is the only writer of
// queue_position; seat counts belong to BookingRepository.
type QueueRepository interface {
	Enter(ctx context.Context, vehicle *domain.Vehicle, destinationID, destinationName string, queueType domain.QueueType, basePriceCents int64) (*domain.QueueEntry, error)
	Exit(ctx context.Context, vehicleID int64) (*domain.QueueEntry, error)
	Move(ctx context.Context, vehicleID int64, destinationID, destinationName string, basePriceCents int64) (removed, created *domain.QueueEntry, err error)
	SetStatus(ctx context.Context, vehicleID int64, status domain.QueueStatus) (*domain.QueueEntry, error)
	ActiveByVehicle(ctx context.Context, vehicleID int64) (*domain.QueueEntry, error)
	ListByDestination(ctx context.Context, destinationID string) ([]domain.QueueEntry, error)
	OvernightDestinations(ctx context.Context) ([]string, error)
	TransferOvernight(ctx context.Context, destinationID string) (int, error)
}

type PGQueueRepository struct {
	db DB
}

func NewQueueRepository(db DB) QueueRepository {
	return &PGQueueRepository{db: db}
}

const entryColumns = `id, vehicle_id, license_plate, destination_id, destination_name, queue_type,
	queue_position, status, entered_at, available_seats, total_seats, base_price,
	estimated_departure, actual_departure`

const activeFilter = `status IN ('WAITING','LOADING','READY')`

func scanEntry(row pgx.Row) (*domain.QueueEntry, error) {
	var e domain.QueueEntry
	if err := row.Scan(&e.ID, &e.VehicleID, &e.LicensePlate, &e.DestinationID, &e.DestinationName,
		&e.QueueType, &e.QueuePosition, &e.Status, &e.EnteredAt, &e.AvailableSeats,
		&e.TotalSeats, &e.BasePriceCents, &e.EstimatedDeparture, &e.ActualDeparture); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PGQueueRepository) Enter(ctx context.Context, vehicle *domain.Vehicle, destinationID, destinationName string, queueType domain.QueueType, basePriceCents int64) (*domain.QueueEntry, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, domain.StoreError{Op: "queue.enter", Err: err}
	}
	defer tx.Rollback(ctx)

	// One active entry per vehicle across all destinations and both
	// queue types.
	var existing int64
	err = tx.QueryRow(ctx, `SELECT id FROM vehicle_queue WHERE vehicle_id=$1 AND `+activeFilter+` FOR UPDATE`, vehicle.ID).Scan(&existing)
	if err == nil {
		return nil, domain.ErrAlreadyQueued
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.StoreError{Op: "queue.enter", Err: err}
	}

	pos, err := tailPosition(ctx, tx, destinationID, queueType)
	if err != nil {
		return nil, domain.StoreError{Op: "queue.enter", Err: err}
	}

	entry := &domain.QueueEntry{
		VehicleID:       vehicle.ID,
		LicensePlate:    vehicle.LicensePlate,
		DestinationID:   destinationID,
		DestinationName: destinationName,
		QueueType:       queueType,
		QueuePosition:   pos + 1,
		Status:          domain.QueueStatusWaiting,
		AvailableSeats:  vehicle.Capacity,
		TotalSeats:      vehicle.Capacity,
		BasePriceCents:  basePriceCents,
	}
	if err := tx.QueryRow(ctx, `INSERT INTO vehicle_queue
		(vehicle_id, license_plate, destination_id, destination_name, queue_type, queue_position, status, entered_at, available_seats, total_seats, base_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), $8, $9, $10)
		RETURNING id, entered_at`,
		entry.VehicleID, entry.LicensePlate, entry.DestinationID, entry.DestinationName,
		entry.QueueType, entry.QueuePosition, entry.Status, entry.AvailableSeats,
		entry.TotalSeats, entry.BasePriceCents).
		Scan(&entry.ID, &entry.EnteredAt); err != nil {
		return nil, domain.StoreError{Op: "queue.enter", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StoreError{Op: "queue.enter", Err: err}
	}
	return entry, nil
}

// tailPosition reads and locks the current last position of a partition.
// Locking the tail row (instead of an aggregate, which cannot take FOR
// UPDATE) is what keeps two concurrent enters from sharing a position.
func tailPosition(ctx context.Context, tx pgx.Tx, destinationID string, queueType domain.QueueType) (int, error) {
	var pos int
	err := tx.QueryRow(ctx, `SELECT queue_position FROM vehicle_queue
		WHERE destination_id=$1 AND queue_type=$2 AND `+activeFilter+`
		ORDER BY queue_position DESC LIMIT 1 FOR UPDATE`, destinationID, queueType).Scan(&pos)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return pos, nil
}

func (r *PGQueueRepository) Exit(ctx context.Context, vehicleID int64) (*domain.QueueEntry, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, domain.StoreError{Op: "queue.exit", Err: err}
	}
	defer tx.Rollback(ctx)

	entry, err := removeActiveEntry(ctx, tx, vehicleID, nil)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StoreError{Op: "queue.exit", Err: err}
	}
	return entry, nil
}

// removeActiveEntry deletes the vehicle's active entry after the booking
// guard and resequences the partition it left. When departedAt is non-nil
// the row is stamped DEPARTED with that time before deletion, so the
// returned entry carries the departure for downstream records.
func removeActiveEntry(ctx context.Context, tx pgx.Tx, vehicleID int64, departedAt *time.Time) (*domain.QueueEntry, error) {
	entry, err := scanEntry(tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM vehicle_queue
		WHERE vehicle_id=$1 AND `+activeFilter+` FOR UPDATE`, vehicleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrQueueEntryNotFound
	}
	if err != nil {
		return nil, domain.StoreError{Op: "queue.remove", Err: err}
	}

	if departedAt == nil {
		var blocked bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings
			WHERE queue_id=$1 AND payment_status IN ('PAID','PENDING'))`, entry.ID).Scan(&blocked); err != nil {
			return nil, domain.StoreError{Op: "queue.remove", Err: err}
		}
		if blocked {
			return nil, domain.ErrHasActiveBookings
		}
	} else {
		// Departing with paid seats is the whole point, so no booking
		// guard. Record the departure before the row goes away.
		if _, err := tx.Exec(ctx, `UPDATE vehicle_queue SET status='DEPARTED', actual_departure=$1 WHERE id=$2`, *departedAt, entry.ID); err != nil {
			return nil, domain.StoreError{Op: "queue.remove", Err: err}
		}
		entry.Status = domain.QueueStatusDeparted
		entry.ActualDeparture = departedAt
	}

	if _, err := tx.Exec(ctx, `DELETE FROM vehicle_queue WHERE id=$1`, entry.ID); err != nil {
		return nil, domain.StoreError{Op: "queue.remove", Err: err}
	}
	if err := resequence(ctx, tx, entry.DestinationID, entry.QueueType); err != nil {
		return nil, domain.StoreError{Op: "queue.remove", Err: err}
	}
	return entry, nil
}

// resequence rewrites the partition's positions to 1..N in current
// position order. Ordering by position rather than entered_at matters:
// entries moved out of the overnight queue keep their overnight
// entered_at, and must stay behind the regular entries they were
// appended after. O(N) per structural change; N is one destination's
// queue at one station.
func resequence(ctx context.Context, tx pgx.Tx, destinationID string, queueType domain.QueueType) error {
	rows, err := tx.Query(ctx, `SELECT id FROM vehicle_queue
		WHERE destination_id=$1 AND queue_type=$2 AND `+activeFilter+`
		ORDER BY queue_position ASC FOR UPDATE`, destinationID, queueType)
	if err != nil {
		return err
	}
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for i, id := range ids {
		if _, err := tx.Exec(ctx, `UPDATE vehicle_queue SET queue_position=$1 WHERE id=$2`, i+1, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGQueueRepository) Move(ctx context.Context, vehicleID int64, destinationID, destinationName string, basePriceCents int64) (*domain.QueueEntry, *domain.QueueEntry, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, nil, domain.StoreError{Op: "queue.move", Err: err}
	}
	defer tx.Rollback(ctx)

	// Exit and re-enter share this transaction: the vehicle is never
	// observable in both queues, or in neither.
	old, err := removeActiveEntry(ctx, tx, vehicleID, nil)
	if err != nil {
		return nil, nil, err
	}

	pos, err := tailPosition(ctx, tx, destinationID, domain.QueueTypeRegular)
	if err != nil {
		return nil, nil, domain.StoreError{Op: "queue.move", Err: err}
	}

	entry := &domain.QueueEntry{
		VehicleID:       old.VehicleID,
		LicensePlate:    old.LicensePlate,
		DestinationID:   destinationID,
		DestinationName: destinationName,
		QueueType:       domain.QueueTypeRegular,
		QueuePosition:   pos + 1,
		Status:          domain.QueueStatusWaiting,
		AvailableSeats:  old.TotalSeats,
		TotalSeats:      old.TotalSeats,
		BasePriceCents:  basePriceCents,
	}
	if err := tx.QueryRow(ctx, `INSERT INTO vehicle_queue
		(vehicle_id, license_plate, destination_id, destination_name, queue_type, queue_position, status, entered_at, available_seats, total_seats, base_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), $8, $9, $10)
		RETURNING id, entered_at`,
		entry.VehicleID, entry.LicensePlate, entry.DestinationID, entry.DestinationName,
		entry.QueueType, entry.QueuePosition, entry.Status, entry.AvailableSeats,
		entry.TotalSeats, entry.BasePriceCents).
		Scan(&entry.ID, &entry.EnteredAt); err != nil {
		return nil, nil, domain.StoreError{Op: "queue.move", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, domain.StoreError{Op: "queue.move", Err: err}
	}
	return old, entry, nil
}

func (r *PGQueueRepository) SetStatus(ctx context.Context, vehicleID int64, status domain.QueueStatus) (*domain.QueueEntry, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, domain.StoreError{Op: "queue.status", Err: err}
	}
	defer tx.Rollback(ctx)

	entry, err := scanEntry(tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM vehicle_queue
		WHERE vehicle_id=$1 AND `+activeFilter+` FOR UPDATE`, vehicleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrQueueEntryNotFound
	}
	if err != nil {
		return nil, domain.StoreError{Op: "queue.status", Err: err}
	}

	if !entry.Status.CanAdvanceTo(status) {
		return nil, domain.ErrInvalidStatusChange
	}

	if status == domain.QueueStatusDeparted {
		// Removal and resequencing are the same as an exit, minus the
		// booking guard.
		now := time.Now()
		departed, err := removeActiveEntry(ctx, tx, vehicleID, &now)
		if err != nil {
			return nil, err
		}
		entry = departed
	} else {
		if _, err := tx.Exec(ctx, `UPDATE vehicle_queue SET status=$1 WHERE id=$2`, status, entry.ID); err != nil {
			return nil, domain.StoreError{Op: "queue.status", Err: err}
		}
		entry.Status = status
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StoreError{Op: "queue.status", Err: err}
	}
	return entry, nil
}

func (r *PGQueueRepository) ActiveByVehicle(ctx context.Context, vehicleID int64) (*domain.QueueEntry, error) {
	entry, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM vehicle_queue
		WHERE vehicle_id=$1 AND `+activeFilter, vehicleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrQueueEntryNotFound
	}
	if err != nil {
		return nil, domain.StoreError{Op: "queue.active", Err: err}
	}
	return entry, nil
}

// ListByDestination is the allocation snapshot: both queue types,
// overnight ahead of regular, positions ascending within each. Full
// vehicles stay in the snapshot, so callers can tell an empty queue
// from a sold-out one.
func (r *PGQueueRepository) ListByDestination(ctx context.Context, destinationID string) ([]domain.QueueEntry, error) {
	return r.queryEntries(ctx, `SELECT `+entryColumns+` FROM vehicle_queue
		WHERE destination_id=$1 AND `+activeFilter+`
		ORDER BY CASE queue_type WHEN 'OVERNIGHT' THEN 0 ELSE 1 END, queue_position ASC`, destinationID)
}

func (r *PGQueueRepository) queryEntries(ctx context.Context, sql string, args ...any) ([]domain.QueueEntry, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.StoreError{Op: "queue.list", Err: err}
	}
	defer rows.Close()

	entries := make([]domain.QueueEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, domain.StoreError{Op: "queue.list", Err: err}
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError{Op: "queue.list", Err: err}
	}
	return entries, nil
}

func (r *PGQueueRepository) OvernightDestinations(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT destination_id FROM vehicle_queue
		WHERE queue_type='OVERNIGHT' AND `+activeFilter)
	if err != nil {
		return nil, domain.StoreError{Op: "queue.overnight", Err: err}
	}
	defer rows.Close()

	var dests []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, domain.StoreError{Op: "queue.overnight", Err: err}
		}
		dests = append(dests, d)
	}
	return dests, rows.Err()
}

// TransferOvernight rewrites one destination's overnight entries to the
// regular queue in their original relative order, appended after the
// regular tail. One transaction per destination group.
func (r *PGQueueRepository) TransferOvernight(ctx context.Context, destinationID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return 0, domain.StoreError{Op: "queue.transfer", Err: err}
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT id FROM vehicle_queue
		WHERE destination_id=$1 AND queue_type='OVERNIGHT' AND `+activeFilter+`
		ORDER BY queue_position ASC FOR UPDATE`, destinationID)
	if err != nil {
		return 0, domain.StoreError{Op: "queue.transfer", Err: err}
	}
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, domain.StoreError{Op: "queue.transfer", Err: err}
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, domain.StoreError{Op: "queue.transfer", Err: err}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	tail, err := tailPosition(ctx, tx, destinationID, domain.QueueTypeRegular)
	if err != nil {
		return 0, domain.StoreError{Op: "queue.transfer", Err: err}
	}

	for k, id := range ids {
		if _, err := tx.Exec(ctx, `UPDATE vehicle_queue SET queue_type='REGULAR', queue_position=$1 WHERE id=$2`, tail+k+1, id); err != nil {
			return 0, domain.StoreError{Op: "queue.transfer", Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, domain.StoreError{Op: "queue.transfer", Err: err}
	}
	return len(ids), nil
}

var _ QueueRepository = (*PGQueueRepository)(nil)
