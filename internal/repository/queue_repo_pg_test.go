package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"

	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
)

func TestNewQueueRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewQueueRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewVehicleRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewVehicleRepository(pool)
	assert.NotNil(t, repo)
}

// entryRow builds the 14-column result of entryColumns for one queue row
// on the Sousse regular queue.
func entryRow(id, vehicleID int64, position int, status domain.QueueStatus, available int, enteredAt time.Time) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "vehicle_id", "license_plate", "destination_id", "destination_name", "queue_type",
		"queue_position", "status", "entered_at", "available_seats", "total_seats", "base_price",
		"estimated_departure", "actual_departure",
	}).AddRow(id, vehicleID, "123 TN 4567", "st-sousse", "Sousse", domain.QueueTypeRegular,
		position, status, enteredAt, available, 8, int64(1000), nil, nil)
}

func TestQueueRepository_Enter_AppendsAtTail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	repo := NewQueueRepository(mock)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM vehicle_queue WHERE vehicle_id=$1`)).
		WithArgs(int64(10)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY queue_position DESC LIMIT 1 FOR UPDATE`)).
		WithArgs("st-sousse", domain.QueueTypeRegular).
		WillReturnRows(pgxmock.NewRows([]string{"queue_position"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO vehicle_queue`)).
		WithArgs(int64(10), "123 TN 4567", "st-sousse", "Sousse", domain.QueueTypeRegular,
			3, domain.QueueStatusWaiting, 8, 8, int64(1000)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "entered_at"}).AddRow(int64(7), time.Now()))
	mock.ExpectCommit()

	vehicle := &domain.Vehicle{ID: 10, LicensePlate: "123 TN 4567", Capacity: 8}
	entry, err := repo.Enter(context.Background(), vehicle, "st-sousse", "Sousse", domain.QueueTypeRegular, 1000)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), entry.ID)
	assert.Equal(t, 3, entry.QueuePosition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_Enter_AlreadyQueued(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	repo := NewQueueRepository(mock)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM vehicle_queue WHERE vehicle_id=$1`)).
		WithArgs(int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(4)))
	mock.ExpectRollback()

	vehicle := &domain.Vehicle{ID: 10, LicensePlate: "123 TN 4567", Capacity: 8}
	_, err = repo.Enter(context.Background(), vehicle, "st-sousse", "Sousse", domain.QueueTypeRegular, 1000)

	assert.ErrorIs(t, err, domain.ErrAlreadyQueued)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// An exit closes the gap it leaves: survivors are renumbered 1..N in their
// current position order, so a transferred entry with an overnight
// entered_at cannot jump ahead of the regular entries it was appended
// after.
func TestQueueRepository_Exit_RenumbersByCurrentPosition(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	repo := NewQueueRepository(mock)

	enteredAt := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE vehicle_id=$1 AND status IN ('WAITING','LOADING','READY') FOR UPDATE`)).
		WithArgs(int64(10)).
		WillReturnRows(entryRow(2, 10, 2, domain.QueueStatusWaiting, 8, enteredAt))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM vehicle_queue WHERE id=$1`)).
		WithArgs(int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY queue_position ASC FOR UPDATE`)).
		WithArgs("st-sousse", domain.QueueTypeRegular).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)).AddRow(int64(3)))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE vehicle_queue SET queue_position=$1 WHERE id=$2`)).
		WithArgs(1, int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE vehicle_queue SET queue_position=$1 WHERE id=$2`)).
		WithArgs(2, int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	entry, err := repo.Exit(context.Background(), 10)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_Exit_BlockedByActiveBookings(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	repo := NewQueueRepository(mock)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE vehicle_id=$1 AND status IN ('WAITING','LOADING','READY') FOR UPDATE`)).
		WithArgs(int64(10)).
		WillReturnRows(entryRow(2, 10, 2, domain.QueueStatusLoading, 5, time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err = repo.Exit(context.Background(), 10)

	assert.ErrorIs(t, err, domain.ErrHasActiveBookings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A departure skips the booking guard, stamps the row, then removes and
// renumbers exactly like an exit.
func TestQueueRepository_SetStatus_DepartedRemovesAndRenumbers(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	repo := NewQueueRepository(mock)

	enteredAt := time.Date(2026, 8, 29, 6, 30, 0, 0, time.UTC)
	activeSelect := regexp.QuoteMeta(`WHERE vehicle_id=$1 AND status IN ('WAITING','LOADING','READY') FOR UPDATE`)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectQuery(activeSelect).
		WithArgs(int64(10)).
		WillReturnRows(entryRow(2, 10, 1, domain.QueueStatusReady, 0, enteredAt))
	mock.ExpectQuery(activeSelect).
		WithArgs(int64(10)).
		WillReturnRows(entryRow(2, 10, 1, domain.QueueStatusReady, 0, enteredAt))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE vehicle_queue SET status='DEPARTED', actual_departure=$1 WHERE id=$2`)).
		WithArgs(pgxmock.AnyArg(), int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM vehicle_queue WHERE id=$1`)).
		WithArgs(int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY queue_position ASC FOR UPDATE`)).
		WithArgs("st-sousse", domain.QueueTypeRegular).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE vehicle_queue SET queue_position=$1 WHERE id=$2`)).
		WithArgs(1, int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	entry, err := repo.SetStatus(context.Background(), 10, domain.QueueStatusDeparted)

	assert.NoError(t, err)
	assert.Equal(t, domain.QueueStatusDeparted, entry.Status)
	assert.NotNil(t, entry.ActualDeparture)
	assert.NoError(t, mock.ExpectationsWereMet())
}
