package domain

import "time"

type QueueType string

const (
	QueueTypeRegular   QueueType = "REGULAR"
	QueueTypeOvernight QueueType = "OVERNIGHT"
)

type QueueStatus string

const (
	QueueStatusWaiting  QueueStatus = "WAITING"
	QueueStatusLoading  QueueStatus = "LOADING"
	QueueStatusReady    QueueStatus = "READY"
	QueueStatusDeparted QueueStatus = "DEPARTED"
)

// ActiveStatuses are the statuses that keep an entry inside its queue
// partition. A DEPARTED entry is recorded and removed in the same
// transaction, so it is never observable as a queue member.
var ActiveStatuses = []QueueStatus{QueueStatusWaiting, QueueStatusLoading, QueueStatusReady}

func (s QueueStatus) Active() bool {
	return s == QueueStatusWaiting || s == QueueStatusLoading || s == QueueStatusReady
}

// CanAdvanceTo reports whether the status transition follows the
// WAITING -> LOADING -> READY -> DEPARTED order. Steps may be skipped
// (a staff member can send a half-empty vehicle straight to DEPARTED)
// but never reversed.
func (s QueueStatus) CanAdvanceTo(next QueueStatus) bool {
	return rank(next) > rank(s)
}

func rank(s QueueStatus) int {
	switch s {
	case QueueStatusWaiting:
		return 0
	case QueueStatusLoading:
		return 1
	case QueueStatusReady:
		return 2
	case QueueStatusDeparted:
		return 3
	}
	return -1
}

type QueueEntry struct {
	ID                 int64
	VehicleID          int64
	LicensePlate       string
	DestinationID      string
	DestinationName    string
	QueueType          QueueType
	QueuePosition      int
	Status             QueueStatus
	EnteredAt          time.Time
	AvailableSeats     int
	TotalSeats         int
	BasePriceCents     int64
	EstimatedDeparture *time.Time
	ActualDeparture    *time.Time
}

// SeatAllocation is one leg of a multi-vehicle booking: how many of the
// requested seats come out of which queue entry.
type SeatAllocation struct {
	QueueID        int64
	SeatsToBook    int
	BasePriceCents int64
	AmountCents    int64
}

// DestinationAvailability is the snapshot returned to booking callers:
// overnight entries first, then regular, each group by position ascending.
type DestinationAvailability struct {
	DestinationID       string
	TotalAvailableSeats int
	Vehicles            []QueueEntry
}

// TripStart is the record produced the first time a queue entry reaches
// READY. It is emitted exactly once per entry, not once per booking.
type TripStart struct {
	VehicleID       int64     `json:"vehicle_id"`
	LicensePlate    string    `json:"license_plate"`
	DestinationID   string    `json:"destination_id"`
	DestinationName string    `json:"destination_name"`
	QueueID         int64     `json:"queue_id"`
	SeatsBooked     int       `json:"seats_booked"`
	StartTime       time.Time `json:"start_time"`
}
