package domain

import "time"

type BookingType string

const (
	BookingTypeCash   BookingType = "CASH"
	BookingTypeOnline BookingType = "ONLINE"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

type Booking struct {
	ID               int64
	QueueID          int64
	SeatsBooked      int
	TotalAmountCents int64
	BookingType      BookingType
	PaymentStatus    PaymentStatus
	VerificationCode string
	IsVerified       bool
	VerifiedAt       *time.Time
	VerifiedBy       string
	CreatedBy        string
	CustomerPhone    string
	CreatedAt        time.Time
}

// BookingSource is the closed set of booking origins. Cash bookings are
// priced locally from the queue entry's base price; online bookings carry
// the central server's authoritative total, apportioned across vehicles.
type BookingSource struct {
	Type             BookingType
	StaffID          string // CASH: the staff member at the counter
	UserID           string // ONLINE: the remote account
	TotalAmountCents int64  // ONLINE only
	CustomerPhone    string // ONLINE, optional
}

func (s BookingSource) Validate() error {
	switch s.Type {
	case BookingTypeCash:
		if s.StaffID == "" {
			return ValidationError{Field: "staff_id", Msg: "required for cash bookings"}
		}
		if s.TotalAmountCents != 0 {
			return ValidationError{Field: "total_amount", Msg: "cash bookings are priced at the station"}
		}
	case BookingTypeOnline:
		if s.UserID == "" {
			return ValidationError{Field: "user_id", Msg: "required for online bookings"}
		}
		if s.TotalAmountCents <= 0 {
			return ValidationError{Field: "total_amount", Msg: "must be supplied by the central server"}
		}
	default:
		return ValidationError{Field: "booking_type", Msg: "must be CASH or ONLINE"}
	}
	return nil
}

func (s BookingSource) CreatedBy() string {
	if s.Type == BookingTypeOnline {
		return s.UserID
	}
	return s.StaffID
}
