package booking

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
	"github.com/n3on404/loauj-local-node-sub001/internal/kafka"
	"github.com/n3on404/loauj-local-node-sub001/internal/repository"
)

type BookingUseCase interface {
	GetAvailableSeats(ctx context.Context, destinationID string) (*domain.DestinationAvailability, error)
	CreateBooking(ctx context.Context, input CreateBookingInput) (*BookingResult, error)
	Verify(ctx context.Context, code, staffID string) (*VerifyResult, error)
	ListByQueue(ctx context.Context, queueID int64) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	DestinationID  string
	SeatsRequested int
	Source         domain.BookingSource
}

type BookingResult struct {
	Bookings         []domain.Booking
	TotalAmountCents int64
	BecameReady      []domain.QueueEntry
}

type VerifyResult struct {
	Booking         *domain.Booking
	AlreadyVerified bool
}

type BookingService struct {
	station     domain.StationContext
	bookings    repository.BookingRepository
	queues      repository.QueueRepository
	producer    Producer
	eventsTopic string
	tripsTopic  string
}

type BookingServiceOption func(*BookingService)

func WithTripsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.tripsTopic = topic
	}
}

func NewBookingService(
	station domain.StationContext,
	bookings repository.BookingRepository,
	queues repository.QueueRepository,
	producer Producer,
	eventsTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		station:     station,
		bookings:    bookings,
		queues:      queues,
		producer:    producer,
		eventsTopic: eventsTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) GetAvailableSeats(ctx context.Context, destinationID string) (*domain.DestinationAvailability, error) {
	vehicles, err := s.queues.ListByDestination(ctx, destinationID)
	if err != nil {
		return nil, err
	}

	result := &domain.DestinationAvailability{DestinationID: destinationID, Vehicles: vehicles}
	for _, v := range vehicles {
		result.TotalAvailableSeats += v.AvailableSeats
	}
	return result, nil
}

// CreateBooking turns a seat request into one booking per allocated
// vehicle. The repository commits all legs in one transaction against a
// fresh read of each entry's seats, so a stale snapshot can only make the
// whole request fail, never half of it.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*BookingResult, error) {
	if err := input.Source.Validate(); err != nil {
		return nil, err
	}
	if input.SeatsRequested <= 0 {
		return nil, domain.ValidationError{Field: "seats", Msg: "must be positive"}
	}
	if input.SeatsRequested > s.station.MaxSeatsPerBooking {
		return nil, domain.ErrSeatLimitExceeded
	}

	snapshot, err := s.GetAvailableSeats(ctx, input.DestinationID)
	if err != nil {
		return nil, err
	}
	// An empty snapshot means nothing is queued. A queue full to the last
	// seat still lists its vehicles and fails allocation instead.
	if len(snapshot.Vehicles) == 0 {
		return nil, domain.ErrNoVehiclesAvailable
	}

	allocations, err := Allocate(snapshot.Vehicles, input.SeatsRequested)
	if err != nil {
		return nil, err
	}

	var total int64
	if input.Source.Type == domain.BookingTypeOnline {
		total = input.Source.TotalAmountCents
		apportion(total, allocations)
	} else {
		total = priceCash(allocations)
	}

	rows := make([]domain.Booking, 0, len(allocations))
	for _, a := range allocations {
		rows = append(rows, domain.Booking{
			QueueID:          a.QueueID,
			SeatsBooked:      a.SeatsToBook,
			TotalAmountCents: a.AmountCents,
			BookingType:      input.Source.Type,
			PaymentStatus:    domain.PaymentStatusPaid,
			VerificationCode: uuid.NewString(),
			CreatedBy:        input.Source.CreatedBy(),
			CustomerPhone:    input.Source.CustomerPhone,
		})
	}

	write, err := s.bookings.CreateBookings(ctx, rows)
	if err != nil {
		return nil, err
	}

	result := &BookingResult{
		Bookings:         write.Bookings,
		TotalAmountCents: total,
		BecameReady:      write.BecameReady,
	}
	s.emitBookingEvents(ctx, input.DestinationID, result)
	return result, nil
}

func (s *BookingService) Verify(ctx context.Context, code, staffID string) (*VerifyResult, error) {
	booking, already, err := s.bookings.Verify(ctx, code, staffID)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Booking: booking, AlreadyVerified: already}, nil
}

func (s *BookingService) ListByQueue(ctx context.Context, queueID int64) ([]domain.Booking, error) {
	return s.bookings.ListByQueue(ctx, queueID)
}

func (s *BookingService) emitBookingEvents(ctx context.Context, destinationID string, result *BookingResult) {
	if s.producer == nil {
		return
	}

	if s.eventsTopic != "" {
		for _, b := range result.Bookings {
			event := kafka.StationEvent{
				Type:             kafka.EventBookingCreated,
				StationID:        s.station.StationID,
				DestinationID:    destinationID,
				QueueID:          b.QueueID,
				VerificationCode: b.VerificationCode,
				SeatsBooked:      b.SeatsBooked,
				TotalAmountCents: b.TotalAmountCents,
				Time:             time.Now(),
			}
			if err := s.producer.Publish(ctx, s.eventsTopic, b.VerificationCode, event); err != nil {
				log.Printf("WARNING: failed to publish booking_created for %s: %v", b.VerificationCode, err)
			}
		}

		changed := kafka.StationEvent{
			Type:          kafka.EventQueueChanged,
			StationID:     s.station.StationID,
			DestinationID: destinationID,
			Time:          time.Now(),
		}
		if err := s.producer.Publish(ctx, s.eventsTopic, destinationID, changed); err != nil {
			log.Printf("WARNING: failed to publish queue_changed for %s: %v", destinationID, err)
		}
	}

	for _, entry := range result.BecameReady {
		if s.eventsTopic != "" {
			ready := kafka.StationEvent{
				Type:          kafka.EventVehicleReady,
				StationID:     s.station.StationID,
				DestinationID: entry.DestinationID,
				QueueID:       entry.ID,
				LicensePlate:  entry.LicensePlate,
				Time:          time.Now(),
			}
			if err := s.producer.Publish(ctx, s.eventsTopic, entry.DestinationID, ready); err != nil {
				log.Printf("WARNING: failed to publish vehicle_ready for queue %d: %v", entry.ID, err)
			}
		}
		if s.tripsTopic != "" {
			trip := domain.TripStart{
				VehicleID:       entry.VehicleID,
				LicensePlate:    entry.LicensePlate,
				DestinationID:   entry.DestinationID,
				DestinationName: entry.DestinationName,
				QueueID:         entry.ID,
				SeatsBooked:     entry.TotalSeats,
				StartTime:       time.Now(),
			}
			if err := s.producer.Publish(ctx, s.tripsTopic, strconv.FormatInt(entry.ID, 10), trip); err != nil {
				log.Printf("WARNING: failed to publish trip start for queue %d: %v", entry.ID, err)
			}
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
