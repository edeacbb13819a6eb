package queue

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
	"github.com/n3on404/loauj-local-node-sub001/internal/kafka"
	"github.com/n3on404/loauj-local-node-sub001/internal/repository"
)

type QueueUseCase interface {
	Enter(ctx context.Context, licensePlate, destinationID string, queueType domain.QueueType) (*domain.QueueEntry, error)
	Exit(ctx context.Context, licensePlate string) (*domain.QueueEntry, error)
	Move(ctx context.Context, licensePlate, destinationID string) (*domain.QueueEntry, error)
	SetStatus(ctx context.Context, licensePlate string, status domain.QueueStatus) (*domain.QueueEntry, error)
	ActiveEntry(ctx context.Context, licensePlate string) (*domain.QueueEntry, error)
	ListByDestination(ctx context.Context, destinationID string) ([]domain.QueueEntry, error)
}

type Prices interface {
	GetRoute(ctx context.Context, destinationID string) (*domain.Route, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type QueueService struct {
	station     domain.StationContext
	queues      repository.QueueRepository
	vehicles    repository.VehicleRepository
	prices      Prices
	producer    Producer
	eventsTopic string
	tripsTopic  string
}

type QueueServiceOption func(*QueueService)

func WithTripsTopic(topic string) QueueServiceOption {
	return func(s *QueueService) {
		s.tripsTopic = topic
	}
}

func NewQueueService(
	station domain.StationContext,
	queues repository.QueueRepository,
	vehicles repository.VehicleRepository,
	prices Prices,
	producer Producer,
	eventsTopic string,
	opts ...QueueServiceOption,
) *QueueService {
	service := &QueueService{
		station:     station,
		queues:      queues,
		vehicles:    vehicles,
		prices:      prices,
		producer:    producer,
		eventsTopic: eventsTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Enter appends the vehicle at the tail of the destination's queue. The
// day-pass gate has already cleared the vehicle by the time this is
// called; only queue membership rules are checked here.
func (s *QueueService) Enter(ctx context.Context, licensePlate, destinationID string, queueType domain.QueueType) (*domain.QueueEntry, error) {
	vehicle, err := s.vehicles.GetByLicensePlate(ctx, licensePlate)
	if err != nil {
		return nil, err
	}
	if !vehicle.QueueEligible(s.station.StationID) {
		return nil, domain.ErrNotEligible
	}
	if !vehicle.AuthorizedFor(destinationID) {
		return nil, domain.ErrNotAuthorized
	}

	route, err := s.prices.GetRoute(ctx, destinationID)
	if err != nil {
		return nil, err
	}
	name := route.DestinationName
	if name == "" {
		name = destinationID
	}

	entry, err := s.queues.Enter(ctx, vehicle, destinationID, name, queueType, route.BasePriceCents)
	if err != nil {
		return nil, err
	}

	s.emitQueueChanged(ctx, destinationID)
	return entry, nil
}

func (s *QueueService) Exit(ctx context.Context, licensePlate string) (*domain.QueueEntry, error) {
	vehicle, err := s.vehicles.GetByLicensePlate(ctx, licensePlate)
	if err != nil {
		return nil, err
	}

	entry, err := s.queues.Exit(ctx, vehicle.ID)
	if err != nil {
		return nil, err
	}

	s.emitQueueChanged(ctx, entry.DestinationID)
	return entry, nil
}

func (s *QueueService) Move(ctx context.Context, licensePlate, destinationID string) (*domain.QueueEntry, error) {
	vehicle, err := s.vehicles.GetByLicensePlate(ctx, licensePlate)
	if err != nil {
		return nil, err
	}
	if !vehicle.AuthorizedFor(destinationID) {
		return nil, domain.ErrNotAuthorized
	}

	route, err := s.prices.GetRoute(ctx, destinationID)
	if err != nil {
		return nil, err
	}
	name := route.DestinationName
	if name == "" {
		name = destinationID
	}

	removed, created, err := s.queues.Move(ctx, vehicle.ID, destinationID, name, route.BasePriceCents)
	if err != nil {
		return nil, err
	}

	s.emitQueueChanged(ctx, removed.DestinationID)
	s.emitQueueChanged(ctx, created.DestinationID)
	return created, nil
}

func (s *QueueService) SetStatus(ctx context.Context, licensePlate string, status domain.QueueStatus) (*domain.QueueEntry, error) {
	vehicle, err := s.vehicles.GetByLicensePlate(ctx, licensePlate)
	if err != nil {
		return nil, err
	}

	entry, err := s.queues.SetStatus(ctx, vehicle.ID, status)
	if err != nil {
		return nil, err
	}

	s.emitQueueChanged(ctx, entry.DestinationID)
	if entry.Status == domain.QueueStatusReady {
		// Status only advances, so this is the entry's first READY and
		// the one place a staff action produces the trip-start record.
		s.emitVehicleReady(ctx, entry)
	}
	return entry, nil
}

// ActiveEntry reports where the vehicle currently stands, if anywhere.
func (s *QueueService) ActiveEntry(ctx context.Context, licensePlate string) (*domain.QueueEntry, error) {
	vehicle, err := s.vehicles.GetByLicensePlate(ctx, licensePlate)
	if err != nil {
		return nil, err
	}
	return s.queues.ActiveByVehicle(ctx, vehicle.ID)
}

func (s *QueueService) ListByDestination(ctx context.Context, destinationID string) ([]domain.QueueEntry, error) {
	return s.queues.ListByDestination(ctx, destinationID)
}

func (s *QueueService) emitQueueChanged(ctx context.Context, destinationID string) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.StationEvent{
		Type:          kafka.EventQueueChanged,
		StationID:     s.station.StationID,
		DestinationID: destinationID,
		Time:          time.Now(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, destinationID, event); err != nil {
		log.Printf("WARNING: failed to publish queue_changed for %s: %v", destinationID, err)
	}
}

func (s *QueueService) emitVehicleReady(ctx context.Context, entry *domain.QueueEntry) {
	if s.producer == nil {
		return
	}
	if s.eventsTopic != "" {
		event := kafka.StationEvent{
			Type:          kafka.EventVehicleReady,
			StationID:     s.station.StationID,
			DestinationID: entry.DestinationID,
			QueueID:       entry.ID,
			LicensePlate:  entry.LicensePlate,
			Time:          time.Now(),
		}
		if err := s.producer.Publish(ctx, s.eventsTopic, entry.DestinationID, event); err != nil {
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
			SeatsBooked:     entry.TotalSeats - entry.AvailableSeats,
			StartTime:       time.Now(),
		}
		if err := s.producer.Publish(ctx, s.tripsTopic, strconv.FormatInt(entry.ID, 10), trip); err != nil {
			log.Printf("WARNING: failed to publish trip start for queue %d: %v", entry.ID, err)
		}
	}
}

var _ QueueUseCase = (*QueueService)(nil)
