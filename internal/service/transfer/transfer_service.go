package transfer

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
	"github.com/n3on404/loauj-local-node-sub001/internal/kafka"
)

type TransferUseCase interface {
	Run(ctx context.Context) (*Report, error)
}

type QueueStore interface {
	OvernightDestinations(ctx context.Context) ([]string, error)
	TransferOvernight(ctx context.Context, destinationID string) (int, error)
}

type Locker interface {
	AcquireTransferLock(ctx context.Context, stationID string, ttl time.Duration) (bool, error)
	ReleaseTransferLock(ctx context.Context, stationID string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

// Report summarizes one transfer run. A run with zero overnight entries
// is a valid, empty report.
type Report struct {
	Transferred map[string]int
	Total       int
	Failed      []string
}

// TransferService migrates overnight queues into the regular queues at
// station opening. The atomic flag is the station-wide mutual exclusion:
// a trigger that finds a run in flight is a no-op, not an error, because
// the fixed-time trigger and the safety-net sweep are expected to overlap.
type TransferService struct {
	station     domain.StationContext
	queues      QueueStore
	locker      Locker
	producer    Producer
	eventsTopic string
	lockTTL     time.Duration

	running atomic.Bool
}

func NewTransferService(station domain.StationContext, queues QueueStore, locker Locker, producer Producer, eventsTopic string) *TransferService {
	return &TransferService{
		station:     station,
		queues:      queues,
		locker:      locker,
		producer:    producer,
		eventsTopic: eventsTopic,
		lockTTL:     10 * time.Minute,
	}
}

func (s *TransferService) Run(ctx context.Context) (*Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, domain.ErrTransferRunning
	}
	defer s.running.Store(false)

	if s.locker != nil {
		ok, err := s.locker.AcquireTransferLock(ctx, s.station.StationID, s.lockTTL)
		if err != nil {
			// The in-process flag still guards this process; an
			// unreachable lock service must not block the opening-time
			// migration.
			log.Printf("WARNING: transfer lock unavailable, relying on local guard: %v", err)
		} else if !ok {
			return nil, domain.ErrTransferRunning
		} else {
			defer func() {
				if err := s.locker.ReleaseTransferLock(context.WithoutCancel(ctx), s.station.StationID); err != nil {
					log.Printf("WARNING: failed to release transfer lock: %v", err)
				}
			}()
		}
	}

	destinations, err := s.queues.OvernightDestinations(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Transferred: make(map[string]int)}
	for _, dest := range destinations {
		count, err := s.queues.TransferOvernight(ctx, dest)
		if err != nil {
			// Each destination group is its own transaction; one failed
			// group must not abort the rest.
			log.Printf("overnight transfer failed for %s: %v", dest, err)
			report.Failed = append(report.Failed, dest)
			continue
		}
		if count == 0 {
			continue
		}
		report.Transferred[dest] = count
		report.Total += count
		s.emitTransferred(ctx, dest, count)
	}
	return report, nil
}

// IsSoftSkip reports whether a transfer outcome was the deliberate
// skip-while-running no-op.
func IsSoftSkip(err error) bool {
	return errors.Is(err, domain.ErrTransferRunning)
}

func (s *TransferService) emitTransferred(ctx context.Context, destinationID string, count int) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.StationEvent{
		Type:             kafka.EventOvernightTransfer,
		StationID:        s.station.StationID,
		DestinationID:    destinationID,
		TransferredCount: count,
		Time:             time.Now(),
	}
	// The transfer record happens once a day; give it a few attempts
	// before falling back to log-and-continue.
	if err := s.producer.PublishWithRetry(ctx, s.eventsTopic, destinationID, event, 3); err != nil {
		log.Printf("WARNING: failed to publish overnight_transfer for %s: %v", destinationID, err)
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

var _ TransferUseCase = (*TransferService)(nil)
