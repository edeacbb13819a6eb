package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event types carried on the station events topic.
const (
	EventQueueChanged      = "queue_changed"
	EventBookingCreated    = "booking_created"
	EventVehicleReady      = "vehicle_ready"
	EventOvernightTransfer = "overnight_transfer_completed"
)

// StationEvent is the abstract change notification the engine emits. The
// notifier side decides how it reaches dashboards and the central server;
// the engine never waits on delivery.
type StationEvent struct {
	Type             string    `json:"type"`
	StationID        string    `json:"station_id"`
	DestinationID    string    `json:"destination_id"`
	QueueID          int64     `json:"queue_id,omitempty"`
	LicensePlate     string    `json:"license_plate,omitempty"`
	VerificationCode string    `json:"verification_code,omitempty"`
	SeatsBooked      int       `json:"seats_booked,omitempty"`
	TotalAmountCents int64     `json:"total_amount_cents,omitempty"`
	TransferredCount int       `json:"transferred_count,omitempty"`
	Time             time.Time `json:"time"`
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := p.Publish(ctx, topic, key, payload)
		if err == nil {
			return nil
		}

		lastErr = err
		log.Printf("publish attempt %d failed: %v", i+1, err)

		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
