package kafka

import (
	"context"
	"encoding/json"
	"testing"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

// scriptedReader feeds a fixed set of messages, then fails with err.
type scriptedReader struct {
	messages []segkafka.Message
	err      error
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (segkafka.Message, error) {
	if len(r.messages) == 0 {
		return segkafka.Message{}, r.err
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *scriptedReader) Close() error { return nil }

func TestConsumer_Consume_DecodesStationEvents(t *testing.T) {
	payload, err := json.Marshal(StationEvent{Type: EventQueueChanged, StationID: "st-tunis", DestinationID: "st-sousse"})
	assert.NoError(t, err)

	consumer := &Consumer{reader: &scriptedReader{
		messages: []segkafka.Message{{Value: payload}},
		err:      context.Canceled,
	}}

	var seen []StationEvent
	err = consumer.Consume(context.Background(), func(ctx context.Context, event StationEvent) error {
		seen = append(seen, event)
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, seen, 1)
	assert.Equal(t, EventQueueChanged, seen[0].Type)
	assert.Equal(t, "st-sousse", seen[0].DestinationID)
}

func TestConsumer_Consume_SkipsUndecodableMessage(t *testing.T) {
	good, err := json.Marshal(StationEvent{Type: EventVehicleReady, DestinationID: "st-sfax"})
	assert.NoError(t, err)

	consumer := &Consumer{reader: &scriptedReader{
		messages: []segkafka.Message{{Value: []byte("not an event")}, {Value: good}},
		err:      context.Canceled,
	}}

	var seen []StationEvent
	err = consumer.Consume(context.Background(), func(ctx context.Context, event StationEvent) error {
		seen = append(seen, event)
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, seen, 1)
	assert.Equal(t, EventVehicleReady, seen[0].Type)
}
