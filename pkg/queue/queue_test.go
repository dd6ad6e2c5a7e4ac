package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAck struct {
	acked  []uint64
	nacked []uint64
	requeu []bool
}

func (r *recordingAck) Ack(tag uint64, _ bool) error {
	r.acked = append(r.acked, tag)
	return nil
}

func (r *recordingAck) Nack(tag uint64, _ bool, requeue bool) error {
	r.nacked = append(r.nacked, tag)
	r.requeu = append(r.requeu, requeue)
	return nil
}

func (r *recordingAck) Reject(tag uint64, requeue bool) error {
	return r.Nack(tag, false, requeue)
}

func TestConsumerAcksHandledMessages(t *testing.T) {
	ack := &recordingAck{}
	c := NewConsumer(nil, "push.delivery", "test", 1, logger.NewNop())

	c.process(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 7}, func(context.Context, amqp.Delivery) error {
		return nil
	})

	assert.Equal(t, []uint64{7}, ack.acked)
	assert.Empty(t, ack.nacked)
}

func TestConsumerDeadLettersFailedMessages(t *testing.T) {
	ack := &recordingAck{}
	c := NewConsumer(nil, "push.delivery", "test", 1, logger.NewNop())

	c.process(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 9}, func(context.Context, amqp.Delivery) error {
		return errors.New("cannot decode")
	})

	assert.Empty(t, ack.acked)
	assert.Equal(t, []uint64{9}, ack.nacked)
	assert.Equal(t, []bool{false}, ack.requeu)
}

func TestNewPublishing(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	msg, err := newPublishing("evt-1", map[string]string{"notification_id": "n1"}, at)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "evt-1", msg.MessageId)
	assert.Equal(t, at, msg.Timestamp)

	var body map[string]string
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "n1", body["notification_id"])
}

func TestPublishHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPublisher(nil, "alerts.direct").Publish(ctx, "notification.created", "evt", struct{}{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeadLetterArgs(t *testing.T) {
	assert.Empty(t, deadLetterArgs(""))
	args := deadLetterArgs("push.delivery.failed")
	assert.Equal(t, "push.delivery.failed", args["x-dead-letter-routing-key"])
}
