package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeChannel struct {
	declared   string
	kind       string
	declareErr error
	published  []amqp.Publishing
	keys       []string
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	f.declared = name
	f.kind = kind
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func sampleDelivery() Delivery {
	return Delivery{
		NotificationID: 7,
		UserID:         3,
		ParcelID:       11,
		Type:           "delay",
		Channel:        "email",
		Message:        "Parcel LT123 is delayed",
		CreatedAt:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestAMQPSenderPublishesJSON(t *testing.T) {
	ch := &fakeChannel{}
	sender, err := newAMQPSender(ch, "")
	require.NoError(t, err)
	assert.Equal(t, "logistics.notifications", ch.declared)
	assert.Equal(t, amqp.ExchangeTopic, ch.kind)

	require.NoError(t, sender.Send(context.Background(), sampleDelivery()))
	require.Len(t, ch.published, 1)
	assert.Equal(t, "logistics.notifications/notification.email.delay", ch.keys[0])
	msg := ch.published[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "notification-7", msg.MessageId)

	var decoded Delivery
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, sampleDelivery(), decoded)
}

func TestAMQPSenderDeclareFailureClosesChannel(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}
	_, err := newAMQPSender(ch, "x")
	require.Error(t, err)
	assert.True(t, ch.closed)
}

func TestAMQPSenderRejectsAfterClose(t *testing.T) {
	ch := &fakeChannel{}
	sender, err := newAMQPSender(ch, "x")
	require.NoError(t, err)

	require.NoError(t, sender.Close())
	require.NoError(t, sender.Close())
	assert.True(t, ch.closed)
	assert.False(t, sender.Connected())
	assert.ErrorIs(t, sender.Send(context.Background(), sampleDelivery()), ErrPublisherClosed)
}

func TestLogSenderWritesEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core))

	require.NoError(t, sender.Send(context.Background(), sampleDelivery()))
	entries := logs.FilterMessage("notification delivered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "email", entries[0].ContextMap()["channel"])
	assert.NoError(t, sender.Close())
}
