package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"eventify/internal/logger"
	"eventify/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishRoutesByKind(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{Writer: w, TopicPrefix: "eventify", Logger: logger.Discard()}
	ev := models.Event{ID: "e1", Title: "Standup", Date: models.NewDate(2024, 5, 1), CreatedBy: "U1"}

	require.NoError(t, p.Publish(context.Background(), models.NewEventNotification(models.EventCreated, ev)))
	require.NoError(t, p.Publish(context.Background(), models.NewEventNotification(models.EventDeleted, ev)))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "eventify.event.created", w.msgs[0].Topic)
	assert.Equal(t, "eventify.event.deleted", w.msgs[1].Topic)
	assert.Equal(t, []byte("e1"), w.msgs[0].Key)

	var n models.EventNotification
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &n))
	assert.Equal(t, models.EventCreated, n.Type)
	assert.Equal(t, "Standup", n.Event.Title)
	assert.Equal(t, "2024-05-01", n.Event.Date.String())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishReturnsWriterError(t *testing.T) {
	p := &Producer{Writer: &fakeWriter{err: errors.New("no leader")}, Logger: logger.Discard()}
	err := p.Publish(context.Background(), models.NewEventNotification(models.EventUpdated, models.Event{ID: "e1"}))
	assert.Error(t, err)
}

func TestTopics(t *testing.T) {
	p := &Producer{TopicPrefix: "eventify"}
	assert.Equal(t, []string{"eventify.event.created", "eventify.event.updated", "eventify.event.deleted"}, p.Topics())

	p.TopicPrefix = ""
	assert.Equal(t, "event.created", p.Topics()[0])
}

func TestEnsureTopicsExistNeedsBrokers(t *testing.T) {
	assert.Error(t, EnsureTopicsExist(nil, []string{"x"}, logger.Discard()))
}

func TestDecodeRoundTripsProducerMessages(t *testing.T) {
	p := &Producer{TopicPrefix: "eventify"}
	msg, err := p.Message(models.NewEventNotification(models.EventUpdated, models.Event{ID: "e9", Title: "Derby"}))
	require.NoError(t, err)

	n, err := Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, models.EventUpdated, n.Type)
	assert.Equal(t, "e9", n.Event.ID)

	_, err = Decode(kafka.Message{Topic: "eventify.event.updated", Value: []byte("{")})
	assert.Error(t, err)
}
