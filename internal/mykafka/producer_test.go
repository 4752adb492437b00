package mykafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilProducerIsNoop(t *testing.T) {
	t.Parallel()

	var p *Producer
	assert.NoError(t, p.PublishEvent(context.Background(), TopicOrders, "1", NewEvent("order_created", nil)))
	assert.NoError(t, p.Close())
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(nil)
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	ev := NewEvent("order_paid", map[string]any{"order_id": 5, "total": 18.0})
	msg, err := encode(TopicOrders, "5", ev)
	require.NoError(t, err)

	assert.Equal(t, TopicOrders, msg.Topic)
	assert.Equal(t, []byte("5"), msg.Key)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "order_paid", got["type"])
	assert.NotEmpty(t, got["id"])
	payload := got["payload"].(map[string]any)
	assert.Equal(t, 18.0, payload["total"])
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	t.Parallel()

	_, err := encode(TopicOrders, "k", make(chan int))
	assert.Error(t, err)
}
