package memqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/eventq/pkg/queue"
	"github.com/fieldline/eventq/pkg/queue/testutils"
)

func newTestQueue(t *testing.T, opts ...Option) *MemQueue {
	t.Helper()
	return New(queue.Config{Environment: "development"}, testutils.NewTestLogger(t), opts...)
}

func TestProducer_PublishUsesEventID(t *testing.T) {
	q := newTestQueue(t)
	p, err := NewProducer[testutils.OrderPlaced](q, 1)
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), testutils.OrderPlaced{
		EventID: "evt-42",
		Number:  "ord-1",
		Amount:  100,
	}, ""))

	pending := p.Stream().Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "evt-42", pending[0].EventID)
	assert.WithinDuration(t, time.Now(), pending[0].ArrivedAt, time.Second)

	var got testutils.OrderPlaced
	require.NoError(t, queue.JSONCodec{}.Unmarshal(pending[0].Payload, &got))
	assert.Equal(t, "ord-1", got.Number)
	assert.Equal(t, int64(100), got.Amount)
}

func TestProducer_PublishGeneratesIDWhenAbsent(t *testing.T) {
	q := newTestQueue(t)
	p, err := NewProducer[testutils.OrderPlaced](q, 1)
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), testutils.OrderPlaced{Number: "ord-2"}, ""))

	pending := p.Stream().Pending()
	require.Len(t, pending, 1)
	_, err = uuid.Parse(pending[0].EventID)
	assert.NoError(t, err, "generated event id should be a valid uuid")
}

func TestProducer_PublishSerializationError(t *testing.T) {
	codec := &testutils.MockCodec{}
	codec.On("Marshal", mock.Anything).Return(nil, errors.New("boom"))

	q := newTestQueue(t, WithCodec(codec))
	p, err := NewProducer[testutils.OrderPlaced](q, 1)
	require.NoError(t, err)

	err = p.Publish(context.Background(), testutils.OrderPlaced{Number: "ord-3"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Empty(t, p.Stream().Pending(), "failed serialization must publish nothing")
}

func TestProducer_PublishCanceledContext(t *testing.T) {
	q := newTestQueue(t)
	p, err := NewProducer[testutils.OrderPlaced](q, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.Publish(ctx, testutils.OrderPlaced{Number: "ord-4"}, "")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, p.Stream().Pending())
}

func TestProducer_ShardHintIgnored(t *testing.T) {
	q := newTestQueue(t)
	p, err := NewProducer[testutils.OrderPlaced](q, 4)
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), testutils.OrderPlaced{Number: "a"}, "shard-a"))
	require.NoError(t, p.Publish(context.Background(), testutils.OrderPlaced{Number: "b"}, "shard-b"))

	// Both land on the same unsharded sequence, in publish order.
	pending := p.Stream().Pending()
	require.Len(t, pending, 2)
}

func TestProducer_CloseIdempotent(t *testing.T) {
	q := newTestQueue(t)
	p, err := NewProducer[testutils.OrderPlaced](q, 1)
	require.NoError(t, err)

	p.Close()
	p.Close()
}

func TestProducer_SameStreamSharedAcrossProducers(t *testing.T) {
	q := newTestQueue(t)

	p1, err := NewProducer[testutils.OrderPlaced](q, 1)
	require.NoError(t, err)
	p2, err := NewProducer[testutils.OrderPlaced](q, 1)
	require.NoError(t, err)

	assert.Same(t, p1.Stream(), p2.Stream(), "producers for one type must share the stream")

	require.NoError(t, p1.Publish(context.Background(), testutils.OrderPlaced{Number: "x"}, ""))
	require.NoError(t, p2.Publish(context.Background(), testutils.OrderPlaced{Number: "y"}, ""))
	assert.Len(t, p1.Stream().Pending(), 2)
}
