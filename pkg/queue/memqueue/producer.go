package memqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fieldline/eventq/pkg/metrics"
	"github.com/fieldline/eventq/pkg/queue"
)

// Producer publishes events of one type onto its bound stream. Creating the
// producer for a type repeatedly is fine; every instance wraps the same
// underlying stream.
type Producer[T queue.Typed] struct {
	stream *Stream
	codec  queue.Codec
	log    *zap.SugaredLogger
	debug  *atomic.Bool
	mets   *metrics.Metrics
	once   sync.Once
}

// Publish serializes event, wraps it in a record with a fresh arrival
// timestamp, and appends it to the bound stream.
//
// The event id is taken from an "event_id" field of the serialized payload
// when present, otherwise a random id is generated. shardKey is accepted
// for parity with the sharded real backend and has no effect on placement
// here: the mock keeps a single unsharded sequence.
//
// Serialization failures are returned to the caller and nothing is
// published.
func (p *Producer[T]) Publish(ctx context.Context, event T, shardKey string) error {
	_ = shardKey

	if err := ctx.Err(); err != nil {
		return err
	}

	if p.debug.Load() {
		p.log.Debugw("publishing event", "stream", p.stream.Name(), "event", fmt.Sprintf("%+v", event))
	}

	payload, err := p.codec.Marshal(event)
	if err != nil {
		if p.mets != nil {
			p.mets.PublishError(p.stream.Name())
		}
		return fmt.Errorf("failed to serialize event for stream %s: %w", p.stream.Name(), err)
	}

	p.stream.Publish(queue.Record{
		EventID:   eventID(payload),
		ArrivedAt: time.Now(),
		Payload:   payload,
	})
	return nil
}

// Close releases the producer. The mock holds no per-producer state, so
// this only logs when debugging. Safe to call repeatedly.
func (p *Producer[T]) Close() {
	p.once.Do(func() {
		if p.debug.Load() {
			p.log.Debugw("producer closed", "stream", p.stream.Name())
		}
	})
}

// Stream exposes the underlying stream for test introspection.
func (p *Producer[T]) Stream() *Stream {
	return p.stream
}

// eventID extracts the event_id field from a serialized payload, falling
// back to a generated id for events that do not carry one.
func eventID(payload []byte) string {
	var probe struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(payload, &probe); err == nil && probe.EventID != "" {
		return probe.EventID
	}
	return uuid.NewString()
}
