package memqueue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fieldline/eventq/pkg/metrics"
	"github.com/fieldline/eventq/pkg/queue"
)

// Registration is one consumer bound to a stream, driven by its own
// polling goroutine. Registrations sharing a stream compete for records;
// a record is delivered to exactly one of them.
type Registration struct {
	stream    *Stream
	callback  func(records []queue.Record)
	pollEvery time.Duration
	log       *zap.SugaredLogger
	mets      *metrics.Metrics

	// pollMu orders Shutdown against the cancellation check and consume of
	// a tick. The callback itself runs outside it, so Shutdown never waits
	// on a blocked callback.
	pollMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func newRegistration(
	stream *Stream,
	callback func(records []queue.Record),
	pollEvery time.Duration,
	log *zap.SugaredLogger,
	mets *metrics.Metrics,
) *Registration {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registration{
		stream:    stream,
		callback:  callback,
		pollEvery: pollEvery,
		log:       log,
		mets:      mets,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	if r.mets != nil {
		r.mets.ConsumerStarted()
	}
	go r.run(ctx)
	return r
}

// run polls the stream until the registration is shut down. The first poll
// fires immediately so records published before a full interval has elapsed
// are still delivered promptly.
func (r *Registration) run(ctx context.Context) {
	defer close(r.done)
	defer func() {
		if r.mets != nil {
			r.mets.ConsumerStopped()
		}
	}()

	ticker := time.NewTicker(r.pollEvery)
	defer ticker.Stop()

	for {
		r.poll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// poll consumes at most one record and hands it to the callback.
func (r *Registration) poll(ctx context.Context) {
	r.pollMu.Lock()
	if ctx.Err() != nil {
		r.pollMu.Unlock()
		return
	}
	rec, ok := r.stream.Consume()
	r.pollMu.Unlock()

	if !ok {
		return
	}
	if r.mets != nil {
		r.mets.RecordConsumed(r.stream.Name())
	}
	r.invoke(rec)
}

// invoke calls the callback with a one-element batch, recovering panics so
// one bad record does not permanently stall the registration.
func (r *Registration) invoke(rec queue.Record) {
	defer func() {
		if p := recover(); p != nil {
			if r.mets != nil {
				r.mets.CallbackPanic(r.stream.Name())
			}
			r.log.Errorw("consumer callback panicked, continuing to poll",
				"stream", r.stream.Name(),
				"eventID", rec.EventID,
				"panic", p,
			)
		}
	}()
	r.callback([]queue.Record{rec})
}

// Shutdown stops the polling task. It does not wait for an in-flight
// callback to return: a callback may be blocked in its own wait-and-retry
// loop, and shutdown must not wait for it to notice. Once Shutdown returns
// no further record is consumed by this registration, so records published
// afterward are never delivered. A callback for a record consumed just
// before the call may still begin or be running. Safe to call repeatedly.
func (r *Registration) Shutdown() {
	r.pollMu.Lock()
	r.cancel()
	r.pollMu.Unlock()
}

// Done is closed when the polling goroutine has exited. Test hook.
func (r *Registration) Done() <-chan struct{} {
	return r.done
}

var _ queue.Registration = (*Registration)(nil)
