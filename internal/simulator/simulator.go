// Package simulator drives synthetic load through an in-memory queue:
// a set of producers publishing at a fixed cadence and a set of consumer
// registrations competing for the records. It backs the queue-sim binary
// and doubles as an end-to-end exercise of the memqueue engine.
package simulator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/fieldline/eventq/pkg/queue"
	"github.com/fieldline/eventq/pkg/queue/memqueue"
	"github.com/fieldline/eventq/pkg/streamname"
)

// LoadEvent is the synthetic event type the simulator publishes. It
// resolves to {env}.loadgen.v0.load_event.json.
type LoadEvent struct {
	EventID  string    `json:"event_id"`
	Producer string    `json:"producer"`
	Sequence int       `json:"sequence"`
	SentAt   time.Time `json:"sent_at"`
}

func (LoadEvent) TypeDescriptor() streamname.Descriptor {
	return streamname.Descriptor{
		Namespace: "io.fieldline",
		Service:   "loadgen",
		Version:   0,
		Name:      "LoadEvent",
	}
}

// Config holds simulation parameters.
type Config struct {
	Producers          int           // concurrent producers
	Consumers          int           // consumer registrations competing on the stream
	RecordsPerProducer int           // records each producer publishes
	PublishInterval    time.Duration // delay between publishes per producer
	PollInterval       time.Duration // consumer poll cadence
	MaxInFlight        int64         // bound on records pending at once; 0 means unbounded
	DrainTimeout       time.Duration // how long to wait for consumers to drain at the end
}

// withDefaults fills zero fields with usable values.
func (c Config) withDefaults() Config {
	if c.Producers <= 0 {
		c.Producers = 1
	}
	if c.Consumers <= 0 {
		c.Consumers = 1
	}
	if c.RecordsPerProducer <= 0 {
		c.RecordsPerProducer = 100
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Millisecond
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = 30 * time.Second
	}
	return c
}

// Report summarizes one simulation run.
type Report struct {
	Published int64
	Delivered int64
	Remaining int
	Elapsed   time.Duration
}

// Simulator runs producers and consumers against one MemQueue.
type Simulator struct {
	q   *memqueue.MemQueue
	log *zap.SugaredLogger
	cfg Config

	sem       *semaphore.Weighted
	published atomic.Int64
	delivered atomic.Int64
}

// New creates a Simulator. The queue stays owned by the caller; the
// simulator only registers consumers on it and shuts those down itself.
func New(q *memqueue.MemQueue, log *zap.SugaredLogger, cfg Config) *Simulator {
	s := &Simulator{q: q, log: log, cfg: cfg.withDefaults()}
	if s.cfg.MaxInFlight > 0 {
		s.sem = semaphore.NewWeighted(s.cfg.MaxInFlight)
	}
	return s
}

// Run publishes the configured load, waits for the consumers to drain it,
// and reports totals. It returns early with the partial report when ctx is
// canceled.
func (s *Simulator) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	s.log.Infow("starting simulation",
		"producers", s.cfg.Producers,
		"consumers", s.cfg.Consumers,
		"recordsPerProducer", s.cfg.RecordsPerProducer,
		"pollInterval", s.cfg.PollInterval,
		"maxInFlight", s.cfg.MaxInFlight,
	)

	for i := 0; i < s.cfg.Consumers; i++ {
		if _, err := memqueue.Consume[LoadEvent](s.q, s.deliver, s.cfg.PollInterval); err != nil {
			return Report{}, fmt.Errorf("failed to register consumer: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.cfg.Producers; i++ {
		name := fmt.Sprintf("producer-%d", i)
		g.Go(func() error {
			return s.produce(gctx, name)
		})
	}
	err := g.Wait()
	if err == nil {
		err = s.drain(ctx)
	}

	s.q.ShutdownConsumers()

	report := Report{
		Published: s.published.Load(),
		Delivered: s.delivered.Load(),
		Elapsed:   time.Since(start),
	}
	if stream, serr := memqueue.StreamFor[LoadEvent](s.q); serr == nil {
		report.Remaining = len(stream.Pending())
	}
	return report, err
}

// produce publishes the per-producer share of the load. With MaxInFlight
// set, it blocks while too many records sit undelivered, keeping the
// stream's pending depth bounded.
func (s *Simulator) produce(ctx context.Context, name string) error {
	p, err := memqueue.NewProducer[LoadEvent](s.q, 1)
	if err != nil {
		return fmt.Errorf("failed to create producer %s: %w", name, err)
	}
	defer p.Close()

	for i := 0; i < s.cfg.RecordsPerProducer; i++ {
		if s.sem != nil {
			if err := s.sem.Acquire(ctx, 1); err != nil {
				return err
			}
		}

		event := LoadEvent{
			EventID:  uuid.NewString(),
			Producer: name,
			Sequence: i,
			SentAt:   time.Now(),
		}
		if err := p.Publish(ctx, event, name); err != nil {
			return fmt.Errorf("publish failed for %s: %w", name, err)
		}
		s.published.Add(1)

		if s.cfg.PublishInterval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.cfg.PublishInterval):
			}
		}
	}
	return nil
}

// deliver is the shared consumer callback.
func (s *Simulator) deliver(records []queue.Record) {
	s.delivered.Add(int64(len(records)))
	if s.sem != nil {
		s.sem.Release(int64(len(records)))
	}
}

// drain waits until everything published has been delivered.
func (s *Simulator) drain(ctx context.Context) error {
	deadline := time.After(s.cfg.DrainTimeout)
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if s.delivered.Load() >= s.published.Load() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("drain timed out after %s: delivered %d of %d",
				s.cfg.DrainTimeout, s.delivered.Load(), s.published.Load())
		case <-ticker.C:
		}
	}
}
