package memqueue

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fieldline/eventq/pkg/metrics"
	"github.com/fieldline/eventq/pkg/queue"
	"github.com/fieldline/eventq/pkg/streamname"
)

// ErrShutdown is returned when producing or consuming on a registry that
// has been shut down.
var ErrShutdown = errors.New("memqueue: registry has been shut down")

// MemQueue owns the in-memory streams and consumer registrations for one
// process. Construct it explicitly in application wiring and pass the
// instance around; there is no package-level singleton.
type MemQueue struct {
	log             *zap.SugaredLogger
	codec           queue.Codec
	env             streamname.Environment
	mets            *metrics.Metrics
	pollInterval    time.Duration
	shutdownTimeout time.Duration
	debug           atomic.Bool

	mu            sync.Mutex
	streams       map[string]*Stream
	registrations []*Registration
	produced      map[string]struct{}
	consumed      map[string]struct{}
	closed        bool
}

// Option configures a MemQueue.
type Option func(*MemQueue)

// WithCodec overrides the default JSON codec.
func WithCodec(c queue.Codec) Option {
	return func(q *MemQueue) { q.codec = c }
}

// WithMetrics wires queue activity into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(q *MemQueue) { q.mets = m }
}

// New creates a MemQueue for the configured environment.
func New(cfg queue.Config, log *zap.SugaredLogger, opts ...Option) *MemQueue {
	cfg = cfg.WithDefaults()
	q := &MemQueue{
		log:             log,
		codec:           queue.JSONCodec{},
		env:             streamname.Environment(cfg.Environment),
		pollInterval:    *cfg.PollInterval,
		shutdownTimeout: *cfg.ShutdownTimeout,
		streams:         make(map[string]*Stream),
		produced:        make(map[string]struct{}),
		consumed:        make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	if cfg.Debug {
		q.debug.Store(true)
	}
	return q
}

// NewProducer resolves the stream for T, creating it on first reference,
// and returns a producer bound to it. shards is accepted for parity with
// the sharded real backend and is ignored by the mock.
//
// Resolution failures are configuration errors: they are returned
// immediately and should not be retried.
func NewProducer[T queue.Typed](q *MemQueue, shards int) (*Producer[T], error) {
	_ = shards

	s, name, err := streamFor[T](q)
	if err != nil {
		return nil, err
	}

	q.mu.Lock()
	q.produced[name] = struct{}{}
	q.mu.Unlock()

	return &Producer[T]{
		stream: s,
		codec:  q.codec,
		log:    q.log,
		debug:  &q.debug,
		mets:   q.mets,
	}, nil
}

// Consume registers callback for T's stream and returns once the polling
// goroutine is started; delivery happens asynchronously. The first poll
// fires immediately, then every pollEvery. A non-positive pollEvery falls
// back to the queue's configured poll interval.
func Consume[T queue.Typed](
	q *MemQueue,
	callback func(records []queue.Record),
	pollEvery time.Duration,
) (*Registration, error) {
	s, name, err := streamFor[T](q)
	if err != nil {
		return nil, err
	}

	if pollEvery <= 0 {
		pollEvery = q.pollInterval
	}

	reg := newRegistration(s, callback, pollEvery, q.log, q.mets)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		reg.Shutdown()
		return nil, ErrShutdown
	}
	q.consumed[name] = struct{}{}
	q.registrations = append(q.registrations, reg)
	q.mu.Unlock()

	return reg, nil
}

// StreamFor returns the stream backing T, creating it on first reference.
// Exposed for test introspection of pending/consumed state.
func StreamFor[T queue.Typed](q *MemQueue) (*Stream, error) {
	s, _, err := streamFor[T](q)
	return s, err
}

// streamFor resolves T's stream name and registers the stream under a
// compare-and-create so concurrent first references share one instance.
func streamFor[T queue.Typed](q *MemQueue) (*Stream, string, error) {
	var event T
	name, err := streamname.Resolve(event.TypeDescriptor(), q.env)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve stream for %T: %w", event, err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, "", ErrShutdown
	}
	s, ok := q.streams[name]
	if !ok {
		s = newStream(name, q.log, &q.debug, q.mets)
		q.streams[name] = s
	}
	return s, name, nil
}

// WithDebugging enables payload logging process-wide. The flag is read
// dynamically, so streams and producers created earlier pick it up too.
func (q *MemQueue) WithDebugging() {
	q.debug.Store(true)
	q.log.Debug("queue debugging enabled")
}

// ProducedStreams returns the sorted names of streams this process has
// created producers for. Diagnostics only.
func (q *MemQueue) ProducedStreams() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return sortedKeys(q.produced)
}

// ConsumedStreams returns the sorted names of streams this process has
// registered consumers for. Diagnostics only.
func (q *MemQueue) ConsumedStreams() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return sortedKeys(q.consumed)
}

// ShutdownConsumers stops every registered consumer's polling task and
// clears the registration set. Idempotent; a no-op on an empty registry.
//
// Each registration is stopped forcefully: no record is consumed by it
// afterward. The wait for polling goroutines to exit is bounded by the
// configured shutdown timeout, since a callback blocked in its own retry
// loop must not hold up shutdown.
func (q *MemQueue) ShutdownConsumers() {
	q.mu.Lock()
	regs := q.registrations
	q.registrations = nil
	q.mu.Unlock()

	deadline := time.Now().Add(q.shutdownTimeout)
	var g errgroup.Group
	for _, reg := range regs {
		reg := reg
		g.Go(func() error {
			reg.Shutdown()
			select {
			case <-reg.Done():
			case <-time.After(time.Until(deadline)):
				q.log.Warnw("consumer did not exit before shutdown timeout, abandoning",
					"stream", reg.stream.Name(),
				)
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // registration shutdown reports no errors
}

// Shutdown stops all consumers and releases every stream's contents. After
// Shutdown the registry refuses further producer or consumer registration.
func (q *MemQueue) Shutdown() {
	q.ShutdownConsumers()

	q.mu.Lock()
	for _, s := range q.streams {
		s.Clear()
	}
	q.streams = make(map[string]*Stream)
	q.closed = true
	q.mu.Unlock()
}

// Clear discards pending records on every stream, leaving consumer
// registrations and consumed history intact. Intended for resetting state
// between test cases.
func (q *MemQueue) Clear() {
	q.mu.Lock()
	streams := make([]*Stream, 0, len(q.streams))
	for _, s := range q.streams {
		streams = append(streams, s)
	}
	q.mu.Unlock()

	for _, s := range streams {
		s.ClearPending()
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ queue.Registry = (*MemQueue)(nil)
