package memqueue

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/fieldline/eventq/pkg/metrics"
	"github.com/fieldline/eventq/pkg/queue"
)

// Stream is a single named in-memory channel of records.
//
// A record is in exactly one of the pending or consumed sequences at any
// instant. One mutex covers the pending->consumed move and every snapshot
// read, so readers never observe a record in both sequences or in neither.
type Stream struct {
	name  string
	log   *zap.SugaredLogger
	debug *atomic.Bool
	mets  *metrics.Metrics

	mu       sync.Mutex
	pending  []queue.Record
	consumed []queue.Record
}

func newStream(name string, log *zap.SugaredLogger, debug *atomic.Bool, mets *metrics.Metrics) *Stream {
	return &Stream{
		name:  name,
		log:   log,
		debug: debug,
		mets:  mets,
	}
}

// Name returns the stream's canonical name.
func (s *Stream) Name() string {
	return s.name
}

// Publish appends r to the pending sequence. It always succeeds and is safe
// to call concurrently with Consume and the snapshot readers.
func (s *Stream) Publish(r queue.Record) {
	s.mu.Lock()
	s.pending = append(s.pending, r)
	depth := len(s.pending)
	s.mu.Unlock()

	if s.mets != nil {
		s.mets.RecordPublished(s.name)
		s.mets.SetPendingRecords(s.name, depth)
	}
	if s.debug.Load() {
		s.log.Debugw("record published",
			"stream", s.name,
			"eventID", r.EventID,
			"payload", string(r.Payload),
		)
	}
}

// Consume atomically removes and returns the oldest pending record, moving
// it to the consumed sequence. It reports false when nothing is pending.
// Under concurrent callers at most one receives any given record.
func (s *Stream) Consume() (queue.Record, bool) {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return queue.Record{}, false
	}
	r := s.pending[0]
	s.pending = s.pending[1:]
	s.consumed = append(s.consumed, r)
	depth := len(s.pending)
	s.mu.Unlock()

	if s.mets != nil {
		s.mets.SetPendingRecords(s.name, depth)
	}
	if s.debug.Load() {
		s.log.Debugw("record consumed", "stream", s.name, "eventID", r.EventID)
	}
	return r, true
}

// FindByEventID scans pending then consumed for the first record with the
// given event id. It does not mutate stream state.
func (s *Stream) FindByEventID(id string) (queue.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.pending {
		if r.EventID == id {
			return r, true
		}
	}
	for _, r := range s.consumed {
		if r.EventID == id {
			return r, true
		}
	}
	return queue.Record{}, false
}

// Pending returns a point-in-time copy of the pending sequence.
func (s *Stream) Pending() []queue.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]queue.Record(nil), s.pending...)
}

// Consumed returns a point-in-time copy of the consumed sequence.
func (s *Stream) Consumed() []queue.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]queue.Record(nil), s.consumed...)
}

// All returns a point-in-time copy of pending followed by consumed. The two
// sequences are captured inside one critical section, so a record mid-move
// in Consume appears exactly once.
func (s *Stream) All() []queue.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]queue.Record, 0, len(s.pending)+len(s.consumed))
	all = append(all, s.pending...)
	return append(all, s.consumed...)
}

// ClearPending discards pending records, leaving consumed history intact.
func (s *Stream) ClearPending() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
	if s.mets != nil {
		s.mets.SetPendingRecords(s.name, 0)
	}
}

// ClearConsumed discards consumed history, leaving pending records intact.
func (s *Stream) ClearConsumed() {
	s.mu.Lock()
	s.consumed = nil
	s.mu.Unlock()
}

// Clear discards both sequences.
func (s *Stream) Clear() {
	s.mu.Lock()
	s.pending = nil
	s.consumed = nil
	s.mu.Unlock()
	if s.mets != nil {
		s.mets.SetPendingRecords(s.name, 0)
	}
}
