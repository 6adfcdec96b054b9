package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/eventq/pkg/queue"
	"github.com/fieldline/eventq/pkg/queue/memqueue"
	"github.com/fieldline/eventq/pkg/queue/testutils"
)

func TestSimulator_DeliversAllRecords(t *testing.T) {
	q := memqueue.New(queue.Config{Environment: "development"}, testutils.NewTestLogger(t))
	defer q.Shutdown()

	sim := New(q, testutils.NewTestLogger(t), Config{
		Producers:          3,
		Consumers:          2,
		RecordsPerProducer: 50,
		PollInterval:       time.Millisecond,
	})

	report, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(150), report.Published)
	assert.Equal(t, int64(150), report.Delivered)
	assert.Zero(t, report.Remaining)
	assert.Greater(t, report.Elapsed, time.Duration(0))
}

func TestSimulator_BoundedInFlight(t *testing.T) {
	q := memqueue.New(queue.Config{Environment: "development"}, testutils.NewTestLogger(t))
	defer q.Shutdown()

	sim := New(q, testutils.NewTestLogger(t), Config{
		Producers:          2,
		Consumers:          1,
		RecordsPerProducer: 25,
		PollInterval:       time.Millisecond,
		MaxInFlight:        4,
	})

	report, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(50), report.Published)
	assert.Equal(t, int64(50), report.Delivered)
}

func TestSimulator_CanceledContext(t *testing.T) {
	q := memqueue.New(queue.Config{Environment: "development"}, testutils.NewTestLogger(t))
	defer q.Shutdown()

	sim := New(q, testutils.NewTestLogger(t), Config{
		Producers:          1,
		Consumers:          1,
		RecordsPerProducer: 1000,
		PublishInterval:    time.Millisecond,
		PollInterval:       time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	report, err := sim.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, report.Published, int64(1000), "cancellation should stop publishing early")
}

func TestLoadEvent_StreamName(t *testing.T) {
	q := memqueue.New(queue.Config{Environment: "production"}, testutils.NewTestLogger(t))

	s, err := memqueue.StreamFor[LoadEvent](q)
	require.NoError(t, err)
	assert.Equal(t, "production.loadgen.v0.load_event.json", s.Name())
}
