package testutils

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/fieldline/eventq/pkg/streamname"
)

// NewTestLogger creates a test logger that writes to testing.T
func NewTestLogger(t *testing.T) *zap.SugaredLogger {
	return zaptest.NewLogger(t).Sugar()
}

// OrderPlaced is a sample event for exercising queue backends in tests.
// It resolves to {env}.orders.v1.order_placed.json.
type OrderPlaced struct {
	EventID string `json:"event_id,omitempty"`
	Number  string `json:"number"`
	Amount  int64  `json:"amount"`
}

func (OrderPlaced) TypeDescriptor() streamname.Descriptor {
	return streamname.Descriptor{
		Namespace: "io.fieldline",
		Service:   "orders",
		Version:   1,
		Name:      "OrderPlaced",
	}
}

// OrderCanceled is a second sample event type, backed by a different
// stream than OrderPlaced.
type OrderCanceled struct {
	EventID string `json:"event_id,omitempty"`
	Number  string `json:"number"`
}

func (OrderCanceled) TypeDescriptor() streamname.Descriptor {
	return streamname.Descriptor{
		Namespace: "io.fieldline",
		Service:   "orders",
		Version:   1,
		Name:      "OrderCanceled",
	}
}

// BrokenEvent carries a descriptor that cannot be resolved, for testing
// configuration error paths.
type BrokenEvent struct{}

func (BrokenEvent) TypeDescriptor() streamname.Descriptor {
	return streamname.Descriptor{Namespace: "io.fieldline", Version: 0}
}
