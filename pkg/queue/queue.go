package queue

import (
	"encoding/json"
	"time"

	"github.com/fieldline/eventq/pkg/streamname"
)

// Record is an immutable envelope around a serialized event.
//
// EventID is stable for the lifetime of the record and is used for
// idempotent lookup. ArrivedAt is set once at production time. Payload
// holds the event in its opaque serialized form.
type Record struct {
	EventID   string
	ArrivedAt time.Time
	Payload   json.RawMessage
}

// Codec serializes events to and from the opaque payload form.
type Codec interface {
	Marshal(event any) ([]byte, error)
	Unmarshal(data []byte, out any) error
}

// JSONCodec is the default Codec, backed by encoding/json.
type JSONCodec struct{}

func (JSONCodec) Marshal(event any) ([]byte, error) {
	return json.Marshal(event)
}

func (JSONCodec) Unmarshal(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

// Typed is implemented by event types that know which stream they belong
// to. The descriptor is resolved against the backend's environment to
// obtain the stream name.
type Typed interface {
	TypeDescriptor() streamname.Descriptor
}

// Registry owns the set of named streams and active consumer registrations
// for one backend.
//
// Shutdown and ShutdownConsumers are idempotent. After Shutdown the
// registry is unusable for further production or consumption.
type Registry interface {
	// WithDebugging enables payload logging for all streams and producers.
	WithDebugging()

	// Clear discards every stream's pending records, leaving consumer
	// registrations and consumed history intact. Intended for resetting
	// state between test cases.
	Clear()

	// ShutdownConsumers stops every registered consumer's polling task.
	ShutdownConsumers()

	// Shutdown stops all consumers and releases all stream contents.
	Shutdown()
}

// Registration is a handle to one registered consumer.
type Registration interface {
	// Shutdown stops the registration's polling task without waiting for
	// an in-flight callback. No record is consumed by the registration
	// after Shutdown returns; a callback for a record consumed just
	// before the call may still begin. Safe to call repeatedly.
	Shutdown()
}
