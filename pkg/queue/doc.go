// Package queue defines the boundary between event producers/consumers and
// a streaming backend.
//
// Backends implement record publish/consume semantics over named streams:
// a network-backed implementation talks to a real streaming service, while
// memqueue provides an in-process stand-in for tests. The backend is chosen
// by application wiring, not by the code that publishes or consumes events.
//
// Event types declare the stream they belong to through the Typed
// capability and are serialized to the opaque Record payload form by a
// Codec supplied per backend.
package queue
