// Package memqueue is an in-process queue.Registry backed by in-memory
// streams. It mimics the publish/consume semantics of the real streaming
// backend without network access, for use in tests and local tooling.
//
// Each stream holds an ordered pending sequence and an ordered consumed
// sequence. Producers append records to pending; each consumer registration
// polls its stream on a fixed interval from its own goroutine and moves
// records to consumed one at a time, FIFO. Registrations sharing a stream
// compete for records, mirroring single-consumer-group behavior: a record
// is delivered to exactly one of them.
//
// Policy notes
//   - A registration's first poll fires immediately on registration, then
//     repeats every poll interval.
//   - Callback panics are recovered and logged; the registration keeps
//     polling, so one bad record does not stall delivery.
//   - The debug flag is read dynamically: enabling debugging on the
//     registry takes effect on streams and producers that already exist.
//   - Shutdown of a registration does not wait for an in-flight callback,
//     since a callback may block in its own retry loop. No record is
//     consumed by the registration after Shutdown returns; a callback for
//     a record consumed just before the call may still begin.
package memqueue
