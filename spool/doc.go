// Package spool implements a durable outbound envelope spool: a transport
// that accepts serialized telemetry envelopes from arbitrary producers,
// persists each to local storage before acknowledging the producer, and
// forwards them to an inner transport from a single background worker, with
// crash-recoverable state, bounded capacity, and controlled startup
// flushing.
package spool
