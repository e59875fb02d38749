package spool

import "context"

// Envelope is the opaque, serializable telemetry payload the spool persists
// and forwards. Construction, serialization format, and the SDK data model
// behind it are owned elsewhere; the spool only needs these accessors.
type Envelope interface {
	// Serialize writes the envelope's wire bytes verbatim; the spool imposes
	// no framing of its own.
	Serialize() ([]byte, error)

	// EventID returns the lowercase hex event id without separators, or ""
	// if the envelope carries no event id.
	EventID() string

	// ContentHash returns a non-cryptographic hash of the envelope's content,
	// used only to disambiguate same-second file names.
	ContentHash() int64
}

// EnvelopeDecoder reconstructs an Envelope from the bytes a prior Serialize
// produced. It is supplied by the caller (the SDK's data model), not by this
// package, since the spool treats envelope bytes as opaque.
type EnvelopeDecoder func(data []byte) (Envelope, error)

// InnerTransport is the downstream collaborator that performs the actual
// network send. Implementations must distinguish socket-level failures
// (wrap with ErrNetworkUnreachable or satisfy the configured
// TransportErrorClassifier) from any other rejection.
type InnerTransport interface {
	Send(ctx context.Context, envelope Envelope) error
}

// Disposable is implemented by inner transports that hold resources worth
// releasing explicitly (connection pools, file handles). CachingTransport
// disposes the inner transport, if disposable, during its own Dispose.
type Disposable interface {
	Dispose(ctx context.Context) error
}
