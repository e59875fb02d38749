package spool

import "errors"

// Sentinel errors identifying the taxonomy kinds this package surfaces.
// Wrap these with fmt.Errorf("...: %w", ...) when adding context; callers
// should compare with errors.Is against these values, not against
// dynamically constructed errors.
var (
	// ErrInvalidConfig means Options failed validation at construction time.
	ErrInvalidConfig = errors.New("spool: invalid config")

	// ErrStorage means a filesystem operation inside SpoolDirectory failed for
	// a reason other than cancellation (including a same-second filename
	// collision, which is surfaced rather than silently overwritten).
	ErrStorage = errors.New("spool: storage error")

	// ErrNetworkUnreachable means the inner transport failed because of a
	// socket-level failure. Treated as transient: the drain aborts and the
	// file stays in __processing for the next startup's reclaim.
	ErrNetworkUnreachable = errors.New("spool: inner transport unreachable")

	// ErrPermanentSendFailure means the inner transport rejected the envelope
	// for any reason other than network unreachability. The processing file
	// is discarded and the drain continues.
	ErrPermanentSendFailure = errors.New("spool: permanent send failure")

	// ErrTransportDisposed means an operation was attempted after Dispose.
	ErrTransportDisposed = errors.New("spool: transport disposed")

	// ErrSignalDisposed is returned by Signal.Wait when the signal is disposed
	// while a wait is pending, distinguishing disposal from a normal release.
	ErrSignalDisposed = errors.New("spool: signal disposed")
)
