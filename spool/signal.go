package spool

import (
	"context"
	"sync"
)

// Signal is a single-slot, edge-triggered notification between one producer
// (many Release callers) and one consumer (one Wait caller at a time).
//
// It is not a counter: any number of Release calls between two Wait calls
// collapse into a single wakeup, matching "idempotent-set-bit" semantics
// rather than counting. A Signal constructed pre-released returns from its
// first Wait immediately, which CachingTransport relies on to flush files
// left over from a prior run even if no new envelope arrives.
type Signal struct {
	mu         sync.Mutex
	ch         chan struct{}
	disposedCh chan struct{}
	disposed   bool
}

// NewSignal creates a Signal. When preReleased is true, the first Wait
// returns immediately without an intervening Release.
func NewSignal(preReleased bool) *Signal {
	s := &Signal{
		ch:         make(chan struct{}, 1),
		disposedCh: make(chan struct{}),
	}

	if preReleased {
		s.ch <- struct{}{}
	}

	return s
}

// Release arms the signal for one pending or future Wait. It never blocks
// and never fails; a Release with no waiter sets the slot so the next Wait
// returns immediately. Calling Release while already armed is a no-op.
func (s *Signal) Release() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// Wait blocks until the signal is released, consuming the release, or until
// ctx is cancelled, or until Dispose is called. It returns ErrSignalDisposed
// rather than a context error when disposal is what woke it, since disposal
// is a distinct event from an ordinary cancellation.
func (s *Signal) Wait(ctx context.Context) error {
	select {
	case <-s.disposedCh:
		return ErrSignalDisposed
	default:
	}

	select {
	case <-s.ch:
		return nil
	case <-s.disposedCh:
		return ErrSignalDisposed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispose idempotently wakes any pending Wait with ErrSignalDisposed. Further
// calls to Wait after Dispose return ErrSignalDisposed immediately.
func (s *Signal) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}

	s.disposed = true

	close(s.disposedCh)
}
