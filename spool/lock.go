package spool

import "context"

// Lock is an async-acquirable mutual exclusion primitive guarding mutations
// of the spool directory. It provides no FIFO fairness guarantee.
type Lock struct {
	ch chan struct{}
}

// NewLock creates an unheld Lock.
func NewLock() *Lock {
	l := &Lock{ch: make(chan struct{}, 1)}
	l.ch <- struct{}{}

	return l
}

// Claim represents a held Lock; Release gives it back exactly once.
type Claim struct {
	release func()
	done    bool
}

// Release gives the lock back. Calling Release more than once is a no-op.
func (c *Claim) Release() {
	if c.done {
		return
	}

	c.done = true
	c.release()
}

// Acquire blocks until the lock is free or ctx is cancelled. On cancellation
// it returns a nil Claim and ctx.Err(), never leaving the lock held by a
// caller that gave up waiting for it.
func (l *Lock) Acquire(ctx context.Context) (*Claim, error) {
	select {
	case <-l.ch:
		return &Claim{release: func() { l.ch <- struct{}{} }}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
