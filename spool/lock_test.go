package spool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLock_Acquire_UnheldReturnsImmediately(t *testing.T) {
	l := NewLock()

	claim, err := l.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, claim)

	claim.Release()
}

func TestLock_Acquire_BlocksWhileHeld(t *testing.T) {
	l := NewLock()

	claim, err := l.Acquire(context.Background())
	require.NoError(t, err)

	acquired := make(chan struct{})

	go func() {
		second, err := l.Acquire(context.Background())
		require.NoError(t, err)
		close(acquired)
		second.Release()
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire succeeded while the lock was still held")
	case <-time.After(20 * time.Millisecond):
	}

	claim.Release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Acquire never observed the Release")
	}
}

func TestLock_Acquire_CancelledDuringWait(t *testing.T) {
	l := NewLock()

	claim, err := l.Acquire(context.Background())
	require.NoError(t, err)

	defer claim.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	second, err := l.Acquire(ctx)
	assert.Nil(t, second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLock_Acquire_DoesNotDeadlockAfterCancelledWaiterGivesUp(t *testing.T) {
	l := NewLock()

	claim, err := l.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx)
	require.Error(t, err)

	claim.Release()

	next, err := l.Acquire(context.Background())
	require.NoError(t, err)
	next.Release()
}

func TestClaim_Release_IsIdempotent(t *testing.T) {
	l := NewLock()

	claim, err := l.Acquire(context.Background())
	require.NoError(t, err)

	claim.Release()
	claim.Release()

	next, err := l.Acquire(context.Background())
	require.NoError(t, err)
	next.Release()
}
