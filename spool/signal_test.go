package spool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_PreReleased_FirstWaitReturnsImmediately(t *testing.T) {
	s := NewSignal(true)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, s.Wait(ctx))
}

func TestSignal_NotPreReleased_WaitBlocksUntilRelease(t *testing.T) {
	s := NewSignal(false)

	done := make(chan error, 1)
	go func() { done <- s.Wait(context.Background()) }()

	select {
	case <-done:
		t.Fatal("Wait returned before Release")
	case <-time.After(20 * time.Millisecond):
	}

	s.Release()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not observe Release")
	}
}

func TestSignal_Release_IsIdempotentSetBit(t *testing.T) {
	s := NewSignal(false)

	s.Release()
	s.Release()
	s.Release()

	require.NoError(t, s.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, s.Wait(ctx), context.DeadlineExceeded)
}

func TestSignal_Wait_CancelledContext(t *testing.T) {
	s := NewSignal(false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Wait(ctx), context.Canceled)
}

func TestSignal_Dispose_WakesPendingWaitWithDistinctError(t *testing.T) {
	s := NewSignal(false)

	done := make(chan error, 1)
	go func() { done <- s.Wait(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	s.Dispose()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSignalDisposed)
	case <-time.After(time.Second):
		t.Fatal("Wait did not observe Dispose")
	}
}

func TestSignal_Dispose_IsIdempotent(t *testing.T) {
	s := NewSignal(false)

	s.Dispose()
	s.Dispose()

	assert.ErrorIs(t, s.Wait(context.Background()), ErrSignalDisposed)
}
