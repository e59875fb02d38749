package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	breaker := New(Config{
		Name:                "test",
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             time.Minute,
		ConsecutiveFailures: 2,
	})

	failing := func() (any, error) { return nil, errors.New("boom") }

	_, err := breaker.Execute(failing)
	require.Error(t, err)
	assert.Equal(t, StateClosed, breaker.State())

	_, err = breaker.Execute(failing)
	require.Error(t, err)
	assert.Equal(t, StateOpen, breaker.State())

	_, err = breaker.Execute(func() (any, error) { return "unreached", nil })
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreaker_CountsTrackSuccessesAndFailures(t *testing.T) {
	t.Parallel()

	breaker := New(Config{
		Name:                "counts",
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             time.Minute,
		ConsecutiveFailures: 10,
	})

	_, err := breaker.Execute(func() (any, error) { return "ok", nil })
	require.NoError(t, err)

	_, err = breaker.Execute(func() (any, error) { return nil, errors.New("boom") })
	require.Error(t, err)

	counts := breaker.Counts()
	assert.Equal(t, uint32(2), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalSuccesses)
	assert.Equal(t, uint32(1), counts.TotalFailures)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig("inner-transport")
	assert.Equal(t, "inner-transport", cfg.Name)
	assert.Positive(t, cfg.ConsecutiveFailures)
}
