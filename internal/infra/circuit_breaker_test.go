package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errWebhookDown = errors.New("webhook down")

func failingCall() error { return errWebhookDown }
func okCall() error      { return nil }

func TestCircuitBreaker_AbreTrasFallosConsecutivos(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
	})

	for i := 0; i < 3; i++ {
		err := cb.Execute(failingCall)
		assert.ErrorIs(t, err, errWebhookDown)
	}
	assert.Equal(t, CBOpen, cb.State())

	// Fast-fail while open
	err := cb.Execute(okCall)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_ExitoResetaConteo(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: time.Minute})

	require.Error(t, cb.Execute(failingCall))
	require.Error(t, cb.Execute(failingCall))
	require.NoError(t, cb.Execute(okCall)) // resets the failure streak
	require.Error(t, cb.Execute(failingCall))
	require.Error(t, cb.Execute(failingCall))

	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenYRecuperacion(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		OpenTimeout:      10 * time.Millisecond,
	})

	require.Error(t, cb.Execute(failingCall))
	assert.Equal(t, CBOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())

	// Two probe successes close the breaker again
	require.NoError(t, cb.Execute(okCall))
	require.NoError(t, cb.Execute(okCall))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_ProbeFallidoReabre(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		OpenTimeout:      10 * time.Millisecond,
	})

	require.Error(t, cb.Execute(failingCall))
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	require.Error(t, cb.Execute(failingCall))
	assert.Equal(t, CBOpen, cb.State())
}

func TestCBStateString(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
}
