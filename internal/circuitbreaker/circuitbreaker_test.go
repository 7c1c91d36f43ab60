package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEndpoint    = "https://secure.docdatapayments.com/ps/services/paymentservice/1_3"
	anotherEndpoint = "https://test.docdatapayments.com/ps/services/paymentservice/1_3"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg Config) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(cfg)
	cb.now = clock.now
	return cb, clock
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker(Config{})
	require.NotNil(t, cb)
	assert.Equal(t, defaultFailureThreshold, cb.cfg.FailureThreshold)
	assert.Equal(t, defaultOpenTimeout, cb.cfg.OpenTimeout)
	assert.Equal(t, defaultHalfOpenSuccesses, cb.cfg.HalfOpenSuccesses)

	for i := 0; i < defaultFailureThreshold-1; i++ {
		cb.RecordFailure(testEndpoint)
	}
	assert.True(t, cb.AllowRequest(testEndpoint), "Should still be closed below the threshold")
	cb.RecordFailure(testEndpoint)
	assert.False(t, cb.AllowRequest(testEndpoint), "Should be open at the threshold")
}

func TestCircuitBreaker_StateTransitions(t *testing.T) {
	cfg := Config{FailureThreshold: 2, OpenTimeout: 50 * time.Millisecond, HalfOpenSuccesses: 2}

	t.Run("Closed_To_Open", func(t *testing.T) {
		cb, _ := newTestBreaker(cfg)
		assert.Equal(t, Closed, cb.GetState(testEndpoint))
		cb.RecordFailure(testEndpoint)
		cb.RecordFailure(testEndpoint)
		assert.Equal(t, Open, cb.GetState(testEndpoint))
		assert.False(t, cb.AllowRequest(testEndpoint))
	})

	t.Run("Success_Resets_Failures", func(t *testing.T) {
		cb, _ := newTestBreaker(cfg)
		cb.RecordFailure(testEndpoint)
		cb.RecordSuccess(testEndpoint)
		cb.RecordFailure(testEndpoint)
		assert.Equal(t, Closed, cb.GetState(testEndpoint))
	})

	t.Run("Open_To_HalfOpen_To_Closed", func(t *testing.T) {
		cb, clock := newTestBreaker(cfg)
		cb.RecordFailure(testEndpoint)
		cb.RecordFailure(testEndpoint)

		clock.advance(100 * time.Millisecond)
		assert.True(t, cb.AllowRequest(testEndpoint))
		assert.Equal(t, HalfOpen, cb.GetState(testEndpoint))

		cb.RecordSuccess(testEndpoint)
		assert.Equal(t, HalfOpen, cb.GetState(testEndpoint))
		cb.RecordSuccess(testEndpoint)
		assert.Equal(t, Closed, cb.GetState(testEndpoint))
	})

	t.Run("HalfOpen_Failure_Reopens", func(t *testing.T) {
		cb, clock := newTestBreaker(cfg)
		cb.RecordFailure(testEndpoint)
		cb.RecordFailure(testEndpoint)
		clock.advance(100 * time.Millisecond)
		require.True(t, cb.AllowRequest(testEndpoint))

		cb.RecordFailure(testEndpoint)
		assert.Equal(t, Open, cb.GetState(testEndpoint))
		assert.False(t, cb.AllowRequest(testEndpoint))
	})

	t.Run("Endpoints_Are_Independent", func(t *testing.T) {
		cb, _ := newTestBreaker(cfg)
		cb.RecordFailure(testEndpoint)
		cb.RecordFailure(testEndpoint)
		assert.False(t, cb.AllowRequest(testEndpoint))
		assert.True(t, cb.AllowRequest(anotherEndpoint))
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "half-open", HalfOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
