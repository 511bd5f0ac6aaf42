package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDownstream = errors.New("downstream failed")

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := New(Settings{Name: "test", MaxFailures: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return errDownstream })
		require.ErrorIs(t, err, errDownstream)
	}
	assert.Equal(t, "open", cb.State())

	// Calls are rejected without touching the downstream.
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreakerResetsOnSuccess(t *testing.T) {
	cb := New(Settings{Name: "test", MaxFailures: 3, Timeout: time.Minute})

	require.Error(t, cb.Execute(func() error { return errDownstream }))
	require.Error(t, cb.Execute(func() error { return errDownstream }))
	require.NoError(t, cb.Execute(func() error { return nil }))

	// The failure count restarted, so two more failures do not trip it.
	require.Error(t, cb.Execute(func() error { return errDownstream }))
	require.Error(t, cb.Execute(func() error { return errDownstream }))
	assert.Equal(t, "closed", cb.State())
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	cb := New(Settings{Name: "test", MaxFailures: 1, Timeout: 20 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return errDownstream }))
	assert.Equal(t, "open", cb.State())

	time.Sleep(30 * time.Millisecond)

	// After the timeout one probe goes through; success closes the breaker.
	err := cb.Execute(func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, "closed", cb.State())
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	cb := New(Settings{Name: "test", MaxFailures: 1, Timeout: 20 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return errDownstream }))
	time.Sleep(30 * time.Millisecond)

	require.Error(t, cb.Execute(func() error { return errDownstream }))
	assert.Equal(t, "open", cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpen)
}

func TestBreakerDefaults(t *testing.T) {
	cb := New(Settings{Name: "test"})
	assert.Equal(t, 5, cb.maxFailures)
	assert.Equal(t, 30*time.Second, cb.timeout)
}
