package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRetry_SucceedsAfterFailures(t *testing.T) {
	r := connectRetry{Attempts: 3, Backoff: time.Millisecond}

	var calls int
	err := r.do(context.Background(), "ping", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestConnectRetry_GivesUp(t *testing.T) {
	r := connectRetry{Attempts: 2, Backoff: time.Millisecond}

	var calls int
	err := r.do(context.Background(), "ping", func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestConnectRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := connectRetry{Attempts: 5, Backoff: time.Hour}

	var calls int
	err := r.do(ctx, "ping", func(context.Context) error {
		calls++
		cancel()
		return errors.New("connection refused")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestConnectRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	var calls int
	err := connectRetry{}.do(context.Background(), "ping", func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
