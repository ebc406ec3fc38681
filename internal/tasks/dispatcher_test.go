package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDispatcher(maxAttempts int) *Dispatcher {
	return New(Params{
		Log:    zap.NewNop(),
		Config: Config{MaxAttempts: maxAttempts, BaseDelay: time.Millisecond},
	})
}

func TestDispatchRetriesUntilSuccess(t *testing.T) {
	d := newDispatcher(3)
	var attempts atomic.Int32

	ok := d.Dispatch(Job{
		Name: "flaky",
		Run: func(ctx context.Context) error {
			if attempts.Add(1) < 3 {
				return errors.New("transient")
			}
			return nil
		},
		OnExhausted: func(ctx context.Context, err error) {
			t.Error("OnExhausted must not fire on recovery")
		},
	})
	require.True(t, ok)
	d.Wait()

	assert.EqualValues(t, 3, attempts.Load())
}

func TestDispatchExhaustsAttempts(t *testing.T) {
	d := newDispatcher(2)
	var attempts atomic.Int32
	var exhausted atomic.Int32
	finalErr := errors.New("broken")

	ok := d.Dispatch(Job{
		Name: "doomed",
		Run: func(ctx context.Context) error {
			attempts.Add(1)
			return finalErr
		},
		OnExhausted: func(ctx context.Context, err error) {
			exhausted.Add(1)
			assert.ErrorIs(t, err, finalErr)
		},
	})
	require.True(t, ok)
	d.Wait()

	assert.EqualValues(t, 2, attempts.Load())
	assert.EqualValues(t, 1, exhausted.Load())
}

func TestDispatchAfterShutdown(t *testing.T) {
	d := newDispatcher(1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(ctx))

	ok := d.Dispatch(Job{
		Name: "late",
		Run:  func(ctx context.Context) error { return nil },
	})
	assert.False(t, ok)
}

func TestShutdownWaitsForInflightJobs(t *testing.T) {
	d := newDispatcher(1)
	var finished atomic.Bool
	started := make(chan struct{})

	ok := d.Dispatch(Job{
		Name: "slow",
		Run: func(ctx context.Context) error {
			close(started)
			time.Sleep(20 * time.Millisecond)
			finished.Store(true)
			return nil
		},
	})
	require.True(t, ok)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(ctx))
	assert.True(t, finished.Load())
}
