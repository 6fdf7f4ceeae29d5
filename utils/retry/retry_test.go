package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo(t *testing.T) {
	transient := errors.New("connection reset")
	permanent := errors.New("bad request")
	isTransient := func(err error) bool { return errors.Is(err, transient) }

	t.Run("first attempt succeeds", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), 3, 0, isTransient, func() error {
			calls++
			return nil
		})
		if err != nil || calls != 1 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("transient retried until success", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), 3, 0, isTransient, func() error {
			calls++
			if calls < 3 {
				return transient
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("attempts exhausted", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), 3, 0, isTransient, func() error {
			calls++
			return transient
		})
		if !errors.Is(err, transient) || calls != 3 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("permanent not retried", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), 3, 0, isTransient, func() error {
			calls++
			return permanent
		})
		if !errors.Is(err, permanent) || calls != 1 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("zero attempts runs once", func(t *testing.T) {
		calls := 0
		_ = Do(context.Background(), 0, 0, isTransient, func() error {
			calls++
			return transient
		})
		if calls != 1 {
			t.Errorf("calls=%d, want 1", calls)
		}
	})

	t.Run("nil retryable retries everything", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), 2, 0, nil, func() error {
			calls++
			return permanent
		})
		if !errors.Is(err, permanent) || calls != 2 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("context cancels backoff", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Do(ctx, 3, time.Minute, isTransient, func() error {
			return transient
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err=%v, want context.Canceled", err)
		}
	})
}
