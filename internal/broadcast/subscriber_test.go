package broadcast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubscriberTrySend(t *testing.T) {
	t.Run("delivers while buffer has room", func(t *testing.T) {
		sub := newSubscriber[int](2)
		require.True(t, sub.trySend(1))
		require.True(t, sub.trySend(2))
		require.Equal(t, 1, <-sub.ch)
		require.Equal(t, 2, <-sub.ch)
	})

	t.Run("drops when buffer is full", func(t *testing.T) {
		sub := newSubscriber[int](1)
		require.True(t, sub.trySend(1))
		require.False(t, sub.trySend(2))
		require.Equal(t, 1, <-sub.ch)
	})

	t.Run("send after close is a no-op", func(t *testing.T) {
		sub := newSubscriber[int](1)
		sub.close()
		require.False(t, sub.trySend(1))

		_, ok := <-sub.ch
		require.False(t, ok)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		sub := newSubscriber[int](1)
		sub.close()
		require.NotPanics(t, sub.close)
	})
}

func TestRegistry(t *testing.T) {
	t.Run("publish reaches every subscriber", func(t *testing.T) {
		r := newRegistry[int]("test", 4, nopLogger{}, nopMetrics{})
		ch1, cancel1 := r.subscribe()
		ch2, cancel2 := r.subscribe()
		defer cancel1()
		defer cancel2()

		r.publish(7)
		require.Equal(t, 7, <-ch1)
		require.Equal(t, 7, <-ch2)
	})

	t.Run("unsubscribe closes the channel and stops delivery", func(t *testing.T) {
		r := newRegistry[int]("test", 4, nopLogger{}, nopMetrics{})
		ch, cancel := r.subscribe()
		cancel()

		r.publish(7)
		_, ok := <-ch
		require.False(t, ok)
	})

	t.Run("unsubscribe is idempotent", func(t *testing.T) {
		r := newRegistry[int]("test", 4, nopLogger{}, nopMetrics{})
		_, cancel := r.subscribe()
		cancel()
		require.NotPanics(t, cancel)
	})

	t.Run("subscribing after closeAll yields a closed channel", func(t *testing.T) {
		r := newRegistry[int]("test", 4, nopLogger{}, nopMetrics{})
		r.closeAll()

		ch, cancel := r.subscribe()
		defer cancel()
		_, ok := <-ch
		require.False(t, ok)
	})

	t.Run("closeAll completes live subscriptions", func(t *testing.T) {
		r := newRegistry[int]("test", 4, nopLogger{}, nopMetrics{})
		ch, _ := r.subscribe()
		r.publish(1)
		r.closeAll()

		v, ok := <-ch
		require.True(t, ok)
		require.Equal(t, 1, v)
		_, ok = <-ch
		require.False(t, ok)
	})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Fatal(string, ...any) {}

type nopMetrics struct{}

func (nopMetrics) RecordMutation(string)            {}
func (nopMetrics) RecordBatch(string, int, int, bool) {}
func (nopMetrics) RecordSize(int)                   {}
func (nopMetrics) RecordEmit(string)                {}
func (nopMetrics) RecordDroppedNotification(string) {}
func (nopMetrics) RecordObserverPanic(string)       {}
func (nopMetrics) RecordSubscriberCount(string, int) {}
