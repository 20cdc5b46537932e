package testing

import (
	"testing"
	"time"
)

// Receive waits up to timeout for one value from ch and fails the test if
// none arrives or the channel closes first.
func Receive[T any](t *testing.T, ch <-chan T, timeout time.Duration) T {
	t.Helper()

	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("channel closed while waiting for a value")
		}
		return v
	case <-time.After(timeout):
		t.Fatalf("no value received within %s", timeout)
	}

	var zero T
	return zero
}

// ReceiveNone asserts that ch stays silent for the full window. A closed
// channel counts as silent.
func ReceiveNone[T any](t *testing.T, ch <-chan T, window time.Duration) {
	t.Helper()

	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf("unexpected value received: %v", v)
		}
	case <-time.After(window):
	}
}

// Drain consumes every value currently buffered in ch without blocking and
// returns them in order.
func Drain[T any](ch <-chan T) []T {
	var out []T
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, v)
		default:
			return out
		}
	}
}
