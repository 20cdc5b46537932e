package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInline_RunsSynchronously(t *testing.T) {
	var ran bool
	NewInline().Schedule(func() { ran = true })

	require.True(t, ran)
}

func TestSerial_PreservesSubmissionOrder(t *testing.T) {
	s := NewSerial()

	var (
		mu  sync.Mutex
		got []int
	)
	for i := range 100 {
		s.Schedule(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}

	s.Close()

	require.Len(t, got, 100)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestSerial_CloseDrainsQueue(t *testing.T) {
	s := NewSerial()

	var (
		mu    sync.Mutex
		count int
	)
	for range 50 {
		s.Schedule(func() {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}

	s.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 50, count)
}

func TestSerial_CloseIsIdempotent(t *testing.T) {
	s := NewSerial()
	s.Schedule(func() {})

	require.NotPanics(t, func() {
		s.Close()
		s.Close()
	})
}

func TestSerial_ScheduleAfterCloseRunsInline(t *testing.T) {
	s := NewSerial()
	s.Close()

	var ran bool
	s.Schedule(func() { ran = true })

	require.True(t, ran)
}

func TestSerial_ScheduleDoesNotBlock(t *testing.T) {
	s := NewSerial()
	defer s.Close()

	block := make(chan struct{})
	s.Schedule(func() { <-block })

	doneSubmitting := make(chan struct{})
	go func() {
		for range 1000 {
			s.Schedule(func() {})
		}
		close(doneSubmitting)
	}()

	select {
	case <-doneSubmitting:
	case <-time.After(5 * time.Second):
		t.Fatal("Schedule blocked while worker was busy")
	}
	close(block)
}
