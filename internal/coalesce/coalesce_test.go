package coalesce

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShouldReset_ZeroThresholdAlwaysCoalesces(t *testing.T) {
	require.True(t, ShouldReset(1, 0))
	require.True(t, ShouldReset(2, 0))
	require.True(t, ShouldReset(10000, 0))
}

func TestShouldReset_ThresholdBoundary(t *testing.T) {
	// Below threshold: individual events.
	require.False(t, ShouldReset(1, 2))
	require.False(t, ShouldReset(99, 100))

	// At and above threshold: one Reset.
	require.True(t, ShouldReset(2, 2))
	require.True(t, ShouldReset(100, 100))
	require.True(t, ShouldReset(101, 100))
}

func TestShouldReset_MaxThresholdNeverCoalesces(t *testing.T) {
	require.False(t, ShouldReset(1, math.MaxInt))
	require.False(t, ShouldReset(1<<30, math.MaxInt))
}

func TestShouldReset_SingleItem(t *testing.T) {
	// A single change only coalesces in "reset only" mode or at threshold 1.
	require.True(t, ShouldReset(1, 0))
	require.True(t, ShouldReset(1, 1))
	require.False(t, ShouldReset(1, 2))
}
