// Package coalesce implements the reset-coalescing policy: the decision
// whether a batch of changes is emitted as discrete events or collapsed into
// a single Reset.
package coalesce

// ShouldReset decides whether affected changes should be collapsed into one
// Reset notification instead of emitted individually.
//
// A threshold of 0 always coalesces, even for a single change; this discards
// fine-grained change information entirely and is the documented way to run a
// dictionary in "reset only" mode. Otherwise changes coalesce once the
// affected count reaches the threshold.
//
// Bulk operations apply this decision twice: prospectively against the
// requested item count, to pick the emission strategy for the loop, and
// retrospectively against the actually affected count, which may be smaller
// under partial failure.
//
// Parameters:
//   - affected: Number of affected items, must be >= 1
//   - threshold: Configured reset threshold, must be >= 0
//
// Returns:
//   - bool: true if the changes should be emitted as one Reset
func ShouldReset(affected, threshold int) bool {
	if threshold == 0 {
		return true
	}

	return affected >= threshold
}
