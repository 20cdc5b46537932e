package observable

import (
	"errors"

	"github.com/jbattermann/observable/internal/coalesce"
	"github.com/jbattermann/observable/types"
	"github.com/puzpuzpuz/xsync/v4"
)

// TryAddRange inserts every pair whose key is not already present.
//
// Pairs with duplicate keys are skipped; already-inserted pairs stay in. The
// batch is coalesced against the reset threshold captured at the start of the
// call: if the requested size meets the threshold, per-item notifications are
// withheld and, once the actual number of insertions is known, either one
// Reset (actual still meets the threshold) or the withheld per-item
// notifications (it does not) are emitted. Nothing is emitted for a batch
// that inserted nothing.
//
// Parameters:
//   - pairs: Pairs to insert; an empty batch is a no-op
//
// Returns:
//   - int: Number of pairs actually inserted
//   - error: ErrNilKey if any key is nil (nothing is mutated in that case),
//     ErrClosed, or joined unhandled observer errors from notification
//     delivery
func (d *Dictionary[K, V]) TryAddRange(pairs []types.KeyValuePair[K, V]) (int, error) {
	added, _, err := d.addRange(pairs)
	return added, err
}

// AddRange inserts every pair, failing if any key already existed.
//
// Insertion and notification behavior are identical to TryAddRange; the only
// difference is that skipped duplicates turn into a DuplicateKeysError
// naming the offending keys. Pairs that could be inserted were inserted and
// announced.
//
// Returns:
//   - error: DuplicateKeysError (unwrapping to ErrKeyAlreadyExists) if any
//     key existed, ErrNilKey / ErrClosed on contract violations, or joined
//     unhandled observer errors
func (d *Dictionary[K, V]) AddRange(pairs []types.KeyValuePair[K, V]) error {
	_, duplicates, err := d.addRange(pairs)
	if len(duplicates) > 0 {
		err = errors.Join(&types.DuplicateKeysError[K]{Keys: duplicates}, err)
	}

	return err
}

func (d *Dictionary[K, V]) addRange(pairs []types.KeyValuePair[K, V]) (added int, duplicates []K, err error) {
	if d.closed.Load() {
		return 0, nil, ErrClosed
	}
	for _, pair := range pairs {
		if isNilKey(pair.Key) {
			return 0, nil, ErrNilKey
		}
	}
	if len(pairs) == 0 {
		return 0, nil, nil
	}

	// The threshold is captured once so a concurrent SetResetThreshold cannot
	// split one batch between coalescing decisions. Suppressed resets disable
	// coalescing outright; the batch then announces per item.
	threshold := d.ResetThreshold()
	withhold := d.gates.Resets.Enabled() && coalesce.ShouldReset(len(pairs), threshold)

	var (
		withheld []types.Change[K, V]
		emitErrs []error
	)

	for _, pair := range pairs {
		ent := d.newAttachedEntry(pair.Key, pair.Value)
		if _, loaded := d.store.LoadOrStore(pair.Key, ent); loaded {
			ent.detach()
			duplicates = append(duplicates, pair.Key)
			continue
		}

		added++
		c := types.NewItemAdded(pair.Key, pair.Value)
		if withhold {
			withheld = append(withheld, c)
		} else if emitErr := d.emit(c); emitErr != nil {
			emitErrs = append(emitErrs, emitErr)
		}
	}

	coalesced := withhold && coalesce.ShouldReset(added, threshold)
	d.metrics.RecordBatch("addRange", len(pairs), added, coalesced)
	if added > 0 {
		d.metrics.RecordSize(d.store.Size())
	}

	emitErrs = append(emitErrs, d.flush(withheld, added, threshold, withhold)...)

	return added, duplicates, errors.Join(emitErrs...)
}

// TryRemoveRange removes every present key.
//
// Absent keys are skipped. Coalescing mirrors TryAddRange: the decision to
// withhold per-item notifications is made against the requested size, and
// the final Reset-or-replay decision against the number of keys actually
// removed. Nothing is emitted for a batch that removed nothing.
//
// Parameters:
//   - keys: Keys to remove; an empty batch is a no-op
//
// Returns:
//   - int: Number of keys actually removed
//   - error: ErrNilKey / ErrClosed on contract violations, or joined
//     unhandled observer errors from notification delivery
func (d *Dictionary[K, V]) TryRemoveRange(keys []K) (int, error) {
	removed, _, err := d.removeRange(keys)
	return removed, err
}

// RemoveRange removes every key, failing if any key was absent.
//
// Removal and notification behavior are identical to TryRemoveRange; absent
// keys additionally turn into a MissingKeysError naming them. Keys that
// could be removed were removed and announced.
//
// Returns:
//   - error: MissingKeysError (unwrapping to ErrKeyNotFound) if any key was
//     absent, ErrNilKey / ErrClosed on contract violations, or joined
//     unhandled observer errors
func (d *Dictionary[K, V]) RemoveRange(keys []K) error {
	_, missing, err := d.removeRange(keys)
	if len(missing) > 0 {
		err = errors.Join(&types.MissingKeysError[K]{Keys: missing}, err)
	}

	return err
}

func (d *Dictionary[K, V]) removeRange(keys []K) (removed int, missing []K, err error) {
	if d.closed.Load() {
		return 0, nil, ErrClosed
	}
	for _, key := range keys {
		if isNilKey(key) {
			return 0, nil, ErrNilKey
		}
	}
	if len(keys) == 0 {
		return 0, nil, nil
	}

	threshold := d.ResetThreshold()
	withhold := d.gates.Resets.Enabled() && coalesce.ShouldReset(len(keys), threshold)

	var (
		withheld []types.Change[K, V]
		emitErrs []error
	)

	for _, key := range keys {
		ent, loaded := d.store.LoadAndDelete(key)
		if !loaded {
			missing = append(missing, key)
			continue
		}

		ent.detach()
		removed++
		c := types.NewItemRemoved(key, ent.value)
		if withhold {
			withheld = append(withheld, c)
		} else if emitErr := d.emit(c); emitErr != nil {
			emitErrs = append(emitErrs, emitErr)
		}
	}

	coalesced := withhold && coalesce.ShouldReset(removed, threshold)
	d.metrics.RecordBatch("removeRange", len(keys), removed, coalesced)
	if removed > 0 {
		d.metrics.RecordSize(d.store.Size())
	}

	emitErrs = append(emitErrs, d.flush(withheld, removed, threshold, withhold)...)

	return removed, missing, errors.Join(emitErrs...)
}

// TryRemoveRangePairs removes every pair whose key is present and whose
// stored value equals the pair's value under the configured value comparer.
//
// Pairs whose key is absent, and pairs whose stored value no longer matches,
// are skipped. Coalescing behaves as in TryRemoveRange.
//
// Returns:
//   - int: Number of pairs actually removed
//   - error: ErrNilKey / ErrClosed on contract violations, or joined
//     unhandled observer errors from notification delivery
func (d *Dictionary[K, V]) TryRemoveRangePairs(pairs []types.KeyValuePair[K, V]) (int, error) {
	removed, _, err := d.removeRangePairs(pairs)
	return removed, err
}

// RemoveRangePairs removes every pair, failing if any pair's key was absent
// or its stored value did not match.
//
// Returns:
//   - error: MissingKeysError naming the unmatched keys if any pair could
//     not be removed, ErrNilKey / ErrClosed on contract violations, or
//     joined unhandled observer errors
func (d *Dictionary[K, V]) RemoveRangePairs(pairs []types.KeyValuePair[K, V]) error {
	_, missing, err := d.removeRangePairs(pairs)
	if len(missing) > 0 {
		err = errors.Join(&types.MissingKeysError[K]{Keys: missing}, err)
	}

	return err
}

func (d *Dictionary[K, V]) removeRangePairs(pairs []types.KeyValuePair[K, V]) (removed int, missing []K, err error) {
	if d.closed.Load() {
		return 0, nil, ErrClosed
	}
	for _, pair := range pairs {
		if isNilKey(pair.Key) {
			return 0, nil, ErrNilKey
		}
	}
	if len(pairs) == 0 {
		return 0, nil, nil
	}

	threshold := d.ResetThreshold()
	withhold := d.gates.Resets.Enabled() && coalesce.ShouldReset(len(pairs), threshold)

	var (
		withheld []types.Change[K, V]
		emitErrs []error
	)

	for _, pair := range pairs {
		// Compute makes the match-and-remove atomic: the entry is deleted
		// only if it still holds the expected value, so a concurrent
		// replace can neither be removed under a stale pair nor be stomped
		// by a restore.
		var ent *entry[V]
		d.store.Compute(pair.Key, func(cur *entry[V], loaded bool) (*entry[V], xsync.ComputeOp) {
			if !loaded || !d.valueEqual(cur.value, pair.Value) {
				return cur, xsync.CancelOp
			}
			ent = cur
			return nil, xsync.DeleteOp
		})
		if ent == nil {
			missing = append(missing, pair.Key)
			continue
		}

		ent.detach()
		removed++
		c := types.NewItemRemoved(pair.Key, ent.value)
		if withhold {
			withheld = append(withheld, c)
		} else if emitErr := d.emit(c); emitErr != nil {
			emitErrs = append(emitErrs, emitErr)
		}
	}

	coalesced := withhold && coalesce.ShouldReset(removed, threshold)
	d.metrics.RecordBatch("removeRangePairs", len(pairs), removed, coalesced)
	if removed > 0 {
		d.metrics.RecordSize(d.store.Size())
	}

	emitErrs = append(emitErrs, d.flush(withheld, removed, threshold, withhold)...)

	return removed, missing, errors.Join(emitErrs...)
}

// flush completes a batch whose per-item notifications were withheld: one
// Reset if the actual mutation count still meets the threshold, the withheld
// notifications in order otherwise, and nothing at all for an empty outcome.
func (d *Dictionary[K, V]) flush(withheld []types.Change[K, V], actual, threshold int, withhold bool) []error {
	if !withhold || actual == 0 {
		return nil
	}

	if coalesce.ShouldReset(actual, threshold) {
		if err := d.emit(types.NewReset[K, V]()); err != nil {
			return []error{err}
		}
		return nil
	}

	var errs []error
	for _, c := range withheld {
		if err := d.emit(c); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}
