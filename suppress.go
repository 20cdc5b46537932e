package observable

import (
	"sync/atomic"

	"github.com/jbattermann/observable/types"
)

// Suppression is a handle over one suspended notification category.
//
// A Suppression is obtained from one of the Suppress* methods and released
// with Release. Each category allows at most one active suppression at a
// time; a second Suppress* call for the same category fails with
// ErrAlreadySuppressed while the first handle is outstanding.
type Suppression struct {
	released atomic.Bool
	release  func()
}

// Release resumes the suppressed category. Only the first call has any
// effect; repeated and concurrent calls are safe.
func (s *Suppression) Release() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	s.release()
}

// SuppressChangeNotifications suspends every notification surface at once.
// Changes performed while suppressed are lost to subscribers, not queued.
//
// Parameters:
//   - signalResetWhenResumed: When true, one synthetic Reset is emitted on
//     Release so subscribers can resynchronize
//
// Returns:
//   - *Suppression: Handle releasing the suppression
//   - error: ErrAlreadySuppressed if all changes are already suppressed,
//     ErrClosed after Close
func (d *Dictionary[K, V]) SuppressChangeNotifications(signalResetWhenResumed bool) (*Suppression, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	if err := d.gates.Changes.Suppress(); err != nil {
		return nil, err
	}

	return &Suppression{release: func() {
		d.gates.Changes.Resume()
		d.signalReset(signalResetWhenResumed)
	}}, nil
}

// SuppressItemChangeNotifications suspends in-place item property-change
// notifications. Structural changes (adds, removes, replaces, resets) keep
// flowing.
//
// Parameters:
//   - signalResetWhenResumed: When true, one synthetic Reset is emitted on
//     Release so subscribers can resynchronize
//
// Returns:
//   - *Suppression: Handle releasing the suppression
//   - error: ErrAlreadySuppressed if item changes are already suppressed,
//     ErrClosed after Close
func (d *Dictionary[K, V]) SuppressItemChangeNotifications(signalResetWhenResumed bool) (*Suppression, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	if err := d.gates.ItemChanges.Suppress(); err != nil {
		return nil, err
	}

	return &Suppression{release: func() {
		d.gates.ItemChanges.Resume()
		d.signalReset(signalResetWhenResumed)
	}}, nil
}

// SuppressResetNotifications suspends Reset notifications. Item-level
// notifications keep flowing; while suppressed, the reset-coalescing policy
// never fires either, so bulk operations fall back to per-item
// notifications regardless of size.
//
// Parameters:
//   - signalResetWhenResumed: When true, one synthetic Reset is emitted on
//     Release so subscribers can resynchronize
//
// Returns:
//   - *Suppression: Handle releasing the suppression
//   - error: ErrAlreadySuppressed if resets are already suppressed,
//     ErrClosed after Close
func (d *Dictionary[K, V]) SuppressResetNotifications(signalResetWhenResumed bool) (*Suppression, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	if err := d.gates.Resets.Suppress(); err != nil {
		return nil, err
	}

	return &Suppression{release: func() {
		d.gates.Resets.Resume()
		d.signalReset(signalResetWhenResumed)
	}}, nil
}

// SuppressCountChangeNotifications suspends count notifications.
//
// Parameters:
//   - signalCurrentCountWhenResumed: When true, the then-current entry count
//     is emitted on Release; the usual de-duplication still applies, so no
//     signal flows if the count never actually moved
//
// Returns:
//   - *Suppression: Handle releasing the suppression
//   - error: ErrAlreadySuppressed if count changes are already suppressed,
//     ErrClosed after Close
func (d *Dictionary[K, V]) SuppressCountChangeNotifications(signalCurrentCountWhenResumed bool) (*Suppression, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	if err := d.gates.CountChanges.Suppress(); err != nil {
		return nil, err
	}

	return &Suppression{release: func() {
		d.gates.CountChanges.Resume()
		if !signalCurrentCountWhenResumed || d.closed.Load() {
			return
		}
		if err := d.broadcaster.SignalCount(d.store.Size()); err != nil {
			d.logger.Error("count signal on resume failed", "error", err)
		}
	}}, nil
}

// signalReset emits the synthetic resynchronization Reset a released
// suppression asked for. Failures have no caller to surface to and are
// logged.
func (d *Dictionary[K, V]) signalReset(wanted bool) {
	if !wanted || d.closed.Load() {
		return
	}
	if err := d.emit(types.NewReset[K, V]()); err != nil {
		d.logger.Error("reset signal on resume failed", "error", err)
	}
}

// IsTrackingChanges reports whether the master change surface is currently
// delivering notifications.
func (d *Dictionary[K, V]) IsTrackingChanges() bool {
	return d.gates.Changes.Enabled()
}

// IsTrackingItemChanges reports whether in-place item property changes are
// currently delivered.
func (d *Dictionary[K, V]) IsTrackingItemChanges() bool {
	return d.gates.ItemChanges.Enabled()
}

// IsTrackingResets reports whether Reset notifications are currently
// delivered.
func (d *Dictionary[K, V]) IsTrackingResets() bool {
	return d.gates.Resets.Enabled()
}

// IsTrackingCountChanges reports whether count notifications are currently
// delivered.
func (d *Dictionary[K, V]) IsTrackingCountChanges() bool {
	return d.gates.CountChanges.Enabled()
}
