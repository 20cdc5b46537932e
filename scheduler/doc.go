// Package scheduler provides notification schedulers: the execution contexts
// on which an observable dictionary runs its callback-style notifications.
//
// Two policies are provided:
//   - Inline: callbacks run synchronously on the mutating caller's goroutine.
//     This is the default and makes observer failures visible to the caller.
//   - Serial: callbacks run on one background goroutine in FIFO order,
//     decoupling observers from mutators while preserving emission order.
//
// The delivery policy is always chosen explicitly at construction; there is
// no ambient or goroutine-local fallback.
package scheduler
