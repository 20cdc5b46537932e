// Package testing provides test utilities for the observable library.
//
// This package offers helpers used by the library's own test suites and by
// consumers testing code built on observable dictionaries. It follows Go's
// convention of providing testing utilities in a dedicated package (similar
// to net/http/httptest).
//
// Key utilities:
//   - NewTestLogger: types.Logger writing through testing.T
//   - NewItem: Observable test double whose property changes can be raised
//     on demand
//   - Receive / ReceiveNone: Bounded-wait channel assertions
//
// Example usage:
//
//	import (
//	    "testing"
//	    obstest "github.com/jbattermann/observable/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    logger := obstest.NewTestLogger(t)
//	    // Use logger as the dictionary's types.Logger
//	}
package testing
