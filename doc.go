// Package observable provides a thread-safe dictionary that announces its
// own changes.
//
// Every mutation of the dictionary, including in-place property changes of
// stored keys and values that opt into observability, is published on
// subscribable channels. Bulk operations collapse into a single Reset
// notification once they touch enough entries, and each notification
// category can be suspended and resumed independently.
//
// # Quick Start
//
// Basic usage with default settings:
//
//	import "github.com/jbattermann/observable"
//
//	cfg := observable.DefaultConfig()
//	dict, err := observable.New[string, int](&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dict.Close()
//
//	changes, unsubscribe := dict.DictionaryChanges()
//	defer unsubscribe()
//
//	go func() {
//	    for c := range changes {
//	        log.Printf("%s: %v", c.Kind, c.Key)
//	    }
//	}()
//
//	_ = dict.Add("answer", 42)
//
// # Key Features
//
//   - Concurrent Mutation: All operations are safe without external locking
//   - Change Streams: Full stream plus filtered key-change, value-change,
//     reset and count streams, and collection-shaped projections
//   - Reset Coalescing: Bulk operations at or above a configurable threshold
//     emit one Reset instead of per-item noise
//   - Item Observability: Keys and values implementing ObservableItem have
//     their property changes forwarded as dictionary changes
//   - Suppression: Per-category notification gates with optional
//     resynchronization signals on resume
//   - Observer Isolation: A panicking callback handler never tears down the
//     dictionary; panics are packaged as ObserverError values
//
// # Advanced Usage
//
// Custom dependencies via options:
//
//	dict, err := observable.New[string, *Order](&cfg,
//	    observable.WithLogger[string, *Order](myLogger),
//	    observable.WithMetrics[string, *Order](myCollector),
//	    observable.WithScheduler[string, *Order](scheduler.NewSerial()),
//	)
//
// Suppressing count notifications around a burst of mutations:
//
//	sup, err := dict.SuppressCountChangeNotifications(true)
//	if err != nil {
//	    return err
//	}
//	defer sup.Release() // emits the final count once
//
// See the types package for the change record model and the capability
// interfaces consumed by this package.
package observable
