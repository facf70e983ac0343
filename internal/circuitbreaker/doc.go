// Package circuitbreaker fails calls to the search/directory backend fast
// once it keeps failing, instead of letting every invocation wait on a dead
// dependency. One breaker exists per backend capability.
//
// A breaker has three states:
//
//   - CLOSED: calls pass through
//   - OPEN: calls are rejected with ErrOpen until the reset timeout elapses
//   - HALF-OPEN: a single probe call is let through; its outcome closes or
//     re-opens the breaker
//
// Usage:
//
//	registry := circuitbreaker.NewRegistry(5, 30*time.Second)
//	cb := registry.Get("search")
//	if err := cb.Allow(); err != nil {
//	    return err
//	}
//	if err := call(); err != nil {
//	    cb.RecordFailure()
//	} else {
//	    cb.RecordSuccess()
//	}
package circuitbreaker
