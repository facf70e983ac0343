// Package router dispatches invocations to strategies by API path and
// wraps every outcome in an envelope.
//
// A Router holds an exact-match registry of API path to strategy. Invoke
// runs the full pipeline (route, validate, execute, format) and always
// returns an envelope, recovering strategy panics as unexpected failures.
//
// Example usage:
//
//	r, err := router.NewDefault(client, "Employee Directory",
//		router.WithLogger(logger),
//		router.WithMetrics(collector))
//	env := r.Invoke(ctx, invocation)
package router
