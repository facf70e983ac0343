// Package handler implements the HTTP endpoints of the action router.
// InvokeHandler decodes an invocation, runs it through the router and writes
// the resulting envelope. HealthHandler reports liveness and backend health.
package handler
