// Package envelope wraps a strategy result or a pipeline failure into the
// response envelope returned to the orchestrator.
//
// The envelope always echoes the invocation's action group, API path and
// HTTP method. The response body is itself a JSON document carried as a
// string. Formatting never fails: a result that cannot be serialized is
// reported as an unexpected failure instead.
package envelope
