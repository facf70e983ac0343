// Package backend defines the Collaborator contract the strategies use to
// reach the search/directory service, together with its implementations: an
// HTTP Client guarded by a rate limiter and per-capability circuit breakers,
// and a Mock that serves illustrative data for local runs.
package backend
