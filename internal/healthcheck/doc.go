// Package healthcheck implements periodic health checking for the backend
// service. It polls the service's health endpoint and updates the client's
// health flag, reporting every transition to an optional callback.
package healthcheck
