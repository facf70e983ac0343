// Package config handles loading and validation of the router configuration
// from YAML files, a .env file and environment variables. It defines server
// settings, the backend service connection, circuit breaker and health check
// tuning, metrics buffering and logging.
package config
