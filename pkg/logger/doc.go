// Package logger builds the application's structured logger. It wraps the
// standard log/slog package: text output for development, JSON in prod, and
// an environment attribute on every record.
package logger
