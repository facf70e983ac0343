package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/angeloszaimis/action-router/config"
	"github.com/angeloszaimis/action-router/internal/backend"
	"github.com/angeloszaimis/action-router/internal/circuitbreaker"
	"github.com/angeloszaimis/action-router/internal/healthcheck"
	"github.com/angeloszaimis/action-router/internal/metrics"
	"github.com/angeloszaimis/action-router/pkg/logger"
)

// backendSetup is the collaborator chosen by backend.mode plus the
// infrastructure around it. breakers, healthy and calls are nil in mock mode.
type backendSetup struct {
	collaborator backend.Collaborator
	breakers     *circuitbreaker.Registry
	healthy      func() bool
	calls        func() metrics.CallStats
}

func newLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	return logger.New(logger.Options{
		Level:       cfg.Logging.Level,
		AddSource:   true,
		Environment: cfg.Server.Environment,
		Output:      out,
	})
}

// initializeBackend builds the collaborator. In http mode it also starts the
// health check when watchHealth is set; it stops with ctx.
func initializeBackend(ctx context.Context, cfg *config.Config, log *slog.Logger, collector *metrics.Collector, watchHealth bool) (*backendSetup, error) {
	switch cfg.Backend.Mode {
	case config.BackendModeMock:
		log.Info("Using mock backend", slog.Duration("latency", cfg.Backend.MockLatency))
		return &backendSetup{collaborator: backend.NewMock(cfg.Backend.MockLatency)}, nil

	case config.BackendModeHTTP:
		u, err := cfg.BackendURL()
		if err != nil {
			return nil, fmt.Errorf("parse backend URL: %w", err)
		}

		breakers := circuitbreaker.NewRegistry(cfg.CircuitBreaker.Threshold, cfg.CircuitBreaker.ResetTimeout)
		client := backend.NewClient(u, backend.ClientOptions{
			Timeout:           cfg.Backend.Timeout,
			RequestsPerSecond: cfg.Backend.RequestsPerSecond,
			Breakers:          breakers,
			Logger:            log,
		})

		collector.Emit(metrics.MetricEvent{
			Type:    metrics.EventHealthChanged,
			Backend: u.String(),
			Healthy: client.IsHealthy(),
		})

		if watchHealth {
			go healthcheck.HealthCheck(ctx, client, healthcheck.Options{
				Interval: cfg.HealthCheck.Interval,
				Path:     cfg.HealthCheck.Path,
				OnChange: func(target string, healthy bool) {
					collector.Emit(metrics.MetricEvent{
						Type:    metrics.EventHealthChanged,
						Backend: target,
						Healthy: healthy,
					})
				},
			}, log)
		}

		log.Info("Using HTTP backend", slog.String("url", u.String()))
		return &backendSetup{
			collaborator: client,
			breakers:     breakers,
			healthy:      client.IsHealthy,
			calls: func() metrics.CallStats {
				return metrics.CallStats{
					ActiveCalls:  client.ActiveCalls(),
					EWMAResponse: client.EWMATime(),
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown backend mode %q", cfg.Backend.Mode)
	}
}
