package main

import (
	"net/http"

	"github.com/angeloszaimis/action-router/internal/handler"
	"github.com/angeloszaimis/action-router/internal/metrics"
)

func setupRouter(invokeHandler *handler.InvokeHandler, metricsCollector *metrics.Collector, setup *backendSetup) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/invoke", invokeHandler)
	mux.HandleFunc("GET /health", handler.HealthHandler(setup.healthy))
	mux.HandleFunc("GET /metrics", metricsCollector.Handler(metricsSources(setup)...))

	return mux
}

// metricsSources exposes the HTTP client's breakers and call stats on
// /metrics. The mock backend has neither.
func metricsSources(setup *backendSetup) []metrics.Source {
	var sources []metrics.Source
	if setup.breakers != nil {
		sources = append(sources, metrics.WithBreakers(setup.breakers.Stats))
	}
	if setup.calls != nil {
		sources = append(sources, metrics.WithCallStats(setup.calls))
	}
	return sources
}
