// Package metrics provides real-time metrics collection for the action router.
//
// It uses a channel-based event pipeline to asynchronously collect metrics about:
//   - Invocation counts per API path
//   - Strategy dispatch counts
//   - Response times with percentile calculations (P50, P95, P99)
//   - Envelope status code distribution
//   - Backend health status
//
// The collector runs in a dedicated goroutine. Emit never blocks: when the
// buffer is full the event is dropped.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//
//	collector.Emit(metrics.MetricEvent{
//		Type:       metrics.EventResponseCompleted,
//		Action:     "/Crew",
//		Duration:   150 * time.Millisecond,
//		StatusCode: 200,
//	})
//
//	snapshot := collector.Snapshot()
//
// On shutdown the collector drains buffered events before stopping.
package metrics
