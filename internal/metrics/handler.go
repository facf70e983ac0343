package metrics

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Source adds live state owned by another component to a snapshot.
type Source func(*Snapshot)

// WithBreakers reports circuit breaker states by capability.
func WithBreakers(stats func() map[string]string) Source {
	return func(s *Snapshot) {
		s.Breakers = stats()
	}
}

// WithCallStats reports the backend client's in-flight calls and latency.
func WithCallStats(stats func() CallStats) Source {
	return func(s *Snapshot) {
		calls := stats()
		s.Backend = &calls
	}
}

// Handler serves the current snapshot as JSON, completed by sources.
func (c *Collector) Handler(sources ...Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := c.metrics.Snapshot()
		for _, source := range sources {
			if source != nil {
				source(&snap)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}
