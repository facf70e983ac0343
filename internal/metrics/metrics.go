package metrics

import (
	"sort"
	"sync"
	"time"
)

const maxSamples = 1000

type Metrics struct {
	mutex         sync.RWMutex
	requests      map[string]int64
	dispatches    map[string]int64
	responseTimes map[string][]time.Duration
	statusCodes   map[string]map[int]int64
	backendHealth map[string]bool
	startTime     time.Time
}

type Snapshot struct {
	TotalRequests int64                    `json:"total_requests"`
	Uptime        time.Duration            `json:"uptime"`
	Actions       map[string]ActionMetrics `json:"actions"`
	Strategies    map[string]int64         `json:"strategies"`
	BackendHealth map[string]bool          `json:"backend_health"`
	Breakers      map[string]string        `json:"breakers,omitempty"`
	Backend       *CallStats               `json:"backend,omitempty"`
}

// CallStats describes outbound calls to the backend service.
type CallStats struct {
	ActiveCalls  int           `json:"active_calls"`
	EWMAResponse time.Duration `json:"ewma_response"`
}

type ActionMetrics struct {
	Requests    int64         `json:"requests"`
	AvgResponse time.Duration `json:"avg_response"`
	P50Response time.Duration `json:"p50_response"`
	P95Response time.Duration `json:"p95_response"`
	P99Response time.Duration `json:"p99_response"`
	StatusCodes map[int]int64 `json:"status_codes"`
}

func (m *Metrics) IncrementRequests(apiPath string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.requests[apiPath]++
}

func (m *Metrics) RecordDispatch(strategy string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.dispatches[strategy]++
}

func (m *Metrics) RecordResponse(apiPath string, duration time.Duration, statusCode int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.responseTimes[apiPath] = append(m.responseTimes[apiPath], duration)

	if len(m.responseTimes[apiPath]) > maxSamples {
		m.responseTimes[apiPath] = m.responseTimes[apiPath][1:]
	}

	if m.statusCodes[apiPath] == nil {
		m.statusCodes[apiPath] = make(map[int]int64)
	}
	m.statusCodes[apiPath][statusCode]++
}

func (m *Metrics) UpdateBackendHealth(backend string, healthy bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.backendHealth[backend] = healthy
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:        time.Since(m.startTime),
		Actions:       make(map[string]ActionMetrics),
		Strategies:    make(map[string]int64, len(m.dispatches)),
		BackendHealth: make(map[string]bool, len(m.backendHealth)),
	}

	// Collect every API path seen by any counter
	paths := make(map[string]bool)
	for p := range m.requests {
		paths[p] = true
	}
	for p := range m.responseTimes {
		paths[p] = true
	}

	for p := range paths {
		snap.TotalRequests += m.requests[p]

		am := ActionMetrics{
			Requests:    m.requests[p],
			StatusCodes: make(map[int]int64, len(m.statusCodes[p])),
		}
		for code, n := range m.statusCodes[p] {
			am.StatusCodes[code] = n
		}

		durations := m.responseTimes[p]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			am.AvgResponse = average(sorted)
			am.P50Response = percentile(sorted, 0.50)
			am.P95Response = percentile(sorted, 0.95)
			am.P99Response = percentile(sorted, 0.99)
		}

		snap.Actions[p] = am
	}

	for name, n := range m.dispatches {
		snap.Strategies[name] = n
	}
	for name, healthy := range m.backendHealth {
		snap.BackendHealth[name] = healthy
	}

	return snap
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests:      make(map[string]int64),
		dispatches:    make(map[string]int64),
		responseTimes: make(map[string][]time.Duration),
		statusCodes:   make(map[string]map[int]int64),
		backendHealth: make(map[string]bool),
		startTime:     time.Now(),
	}
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
