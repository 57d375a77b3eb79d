package notify

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
)

type EndpointStats struct {
	TotalRequests    atomic.Int64
	Delivered        atomic.Int64
	Failed           atomic.Int64
	TotalLatencyMs   atomic.Int64
	ConsecutiveFails atomic.Int32
	LastFailureAt    atomic.Int64

	mu        sync.RWMutex
	latencies []int64
	window    int
}

func NewEndpointStats() *EndpointStats {
	return &EndpointStats{
		latencies: make([]int64, 0, 50),
		window:    50,
	}
}

func (m *EndpointStats) RecordSuccess(latencyMs int64) {
	m.TotalRequests.Add(1)
	m.Delivered.Add(1)
	m.TotalLatencyMs.Add(latencyMs)
	m.ConsecutiveFails.Store(0)

	m.mu.Lock()
	if len(m.latencies) >= m.window {
		m.latencies = m.latencies[1:]
	}
	m.latencies = append(m.latencies, latencyMs)
	m.mu.Unlock()
}

func (m *EndpointStats) RecordFailure() {
	m.TotalRequests.Add(1)
	m.Failed.Add(1)
	m.ConsecutiveFails.Add(1)
	m.LastFailureAt.Store(time.Now().Unix())
}

func (m *EndpointStats) AvgLatencyMs() int64 {
	n := m.Delivered.Load()
	if n == 0 {
		return 0
	}
	return m.TotalLatencyMs.Load() / n
}

// SuccessRate is 1 for an endpoint that has not been called yet.
func (m *EndpointStats) SuccessRate() float64 {
	total := m.TotalRequests.Load()
	if total == 0 {
		return 1.0
	}
	return float64(m.Delivered.Load()) / float64(total)
}

func (m *EndpointStats) P95LatencyMs() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.latencies) == 0 {
		return 0
	}
	sorted := make([]int64, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	i := int(float64(len(sorted)) * 0.95)
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}

type State int32

const (
	StateHealthy State = iota
	StateDegraded
	StateCircuitOpen
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "HEALTHY"
	case StateDegraded:
		return "DEGRADED"
	case StateCircuitOpen:
		return "CIRCUIT_OPEN"
	}
	return "UNKNOWN"
}

// Endpoint is one webhook receiver.
type Endpoint struct {
	name      string
	url       string
	weight    int
	client    *fasthttp.Client
	stats     *EndpointStats
	state     atomic.Int32
	openUntil atomic.Int64
}

func NewEndpoint(name, url string, weight int, client *fasthttp.Client) *Endpoint {
	return &Endpoint{
		name:   name,
		url:    url,
		weight: weight,
		client: client,
		stats:  NewEndpointStats(),
	}
}

func (e *Endpoint) Name() string { return e.name }

func (e *Endpoint) State() State {
	return State(e.state.Load())
}

func (e *Endpoint) setState(s State) {
	e.state.Store(int32(s))
}

// Available reports whether requests may go to the endpoint. An open circuit
// half-opens into DEGRADED once its timeout passed.
func (e *Endpoint) Available(now time.Time) bool {
	if e.State() != StateCircuitOpen {
		return true
	}
	if now.Unix() >= e.openUntil.Load() {
		e.setState(StateDegraded)
		return true
	}
	return false
}

// Score ranks available endpoints; higher is better.
func (e *Endpoint) Score(now time.Time) float64 {
	if !e.Available(now) {
		return 0
	}

	success := e.stats.SuccessRate() * 100

	latency := 100.0
	if avg := e.stats.AvgLatencyMs(); avg > 0 {
		latency = 100.0 * (1.0 - float64(avg)/5000.0)
		if latency < 0 {
			latency = 0
		}
	}

	recent := 1.0 - float64(e.stats.ConsecutiveFails.Load())*0.1
	if recent < 0.1 {
		recent = 0.1
	}

	state := 1.0
	if e.State() == StateDegraded {
		state = 0.5
	}

	return (success*0.4 + latency*0.4 + float64(e.weight)*0.2) * recent * state
}
