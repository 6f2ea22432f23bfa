// Package metrics aggregates the requests and checks produced by a run and
// exposes them as a snapshot and in Prometheus format.
package metrics

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/proleague/league-loadtest/internal/apiclient"
)

// Collector records request, check and discovery outcomes. It is safe for
// concurrent use by every virtual user of a run.
type Collector struct {
	// Request metrics
	totalRequests  int64
	failedRequests int64
	iterations     int64
	activeVUs      int64

	// Check metrics
	checksPassed int64
	checksFailed int64

	mu          sync.Mutex
	endpoints   map[string]*endpointStats
	checks      map[string]*CheckSnapshot
	errors      map[string]int64
	discoveries map[string]map[string]int64

	startTime time.Time

	registry *prometheus.Registry
	prom     promMetrics
}

type endpointStats struct {
	requests    int64
	failures    int64
	latencies   []time.Duration
	statusCodes map[int]int64
}

type promMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	checksTotal     *prometheus.CounterVec
	discoveries     *prometheus.CounterVec
	iterations      prometheus.Counter
	activeVUs       prometheus.Gauge
}

// NewCollector creates a collector with its own Prometheus registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		endpoints:   make(map[string]*endpointStats),
		checks:      make(map[string]*CheckSnapshot),
		errors:      make(map[string]int64),
		discoveries: make(map[string]map[string]int64),
		startTime:   time.Now(),
		registry:    reg,
		prom: promMetrics{
			requestsTotal: factory.NewCounterVec(
				prometheus.CounterOpts{
					Name: "league_loadtest_requests_total",
					Help: "Total number of requests sent to the league API",
				},
				[]string{"name", "status"},
			),
			requestDuration: factory.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "league_loadtest_request_duration_seconds",
					Help:    "League API request duration in seconds",
					Buckets: prometheus.ExponentialBuckets(0.005, 2, 16),
				},
				[]string{"name"},
			),
			checksTotal: factory.NewCounterVec(
				prometheus.CounterOpts{
					Name: "league_loadtest_checks_total",
					Help: "Total number of evaluated checks",
				},
				[]string{"check", "result"},
			),
			discoveries: factory.NewCounterVec(
				prometheus.CounterOpts{
					Name: "league_loadtest_discoveries_total",
					Help: "Identifier discovery attempts by resource and outcome",
				},
				[]string{"resource", "outcome"},
			),
			iterations: factory.NewCounter(prometheus.CounterOpts{
				Name: "league_loadtest_iterations_total",
				Help: "Total number of completed iterations",
			}),
			activeVUs: factory.NewGauge(prometheus.GaugeOpts{
				Name: "league_loadtest_active_vus",
				Help: "Number of virtual users currently running iterations",
			}),
		},
	}
}

// Registry returns the Prometheus registry the collector reports to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRequest records one request. status is 0 when no response was
// received, in which case err describes why.
func (c *Collector) RecordRequest(name string, status int, latency time.Duration, err error) {
	failed := isFailure(status, err)

	atomic.AddInt64(&c.totalRequests, 1)
	if failed {
		atomic.AddInt64(&c.failedRequests, 1)
	}

	c.mu.Lock()
	ep, ok := c.endpoints[name]
	if !ok {
		ep = &endpointStats{statusCodes: make(map[int]int64)}
		c.endpoints[name] = ep
	}
	ep.requests++
	if failed {
		ep.failures++
	}
	if status > 0 {
		ep.latencies = append(ep.latencies, latency)
		ep.statusCodes[status]++
	}
	if label := errorLabel(status, err); label != "" {
		c.errors[label]++
	}
	c.mu.Unlock()

	c.prom.requestsTotal.WithLabelValues(name, strconv.Itoa(status)).Inc()
	if status > 0 {
		c.prom.requestDuration.WithLabelValues(name).Observe(latency.Seconds())
	}
}

// RecordCheck records the outcome of a named check.
func (c *Collector) RecordCheck(label string, passed bool) {
	result := "fail"
	if passed {
		result = "pass"
		atomic.AddInt64(&c.checksPassed, 1)
	} else {
		atomic.AddInt64(&c.checksFailed, 1)
	}

	c.mu.Lock()
	ck, ok := c.checks[label]
	if !ok {
		ck = &CheckSnapshot{Label: label}
		c.checks[label] = ck
	}
	if passed {
		ck.Passed++
	} else {
		ck.Failed++
	}
	c.mu.Unlock()

	c.prom.checksTotal.WithLabelValues(label, result).Inc()
}

// RecordDiscovery records how an identifier lookup on resource ended.
func (c *Collector) RecordDiscovery(resource, outcome string) {
	c.mu.Lock()
	byOutcome, ok := c.discoveries[resource]
	if !ok {
		byOutcome = make(map[string]int64)
		c.discoveries[resource] = byOutcome
	}
	byOutcome[outcome]++
	c.mu.Unlock()

	c.prom.discoveries.WithLabelValues(resource, outcome).Inc()
}

// RecordIteration counts one finished iteration.
func (c *Collector) RecordIteration() {
	atomic.AddInt64(&c.iterations, 1)
	c.prom.iterations.Inc()
}

// SetActiveVUs reports the number of virtual users currently running.
func (c *Collector) SetActiveVUs(n int) {
	atomic.StoreInt64(&c.activeVUs, int64(n))
	c.prom.activeVUs.Set(float64(n))
}

// isFailure follows the usual load-test convention: transport errors and
// statuses outside 200-399 are failed requests.
func isFailure(status int, err error) bool {
	return err != nil || status < 200 || status >= 400
}

func errorLabel(status int, err error) string {
	if err != nil {
		return apiclient.ErrorLabel(err)
	}
	if status >= 400 || (status > 0 && status < 200) {
		return fmt.Sprintf("http_%d", status)
	}
	return ""
}

// Snapshot returns a consistent copy of the current metrics.
func (c *Collector) Snapshot() Snapshot {
	elapsed := time.Since(c.startTime)

	s := Snapshot{
		StartTime:      c.startTime,
		Elapsed:        elapsed,
		TotalRequests:  atomic.LoadInt64(&c.totalRequests),
		FailedRequests: atomic.LoadInt64(&c.failedRequests),
		Iterations:     atomic.LoadInt64(&c.iterations),
		ActiveVUs:      atomic.LoadInt64(&c.activeVUs),
		ChecksPassed:   atomic.LoadInt64(&c.checksPassed),
		ChecksFailed:   atomic.LoadInt64(&c.checksFailed),
		Errors:         make(map[string]int64),
		Discoveries:    make(map[string]map[string]int64),
	}

	var all []time.Duration

	c.mu.Lock()
	for name, ep := range c.endpoints {
		codes := make(map[int]int64, len(ep.statusCodes))
		for code, n := range ep.statusCodes {
			codes[code] = n
		}
		latencies := append([]time.Duration(nil), ep.latencies...)
		all = append(all, latencies...)

		s.Endpoints = append(s.Endpoints, EndpointSnapshot{
			Name:        name,
			Requests:    ep.requests,
			Failures:    ep.failures,
			StatusCodes: codes,
			Latency:     computeLatencyStats(latencies),
		})
	}
	for _, ck := range c.checks {
		s.Checks = append(s.Checks, *ck)
	}
	for label, n := range c.errors {
		s.Errors[label] = n
	}
	for resource, byOutcome := range c.discoveries {
		cp := make(map[string]int64, len(byOutcome))
		for outcome, n := range byOutcome {
			cp[outcome] = n
		}
		s.Discoveries[resource] = cp
	}
	c.mu.Unlock()

	sort.Slice(s.Endpoints, func(i, j int) bool { return s.Endpoints[i].Name < s.Endpoints[j].Name })
	sort.Slice(s.Checks, func(i, j int) bool { return s.Checks[i].Label < s.Checks[j].Label })

	s.Latency = computeLatencyStats(all)
	if s.TotalRequests > 0 {
		s.FailureRate = float64(s.FailedRequests) / float64(s.TotalRequests)
	}
	if elapsed > 0 {
		s.RequestsPerSecond = float64(s.TotalRequests) / elapsed.Seconds()
	}
	return s
}

// Snapshot is a point-in-time view of a run.
type Snapshot struct {
	StartTime time.Time     `json:"start_time"`
	Elapsed   time.Duration `json:"elapsed"`

	// Request counts
	TotalRequests     int64   `json:"total_requests"`
	FailedRequests    int64   `json:"failed_requests"`
	FailureRate       float64 `json:"failure_rate"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	Iterations        int64   `json:"iterations"`
	ActiveVUs         int64   `json:"active_vus"`

	Latency LatencyStats `json:"latency"`

	// Checks
	ChecksPassed int64           `json:"checks_passed"`
	ChecksFailed int64           `json:"checks_failed"`
	Checks       []CheckSnapshot `json:"checks"`

	Endpoints   []EndpointSnapshot          `json:"endpoints"`
	Errors      map[string]int64            `json:"errors"`
	Discoveries map[string]map[string]int64 `json:"discoveries"`
}

type EndpointSnapshot struct {
	Name        string        `json:"name"`
	Requests    int64         `json:"requests"`
	Failures    int64         `json:"failures"`
	StatusCodes map[int]int64 `json:"status_codes"`
	Latency     LatencyStats  `json:"latency"`
}

type CheckSnapshot struct {
	Label  string `json:"label"`
	Passed int64  `json:"passed"`
	Failed int64  `json:"failed"`
}

// PassRate is the fraction of passed evaluations, 0 when none ran.
func (c CheckSnapshot) PassRate() float64 {
	total := c.Passed + c.Failed
	if total == 0 {
		return 0
	}
	return float64(c.Passed) / float64(total)
}

// ChecksPassRate is the fraction of all check evaluations that passed.
func (s Snapshot) ChecksPassRate() float64 {
	return CheckSnapshot{Passed: s.ChecksPassed, Failed: s.ChecksFailed}.PassRate()
}

// LatencyStats summarises a set of response times.
type LatencyStats struct {
	Count int           `json:"count"`
	Avg   time.Duration `json:"avg"`
	Min   time.Duration `json:"min"`
	Med   time.Duration `json:"med"`
	Max   time.Duration `json:"max"`
	P90   time.Duration `json:"p90"`
	P95   time.Duration `json:"p95"`
}

func computeLatencyStats(latencies []time.Duration) LatencyStats {
	n := len(latencies)
	if n == 0 {
		return LatencyStats{}
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	return LatencyStats{
		Count: n,
		Avg:   sum / time.Duration(n),
		Min:   latencies[0],
		Med:   percentile(latencies, 50),
		Max:   latencies[n-1],
		P90:   percentile(latencies, 90),
		P95:   percentile(latencies, 95),
	}
}

// percentile returns the p-th percentile of sorted latencies.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	k := int(float64(len(sorted)) * p / 100)
	if k >= len(sorted) {
		k = len(sorted) - 1
	}
	return sorted[k]
}
