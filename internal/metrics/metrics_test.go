package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/proleague/league-loadtest/internal/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRequest(t *testing.T) {
	c := NewCollector()

	c.RecordRequest("list_leagues", 200, 10*time.Millisecond, nil)
	c.RecordRequest("list_leagues", 200, 30*time.Millisecond, nil)
	c.RecordRequest("list_leagues", 503, 20*time.Millisecond, nil)
	c.RecordRequest("list_players", 0, 0, apiclient.NewRequestError(apiclient.ErrorTypeTimeout, "u", nil))

	s := c.Snapshot()
	assert.Equal(t, int64(4), s.TotalRequests)
	assert.Equal(t, int64(2), s.FailedRequests)
	assert.InDelta(t, 0.5, s.FailureRate, 1e-9)
	assert.Equal(t, map[string]int64{"http_503": 1, "timeout": 1}, s.Errors)

	require.Len(t, s.Endpoints, 2)
	leagues := s.Endpoints[0]
	assert.Equal(t, "list_leagues", leagues.Name)
	assert.Equal(t, int64(3), leagues.Requests)
	assert.Equal(t, int64(1), leagues.Failures)
	assert.Equal(t, map[int]int64{200: 2, 503: 1}, leagues.StatusCodes)
	assert.Equal(t, 20*time.Millisecond, leagues.Latency.Avg)
	assert.Equal(t, 10*time.Millisecond, leagues.Latency.Min)
	assert.Equal(t, 30*time.Millisecond, leagues.Latency.Max)

	players := s.Endpoints[1]
	assert.Equal(t, "list_players", players.Name)
	assert.Zero(t, players.Latency.Count, "requests without a response carry no latency")
}

func TestRedirectsAreNotFailures(t *testing.T) {
	c := NewCollector()
	c.RecordRequest("health", 304, time.Millisecond, nil)

	s := c.Snapshot()
	assert.Zero(t, s.FailedRequests)
	assert.Empty(t, s.Errors)
}

func TestRecordCheck(t *testing.T) {
	c := NewCollector()

	c.RecordCheck("leagues status 200", true)
	c.RecordCheck("leagues status 200", true)
	c.RecordCheck("leagues status 200", false)
	c.RecordCheck("health status 200", true)

	s := c.Snapshot()
	assert.Equal(t, int64(3), s.ChecksPassed)
	assert.Equal(t, int64(1), s.ChecksFailed)
	assert.InDelta(t, 0.75, s.ChecksPassRate(), 1e-9)

	require.Len(t, s.Checks, 2)
	assert.Equal(t, "health status 200", s.Checks[0].Label)
	assert.Equal(t, CheckSnapshot{Label: "leagues status 200", Passed: 2, Failed: 1}, s.Checks[1])

	assert.Equal(t, 1.0, testutil.ToFloat64(c.prom.checksTotal.WithLabelValues("leagues status 200", "fail")))
}

func TestRecordDiscovery(t *testing.T) {
	c := NewCollector()

	c.RecordDiscovery("leagues", "found")
	c.RecordDiscovery("matches", "empty")
	c.RecordDiscovery("matches", "malformed")
	c.RecordDiscovery("matches", "empty")

	s := c.Snapshot()
	assert.Equal(t, map[string]map[string]int64{
		"leagues": {"found": 1},
		"matches": {"empty": 2, "malformed": 1},
	}, s.Discoveries)
}

func TestPercentiles(t *testing.T) {
	latencies := make([]time.Duration, 0, 100)
	for i := 100; i >= 1; i-- {
		latencies = append(latencies, time.Duration(i)*time.Millisecond)
	}

	stats := computeLatencyStats(latencies)
	assert.Equal(t, 100, stats.Count)
	assert.Equal(t, time.Millisecond, stats.Min)
	assert.Equal(t, 100*time.Millisecond, stats.Max)
	assert.Equal(t, 51*time.Millisecond, stats.Med)
	assert.Equal(t, 91*time.Millisecond, stats.P90)
	assert.Equal(t, 96*time.Millisecond, stats.P95)

	single := computeLatencyStats([]time.Duration{7 * time.Millisecond})
	assert.Equal(t, 7*time.Millisecond, single.P95)

	assert.Equal(t, LatencyStats{}, computeLatencyStats(nil))
}

func TestPrometheusCounters(t *testing.T) {
	c := NewCollector()

	c.RecordRequest("spike_health", 200, 5*time.Millisecond, nil)
	c.RecordRequest("spike_health", 0, 0, errors.New("boom"))
	c.RecordIteration()
	c.SetActiveVUs(42)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.prom.requestsTotal.WithLabelValues("spike_health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.prom.requestsTotal.WithLabelValues("spike_health", "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.prom.iterations))
	assert.Equal(t, 42.0, testutil.ToFloat64(c.prom.activeVUs))

	s := c.Snapshot()
	assert.Equal(t, int64(42), s.ActiveVUs)
	assert.Equal(t, int64(1), s.Iterations)
	assert.Equal(t, map[string]int64{"unknown_error": 1}, s.Errors)
}

func TestConcurrentRecording(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.RecordRequest("list_matches", 200, time.Millisecond, nil)
				c.RecordCheck("matches status 200", true)
				c.RecordDiscovery("matches", "found")
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	assert.Equal(t, int64(1000), s.TotalRequests)
	assert.Equal(t, int64(1000), s.ChecksPassed)
	assert.Equal(t, int64(1000), s.Discoveries["matches"]["found"])
}
