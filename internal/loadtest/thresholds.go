package loadtest

import (
	"fmt"
	"strconv"

	"github.com/proleague/league-loadtest/internal/config"
	"github.com/proleague/league-loadtest/internal/metrics"
)

// Violation is a threshold that did not hold.
type Violation struct {
	Metric    string `json:"metric"`
	Condition string `json:"condition"`
	Actual    string `json:"actual"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (actual %s)", v.Metric, v.Condition, v.Actual)
}

// EvaluateThresholds checks a run snapshot against t. Zero thresholds are
// skipped; all comparisons are strict.
func EvaluateThresholds(s metrics.Snapshot, t config.Thresholds) []Violation {
	var violations []Violation

	if t.MaxP95Latency > 0 && s.Latency.P95 >= t.MaxP95Latency {
		violations = append(violations, Violation{
			Metric:    "http_req_duration",
			Condition: fmt.Sprintf("p(95)<%dms", t.MaxP95Latency.Milliseconds()),
			Actual:    s.Latency.P95.String(),
		})
	}
	if t.MaxFailureRate > 0 && s.FailureRate >= t.MaxFailureRate {
		violations = append(violations, Violation{
			Metric:    "http_req_failed",
			Condition: "rate<" + strconv.FormatFloat(t.MaxFailureRate, 'f', -1, 64),
			Actual:    strconv.FormatFloat(s.FailureRate, 'f', 4, 64),
		})
	}
	if t.MinRequests > 0 && s.TotalRequests <= t.MinRequests {
		violations = append(violations, Violation{
			Metric:    "http_reqs",
			Condition: fmt.Sprintf("count>%d", t.MinRequests),
			Actual:    strconv.FormatInt(s.TotalRequests, 10),
		})
	}

	return violations
}
