// Package report renders the summary of a finished run as plain text and
// as a printable HTML document.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/proleague/league-loadtest/internal/loadtest"
	"github.com/proleague/league-loadtest/internal/metrics"
)

const labelWidth = 32

// RenderText returns the plain-text summary of a run.
func RenderText(r loadtest.LoadTestResult) string {
	var b strings.Builder
	m := r.Metrics

	fmt.Fprintf(&b, " scenario: %s (%s)\n", r.Name, r.Variant)
	fmt.Fprintf(&b, " started:  %s\n", r.StartTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, " duration: %s\n", r.Duration.Round(time.Millisecond))
	if r.Aborted {
		b.WriteString(" status:   aborted before the end of the schedule\n")
	}
	b.WriteString("\n")

	for _, c := range m.Checks {
		mark := "✓"
		if c.Failed > 0 {
			mark = "✗"
		}
		fmt.Fprintf(&b, " %s %s\n", mark, c.Label)
		if c.Failed > 0 {
			fmt.Fprintf(&b, "   ↳ %s  ✓ %d / ✗ %d\n", percent(c.PassRate()), c.Passed, c.Failed)
		}
	}
	if len(m.Checks) > 0 {
		b.WriteString("\n")
	}

	metric(&b, "checks", fmt.Sprintf("%s ✓ %d ✗ %d", percent(m.ChecksPassRate()), m.ChecksPassed, m.ChecksFailed))
	metric(&b, "http_req_duration", latency(m.Latency))
	metric(&b, "http_req_failed", fmt.Sprintf("%s ✓ %d ✗ %d", percent(m.FailureRate), m.FailedRequests, m.TotalRequests-m.FailedRequests))
	metric(&b, "http_reqs", fmt.Sprintf("%d %.2f/s", m.TotalRequests, requestRate(r)))
	metric(&b, "iterations", fmt.Sprintf("%d", r.Iterations))
	if r.InterruptedIterations > 0 {
		metric(&b, "interrupted_iterations", fmt.Sprintf("%d", r.InterruptedIterations))
	}
	metric(&b, "vus_max", fmt.Sprintf("%d", r.MaxActiveVUs))

	if len(m.Endpoints) > 0 {
		b.WriteString("\n endpoints:\n")
		for _, ep := range m.Endpoints {
			fmt.Fprintf(&b, "   %s\n", ep.Name)
			fmt.Fprintf(&b, "     requests=%d failed=%d statuses=%s\n", ep.Requests, ep.Failures, statusCodes(ep.StatusCodes))
			fmt.Fprintf(&b, "     %s\n", latency(ep.Latency))
		}
	}

	if len(m.Errors) > 0 {
		b.WriteString("\n errors:\n")
		for _, label := range sortedKeys(m.Errors) {
			fmt.Fprintf(&b, "   %-24s %d\n", label, m.Errors[label])
		}
	}

	if len(m.Discoveries) > 0 {
		b.WriteString("\n discoveries:\n")
		for _, resource := range sortedKeys(m.Discoveries) {
			outcomes := m.Discoveries[resource]
			parts := make([]string, 0, len(outcomes))
			for _, outcome := range sortedKeys(outcomes) {
				parts = append(parts, fmt.Sprintf("%s=%d", outcome, outcomes[outcome]))
			}
			fmt.Fprintf(&b, "   %-24s %s\n", resource, strings.Join(parts, " "))
		}
	}

	b.WriteString("\n thresholds:\n")
	if r.Passed() {
		b.WriteString("   ✓ all thresholds passed\n")
	}
	for _, v := range r.Violations {
		fmt.Fprintf(&b, "   ✗ %s\n", v)
	}

	return b.String()
}

func metric(b *strings.Builder, name, value string) {
	dots := labelWidth - len(name)
	if dots < 3 {
		dots = 3
	}
	fmt.Fprintf(b, " %s%s: %s\n", name, strings.Repeat(".", dots), value)
}

func latency(l metrics.LatencyStats) string {
	return fmt.Sprintf("avg=%s min=%s med=%s max=%s p(90)=%s p(95)=%s",
		ms(l.Avg), ms(l.Min), ms(l.Med), ms(l.Max), ms(l.P90), ms(l.P95))
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
}

func percent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

func requestRate(r loadtest.LoadTestResult) float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Metrics.TotalRequests) / r.Duration.Seconds()
}

func statusCodes(codes map[int]int64) string {
	keys := make([]int, 0, len(codes))
	for code := range codes {
		keys = append(keys, code)
	}
	sort.Ints(keys)

	parts := make([]string, 0, len(keys))
	for _, code := range keys {
		parts = append(parts, fmt.Sprintf("%d:%d", code, codes[code]))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
