package loadtest

import (
	"testing"
	"time"

	"github.com/proleague/league-loadtest/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestConstantSchedule(t *testing.T) {
	s := LoadTestConfig{Executor: config.ExecutorConstantVUs, VUs: 5, Duration: 30 * time.Second}.Schedule()

	assert.Equal(t, 5, s.MaxVUs())
	assert.Equal(t, 30*time.Second, s.Duration())
	assert.Equal(t, 5, s.TargetAt(0))
	assert.Equal(t, 5, s.TargetAt(29*time.Second))
	assert.Equal(t, 0, s.TargetAt(30*time.Second))
	assert.Equal(t, 0, s.TargetAt(-time.Second))
}

func TestRampingSchedule(t *testing.T) {
	cfg := config.Default()
	lt, ok := GetScenario(cfg, "spike")
	assert.True(t, ok)
	s := lt.Schedule()

	assert.Equal(t, 10000, s.MaxVUs())
	assert.Equal(t, 5*time.Minute, s.Duration())

	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 0},
		{30 * time.Second, 5000},
		{time.Minute, 10000},
		{150 * time.Second, 10000},
		{4 * time.Minute, 10000},
		{270 * time.Second, 5000},
		{5 * time.Minute, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.TargetAt(tt.elapsed), "at %s", tt.elapsed)
	}
}

func TestRampingScheduleStartVUs(t *testing.T) {
	s := LoadTestConfig{
		Executor: config.ExecutorRampingVUs,
		StartVUs: 10,
		Stages:   []config.Stage{{Duration: 10 * time.Second, Target: 20}},
	}.Schedule()

	assert.Equal(t, 10, s.TargetAt(0))
	assert.Equal(t, 15, s.TargetAt(5*time.Second))
	assert.Equal(t, 20, s.MaxVUs())
}

func TestScheduleAgreesWithScenarioConfig(t *testing.T) {
	cfg := config.Default()
	for _, name := range ListScenarios() {
		sc, ok := cfg.Scenarios.Scenario(name)
		assert.True(t, ok)
		lt, ok := GetScenario(cfg, name)
		assert.True(t, ok)

		s := lt.Schedule()
		assert.Equal(t, sc.TotalDuration(), s.Duration(), name)
		assert.Equal(t, sc.MaxVUs(), s.MaxVUs(), name)
	}
}
