package loadtest

import (
	"testing"
	"time"

	"github.com/proleague/league-loadtest/internal/config"
	"github.com/proleague/league-loadtest/internal/walker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetScenario(t *testing.T) {
	cfg := config.Default()

	normal, ok := GetScenario(cfg, "normal")
	require.True(t, ok)
	assert.Equal(t, "main-load", normal.Name)
	assert.Equal(t, walker.Normal, normal.Variant)
	assert.Equal(t, 10000, normal.VUs)
	assert.Equal(t, 30*time.Second, normal.GracefulStop)
	assert.Equal(t, 2*time.Second, normal.Pacing.EndOfIteration)

	smoke, ok := GetScenario(cfg, "smoke")
	require.True(t, ok)
	assert.Equal(t, "smoke", smoke.Name)
	assert.Equal(t, 0.01, smoke.Thresholds.MaxFailureRate)
	assert.Equal(t, 30*time.Second, smoke.GracefulStop)

	_, ok = GetScenario(cfg, "soak")
	assert.False(t, ok)
}

func TestGetScenarioCopiesStages(t *testing.T) {
	cfg := config.Default()

	spike, ok := GetScenario(cfg, "spike")
	require.True(t, ok)
	spike.Stages[0].Target = 1

	assert.Equal(t, 10000, cfg.Scenarios.Spike.Stages[0].Target)
}

func TestListScenarios(t *testing.T) {
	assert.Equal(t, []string{"smoke", "normal", "spike"}, ListScenarios())
}
