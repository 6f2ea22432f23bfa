package loadtest

import (
	"time"

	"github.com/proleague/league-loadtest/internal/config"
	"github.com/proleague/league-loadtest/internal/walker"
)

// LoadTestConfig holds configuration for one run
type LoadTestConfig struct {
	Name         string            `json:"name"`
	Variant      walker.Variant    `json:"variant"`
	Executor     config.Executor   `json:"executor"`
	VUs          int               `json:"vus,omitempty"`
	Duration     time.Duration     `json:"duration,omitempty"`
	StartVUs     int               `json:"start_vus,omitempty"`
	Stages       []config.Stage    `json:"stages,omitempty"`
	GracefulStop time.Duration     `json:"graceful_stop"`
	Pacing       walker.Pacing     `json:"pacing"`
	Thresholds   config.Thresholds `json:"thresholds"`
}

// Schedule returns the VU schedule of the run.
func (c LoadTestConfig) Schedule() Schedule {
	return Schedule{scenario: config.ScenarioConfig{
		Executor: c.Executor,
		VUs:      c.VUs,
		Duration: c.Duration,
		StartVUs: c.StartVUs,
		Stages:   c.Stages,
	}}
}

// GetScenario returns the run configuration of a named scenario.
func GetScenario(cfg *config.Config, name string) (LoadTestConfig, bool) {
	variant, err := walker.ParseVariant(name)
	if err != nil {
		return LoadTestConfig{}, false
	}
	sc, ok := cfg.Scenarios.Scenario(name)
	if !ok {
		return LoadTestConfig{}, false
	}
	return FromScenarioConfig(variant, sc), true
}

// ListScenarios returns all available scenario names
func ListScenarios() []string {
	var scenarios []string
	for _, v := range walker.Variants() {
		scenarios = append(scenarios, string(v))
	}
	return scenarios
}

// FromScenarioConfig builds the run configuration of variant from its
// configuration section.
func FromScenarioConfig(variant walker.Variant, sc config.ScenarioConfig) LoadTestConfig {
	return LoadTestConfig{
		Name:         variant.ReportName(),
		Variant:      variant,
		Executor:     sc.Executor,
		VUs:          sc.VUs,
		Duration:     sc.Duration,
		StartVUs:     sc.StartVUs,
		Stages:       append([]config.Stage(nil), sc.Stages...),
		GracefulStop: sc.GracefulStop,
		Pacing:       walker.Pacing(sc.Pacing),
		Thresholds:   sc.Thresholds,
	}
}
