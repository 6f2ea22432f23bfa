package config

import "time"

// Executor names the virtual-user scheduling strategy of a scenario.
type Executor string

const (
	ExecutorConstantVUs Executor = "constant-vus"
	ExecutorRampingVUs  Executor = "ramping-vus"
)

type Config struct {
	Target     TargetConfig     `yaml:"target"`
	Scenarios  ScenariosConfig  `yaml:"scenarios"`
	RateLimits []RateLimitRule  `yaml:"rate_limits"`
	Logging    LoggingConfig    `yaml:"logging"`
	Reports    ReportsConfig    `yaml:"reports"`
	Monitoring MonitoringConfig `yaml:"monitoring,omitempty"`
}

type TargetConfig struct {
	BaseURL             string        `yaml:"base_url"`
	InsecureSkipTLS     bool          `yaml:"insecure_skip_tls"`
	Timeout             time.Duration `yaml:"timeout"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
}

type ScenariosConfig struct {
	Smoke  ScenarioConfig `yaml:"smoke"`
	Normal ScenarioConfig `yaml:"normal"`
	Spike  ScenarioConfig `yaml:"spike"`
}

type ScenarioConfig struct {
	Executor     Executor      `yaml:"executor"`
	VUs          int           `yaml:"vus,omitempty"`
	Duration     time.Duration `yaml:"duration,omitempty"`
	StartVUs     int           `yaml:"start_vus,omitempty"`
	Stages       []Stage       `yaml:"stages,omitempty"`
	GracefulStop time.Duration `yaml:"graceful_stop,omitempty"`
	Pacing       Pacing        `yaml:"pacing"`
	Thresholds   Thresholds    `yaml:"thresholds"`
}

type Stage struct {
	Duration time.Duration `yaml:"duration"`
	Target   int           `yaml:"target"`
}

// Pacing holds the think-time inserted after each step of a walk.
// A zero value disables the pause.
type Pacing struct {
	AfterLeagues     time.Duration `yaml:"after_leagues"`
	AfterMatches     time.Duration `yaml:"after_matches"`
	AfterMatchDetail time.Duration `yaml:"after_match_detail"`
	AfterMatchScore  time.Duration `yaml:"after_match_score"`
	AfterPointsTable time.Duration `yaml:"after_points_table"`
	EndOfIteration   time.Duration `yaml:"end_of_iteration"`
}

// Thresholds are the aggregate pass/fail conditions of a run.
// Zero fields are not evaluated.
type Thresholds struct {
	MaxP95Latency  time.Duration `yaml:"max_p95_latency,omitempty"`
	MaxFailureRate float64       `yaml:"max_failure_rate,omitempty"`
	MinRequests    int64         `yaml:"min_requests,omitempty"`
}

type RateLimitRule struct {
	Endpoint          string `yaml:"endpoint"` // request tag, "prefix_*" or "*"
	RequestsPerSecond int    `yaml:"requests_per_second"`
}

type LoggingConfig struct {
	Mode  string `yaml:"mode"` // development or production
	Level string `yaml:"level"`
}

type ReportsConfig struct {
	Dir string `yaml:"dir"`
}

type MonitoringConfig struct {
	MetricsAddr string `yaml:"metrics_addr"`
}

// Scenario returns the configuration for a named scenario.
func (s ScenariosConfig) Scenario(name string) (ScenarioConfig, bool) {
	switch name {
	case "smoke":
		return s.Smoke, true
	case "normal":
		return s.Normal, true
	case "spike":
		return s.Spike, true
	}
	return ScenarioConfig{}, false
}

// SetScenario replaces the configuration of a named scenario.
func (s *ScenariosConfig) SetScenario(name string, sc ScenarioConfig) bool {
	switch name {
	case "smoke":
		s.Smoke = sc
	case "normal":
		s.Normal = sc
	case "spike":
		s.Spike = sc
	default:
		return false
	}
	return true
}

// TotalDuration is the length of the VU schedule, excluding the graceful stop.
func (sc ScenarioConfig) TotalDuration() time.Duration {
	if sc.Executor == ExecutorRampingVUs {
		var total time.Duration
		for _, st := range sc.Stages {
			total += st.Duration
		}
		return total
	}
	return sc.Duration
}

// MaxVUs is the highest number of concurrent virtual users the scenario reaches.
func (sc ScenarioConfig) MaxVUs() int {
	if sc.Executor == ExecutorRampingVUs {
		peak := sc.StartVUs
		for _, st := range sc.Stages {
			if st.Target > peak {
				peak = st.Target
			}
		}
		return peak
	}
	return sc.VUs
}
