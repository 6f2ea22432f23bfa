package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the staging deployment of the league API.
const DefaultBaseURL = "https://hockey-backend-local-gah7dze6b0cxevar.australiaeast-01.azurewebsites.net"

// Default returns the built-in configuration: a 5 VU smoke gate, a
// sustained 10000 VU normal load and a 0 -> 10000 -> 0 spike.
func Default() *Config {
	return &Config{
		Target: TargetConfig{
			BaseURL:             DefaultBaseURL,
			InsecureSkipTLS:     true,
			Timeout:             60 * time.Second,
			MaxIdleConnsPerHost: 1024,
		},
		Scenarios: ScenariosConfig{
			Smoke: ScenarioConfig{
				Executor:     ExecutorConstantVUs,
				VUs:          5,
				Duration:     30 * time.Second,
				GracefulStop: 30 * time.Second,
				Thresholds: Thresholds{
					MaxFailureRate: 0.01,
				},
			},
			Normal: ScenarioConfig{
				Executor:     ExecutorConstantVUs,
				VUs:          10000,
				Duration:     5 * time.Minute,
				GracefulStop: 30 * time.Second,
				Pacing: Pacing{
					AfterLeagues:     time.Second,
					AfterMatches:     time.Second,
					AfterMatchDetail: 500 * time.Millisecond,
					AfterMatchScore:  500 * time.Millisecond,
					AfterPointsTable: 500 * time.Millisecond,
					EndOfIteration:   2 * time.Second,
				},
				Thresholds: Thresholds{
					MaxP95Latency:  90 * time.Second,
					MaxFailureRate: 0.05,
					MinRequests:    1000,
				},
			},
			Spike: ScenarioConfig{
				Executor: ExecutorRampingVUs,
				StartVUs: 0,
				Stages: []Stage{
					{Duration: time.Minute, Target: 10000},
					{Duration: 3 * time.Minute, Target: 10000},
					{Duration: time.Minute, Target: 0},
				},
				GracefulStop: 30 * time.Second,
				Pacing: Pacing{
					AfterLeagues:   300 * time.Millisecond,
					AfterMatches:   200 * time.Millisecond,
					EndOfIteration: 500 * time.Millisecond,
				},
				Thresholds: Thresholds{
					MaxP95Latency:  90 * time.Second,
					MaxFailureRate: 0.05,
				},
			},
		},
		Logging: LoggingConfig{
			Mode:  "production",
			Level: "info",
		},
		Reports: ReportsConfig{
			Dir: "reports",
		},
	}
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromYAMLBytes(data)
}

func LoadFromYAMLString(yamlContent string) (*Config, error) {
	return LoadFromYAMLBytes([]byte(yamlContent))
}

// LoadFromYAMLBytes decodes data on top of Default, so a file only needs
// to name the values it changes.
func LoadFromYAMLBytes(data []byte) (*Config, error) {
	config := Default()
	err := yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Set defaults
	if config.Target.BaseURL == "" {
		config.Target.BaseURL = DefaultBaseURL
	}
	if config.Target.Timeout == 0 {
		config.Target.Timeout = 60 * time.Second
	}
	if config.Reports.Dir == "" {
		config.Reports.Dir = "reports"
	}

	// Expand environment variables
	expandEnvironmentVariablesInConfig(config)

	return config, nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^:}]+):?([^}]*)\}`)

func expandEnvironmentVariables(value string) string {
	return envVarRegex.ReplaceAllStringFunc(value, func(match string) string {
		matches := envVarRegex.FindStringSubmatch(match)
		if len(matches) < 2 {
			return match
		}

		envKey := matches[1]
		defaultValue := ""
		if len(matches) > 2 {
			defaultValue = matches[2]
		}

		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
		return defaultValue
	})
}

func expandEnvironmentVariablesInConfig(config *Config) {
	config.Target.BaseURL = expandEnvironmentVariables(config.Target.BaseURL)
	config.Reports.Dir = expandEnvironmentVariables(config.Reports.Dir)
	config.Monitoring.MetricsAddr = expandEnvironmentVariables(config.Monitoring.MetricsAddr)
}

// Validate reports every problem found in the configuration.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Target.BaseURL)
	if err != nil {
		errs = append(errs, fmt.Errorf("target.base_url: %w", err))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("target.base_url: %q is not an absolute http(s) URL", c.Target.BaseURL))
	}
	if c.Target.Timeout <= 0 {
		errs = append(errs, errors.New("target.timeout must be positive"))
	}

	for _, name := range []string{"smoke", "normal", "spike"} {
		sc, _ := c.Scenarios.Scenario(name)
		if err := sc.validate(); err != nil {
			errs = append(errs, fmt.Errorf("scenarios.%s: %w", name, err))
		}
	}

	for i, rule := range c.RateLimits {
		if strings.TrimSpace(rule.Endpoint) == "" {
			errs = append(errs, fmt.Errorf("rate_limits[%d]: endpoint is required", i))
		}
		if rule.RequestsPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate_limits[%d]: requests_per_second must be positive", i))
		}
	}

	if c.Reports.Dir == "" {
		errs = append(errs, errors.New("reports.dir is required"))
	}

	return errors.Join(errs...)
}

func (sc ScenarioConfig) validate() error {
	switch sc.Executor {
	case ExecutorConstantVUs:
		if sc.VUs <= 0 {
			return errors.New("vus must be positive")
		}
		if sc.Duration <= 0 {
			return errors.New("duration must be positive")
		}
	case ExecutorRampingVUs:
		if sc.StartVUs < 0 {
			return errors.New("start_vus must not be negative")
		}
		if len(sc.Stages) == 0 {
			return errors.New("ramping-vus needs at least one stage")
		}
		for i, st := range sc.Stages {
			if st.Duration <= 0 {
				return fmt.Errorf("stages[%d]: duration must be positive", i)
			}
			if st.Target < 0 {
				return fmt.Errorf("stages[%d]: target must not be negative", i)
			}
		}
		if sc.MaxVUs() == 0 {
			return errors.New("stages never start a virtual user")
		}
	default:
		return fmt.Errorf("unknown executor %q", sc.Executor)
	}

	if sc.GracefulStop < 0 {
		return errors.New("graceful_stop must not be negative")
	}
	if sc.Thresholds.MaxFailureRate < 0 || sc.Thresholds.MaxFailureRate > 1 {
		return errors.New("thresholds.max_failure_rate must be within [0, 1]")
	}
	return nil
}
