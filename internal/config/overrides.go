package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Override keys understood by ApplyOverrides. The CLI binds its flags to
// the same keys.
const (
	KeyBaseURL         = "base_url"
	KeyInsecureSkipTLS = "insecure_skip_tls"
	KeyVUs             = "vus"
	KeyDuration        = "duration"
	KeyReportsDir      = "reports_dir"
	KeyMetricsAddr     = "metrics_addr"
	KeyLogMode         = "log_mode"
	KeyLogLevel        = "log_level"
)

// NewViper returns a viper instance bound to the environment variables the
// suite honours: BASE_URL and INSECURE_SKIP_TLS, plus LOADTEST_* for the rest.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("LOADTEST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyBaseURL, "BASE_URL", "LOADTEST_BASE_URL")
	_ = v.BindEnv(KeyInsecureSkipTLS, "INSECURE_SKIP_TLS", "LOADTEST_INSECURE_SKIP_TLS")
	return v
}

// ApplyOverrides copies every key explicitly set in v onto cfg. VU count and
// duration apply to the named scenario only; duration on a ramping scenario
// is ignored because its length is defined by its stages.
func ApplyOverrides(cfg *Config, v *viper.Viper, scenario string) {
	if v.IsSet(KeyBaseURL) {
		if u := strings.TrimSpace(v.GetString(KeyBaseURL)); u != "" {
			cfg.Target.BaseURL = u
		}
	}
	if v.IsSet(KeyInsecureSkipTLS) {
		// Skipping verification stays on unless explicitly disabled.
		cfg.Target.InsecureSkipTLS = !strings.EqualFold(strings.TrimSpace(v.GetString(KeyInsecureSkipTLS)), "false")
	}
	if v.IsSet(KeyReportsDir) {
		cfg.Reports.Dir = v.GetString(KeyReportsDir)
	}
	if v.IsSet(KeyMetricsAddr) {
		cfg.Monitoring.MetricsAddr = v.GetString(KeyMetricsAddr)
	}
	if v.IsSet(KeyLogMode) {
		cfg.Logging.Mode = v.GetString(KeyLogMode)
	}
	if v.IsSet(KeyLogLevel) {
		cfg.Logging.Level = v.GetString(KeyLogLevel)
	}

	sc, ok := cfg.Scenarios.Scenario(scenario)
	if !ok {
		return
	}
	if v.IsSet(KeyVUs) {
		if n := v.GetInt(KeyVUs); n > 0 {
			if sc.Executor == ExecutorRampingVUs {
				peak := sc.MaxVUs()
				sc.Stages = scaleStages(sc.Stages, peak, n)
				if peak > 0 {
					sc.StartVUs = sc.StartVUs * n / peak
				}
			} else {
				sc.VUs = n
			}
		}
	}
	if v.IsSet(KeyDuration) && sc.Executor == ExecutorConstantVUs {
		if d := v.GetDuration(KeyDuration); d > 0 {
			sc.Duration = d
		}
	}
	cfg.Scenarios.SetScenario(scenario, sc)
}

// scaleStages rescales stage targets so the peak becomes peak.
func scaleStages(stages []Stage, oldPeak, peak int) []Stage {
	if oldPeak <= 0 {
		return stages
	}
	out := make([]Stage, len(stages))
	for i, st := range stages {
		out[i] = Stage{
			Duration: st.Duration,
			Target:   st.Target * peak / oldPeak,
		}
	}
	return out
}
