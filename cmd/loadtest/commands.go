package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/proleague/league-loadtest/internal/config"
	"github.com/proleague/league-loadtest/internal/loadtest"
	"github.com/proleague/league-loadtest/internal/walker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const keyConfigFile = "config"

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:           "loadtest",
		Short:         "Load tests for the league API",
		Long:          "Walks the league API the way a fan's client does (leagues, matches, scores, standings, players) under smoke, normal and spike load.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file (defaults to the built-in profiles)")
	_ = v.BindPFlag(keyConfigFile, rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(newRunCmd(v), newListCmd(v))
	return rootCmd
}

func newRunCmd(v *viper.Viper) *cobra.Command {
	var output string

	runCmd := &cobra.Command{
		Use:       "run <smoke|normal|spike>",
		Short:     "Run a load test scenario",
		Args:      cobra.ExactArgs(1),
		ValidArgs: loadtest.ListScenarios(),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runScenario(cmd.Context(), v, args[0], output, cmd.OutOrStdout())
			return err
		},
	}

	flags := runCmd.Flags()
	flags.String("base-url", "", "Base URL of the league API (env BASE_URL)")
	flags.Bool("insecure", true, "Skip TLS certificate verification (env INSECURE_SKIP_TLS)")
	flags.Int("vus", 0, "Number of virtual users; rescales the stages of a ramping scenario")
	flags.Duration("duration", 0, "Test duration of a constant-vus scenario")
	flags.String("reports-dir", "", "Directory for the text and HTML reports")
	flags.String("metrics-addr", "", "Serve live metrics on this address while the test runs (e.g. :9091)")
	flags.String("log-mode", "", "Log format: development or production")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.StringVarP(&output, "output", "o", "", "Also save the raw results to this file (JSON)")

	for key, flag := range map[string]string{
		config.KeyBaseURL:         "base-url",
		config.KeyInsecureSkipTLS: "insecure",
		config.KeyVUs:             "vus",
		config.KeyDuration:        "duration",
		config.KeyReportsDir:      "reports-dir",
		config.KeyMetricsAddr:     "metrics-addr",
		config.KeyLogMode:         "log-mode",
		config.KeyLogLevel:        "log-level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	return runCmd
}

func newListCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			listAvailableScenarios(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func loadConfig(v *viper.Viper) (*config.Config, error) {
	path := v.GetString(keyConfigFile)
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

func listAvailableScenarios(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Available load test scenarios:")
	for _, name := range loadtest.ListScenarios() {
		lt, _ := loadtest.GetScenario(cfg, name)
		schedule := lt.Schedule()

		fmt.Fprintf(w, "  %s:\n", name)
		fmt.Fprintf(w, "    Executor: %s\n", lt.Executor)
		fmt.Fprintf(w, "    Max VUs: %d\n", schedule.MaxVUs())
		fmt.Fprintf(w, "    Duration: %v (+%v graceful stop)\n", schedule.Duration(), lt.GracefulStop)
		fmt.Fprintf(w, "    Report: %s\n", lt.Name)
		fmt.Fprintf(w, "    Thresholds: %s\n", describeThresholds(lt.Thresholds))
		fmt.Fprintf(w, "    Description: %s\n", lt.Variant.Description())
		fmt.Fprintln(w)
	}
}

func describeThresholds(t config.Thresholds) string {
	var parts []string
	if t.MaxP95Latency > 0 {
		parts = append(parts, fmt.Sprintf("p(95)<%v", t.MaxP95Latency))
	}
	if t.MaxFailureRate > 0 {
		parts = append(parts, fmt.Sprintf("failure rate<%g", t.MaxFailureRate))
	}
	if t.MinRequests > 0 {
		parts = append(parts, fmt.Sprintf("requests>%d", t.MinRequests))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// scenarioVariant resolves a scenario name given on the command line.
func scenarioVariant(name string) (walker.Variant, error) {
	return walker.ParseVariant(strings.ToLower(strings.TrimSpace(name)))
}
