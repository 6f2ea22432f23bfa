package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/proleague/league-loadtest/internal/apiclient"
	"github.com/proleague/league-loadtest/internal/config"
	"github.com/proleague/league-loadtest/internal/loadtest"
	"github.com/proleague/league-loadtest/internal/logger"
	"github.com/proleague/league-loadtest/internal/metrics"
	"github.com/proleague/league-loadtest/internal/ratelimit"
	"github.com/proleague/league-loadtest/internal/report"
	"github.com/proleague/league-loadtest/internal/walker"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var errThresholdsFailed = errors.New("thresholds failed")

// runScenario runs one scenario end to end: configuration, the run
// itself, the summary on stdout and the report files.
func runScenario(ctx context.Context, v *viper.Viper, name, output string, stdout io.Writer) (loadtest.LoadTestResult, error) {
	variant, err := scenarioVariant(name)
	if err != nil {
		return loadtest.LoadTestResult{}, err
	}

	cfg, err := loadConfig(v)
	if err != nil {
		return loadtest.LoadTestResult{}, err
	}
	config.ApplyOverrides(cfg, v, string(variant))
	if err := cfg.Validate(); err != nil {
		return loadtest.LoadTestResult{}, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		return loadtest.LoadTestResult{}, err
	}
	defer log.Sync()

	lt, ok := loadtest.GetScenario(cfg, string(variant))
	if !ok {
		return loadtest.LoadTestResult{}, fmt.Errorf("scenario %q not found", name)
	}

	limiter := ratelimit.New(cfg.RateLimits)
	if limited := limiter.LimitedTags(lt.Variant.Tags()); len(limited) > 0 {
		log.Info("rate limited endpoints", zap.Strings("tags", limited))
	}
	client := apiclient.New(cfg.Target, limiter)
	collector := metrics.NewCollector()
	w := walker.New(cfg.Target.BaseURL, lt.Variant, client, collector, walker.Options{
		Pacing: lt.Pacing,
		Logger: log.Named("walker"),
	})

	if addr := cfg.Monitoring.MetricsAddr; addr != "" {
		stopMetrics := serveMetrics(addr, collector, log)
		defer stopMetrics()
	}

	log.Info("target",
		zap.String("base_url", cfg.Target.BaseURL),
		zap.Bool("insecure_skip_tls", cfg.Target.InsecureSkipTLS))

	runner := loadtest.NewLoadTestRunner(lt, w, collector, log)
	result := runner.Run(ctx)

	rep, err := report.New(result, time.Now())
	if err != nil {
		return result, err
	}
	fmt.Fprint(stdout, rep.Text)

	textPath, htmlPath, err := rep.Write(cfg.Reports.Dir)
	if err != nil {
		return result, err
	}
	log.Info("reports written", zap.String("text", textPath), zap.String("html", htmlPath))

	if output != "" {
		if err := saveResults(result, output); err != nil {
			return result, err
		}
		log.Info("results saved", zap.String("file", output))
	}

	if !result.Passed() {
		return result, errThresholdsFailed
	}
	return result, nil
}

// serveMetrics exposes the collector on addr until the returned function
// is called.
func serveMetrics(addr string, collector *metrics.Collector, log *zap.Logger) func() {
	mux := http.NewServeMux()
	metrics.NewHandler(collector).RegisterRoutes(mux)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	log.Info("serving live metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("metrics server shutdown", zap.Error(err))
		}
	}
}

func saveResults(result loadtest.LoadTestResult, filename string) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling results: %w", err)
	}

	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("error saving results to file: %w", err)
	}
	return nil
}
