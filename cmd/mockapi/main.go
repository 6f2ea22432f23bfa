package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/proleague/league-loadtest/internal/logger"
	"github.com/proleague/league-loadtest/internal/mockapi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type serverOptions struct {
	addr        string
	shape       string
	legacyIDs   bool
	leagues     int
	matches     int
	latency     time.Duration
	failureRate float64
	maxRPS      float64
	burst       int
	logMode     string
	logLevel    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts serverOptions

	cmd := &cobra.Command{
		Use:          "mockapi",
		Short:        "Serve a fake league API for local load-test runs",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.addr, "addr", ":8080", "Address to listen on")
	flags.StringVar(&opts.shape, "shape", string(mockapi.ShapeData), "List response shape: plain, data or items")
	flags.BoolVar(&opts.legacyIDs, "legacy-ids", false, "Identify leagues and matches by league_id / match_id instead of id")
	flags.IntVar(&opts.leagues, "leagues", 8, "Number of leagues to seed")
	flags.IntVar(&opts.matches, "matches", 12, "Number of matches per league")
	flags.DurationVar(&opts.latency, "latency", 0, "Delay added to every response")
	flags.Float64Var(&opts.failureRate, "failure-rate", 0, "Fraction of requests answered with 503")
	flags.Float64Var(&opts.maxRPS, "max-rps", 0, "Answer 429 above this many requests per second (0 disables)")
	flags.IntVar(&opts.burst, "burst", 0, "Burst allowed above max-rps")
	flags.StringVar(&opts.logMode, "log-mode", "development", "Log format: development or production")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level")

	return cmd
}

func serve(opts serverOptions) error {
	shape, ok := mockapi.ParseShape(opts.shape)
	if !ok {
		return fmt.Errorf("unknown shape %q (want plain, data or items)", opts.shape)
	}
	if opts.failureRate < 0 || opts.failureRate > 1 {
		return fmt.Errorf("failure-rate must be within [0, 1], got %g", opts.failureRate)
	}

	log, err := logger.New(opts.logMode, opts.logLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	gin.SetMode(gin.ReleaseMode)
	router := mockapi.NewRouter(mockapi.NewStore(opts.leagues, opts.matches), mockapi.Options{
		Shape:       shape,
		LegacyIDs:   opts.legacyIDs,
		Latency:     opts.latency,
		FailureRate: opts.failureRate,
		MaxRPS:      opts.maxRPS,
		Burst:       opts.burst,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	log.Info("mock league API running",
		zap.String("addr", opts.addr),
		zap.String("shape", string(shape)),
		zap.Int("leagues", opts.leagues))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, failed := <-errCh:
		if failed {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}
	log.Info("shutting down mock API")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
