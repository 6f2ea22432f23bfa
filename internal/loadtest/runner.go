package loadtest

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/proleague/league-loadtest/internal/metrics"
	"github.com/proleague/league-loadtest/internal/walker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Iterator runs one iteration of a virtual user. *walker.Walker implements it.
type Iterator interface {
	Iterate(ctx context.Context)
}

// Recorder receives run-level events. *metrics.Collector implements it.
type Recorder interface {
	RecordIteration()
	SetActiveVUs(n int)
	Snapshot() metrics.Snapshot
}

// LoadTestResult contains the results of a load test
type LoadTestResult struct {
	Name                  string           `json:"name"`
	Variant               walker.Variant   `json:"variant"`
	StartTime             time.Time        `json:"start_time"`
	Duration              time.Duration    `json:"duration"`
	Iterations            int64            `json:"iterations"`
	InterruptedIterations int64            `json:"interrupted_iterations"`
	MaxActiveVUs          int64            `json:"max_active_vus"`
	Aborted               bool             `json:"aborted"`
	Metrics               metrics.Snapshot `json:"metrics"`
	Violations            []Violation      `json:"violations"`
}

// Passed reports whether every threshold held.
func (r LoadTestResult) Passed() bool {
	return len(r.Violations) == 0
}

// LoadTestRunner orchestrates load testing
type LoadTestRunner struct {
	config   LoadTestConfig
	iterator Iterator
	recorder Recorder
	logger   *zap.Logger

	// pollInterval is how often an idle VU re-reads the schedule.
	pollInterval time.Duration

	activeVUs    int64
	maxActiveVUs int64
	iterations   int64
	interrupted  int64
}

// NewLoadTestRunner creates a new load test runner
func NewLoadTestRunner(config LoadTestConfig, iterator Iterator, recorder Recorder, logger *zap.Logger) *LoadTestRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoadTestRunner{
		config:       config,
		iterator:     iterator,
		recorder:     recorder,
		logger:       logger,
		pollInterval: 100 * time.Millisecond,
	}
}

// Run executes the load test. It returns when every VU has stopped: at the
// end of the schedule plus at most the graceful stop, or as soon as ctx is
// cancelled.
func (ltr *LoadTestRunner) Run(ctx context.Context) LoadTestResult {
	schedule := ltr.config.Schedule()
	startTime := time.Now()

	ltr.logger.Info("starting load test",
		zap.String("scenario", ltr.config.Name),
		zap.String("executor", string(ltr.config.Executor)),
		zap.Int("max_vus", schedule.MaxVUs()),
		zap.Duration("duration", schedule.Duration()),
		zap.Duration("graceful_stop", ltr.config.GracefulStop))

	// In-flight iterations keep running past the schedule for at most the
	// graceful stop; the deadline then interrupts them.
	runCtx, cancel := context.WithDeadline(ctx, startTime.Add(schedule.Duration()+ltr.config.GracefulStop))
	defer cancel()

	// VUs never fail: iteration errors are recorded as metrics, so the
	// group only joins them.
	var g errgroup.Group
	for id := 0; id < schedule.MaxVUs(); id++ {
		id := id
		g.Go(func() error {
			ltr.runVU(runCtx, id, startTime, schedule)
			return nil
		})
	}
	_ = g.Wait()

	ltr.recorder.SetActiveVUs(0)

	result := LoadTestResult{
		Name:                  ltr.config.Name,
		Variant:               ltr.config.Variant,
		StartTime:             startTime,
		Duration:              time.Since(startTime),
		Iterations:            atomic.LoadInt64(&ltr.iterations),
		InterruptedIterations: atomic.LoadInt64(&ltr.interrupted),
		MaxActiveVUs:          atomic.LoadInt64(&ltr.maxActiveVUs),
		Aborted:               ctx.Err() != nil,
		Metrics:               ltr.recorder.Snapshot(),
	}
	result.Violations = EvaluateThresholds(result.Metrics, ltr.config.Thresholds)

	ltr.logger.Info("load test finished",
		zap.String("scenario", result.Name),
		zap.Duration("elapsed", result.Duration),
		zap.Int64("iterations", result.Iterations),
		zap.Int64("interrupted_iterations", result.InterruptedIterations),
		zap.Int64("requests", result.Metrics.TotalRequests),
		zap.Bool("aborted", result.Aborted),
		zap.Bool("passed", result.Passed()))

	return result
}

// runVU is the life of one virtual user: it starts a new iteration
// whenever the schedule wants more than id VUs, and stops once the
// schedule is over.
func (ltr *LoadTestRunner) runVU(ctx context.Context, id int, startTime time.Time, schedule Schedule) {
	for ctx.Err() == nil {
		elapsed := time.Since(startTime)
		if elapsed >= schedule.Duration() {
			return
		}

		if schedule.TargetAt(elapsed) <= id {
			if !ltr.idle(ctx) {
				return
			}
			continue
		}

		ltr.enter()
		ltr.iterator.Iterate(ctx)
		ltr.leave()

		if ctx.Err() != nil {
			atomic.AddInt64(&ltr.interrupted, 1)
			return
		}
		atomic.AddInt64(&ltr.iterations, 1)
		ltr.recorder.RecordIteration()
	}
}

func (ltr *LoadTestRunner) idle(ctx context.Context) bool {
	t := time.NewTimer(ltr.pollInterval)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (ltr *LoadTestRunner) enter() {
	n := atomic.AddInt64(&ltr.activeVUs, 1)
	for {
		current := atomic.LoadInt64(&ltr.maxActiveVUs)
		if n <= current || atomic.CompareAndSwapInt64(&ltr.maxActiveVUs, current, n) {
			break
		}
	}
	ltr.recorder.SetActiveVUs(int(n))
}

func (ltr *LoadTestRunner) leave() {
	n := atomic.AddInt64(&ltr.activeVUs, -1)
	ltr.recorder.SetActiveVUs(int(n))
}
