// Package walker drives one virtual user through a dependency-ordered
// sequence of read-only league API calls.
//
// A walk starts from the active leagues, discovers a league identifier,
// then a match identifier, and only calls the endpoints whose context has
// been discovered in the same iteration. Failures never abort the walk:
// a non-200 response fails its check, an unusable body leaves the
// identifier undiscovered, and every independent step still runs.
package walker

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/proleague/league-loadtest/internal/apiclient"
	"go.uber.org/zap"
)

// Getter is the HTTP GET capability used by the walker.
type Getter interface {
	Get(ctx context.Context, url, tag string) (*apiclient.Response, error)
}

// Collector receives the side effects of a walk. Implementations must be
// safe for concurrent use by many walkers.
type Collector interface {
	RecordRequest(tag string, status int, latency time.Duration, err error)
	RecordCheck(label string, passed bool)
	RecordDiscovery(resource, outcome string)
}

// Sleeper implements think-time between steps.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration)
}

type Options struct {
	Pacing  Pacing
	Sleeper Sleeper // defaults to a context-aware timer
	Logger  *zap.Logger
}

// Walker runs iterations of one variant. It holds no per-iteration state,
// so a single Walker can serve every virtual user of a run.
type Walker struct {
	baseURL   string
	variant   Variant
	getter    Getter
	collector Collector
	pacing    Pacing
	sleeper   Sleeper
	logger    *zap.Logger
}

func New(baseURL string, variant Variant, getter Getter, collector Collector, opts Options) *Walker {
	w := &Walker{
		baseURL:   strings.TrimRight(baseURL, "/"),
		variant:   variant,
		getter:    getter,
		collector: collector,
		pacing:    opts.Pacing,
		sleeper:   opts.Sleeper,
		logger:    opts.Logger,
	}
	if w.sleeper == nil {
		w.sleeper = timerSleeper{}
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	return w
}

func (w *Walker) Variant() Variant {
	return w.variant
}

// Iterate performs one session. It never panics and returns nothing; all
// results go to the collector. Once ctx is done no further request is
// started.
func (w *Walker) Iterate(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("iteration aborted", zap.String("variant", string(w.variant)), zap.Any("panic", r))
		}
	}()

	sess := NewSession()
	for _, st := range w.variant.plan() {
		resp, called := w.call(ctx, sess, st.endpoint)
		if !called {
			continue
		}
		if st.discovers != 0 {
			w.discover(sess, st.discovers, resp)
		}
		w.sleeper.Sleep(ctx, st.pause(w.pacing))
	}
	w.sleeper.Sleep(ctx, w.pacing.EndOfIteration)
}

// call issues the request for e and records its check. It reports false,
// without touching the network, when the session lacks a required field
// or ctx is already done. resp is nil when no response was obtained.
func (w *Walker) call(ctx context.Context, sess *Session, e Endpoint) (resp *apiclient.Response, called bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	path, ok := sess.Resolve(e)
	if !ok {
		return nil, false
	}

	resp, err := w.getter.Get(ctx, w.baseURL+path, e.Tag)
	if err != nil && ctx.Err() != nil {
		// Interrupted by the end of the run, not a failure of the target.
		return nil, false
	}

	status := 0
	var latency time.Duration
	if resp != nil {
		status = resp.Status
		latency = resp.Duration
	}

	w.collector.RecordRequest(e.Tag, status, latency, err)
	w.collector.RecordCheck(e.Check, err == nil && status == http.StatusOK)

	if err != nil {
		w.logger.Debug("request failed", zap.String("name", e.Tag), zap.Error(err))
		return nil, true
	}
	return resp, true
}

// discover stores field in sess when resp carries a usable identifier.
func (w *Walker) discover(sess *Session, field Field, resp *apiclient.Response) {
	outcome := OutcomeUnavailable
	if resp != nil && resp.Status == http.StatusOK {
		var list []any
		list, outcome = extractList(resp.Body)
		if outcome == OutcomeFound {
			primary, secondary := field.idFields()
			if id, ok := FirstID(list, primary, secondary); ok {
				sess.Set(field, id)
			} else {
				outcome = OutcomeNoID
			}
		}
	}

	w.collector.RecordDiscovery(field.resource(), string(outcome))
	if outcome != OutcomeFound {
		w.logger.Debug("identifier not discovered",
			zap.String("field", field.String()),
			zap.String("outcome", string(outcome)))
	}
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
