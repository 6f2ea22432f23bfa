// Package mockapi is an in-process stand-in for the league API, used for
// local dry runs of the load tests and by integration tests.
package mockapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Options struct {
	Shape     Shape
	LegacyIDs bool // identify leagues and matches by league_id / match_id

	Latency     time.Duration
	FailureRate float64 // fraction of requests answered with 503
	MaxRPS      float64 // 0 disables throttling
	Burst       int

	Logger *zap.Logger
}

// NewRouter builds the gin engine serving store.
func NewRouter(store *Store, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Shape == "" {
		opts.Shape = ShapePlain
	}

	r := gin.New()
	r.Use(gin.Recovery(), AccessLog(opts.Logger))
	if opts.MaxRPS > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = int(opts.MaxRPS)
		}
		r.Use(RateLimit(opts.MaxRPS, max(burst, 1)))
	}
	if opts.Latency > 0 {
		r.Use(Latency(opts.Latency))
	}
	if opts.FailureRate > 0 {
		r.Use(FaultInjection(opts.FailureRate))
	}

	h := NewHandler(store, opts.Shape, opts.LegacyIDs)

	r.GET("/health", h.Health)
	r.GET("/leagues", h.ListLeagues)
	r.GET("/matches", h.ListMatches)
	r.GET("/matches/:id", h.GetMatch)
	r.GET("/matches/:id/score", h.GetMatchScore)
	r.GET("/points-table", h.PointsTable)
	r.GET("/players", h.ListPlayers)

	return r
}
