// Package sweep drives the canvass: every query variant of a category is
// issued at every grid point, results are normalized, threshold-filtered
// and deduplicated by place id.
package sweep

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/zurihub/places-cli/internal/category"
	"github.com/zurihub/places-cli/internal/geo"
	"github.com/zurihub/places-cli/internal/model"
	"github.com/zurihub/places-cli/pkg/places"
)

// Config tunes a Sweeper.
type Config struct {
	// RadiusMeters is the circular location bias radius per grid point.
	RadiusMeters float64
	// RateLimit is the global provider call ceiling in calls per second.
	RateLimit float64
	// Concurrency bounds the grid-point fan-out within one query variant.
	// 1 reproduces the sequential reference behavior.
	Concurrency int
	// CallTimeout bounds a single provider call.
	CallTimeout time.Duration
	// RateLimitPause is the pause applied after a rate-limited call before
	// the sweep resumes. The call itself is not retried.
	RateLimitPause time.Duration
	// PhotoMaxWidthPx sizes the generated photo media URLs.
	PhotoMaxWidthPx int
}

func (c Config) withDefaults() Config {
	if c.RadiusMeters <= 0 {
		c.RadiusMeters = 2500
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 10
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 30 * time.Second
	}
	if c.RateLimitPause <= 0 {
		c.RateLimitPause = 5 * time.Second
	}
	if c.PhotoMaxWidthPx <= 0 {
		c.PhotoMaxWidthPx = 400
	}
	return c
}

// Stats counts provider interaction during one sweep.
type Stats struct {
	APICalls    atomic.Int64
	RateLimited atomic.Int64
	Transport   atomic.Int64
	Malformed   atomic.Int64
	Skipped     atomic.Int64 // records below the review threshold
}

// Sweeper canvasses one category over a grid.
type Sweeper struct {
	provider places.Client
	limiter  *rate.Limiter
	cfg      Config
}

// New creates a Sweeper. The rate limiter is shared across all concurrent
// callers so the global call-rate ceiling holds regardless of fan-out.
func New(provider places.Client, cfg Config) *Sweeper {
	cfg = cfg.withDefaults()
	return &Sweeper{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		cfg:      cfg,
	}
}

// Sweep issues one provider call per (query variant, grid point) pair and
// returns the deduplicated place set keyed by id.
//
// Query variants run strictly in declared order; grid points within a
// variant may run concurrently. Insertion is first-writer-wins: once an id
// is present, later discoveries never overwrite it, even with different
// attributes. Under concurrency "first" means first to acquire the insert
// section.
//
// Provider failures degrade to zero records for the affected call and are
// counted in Stats; they never abort the sweep. The only error returned is
// wholesale cancellation via ctx.
func (s *Sweeper) Sweep(ctx context.Context, cat category.Category, grid []geo.Point) (map[string]model.Place, *Stats, error) {
	log := zap.L().With(zap.String("category", cat.Key))
	stats := &Stats{}
	found := make(map[string]model.Place)
	var mu sync.Mutex

	for _, q := range cat.Queries {
		qLog := log.With(zap.String("query", q.Text))
		qLog.Info("sweeping query variant", zap.Int("grid_points", len(grid)))

		var done atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.Concurrency)

		for _, point := range grid {
			g.Go(func() error {
				if err := s.limiter.Wait(gctx); err != nil {
					return err
				}

				callCtx, cancel := context.WithTimeout(gctx, s.cfg.CallTimeout)
				resp, err := s.provider.TextSearch(callCtx, places.TextSearchRequest{
					Query:        q.Text,
					Lat:          point.Lat,
					Lng:          point.Lng,
					RadiusMeters: s.cfg.RadiusMeters,
				})
				cancel()
				stats.APICalls.Add(1)

				if err != nil {
					s.recordFailure(gctx, qLog, point, err, stats)
				} else {
					for _, raw := range resp.Places {
						place, ok := s.normalize(raw, cat, stats)
						if !ok {
							continue
						}
						mu.Lock()
						if _, exists := found[place.ID]; !exists {
							found[place.ID] = place
						}
						mu.Unlock()
					}
				}

				if n := done.Add(1); n%20 == 0 {
					mu.Lock()
					total := len(found)
					mu.Unlock()
					qLog.Info("sweep progress",
						zap.Int64("points_done", n),
						zap.Int("grid_points", len(grid)),
						zap.Int("places_found", total),
					)
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, stats, err
		}
	}

	log.Info("sweep complete",
		zap.Int("places", len(found)),
		zap.Int64("api_calls", stats.APICalls.Load()),
		zap.Int64("rate_limited", stats.RateLimited.Load()),
		zap.Int64("transport_failures", stats.Transport.Load()),
		zap.Int64("malformed", stats.Malformed.Load()),
	)
	return found, stats, nil
}

// recordFailure counts and logs a failed call. A rate-limited call
// additionally pauses the calling worker; its records stay empty either
// way, so coverage at that point is silently reduced.
func (s *Sweeper) recordFailure(ctx context.Context, log *zap.Logger, point geo.Point, err error, stats *Stats) {
	kind, _ := places.KindOf(err)
	switch kind {
	case places.FailureRateLimited:
		stats.RateLimited.Add(1)
		log.Warn("rate limited, pausing",
			zap.Float64("lat", point.Lat),
			zap.Float64("lng", point.Lng),
			zap.Duration("pause", s.cfg.RateLimitPause),
		)
		select {
		case <-time.After(s.cfg.RateLimitPause):
		case <-ctx.Done():
		}
	case places.FailureMalformed:
		stats.Malformed.Add(1)
		log.Warn("malformed provider response", zap.Float64("lat", point.Lat), zap.Float64("lng", point.Lng), zap.Error(err))
	default:
		stats.Transport.Add(1)
		log.Warn("provider call failed", zap.Float64("lat", point.Lat), zap.Float64("lng", point.Lng), zap.Error(err))
	}
}
