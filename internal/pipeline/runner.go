package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/zurihub/places-cli/internal/category"
	"github.com/zurihub/places-cli/internal/geo"
	"github.com/zurihub/places-cli/internal/model"
	"github.com/zurihub/places-cli/internal/ranking"
	"github.com/zurihub/places-cli/internal/snapshot"
	"github.com/zurihub/places-cli/internal/store"
	"github.com/zurihub/places-cli/internal/sweep"
	"github.com/zurihub/places-cli/pkg/places"
)

// Sweeper is the subset of the sweep engine the runner depends on.
type Sweeper interface {
	Sweep(ctx context.Context, cat category.Category, grid []geo.Point) (map[string]model.Place, *sweep.Stats, error)
}

// Options configures a Runner.
type Options struct {
	Region   string
	Bounds   geo.Bounds
	StepKM   float64
	Boundary *geo.Boundary
}

// Runner drives a full canvass: grid generation, sweeping each category,
// ranking, and snapshot export. Run records land in the store.
type Runner struct {
	opts    Options
	catalog category.Catalog
	sweeper Sweeper
	writer  *snapshot.Writer
	store   store.Store
}

// New creates a Runner. The store may be nil, in which case run
// bookkeeping is skipped.
func New(opts Options, catalog category.Catalog, sweeper Sweeper, writer *snapshot.Writer, st store.Store) *Runner {
	return &Runner{
		opts:    opts,
		catalog: catalog,
		sweeper: sweeper,
		writer:  writer,
		store:   st,
	}
}

// Run canvasses every category in the catalog sequentially and writes one
// snapshot document per category plus a shared metadata document. A failed
// category aborts the run.
func (r *Runner) Run(ctx context.Context) error {
	grid, err := r.grid()
	if err != nil {
		return err
	}

	for _, cat := range r.catalog.Categories {
		if err := r.runCategory(ctx, cat, grid); err != nil {
			return err
		}
	}

	meta := snapshot.Metadata{
		Generated:  time.Now().UTC(),
		MinReviews: catalogMinReviews(r.catalog),
		Region:     r.opts.Region,
		Bounds:     r.opts.Bounds,
	}
	if _, err := r.writer.WriteMetadata(meta); err != nil {
		return eris.Wrap(err, "pipeline: write metadata")
	}
	return nil
}

// RunCategory canvasses a single category by key.
func (r *Runner) RunCategory(ctx context.Context, key string) error {
	cat, ok := r.catalog.Get(key)
	if !ok {
		return eris.Errorf("pipeline: unknown category %q", key)
	}
	grid, err := r.grid()
	if err != nil {
		return err
	}
	return r.runCategory(ctx, cat, grid)
}

func (r *Runner) grid() ([]geo.Point, error) {
	grid, err := geo.Grid(r.opts.Bounds, r.opts.StepKM)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: build grid")
	}
	grid = geo.Clip(grid, r.opts.Boundary)
	if len(grid) == 0 {
		return nil, eris.New("pipeline: grid is empty after clipping")
	}
	return grid, nil
}

func (r *Runner) runCategory(ctx context.Context, cat category.Category, grid []geo.Point) error {
	log := zap.L().With(zap.String("category", cat.Key), zap.String("region", r.opts.Region))
	log.Info("pipeline: canvassing category", zap.Int("grid_points", len(grid)))

	var run *model.Run
	if r.store != nil {
		var err error
		run, err = r.store.CreateRun(ctx, cat.Key, r.opts.Region, len(grid))
		if err != nil {
			return eris.Wrap(err, "pipeline: create run")
		}
	}

	fail := func(err error) error {
		if run != nil {
			if failErr := r.store.FailRun(ctx, run.ID, err.Error()); failErr != nil {
				log.Warn("pipeline: record run failure", zap.Error(failErr))
			}
		}
		return err
	}

	dedup, stats, err := r.sweeper.Sweep(ctx, cat, grid)
	if err != nil {
		return fail(eris.Wrapf(err, "pipeline: sweep %s", cat.Key))
	}

	rankings := ranking.Build(dedup)
	placeList := ranking.SortPlaces(dedup)

	log.Info("pipeline: trade distribution", zap.Any("trades", tradeTotals(rankings)))

	doc := snapshot.Document{
		Metadata: snapshot.Metadata{
			Generated:    time.Now().UTC(),
			MinReviews:   cat.MinReviews,
			Region:       r.opts.Region,
			Bounds:       r.opts.Bounds,
			Category:     cat.Key,
			TotalResults: len(placeList),
		},
		Rankings: rankings,
		Places:   placeList,
	}
	path, err := r.writer.WriteCategory(doc)
	if err != nil {
		return fail(eris.Wrapf(err, "pipeline: write snapshot %s", cat.Key))
	}

	if run != nil {
		if err := r.store.SavePlaces(ctx, run.ID, placeList); err != nil {
			return fail(eris.Wrap(err, "pipeline: save places"))
		}
		result := &model.RunResult{
			GridPoints:  len(grid),
			APICalls:    int(stats.APICalls.Load()),
			PlacesFound: len(placeList),
		}
		if err := r.store.CompleteRun(ctx, run.ID, result); err != nil {
			return eris.Wrap(err, "pipeline: complete run")
		}
	}

	log.Info("pipeline: category complete",
		zap.String("snapshot", path),
		zap.Int("places", len(placeList)),
		zap.Int64("api_calls", stats.APICalls.Load()),
		zap.Int64("skipped", stats.Skipped.Load()),
		zap.Int64("rate_limited", stats.RateLimited.Load()),
	)
	return nil
}

// tradeTotals flattens the leaderboards into a per-trade place count.
func tradeTotals(rankings map[string]model.Leaderboard) map[string]int {
	totals := make(map[string]int, len(rankings))
	for trade, board := range rankings {
		totals[trade] = board.Total
	}
	return totals
}

// catalogMinReviews is the threshold reported in the shared metadata
// document. Per-category overrides make a single value approximate; the
// lowest threshold in the catalog is the one no published record undercuts.
func catalogMinReviews(catalog category.Catalog) int {
	minReviews := category.DefaultMinReviews
	for i, cat := range catalog.Categories {
		if i == 0 || cat.MinReviews < minReviews {
			minReviews = cat.MinReviews
		}
	}
	return minReviews
}

// ProviderFromConfig builds the HTTP provider client from provider settings.
func ProviderFromConfig(apiKey, baseURL, language, region string) places.Client {
	opts := []places.Option{places.WithLocale(language, region)}
	if baseURL != "" {
		opts = append(opts, places.WithBaseURL(baseURL))
	}
	return places.NewClient(apiKey, opts...)
}
