package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/zurihub/places-cli/internal/category"
	"github.com/zurihub/places-cli/internal/config"
	"github.com/zurihub/places-cli/internal/geo"
	"github.com/zurihub/places-cli/internal/pipeline"
	"github.com/zurihub/places-cli/internal/snapshot"
	"github.com/zurihub/places-cli/internal/store"
	"github.com/zurihub/places-cli/internal/sweep"
)

func initStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "places.db"
		}
		st, err := store.NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initRunner assembles the canvass pipeline from configuration. The returned
// cleanup closes the store.
func initRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if cfg.Provider.APIKey == "" {
		return nil, nil, eris.New("provider API key is required (PLACES_PROVIDER_API_KEY)")
	}

	catalog, err := category.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, err
	}

	var boundary *geo.Boundary
	if cfg.Region.BoundaryFile != "" {
		boundary, err = geo.LoadBoundary(cfg.Region.BoundaryFile)
		if err != nil {
			return nil, nil, err
		}
	}

	provider := pipeline.ProviderFromConfig(
		cfg.Provider.APIKey, cfg.Provider.BaseURL, cfg.Provider.Language, cfg.Provider.Region,
	)
	sweeper := sweep.New(provider, sweep.Config{
		RadiusMeters:    float64(cfg.Provider.RadiusMeters),
		RateLimit:       cfg.Provider.RateLimit,
		Concurrency:     cfg.Provider.Concurrency,
		CallTimeout:     time.Duration(cfg.Provider.TimeoutSecs) * time.Second,
		RateLimitPause:  time.Duration(cfg.Provider.PauseSecs) * time.Second,
		PhotoMaxWidthPx: cfg.Provider.PhotoMaxWidth,
	})

	writer, err := snapshot.NewWriter(cfg.Output.Dir)
	if err != nil {
		return nil, nil, err
	}

	st, err := initStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	runner := pipeline.New(pipeline.Options{
		Region:   cfg.Region.Name,
		Bounds:   cfg.Region.Bounds,
		StepKM:   cfg.Grid.StepKM,
		Boundary: boundary,
	}, *catalog, sweeper, writer, st)

	cleanup := func() { _ = st.Close() }
	return runner, cleanup, nil
}
