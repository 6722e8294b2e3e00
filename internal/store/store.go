// Package store persists canvass run history and the places each run
// found. SQLite is the default backend; Postgres is available for shared
// deployments.
package store

import (
	"context"

	"github.com/zurihub/places-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Category string          `json:"category,omitempty"`
	Status   model.RunStatus `json:"status,omitempty"`
	Limit    int             `json:"limit,omitempty"`
}

// Store defines the persistence interface for canvass bookkeeping.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, category, region string, gridPoints int) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, result *model.RunResult) error
	FailRun(ctx context.Context, runID string, message string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Places found by a run
	SavePlaces(ctx context.Context, runID string, places []model.Place) error
	ListPlaces(ctx context.Context, runID string) ([]model.Place, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
