package model

import "time"

// RunStatus tracks the lifecycle of a canvass run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one canvass of a single category.
type Run struct {
	ID          string     `json:"id"`
	Category    string     `json:"category"`
	Region      string     `json:"region"`
	Status      RunStatus  `json:"status"`
	GridPoints  int        `json:"grid_points"`
	APICalls    int        `json:"api_calls"`
	PlacesFound int        `json:"places_found"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunResult summarizes a completed canvass for run bookkeeping.
type RunResult struct {
	GridPoints  int `json:"grid_points"`
	APICalls    int `json:"api_calls"`
	PlacesFound int `json:"places_found"`
}
