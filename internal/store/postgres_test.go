package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zurihub/places-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), "handwerker", "zuerich", "running", 128, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "handwerker", "zuerich", 128)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.Equal(t, 128, run.GridPoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("complete", 320, 57, pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.CompleteRun(context.Background(), "run-1", &model.RunResult{APICalls: 320, PlacesFound: 57})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("complete", 0, 0, pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRun(context.Background(), "missing", &model.RunResult{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FailRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("failed", "provider unreachable", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.FailRun(context.Background(), "run-1", "provider unreachable")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	started := time.Now().UTC()
	completed := started.Add(5 * time.Minute)
	rows := pgxmock.NewRows([]string{
		"id", "category", "region", "status", "grid_points", "api_calls", "places_found", "error", "started_at", "completed_at",
	}).AddRow("run-1", "gastro", "zuerich", "complete", 64, 320, 57, nil, started, &completed)

	mock.ExpectQuery(`SELECT id, category, region, status`).
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "gastro", run.Category)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, 320, run.APICalls)
	require.NotNil(t, run.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, category, region, status`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_CategoryFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	started := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "category", "region", "status", "grid_points", "api_calls", "places_found", "error", "started_at", "completed_at",
	}).AddRow("run-1", "gastro", "zuerich", "running", 64, 0, 0, nil, started, nil)

	mock.ExpectQuery(`SELECT .+ FROM runs WHERE true AND category = \$1`).
		WithArgs("gastro", 100).
		WillReturnRows(rows)

	runs, err := s.ListRuns(context.Background(), RunFilter{Category: "gastro"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SavePlaces_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`ON CONFLICT`).
		WithArgs("run-1", "a", "Elektriker", 4.2, 150, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SavePlaces(context.Background(), "run-1", []model.Place{
		{ID: "a", Name: "Elektro Meier AG", Trade: "Elektriker", Rating: 4.2, ReviewCount: 150},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListPlaces(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	data, err := json.Marshal(model.Place{ID: "a", Name: "Bäckerei Café Müller", Trade: "Bäckerei", Rating: 4.5, ReviewCount: 210})
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"data"}).AddRow(data)
	mock.ExpectQuery(`SELECT data FROM run_places`).
		WithArgs("run-1").
		WillReturnRows(rows)

	places, err := s.ListPlaces(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Bäckerei Café Müller", places[0].Name)
	assert.Equal(t, "Bäckerei", places[0].Trade)
	assert.NoError(t, mock.ExpectationsWereMet())
}
