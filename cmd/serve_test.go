package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zurihub/places-cli/internal/category"
	"github.com/zurihub/places-cli/internal/model"
	"github.com/zurihub/places-cli/internal/snapshot"
	"github.com/zurihub/places-cli/internal/store"
)

func newTestRouter(t *testing.T) (http.Handler, *snapshot.Writer, *store.SQLiteStore) {
	t.Helper()
	writer, err := snapshot.NewWriter(t.TempDir())
	require.NoError(t, err)

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	return newRouter(category.Default(), writer, st), writer, st
}

func TestRouter_Health(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Categories(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var cats []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cats))
	require.Len(t, cats, 2)
	assert.Equal(t, "gastro", cats[0]["key"])
	assert.Equal(t, "handwerker", cats[1]["key"])
	assert.EqualValues(t, 100, cats[0]["min_reviews"])
}

func TestRouter_Snapshot(t *testing.T) {
	router, writer, _ := newTestRouter(t)

	doc := snapshot.Document{
		Metadata: snapshot.Metadata{
			Generated:    time.Now().UTC(),
			MinReviews:   100,
			Region:       "zuerich",
			Category:     "gastro",
			TotalResults: 1,
		},
		Rankings: map[string]model.Leaderboard{},
		Places: []model.Place{
			{ID: "a", Name: "Bäckerei Café Müller", Trade: "Bäckerei", Rating: 4.5, ReviewCount: 210},
		},
	}
	_, err := writer.WriteCategory(doc)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/snapshots/gastro", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got snapshot.Document
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Places, 1)
	assert.Equal(t, "Bäckerei Café Müller", got.Places[0].Name)
}

func TestRouter_Snapshot_UnknownCategory(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/snapshots/florist", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_Snapshot_NotYetCanvassed(t *testing.T) {
	router, _, _ := newTestRouter(t)

	// Known category, but no snapshot written yet.
	req := httptest.NewRequest(http.MethodGet, "/api/snapshots/gastro", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_Runs(t *testing.T) {
	router, _, st := newTestRouter(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "gastro", "zuerich", 64)
	require.NoError(t, err)
	require.NoError(t, st.CompleteRun(ctx, run.ID, &model.RunResult{APICalls: 320, PlacesFound: 57}))

	req := httptest.NewRequest(http.MethodGet, "/api/runs?category=gastro", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var runs []model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
}

func TestRouter_Runs_Empty(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}
