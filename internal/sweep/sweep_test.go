package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zurihub/places-cli/internal/category"
	"github.com/zurihub/places-cli/internal/geo"
	"github.com/zurihub/places-cli/pkg/places"
)

// fakeProvider answers TextSearch from a user-supplied function and records
// every request it sees.
type fakeProvider struct {
	mu      sync.Mutex
	calls   []places.TextSearchRequest
	respond func(req places.TextSearchRequest) (*places.TextSearchResponse, error)
}

func (f *fakeProvider) TextSearch(_ context.Context, req places.TextSearchRequest) (*places.TextSearchResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.respond == nil {
		return &places.TextSearchResponse{}, nil
	}
	return f.respond(req)
}

func (f *fakeProvider) PhotoURL(name string, maxWidthPx int) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf("https://photos.test/%s?w=%d", name, maxWidthPx)
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testCategory() category.Category {
	return category.Category{
		Key:          "gastro",
		MinReviews:   100,
		DefaultLabel: "Restaurant",
		Queries:      []category.QuerySpec{{Text: "Restaurant"}},
		Rules: []category.Rule{
			{Label: "Bar", Keywords: []string{"bar"}},
		},
	}
}

func fastConfig() Config {
	return Config{RateLimit: 10000, RateLimitPause: time.Millisecond}
}

func record(id string, rating float64, reviews int) places.Place {
	return places.Place{
		ID:              id,
		DisplayName:     places.LocalizedText{Text: "Testbetrieb " + id},
		Rating:          rating,
		UserRatingCount: reviews,
	}
}

func TestSweep_OneCallPerQueryAndPoint(t *testing.T) {
	provider := &fakeProvider{}
	cat := testCategory()
	cat.Queries = []category.QuerySpec{{Text: "Restaurant"}, {Text: "Bar"}, {Text: "Café"}}
	grid := []geo.Point{{Lat: 47.1, Lng: 8.4}, {Lat: 47.2, Lng: 8.4}}

	s := New(provider, fastConfig())
	_, stats, err := s.Sweep(context.Background(), cat, grid)

	require.NoError(t, err)
	assert.Equal(t, 6, provider.callCount(), "|queries| x |grid| calls")
	assert.Equal(t, int64(6), stats.APICalls.Load())
}

func TestSweep_FirstWriterWins(t *testing.T) {
	// The same place id is discovered with rating 5 via query A, then with
	// rating 1 via query B. The first normalized record is kept.
	provider := &fakeProvider{
		respond: func(req places.TextSearchRequest) (*places.TextSearchResponse, error) {
			switch req.Query {
			case "A":
				return &places.TextSearchResponse{Places: []places.Place{record("dup", 5, 200)}}, nil
			default:
				return &places.TextSearchResponse{Places: []places.Place{record("dup", 1, 200)}}, nil
			}
		},
	}
	cat := testCategory()
	cat.Queries = []category.QuerySpec{{Text: "A"}, {Text: "B"}}

	s := New(provider, fastConfig())
	found, _, err := s.Sweep(context.Background(), cat, []geo.Point{{Lat: 47, Lng: 8}})

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.InDelta(t, 5.0, found["dup"].Rating, 0.001)
}

func TestSweep_DedupAcrossGridPoints(t *testing.T) {
	provider := &fakeProvider{
		respond: func(places.TextSearchRequest) (*places.TextSearchResponse, error) {
			return &places.TextSearchResponse{Places: []places.Place{record("same", 4.2, 150)}}, nil
		},
	}

	s := New(provider, fastConfig())
	found, _, err := s.Sweep(context.Background(), testCategory(), []geo.Point{
		{Lat: 47.1, Lng: 8.4}, {Lat: 47.2, Lng: 8.5}, {Lat: 47.3, Lng: 8.6},
	})

	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestSweep_ThresholdEnforced(t *testing.T) {
	provider := &fakeProvider{
		respond: func(places.TextSearchRequest) (*places.TextSearchResponse, error) {
			return &places.TextSearchResponse{Places: []places.Place{
				record("kept", 4.0, 100),
				record("dropped", 5.0, 99),
			}}, nil
		},
	}

	s := New(provider, fastConfig())
	found, stats, err := s.Sweep(context.Background(), testCategory(), []geo.Point{{Lat: 47, Lng: 8}})

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Contains(t, found, "kept")
	assert.Equal(t, int64(1), stats.Skipped.Load())
	for _, p := range found {
		assert.GreaterOrEqual(t, p.ReviewCount, 100)
	}
}

func TestSweep_FailuresAreLocal(t *testing.T) {
	// The middle grid point fails with a transport error; the other points
	// still contribute their records.
	provider := &fakeProvider{
		respond: func(req places.TextSearchRequest) (*places.TextSearchResponse, error) {
			if req.Lat == 47.2 {
				return nil, &places.Failure{Kind: places.FailureTransport, Err: errors.New("boom")}
			}
			return &places.TextSearchResponse{Places: []places.Place{
				record(fmt.Sprintf("p-%.1f", req.Lat), 4.0, 150),
			}}, nil
		},
	}

	s := New(provider, fastConfig())
	found, stats, err := s.Sweep(context.Background(), testCategory(), []geo.Point{
		{Lat: 47.1, Lng: 8.4}, {Lat: 47.2, Lng: 8.4}, {Lat: 47.3, Lng: 8.4},
	})

	require.NoError(t, err, "a failing call never aborts the sweep")
	assert.Len(t, found, 2)
	assert.Equal(t, int64(1), stats.Transport.Load())
	assert.Equal(t, int64(3), stats.APICalls.Load(), "the failed call is not retried")
}

func TestSweep_RateLimitedPausesAndContinues(t *testing.T) {
	var calls int
	var mu sync.Mutex
	provider := &fakeProvider{}
	provider.respond = func(places.TextSearchRequest) (*places.TextSearchResponse, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			return nil, &places.Failure{Kind: places.FailureRateLimited, StatusCode: 429, Err: errors.New("quota")}
		}
		return &places.TextSearchResponse{Places: []places.Place{record("ok", 4.0, 150)}}, nil
	}

	s := New(provider, fastConfig())
	found, stats, err := s.Sweep(context.Background(), testCategory(), []geo.Point{
		{Lat: 47.1, Lng: 8.4}, {Lat: 47.2, Lng: 8.4},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.RateLimited.Load())
	assert.Len(t, found, 1, "records for the rate-limited point stay empty")
}

func TestSweep_MalformedCounted(t *testing.T) {
	provider := &fakeProvider{
		respond: func(places.TextSearchRequest) (*places.TextSearchResponse, error) {
			return nil, &places.Failure{Kind: places.FailureMalformed, Err: errors.New("bad json")}
		},
	}

	s := New(provider, fastConfig())
	found, stats, err := s.Sweep(context.Background(), testCategory(), []geo.Point{{Lat: 47, Lng: 8}})

	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, int64(1), stats.Malformed.Load())
}

func TestSweep_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &fakeProvider{}
	s := New(provider, fastConfig())
	_, _, err := s.Sweep(ctx, testCategory(), []geo.Point{{Lat: 47, Lng: 8}})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweep_ConcurrentFanOut(t *testing.T) {
	provider := &fakeProvider{
		respond: func(req places.TextSearchRequest) (*places.TextSearchResponse, error) {
			return &places.TextSearchResponse{Places: []places.Place{
				record(fmt.Sprintf("p-%.2f", req.Lat), 4.0, 150),
			}}, nil
		},
	}

	cfg := fastConfig()
	cfg.Concurrency = 8
	s := New(provider, cfg)

	var grid []geo.Point
	for i := 0; i < 40; i++ {
		grid = append(grid, geo.Point{Lat: 47 + float64(i)/100, Lng: 8.5})
	}

	found, stats, err := s.Sweep(context.Background(), testCategory(), grid)

	require.NoError(t, err)
	assert.Len(t, found, 40)
	assert.Equal(t, int64(40), stats.APICalls.Load())
}

func TestNormalize_Defaults(t *testing.T) {
	s := New(&fakeProvider{}, fastConfig())
	stats := &Stats{}

	raw := places.Place{
		ID:              "x1",
		UserRatingCount: 120,
		Photos: []places.Photo{
			{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"},
		},
	}
	place, ok := s.normalize(raw, testCategory(), stats)

	require.True(t, ok)
	assert.Equal(t, "Unbekannt", place.Name, "missing display name gets the placeholder")
	assert.Equal(t, 0.0, place.Rating, "missing rating defaults to zero")
	assert.Equal(t, "https://www.google.com/maps/place/?q=place_id:x1", place.MapsURL)
	assert.Equal(t, "OPERATIONAL", place.BusinessStatus)
	assert.Len(t, place.PhotoURLs, 3, "photo references are capped at three")
}

func TestNormalize_DropsRecordWithoutID(t *testing.T) {
	s := New(&fakeProvider{}, fastConfig())

	_, ok := s.normalize(places.Place{UserRatingCount: 500}, testCategory(), &Stats{})
	assert.False(t, ok)
}

func TestNormalize_AssignsTrade(t *testing.T) {
	s := New(&fakeProvider{}, fastConfig())

	raw := places.Place{
		ID:              "b1",
		DisplayName:     places.LocalizedText{Text: "Hemingway Bar"},
		UserRatingCount: 200,
	}
	place, ok := s.normalize(raw, testCategory(), &Stats{})

	require.True(t, ok)
	assert.Equal(t, "Bar", place.Trade)
}
