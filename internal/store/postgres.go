package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/zurihub/places-cli/internal/db"
	"github.com/zurihub/places-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":   `INSERT INTO runs (id, category, region, status, grid_points, started_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"complete_run": `UPDATE runs SET status = $1, api_calls = $2, places_found = $3, completed_at = $4 WHERE id = $5`,
	"fail_run":     `UPDATE runs SET status = $1, error = $2, completed_at = $3 WHERE id = $4`,
	"get_run":      `SELECT id, category, region, status, grid_points, api_calls, places_found, error, started_at, completed_at FROM runs WHERE id = $1`,
	"insert_place": `INSERT INTO run_places (run_id, place_id, trade, rating, review_count, data) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (run_id, place_id) DO UPDATE SET trade = $3, rating = $4, review_count = $5, data = $6`,
	"list_places":  `SELECT data FROM run_places WHERE run_id = $1 ORDER BY rating DESC, review_count DESC`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by the tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	category     TEXT NOT NULL,
	region       TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	grid_points  INTEGER NOT NULL DEFAULT 0,
	api_calls    INTEGER NOT NULL DEFAULT 0,
	places_found INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS run_places (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	place_id     TEXT NOT NULL,
	trade        TEXT NOT NULL,
	rating       DOUBLE PRECISION NOT NULL,
	review_count INTEGER NOT NULL,
	data         JSONB NOT NULL,
	PRIMARY KEY (run_id, place_id)
);

CREATE INDEX IF NOT EXISTS idx_runs_category ON runs(category);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_run_places_trade ON run_places(run_id, trade);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, category, region string, gridPoints int) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, category, region, status, grid_points, started_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, category, region, string(model.RunStatusRunning), gridPoints, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:         id,
		Category:   category,
		Region:     region,
		Status:     model.RunStatusRunning,
		GridPoints: gridPoints,
		StartedAt:  now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result *model.RunResult) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, api_calls = $2, places_found = $3, completed_at = $4 WHERE id = $5`,
		string(model.RunStatusComplete), result.APICalls, result.PlacesFound, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, completed_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), message, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	var status string
	var errMsg *string
	var completedAt *time.Time

	err := s.pool.QueryRow(ctx,
		`SELECT id, category, region, status, grid_points, api_calls, places_found, error, started_at, completed_at
		 FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Category, &r.Region, &status, &r.GridPoints, &r.APICalls, &r.PlacesFound, &errMsg, &r.StartedAt, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("run not found: %s", runID)
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	r.Status = model.RunStatus(status)
	if errMsg != nil {
		r.Error = *errMsg
	}
	r.CompletedAt = completedAt
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, category, region, status, grid_points, api_calls, places_found, error, started_at, completed_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, argIdx)
		args = append(args, filter.Category)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var status string
		var errMsg *string
		var completedAt *time.Time

		if err := rows.Scan(&r.ID, &r.Category, &r.Region, &status, &r.GridPoints, &r.APICalls, &r.PlacesFound, &errMsg, &r.StartedAt, &completedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Status = model.RunStatus(status)
		if errMsg != nil {
			r.Error = *errMsg
		}
		r.CompletedAt = completedAt
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SavePlaces(ctx context.Context, runID string, places []model.Place) error {
	for _, p := range places {
		data, err := json.Marshal(p)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal place %s", p.ID)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO run_places (run_id, place_id, trade, rating, review_count, data)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (run_id, place_id) DO UPDATE SET trade = $3, rating = $4, review_count = $5, data = $6`,
			runID, p.ID, p.Trade, p.Rating, p.ReviewCount, data,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert place %s", p.ID)
		}
	}
	return nil
}

func (s *PostgresStore) ListPlaces(ctx context.Context, runID string) ([]model.Place, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM run_places WHERE run_id = $1 ORDER BY rating DESC, review_count DESC`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list places for run %s", runID)
	}
	defer rows.Close()

	var places []model.Place
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan place")
		}
		var p model.Place
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal place")
		}
		places = append(places, p)
	}
	return places, eris.Wrap(rows.Err(), "postgres: list places iterate")
}
