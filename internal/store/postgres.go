package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leomayn/planner/internal/planner"
)

// PostgresStore is a ReportStore backed by a PostgreSQL connection pool.
// Expiry is enforced at read time; expired rows are deleted lazily.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres establishes a connection pool and ensures the reports
// table exists.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS planner_reports (
			key        TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure reports table: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Put upserts the record with an absolute expiry.
func (s *PostgresStore) Put(ctx context.Context, id string, rec *planner.StoredReport, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	expiresAt := time.Now().Add(ttl)
	_, err = s.pool.Exec(ctx,
		`INSERT INTO planner_reports (key, payload, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET payload = $2, created_at = NOW(), expires_at = $3`,
		Key(id), payload, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Get returns the live record for the identifier, or ErrNotFound. A row past
// its expiry is deleted and reported as missing.
func (s *PostgresStore) Get(ctx context.Context, id string) (*planner.StoredReport, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM planner_reports WHERE key = $1 AND expires_at > NOW()`,
		Key(id),
	).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Sweep the expired row if one is lingering.
			_, _ = s.pool.Exec(ctx,
				`DELETE FROM planner_reports WHERE key = $1 AND expires_at <= NOW()`, Key(id))
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var rec planner.StoredReport
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &rec, nil
}
