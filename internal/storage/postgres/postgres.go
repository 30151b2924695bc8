// Package postgres stores battle presets and snapshots in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/battlesim/internal/config"
)

// pingTimeout bounds a single Ping.
const pingTimeout = 2 * time.Second

// Store owns the connection pool and the repositories built on it.
type Store struct {
	pool      *pgxpool.Pool
	Presets   *PresetRepository
	Snapshots *SnapshotRepository
}

// Open connects to the database described by cfg and verifies it answers.
//
// Postcondition: Returns a Store ready for queries, or a non-nil error with no
// connections left open.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	s := newStore(pool)
	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return s, nil
}

func newStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:      pool,
		Presets:   NewPresetRepository(pool),
		Snapshots: NewSnapshotRepository(pool),
	}
}

// Ping reports whether the database answers within pingTimeout.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (s *Store) Close() { s.pool.Close() }

// DB exposes the pool for maintenance queries.
func (s *Store) DB() *pgxpool.Pool { return s.pool }
