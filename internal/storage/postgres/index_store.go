// Package postgres persists the restaurant index in Postgres.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// DefaultTable holds one row per restaurant slug.
const DefaultTable = "restaurant_index"

// IndexStoreConfig controls the Postgres connection pool used for index rows.
type IndexStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// IndexStore upserts index entries into Postgres.
type IndexStore struct {
	pool  execCloser
	table string
}

// NewIndexStore connects a pool using cfg.
func NewIndexStore(ctx context.Context, cfg IndexStoreConfig) (*IndexStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("index.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &IndexStore{pool: pool, table: table}, nil
}

// NewIndexStoreWithPool constructs a store from an existing pool.
func NewIndexStoreWithPool(pool execCloser, table string) (*IndexStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &IndexStore{pool: pool, table: name}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = DefaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *IndexStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// UpsertEntries writes one row per entry keyed by slug. A later run replaces
// the row wholesale.
func (s *IndexStore) UpsertEntries(ctx context.Context, runID string, entries []restaurant.IndexEntry) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("index store is not configured")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	slug,
	name,
	brand,
	city,
	timezone,
	updated_at,
	artifact_paths,
	run_id
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8
)
ON CONFLICT (slug) DO UPDATE SET
	name = EXCLUDED.name,
	brand = EXCLUDED.brand,
	city = EXCLUDED.city,
	timezone = EXCLUDED.timezone,
	updated_at = EXCLUDED.updated_at,
	artifact_paths = EXCLUDED.artifact_paths,
	run_id = EXCLUDED.run_id`, s.table)

	for _, e := range entries {
		if e.Slug == "" {
			return fmt.Errorf("index entry %q has no slug", e.Name)
		}
		paths, err := json.Marshal(e.ArtifactPaths)
		if err != nil {
			return fmt.Errorf("marshal artifact paths: %w", err)
		}
		if _, err := s.pool.Exec(ctx, query,
			e.Slug,
			e.Name,
			e.Brand,
			e.City,
			e.Timezone,
			e.UpdatedAt,
			paths,
			runID,
		); err != nil {
			return fmt.Errorf("upsert index row %s: %w", e.Slug, err)
		}
	}
	return nil
}
