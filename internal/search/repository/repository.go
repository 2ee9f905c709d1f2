// Package repository persists search cache entries keyed by content hash.
// Entries are immutable once written: a later search overwrites wholesale.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tripgate_backend/internal/travel"
	"tripgate_backend/platform/apperr"
)

const cacheMissMessage = "cache entry not found"

// CacheEntry is one cached result set for a query hash.
type CacheEntry struct {
	Hash       string
	Capability travel.Capability
	Results    []travel.CanonicalResult
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Repo implements the search cache repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new search cache repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get retrieves a live entry. An expired row is a miss: it is never served
// past its expiry even before the sweeper removes it.
func (r *Repo) Get(ctx context.Context, hash string, capability travel.Capability) (CacheEntry, error) {
	query := `
		SELECT hash, capability, results_payload, created_at, expires_at
		FROM search_cache
		WHERE hash = $1 AND capability = $2 AND expires_at > now()`

	var entry CacheEntry
	var payload []byte
	if err := r.pool.QueryRow(ctx, query, hash, string(capability)).Scan(
		&entry.Hash, &entry.Capability, &payload, &entry.CreatedAt, &entry.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CacheEntry{}, apperr.NotFound(cacheMissMessage)
		}
		return CacheEntry{}, fmt.Errorf("get cache entry: %w", err)
	}

	if err := json.Unmarshal(payload, &entry.Results); err != nil {
		return CacheEntry{}, fmt.Errorf("decode cache payload: %w", err)
	}
	return entry, nil
}

// Put upserts an entry. Concurrent writers for the same hash may race;
// last-writer-wins is fine because equal queries within one TTL window are
// expected to produce equivalent result sets.
func (r *Repo) Put(ctx context.Context, entry CacheEntry) error {
	payload, err := json.Marshal(entry.Results)
	if err != nil {
		return fmt.Errorf("encode cache payload: %w", err)
	}

	query := `
		INSERT INTO search_cache (hash, capability, results_payload, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (hash) DO UPDATE
		SET capability = EXCLUDED.capability,
			results_payload = EXCLUDED.results_payload,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at`

	if _, err := r.pool.Exec(ctx, query, entry.Hash, string(entry.Capability), payload, entry.CreatedAt, entry.ExpiresAt); err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

// DeleteExpired removes rows past their expiry. Called by the sweep worker.
func (r *Repo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM search_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired cache entries: %w", err)
	}
	return result.RowsAffected(), nil
}
