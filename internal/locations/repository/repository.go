// Package repository persists location records: the vendor-neutral place
// codes learned, seeded or generated by the resolver.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tripgate_backend/platform/apperr"
)

const locationNotFoundMessage = "location not found"

// Provenance values for a location record.
const (
	ProvenanceSeed      = "seed"
	ProvenanceLearned   = "learned"
	ProvenanceGenerated = "generated"
)

// LocationRecord maps one normalized place name to its code.
type LocationRecord struct {
	RawName        string `json:"rawName"`
	NormalizedName string `json:"normalizedName"`
	Code           string `json:"code"`
	Country        string `json:"country,omitempty"`
	Provenance     string `json:"provenance"`
}

// Repo implements the location repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new location repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get retrieves a record by normalized name.
func (r *Repo) Get(ctx context.Context, normalizedName string) (LocationRecord, error) {
	query := `
		SELECT raw_name, normalized_name, code, country, provenance
		FROM locations
		WHERE normalized_name = $1`

	var rec LocationRecord
	if err := r.pool.QueryRow(ctx, query, normalizedName).Scan(
		&rec.RawName, &rec.NormalizedName, &rec.Code, &rec.Country, &rec.Provenance,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LocationRecord{}, apperr.NotFound(locationNotFoundMessage)
		}
		return LocationRecord{}, fmt.Errorf("get location: %w", err)
	}
	return rec, nil
}

// Insert writes a record if the normalized name is still free. The first
// successful insert wins; a concurrent loser gets the winner's record back.
func (r *Repo) Insert(ctx context.Context, rec LocationRecord) (LocationRecord, error) {
	query := `
		INSERT INTO locations (raw_name, normalized_name, code, country, provenance)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (normalized_name) DO NOTHING
		RETURNING raw_name, normalized_name, code, country, provenance`

	var inserted LocationRecord
	err := r.pool.QueryRow(ctx, query,
		rec.RawName, rec.NormalizedName, rec.Code, rec.Country, rec.Provenance,
	).Scan(&inserted.RawName, &inserted.NormalizedName, &inserted.Code, &inserted.Country, &inserted.Provenance)
	if err == nil {
		return inserted, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return LocationRecord{}, fmt.Errorf("insert location: %w", err)
	}

	// Conflict: another writer won the race. Return the existing record.
	return r.Get(ctx, rec.NormalizedName)
}

// Update overwrites the code and country of an existing record. This is the
// explicit administrative correction path; resolution never overwrites.
func (r *Repo) Update(ctx context.Context, normalizedName, code, country, provenance string) (LocationRecord, error) {
	query := `
		UPDATE locations
		SET code = $2, country = $3, provenance = $4, updated_at = now()
		WHERE normalized_name = $1
		RETURNING raw_name, normalized_name, code, country, provenance`

	var rec LocationRecord
	if err := r.pool.QueryRow(ctx, query, normalizedName, code, country, provenance).Scan(
		&rec.RawName, &rec.NormalizedName, &rec.Code, &rec.Country, &rec.Provenance,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LocationRecord{}, apperr.NotFound(locationNotFoundMessage)
		}
		return LocationRecord{}, fmt.Errorf("update location: %w", err)
	}
	return rec, nil
}
