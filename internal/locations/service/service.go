// Package service implements location resolution: free-text place name to
// vendor-neutral code, backed by a persisted learn-cache. Resolution always
// succeeds; an unknown name gets a generated code rather than an error.
package service

import (
	"context"
	_ "embed"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"tripgate_backend/internal/locations/repository"
	"tripgate_backend/platform/apperr"
	"tripgate_backend/platform/logger"
)

//go:embed seeds.yaml
var seedData []byte

// Store is the persistence surface the resolver needs.
type Store interface {
	Get(ctx context.Context, normalizedName string) (repository.LocationRecord, error)
	Insert(ctx context.Context, rec repository.LocationRecord) (repository.LocationRecord, error)
	Update(ctx context.Context, normalizedName, code, country, provenance string) (repository.LocationRecord, error)
}

// Service resolves place names to codes.
type Service struct {
	store Store
	log   *logger.Logger
}

// New creates the location service.
func New(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

type seedEntry struct {
	Name    string `yaml:"name"`
	Code    string `yaml:"code"`
	Country string `yaml:"country"`
}

// SeedDefaults bulk-loads the curated seed dataset into the store. Existing
// records are never overwritten, so reruns are no-ops.
func (s *Service) SeedDefaults(ctx context.Context) error {
	var entries []seedEntry
	if err := yaml.Unmarshal(seedData, &entries); err != nil {
		return err
	}

	for _, entry := range entries {
		rec := repository.LocationRecord{
			RawName:        entry.Name,
			NormalizedName: NormalizeName(entry.Name),
			Code:           strings.ToUpper(entry.Code),
			Country:        entry.Country,
			Provenance:     repository.ProvenanceSeed,
		}
		if _, err := s.store.Insert(ctx, rec); err != nil {
			return err
		}
	}

	s.log.Info("location seeds loaded", "count", len(entries))
	return nil
}

// Resolve maps a free-text place name to its record. First hit wins:
// store lookup, then a generated 3-letter code persisted exactly once per
// normalized name. Already-code-like input (3 uppercase letters) passes
// through untouched.
func (s *Service) Resolve(ctx context.Context, rawName string) (repository.LocationRecord, error) {
	trimmed := strings.TrimSpace(rawName)
	if trimmed == "" {
		return repository.LocationRecord{}, apperr.Validation("place name is required")
	}

	if looksLikeCode(trimmed) {
		return repository.LocationRecord{
			RawName:        trimmed,
			NormalizedName: strings.ToLower(trimmed),
			Code:           strings.ToUpper(trimmed),
		}, nil
	}

	normalized := NormalizeName(trimmed)
	if normalized == "" {
		return repository.LocationRecord{}, apperr.Validation("place name has no resolvable characters")
	}

	rec, err := s.store.Get(ctx, normalized)
	if err == nil {
		return rec, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return repository.LocationRecord{}, err
	}

	generated := repository.LocationRecord{
		RawName:        trimmed,
		NormalizedName: normalized,
		Code:           GenerateCode(normalized),
		Provenance:     repository.ProvenanceGenerated,
	}
	// Insert is first-writer-wins; a concurrent resolver of the same name
	// gets the winner's record back.
	winner, err := s.store.Insert(ctx, generated)
	if err != nil {
		return repository.LocationRecord{}, err
	}

	if winner.Provenance == repository.ProvenanceGenerated && winner.Code == generated.Code {
		s.log.Info("generated location code", "name", normalized, "code", winner.Code)
	}
	return winner, nil
}

// Learn persists a vendor-confirmed code. Best effort: an existing record is
// never overwritten and failures only log.
func (s *Service) Learn(ctx context.Context, rawName, code, country string) {
	trimmed := strings.TrimSpace(rawName)
	code = strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" || code == "" {
		return
	}

	rec := repository.LocationRecord{
		RawName:        trimmed,
		NormalizedName: NormalizeName(trimmed),
		Code:           code,
		Country:        country,
		Provenance:     repository.ProvenanceLearned,
	}
	if _, err := s.store.Insert(ctx, rec); err != nil {
		s.log.Warn("location learn failed", "name", trimmed, "error", err)
	}
}

// Correct overwrites a record's code and country. This is the administrative
// repair path for a wrong generated code; results already cached under the
// old code age out via their TTL and are not rewritten.
func (s *Service) Correct(ctx context.Context, rawName, code, country string) (repository.LocationRecord, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return repository.LocationRecord{}, apperr.Validation("code is required")
	}

	normalized := NormalizeName(rawName)
	if normalized == "" {
		return repository.LocationRecord{}, apperr.Validation("place name is required")
	}

	rec, err := s.store.Update(ctx, normalized, code, country, repository.ProvenanceSeed)
	if err != nil {
		return repository.LocationRecord{}, err
	}

	s.log.Info("location corrected", "name", normalized, "code", code)
	return rec, nil
}

// NormalizeName lowercases, trims and strips diacritics from a place name.
func NormalizeName(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))

	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, lowered)
	if err != nil {
		stripped = lowered
	}

	return strings.Join(strings.Fields(stripped), " ")
}

// GenerateCode derives a 3-letter code from a normalized name. It cannot
// fail: short names are padded with X.
func GenerateCode(normalized string) string {
	var letters []rune
	for _, r := range normalized {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
			if len(letters) == 3 {
				break
			}
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return string(letters)
}

func looksLikeCode(value string) bool {
	if len(value) != 3 {
		return false
	}
	for _, r := range value {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
