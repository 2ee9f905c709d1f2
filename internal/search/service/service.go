// Package service implements the search orchestrator: validate, hash, cache
// lookup, location resolution, adapter fan-out, merge and cache write.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	locrepo "tripgate_backend/internal/locations/repository"
	"tripgate_backend/internal/providers"
	"tripgate_backend/internal/search/repository"
	"tripgate_backend/internal/travel"
	"tripgate_backend/platform/apperr"
	"tripgate_backend/platform/logger"
)

// CacheStore is the persistence surface the orchestrator needs.
type CacheStore interface {
	Get(ctx context.Context, hash string, capability travel.Capability) (repository.CacheEntry, error)
	Put(ctx context.Context, entry repository.CacheEntry) error
}

// Resolver maps free-text place names to codes.
type Resolver interface {
	Resolve(ctx context.Context, rawName string) (locrepo.LocationRecord, error)
}

// Result is one finished search.
type Result struct {
	Results            []travel.CanonicalResult
	Cached             bool
	ProvidersSucceeded int
	ProvidersFailed    int
}

// SearchError is surfaced when every adapter for a capability failed. It is
// never returned while at least one adapter produced results.
type SearchError struct {
	Capability travel.Capability
	Causes     []error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("all %s providers failed (%d causes)", e.Capability, len(e.Causes))
}

// Service is the search orchestrator.
type Service struct {
	cache    CacheStore
	resolver Resolver
	registry *providers.Registry
	log      *logger.Logger
	flight   singleflight.Group
}

// New creates the orchestrator.
func New(cache CacheStore, resolver Resolver, registry *providers.Registry, log *logger.Logger) *Service {
	return &Service{
		cache:    cache,
		resolver: resolver,
		registry: registry,
		log:      log,
	}
}

// Search runs the full state machine for one query. Steps are sequential
// except the adapter fan-out, whose sub-results may complete in any order
// but are all collected before merging.
func (s *Service) Search(ctx context.Context, query travel.SearchQuery) (Result, error) {
	start := time.Now()

	if err := query.Validate(time.Now()); err != nil {
		return Result{}, err
	}

	hash := QueryHash(query)

	entry, err := s.cache.Get(ctx, hash, query.Capability)
	switch {
	case err == nil && time.Now().Before(entry.ExpiresAt):
		s.log.CacheEvent("hit", hash, string(query.Capability))
		s.log.SearchCompleted(string(query.Capability), len(entry.Results), 0, 0, true, float64(time.Since(start).Milliseconds()))
		return Result{Results: entry.Results, Cached: true}, nil
	case err == nil:
		// The store filters expired rows on read; an entry that slips
		// through anyway is still a miss, never served past its expiry.
		s.log.CacheEvent("expired", hash, string(query.Capability))
	case !apperr.Is(err, apperr.KindNotFound):
		// A broken cache store degrades to a miss, never fails the search.
		s.log.Error("cache read failed", "hash", hash, "error", err)
	default:
		s.log.CacheEvent("miss", hash, string(query.Capability))
	}

	// Concurrent identical misses are coalesced: one upstream fan-out per
	// in-flight unique query.
	value, err, _ := s.flight.Do(hash, func() (interface{}, error) {
		return s.fanOut(ctx, query, hash)
	})
	if err != nil {
		return Result{}, err
	}

	result := value.(Result)
	s.log.SearchCompleted(string(query.Capability), len(result.Results), result.ProvidersSucceeded, result.ProvidersFailed, false, float64(time.Since(start).Milliseconds()))
	return result, nil
}

func (s *Service) fanOut(ctx context.Context, query travel.SearchQuery, hash string) (Result, error) {
	resolved, err := s.resolvePlaces(ctx, query)
	if err != nil {
		return Result{}, err
	}

	adapters := s.registry.ForCapability(query.Capability)
	if len(adapters) == 0 {
		return Result{}, apperr.Unavailable(fmt.Sprintf("no providers registered for %s", query.Capability))
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		collected []travel.CanonicalResult
		causes    []error
	)

	for _, adapter := range adapters {
		wg.Add(1)
		go func(adapter providers.Adapter) {
			defer wg.Done()
			results, err := adapter.Search(ctx, resolved)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				causes = append(causes, err)
				return
			}
			collected = append(collected, results...)
		}(adapter)
	}
	wg.Wait()

	succeeded := len(adapters) - len(causes)
	if succeeded == 0 {
		searchErr := &SearchError{Capability: query.Capability, Causes: causes}
		return Result{}, apperr.Wrap(apperr.KindUnavailable, searchErr.Error(), searchErr)
	}

	merged := Merge(query.Capability, collected)

	// A cancelled search must not write a cache entry.
	if ctx.Err() == nil {
		now := time.Now()
		entry := repository.CacheEntry{
			Hash:       hash,
			Capability: query.Capability,
			Results:    merged,
			CreatedAt:  now,
			ExpiresAt:  now.Add(query.Capability.ResultTTL()),
		}
		if err := s.cache.Put(ctx, entry); err != nil {
			s.log.Error("cache write failed", "hash", hash, "error", err)
		} else {
			s.log.CacheEvent("write", hash, string(query.Capability))
		}
	}

	return Result{
		Results:            merged,
		Cached:             false,
		ProvidersSucceeded: succeeded,
		ProvidersFailed:    len(causes),
	}, nil
}

func (s *Service) resolvePlaces(ctx context.Context, query travel.SearchQuery) (travel.SearchQuery, error) {
	names := query.PlaceNames()
	if len(names) == 0 {
		return query, nil
	}

	codes := make([]string, len(names))
	for i, name := range names {
		rec, err := s.resolver.Resolve(ctx, name)
		if err != nil {
			return travel.SearchQuery{}, err
		}
		codes[i] = rec.Code
	}
	return query.WithResolvedPlaces(codes), nil
}
