package service

import (
	"context"
	"testing"

	"tripgate_backend/internal/locations/repository"
	"tripgate_backend/platform/apperr"
	"tripgate_backend/platform/logger"
)

type fakeStore struct {
	records map[string]repository.LocationRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]repository.LocationRecord)}
}

func (f *fakeStore) Get(_ context.Context, normalizedName string) (repository.LocationRecord, error) {
	rec, ok := f.records[normalizedName]
	if !ok {
		return repository.LocationRecord{}, apperr.NotFound("location not found")
	}
	return rec, nil
}

func (f *fakeStore) Insert(_ context.Context, rec repository.LocationRecord) (repository.LocationRecord, error) {
	if existing, ok := f.records[rec.NormalizedName]; ok {
		return existing, nil
	}
	f.records[rec.NormalizedName] = rec
	return rec, nil
}

func (f *fakeStore) Update(_ context.Context, normalizedName, code, country, provenance string) (repository.LocationRecord, error) {
	rec, ok := f.records[normalizedName]
	if !ok {
		return repository.LocationRecord{}, apperr.NotFound("location not found")
	}
	rec.Code = code
	rec.Country = country
	rec.Provenance = provenance
	f.records[normalizedName] = rec
	return rec, nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	return New(store, logger.New("development")), store
}

func TestResolveReturnsSeededRecord(t *testing.T) {
	svc, store := newTestService()
	store.records["cancun"] = repository.LocationRecord{
		RawName:        "Cancún",
		NormalizedName: "cancun",
		Code:           "CUN",
		Country:        "MX",
		Provenance:     repository.ProvenanceSeed,
	}

	rec, err := svc.Resolve(context.Background(), "Cancún")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if rec.Code != "CUN" {
		t.Fatalf("expected seeded code CUN, got %s", rec.Code)
	}

	// Diacritic-free spelling hits the same record.
	again, err := svc.Resolve(context.Background(), "  cancun ")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if again.Code != "CUN" {
		t.Fatalf("expected equivalent spelling to resolve to CUN, got %s", again.Code)
	}
}

func TestResolveGeneratesAndPersistsUnknownNames(t *testing.T) {
	svc, store := newTestService()

	rec, err := svc.Resolve(context.Background(), "Willemstad")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if rec.Code != "WIL" {
		t.Fatalf("expected generated code WIL, got %s", rec.Code)
	}
	if rec.Provenance != repository.ProvenanceGenerated {
		t.Fatalf("expected generated provenance, got %s", rec.Provenance)
	}
	if _, ok := store.records["willemstad"]; !ok {
		t.Fatal("generated record was not persisted")
	}

	// Second resolution returns the persisted record, not a fresh generation.
	again, err := svc.Resolve(context.Background(), "willemstad")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if again != rec {
		t.Fatalf("expected stable record across resolutions, got %+v vs %+v", again, rec)
	}
}

func TestResolvePassesThroughExistingCodes(t *testing.T) {
	svc, store := newTestService()

	rec, err := svc.Resolve(context.Background(), "AMS")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if rec.Code != "AMS" {
		t.Fatalf("expected passthrough code AMS, got %s", rec.Code)
	}
	if len(store.records) != 0 {
		t.Fatal("code passthrough must not write to the store")
	}
}

func TestResolveRejectsEmptyNames(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Resolve(context.Background(), "   "); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLearnNeverOverwrites(t *testing.T) {
	svc, store := newTestService()
	store.records["lisbon"] = repository.LocationRecord{
		NormalizedName: "lisbon",
		Code:           "LIS",
		Provenance:     repository.ProvenanceSeed,
	}

	svc.Learn(context.Background(), "Lisbon", "XXX", "PT")
	if store.records["lisbon"].Code != "LIS" {
		t.Fatal("learn overwrote an existing record")
	}

	svc.Learn(context.Background(), "Porto", "OPO", "PT")
	rec, ok := store.records["porto"]
	if !ok || rec.Code != "OPO" || rec.Provenance != repository.ProvenanceLearned {
		t.Fatalf("learn did not persist new record: %+v", rec)
	}
}

func TestCorrectOverwritesCode(t *testing.T) {
	svc, store := newTestService()
	store.records["willemstad"] = repository.LocationRecord{
		NormalizedName: "willemstad",
		Code:           "WIL",
		Provenance:     repository.ProvenanceGenerated,
	}

	rec, err := svc.Correct(context.Background(), "Willemstad", "cur", "CW")
	if err != nil {
		t.Fatalf("correct failed: %v", err)
	}
	if rec.Code != "CUR" {
		t.Fatalf("expected corrected code CUR, got %s", rec.Code)
	}
	if rec.Provenance != repository.ProvenanceSeed {
		t.Fatalf("expected corrected record to carry seed provenance, got %s", rec.Provenance)
	}

	if _, err := svc.Correct(context.Background(), "Nowhere", "NOW", ""); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unknown name, got %v", err)
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Cancún":          "cancun",
		"  SÃO   Paulo  ": "sao paulo",
		"Zürich":          "zurich",
		"new york":        "new york",
	}
	for input, want := range cases {
		if got := NormalizeName(input); got != want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestGenerateCode(t *testing.T) {
	cases := map[string]string{
		"willemstad": "WIL",
		"lo":         "LOX",
		"a":          "AXX",
		"st. moritz": "STM",
	}
	for input, want := range cases {
		if got := GenerateCode(input); got != want {
			t.Fatalf("GenerateCode(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	svc, store := newTestService()

	if err := svc.SeedDefaults(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	count := len(store.records)
	if count == 0 {
		t.Fatal("expected seeds to load records")
	}

	cancun, ok := store.records["cancun"]
	if !ok || cancun.Code != "CUN" {
		t.Fatalf("expected Cancún seed with code CUN, got %+v", cancun)
	}

	if err := svc.SeedDefaults(context.Background()); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if len(store.records) != count {
		t.Fatalf("rerun changed record count: %d vs %d", len(store.records), count)
	}
}
