package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tripgate_backend/internal/travel"
	"tripgate_backend/platform/config"
	"tripgate_backend/platform/logger"
)

type recordingLearner struct {
	name, code, country string
	calls               int
}

func (r *recordingLearner) Learn(_ context.Context, rawName, code, country string) {
	r.name, r.code, r.country = rawName, code, country
	r.calls++
}

func TestStayHubTwoPhaseSearchBoundsAndLearns(t *testing.T) {
	var tokenCalls int64
	propertyIDs := make([]string, 80)
	for i := range propertyIDs {
		propertyIDs[i] = fmt.Sprintf("p%d", i)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/v2/locations/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/properties") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"city":         map[string]string{"code": "LIS", "name": "Lisbon", "country": "PT"},
			"property_ids": propertyIDs,
		})
	})
	var offersBody struct {
		PropertyIDs []string `json:"property_ids"`
	}
	mux.HandleFunc("/v2/offers", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&offersBody); err != nil {
			t.Errorf("decode offers body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"offers":[
			{"offer_id":"o1","property":{"name":"Hotel Mar","lat":38.72,"lng":-9.13,"stars":4},"room":"double","board":"bb","total_price":140,"currency":"EUR"}
		]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	creds := config.VendorCredentials{BaseURL: server.URL, ClientID: "id", ClientSecret: "secret"}
	adapter := NewStayHub(creds, testProviderConfig{}, 50, logger.New("development"))
	learner := &recordingLearner{}
	adapter.SetLocationLearner(learner)

	query := travel.SearchQuery{
		Capability: travel.CapabilityHotel,
		City:       "Lisbon",
		CheckIn:    "2026-04-01",
		CheckOut:   "2026-04-05",
		Rooms:      1,
		Adults:     2,
	}
	results, err := adapter.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(offersBody.PropertyIDs) != 50 {
		t.Fatalf("expected offers request bounded to 50 property ids, got %d", len(offersBody.PropertyIDs))
	}
	if learner.calls != 1 || learner.code != "LIS" || learner.country != "PT" {
		t.Fatalf("expected one learn callback with the vendor city code, got %+v", learner)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(results))
	}
	hotel := results[0]
	if hotel.Hotel == nil || hotel.Hotel.Name != "Hotel Mar" || hotel.Price.Amount != 140 {
		t.Fatalf("unexpected normalized offer: %+v", hotel)
	}
}

func TestStayHubEmptyCityReturnsNoResults(t *testing.T) {
	var tokenCalls int64
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/v2/locations/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"city":{"code":"","name":"","country":""},"property_ids":[]}`))
	})
	mux.HandleFunc("/v2/offers", func(w http.ResponseWriter, r *http.Request) {
		t.Error("offers must not be requested when the city has no properties")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	creds := config.VendorCredentials{BaseURL: server.URL, ClientID: "id", ClientSecret: "secret"}
	adapter := NewStayHub(creds, testProviderConfig{}, 50, logger.New("development"))

	query := travel.SearchQuery{
		Capability: travel.CapabilityHotel,
		City:       "Nowhere",
		CheckIn:    "2026-04-01",
		CheckOut:   "2026-04-05",
		Rooms:      1,
		Adults:     2,
	}
	results, err := adapter.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
