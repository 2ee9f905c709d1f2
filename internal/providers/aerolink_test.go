package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tripgate_backend/platform/config"
	"tripgate_backend/platform/logger"
)

func TestAeroLinkGetDetailsEscapesOfferID(t *testing.T) {
	var tokenCalls int64
	var seenPath string

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/api/results/", func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "AL/2026-04-01#7",
			"airline": {"code": "TP", "name": "TAP"},
			"number": "842",
			"departure_at": "2026-04-01T09:00:00Z",
			"arrival_at": "2026-04-01T11:20:00Z",
			"connections": 0,
			"fare_total": 175,
			"fare_currency": "EUR",
			"seats_remaining": 3
		}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	creds := config.VendorCredentials{BaseURL: server.URL, ClientID: "id", ClientSecret: "secret"}
	adapter := NewAeroLink(creds, testProviderConfig{}, logger.New("development"))

	result, err := adapter.GetDetails(context.Background(), "AL/2026-04-01#7")
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}
	if seenPath != "/api/results/AL%2F2026-04-01%237" {
		t.Fatalf("offer id not escaped in request path, got %q", seenPath)
	}
	if result.ID != "AL/2026-04-01#7" || result.Provider != "aerolink" {
		t.Fatalf("unexpected normalized result: %+v", result)
	}
}
