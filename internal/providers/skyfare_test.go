package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tripgate_backend/internal/travel"
	"tripgate_backend/platform/config"
	"tripgate_backend/platform/logger"
)

func newTestSkyFare(t *testing.T, handler http.Handler) (*SkyFare, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	var tokenCalls int64
	mux.HandleFunc("/oauth2/token", tokenHandler(&tokenCalls))
	mux.Handle("/", handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	creds := config.VendorCredentials{BaseURL: server.URL, ClientID: "id", ClientSecret: "secret"}
	return NewSkyFare(creds, testProviderConfig{}, logger.New("development")), server
}

func TestSkyFareSearchNormalizesOffers(t *testing.T) {
	payload := `{
		"offers": [
			{
				"offer_id": "SF-1",
				"carrier": "KL",
				"flight_no": "KL1693",
				"depart": "2026-04-01T08:30:00Z",
				"arrive": "2026-04-01T11:05:00Z",
				"stops": 0,
				"cabin": "economy",
				"seats": 4,
				"price": {"total": 189.50, "currency": "EUR"}
			},
			{
				"offer_id": "",
				"carrier": "KL",
				"depart": "2026-04-01T08:30:00Z",
				"arrive": "2026-04-01T11:05:00Z",
				"price": {"total": 99, "currency": "EUR"}
			},
			{
				"offer_id": "SF-3",
				"depart": "not-a-time",
				"arrive": "2026-04-01T11:05:00Z",
				"price": {"total": 120, "currency": "EUR"}
			}
		]
	}`

	adapter, _ := newTestSkyFare(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/flights/search" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("origin"); got != "AMS" {
			t.Fatalf("expected origin AMS, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))

	query := travel.SearchQuery{
		Capability:    travel.CapabilityFlight,
		Origin:        "AMS",
		Destination:   "LIS",
		DepartureDate: "2026-04-01",
		Adults:        2,
	}
	results, err := adapter.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	// Malformed offers are skipped, not fatal.
	if len(results) != 1 {
		t.Fatalf("expected 1 usable offer, got %d", len(results))
	}

	offer := results[0]
	if offer.ID != "SF-1" || offer.Provider != "skyfare" {
		t.Fatalf("unexpected identity: %+v", offer)
	}
	if offer.Price.Amount != 189.50 || offer.Price.Currency != "EUR" {
		t.Fatalf("unexpected price: %+v", offer.Price)
	}
	if offer.Flight == nil || offer.Flight.Carrier != "KL" || offer.Flight.Stops != 0 {
		t.Fatalf("unexpected flight details: %+v", offer.Flight)
	}
	if offer.Flight.Origin != "AMS" || offer.Flight.Destination != "LIS" {
		t.Fatalf("query places not carried into details: %+v", offer.Flight)
	}
	if len(offer.Raw) == 0 {
		t.Fatal("expected the vendor payload to be retained")
	}
	if offer.ExpiresAt.IsZero() {
		t.Fatal("expected an expiry derived from the capability TTL")
	}
}

func TestSkyFareSearchRejectsIncompleteQuery(t *testing.T) {
	adapter, _ := newTestSkyFare(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an invalid query")
	}))

	query := travel.SearchQuery{Capability: travel.CapabilityFlight, Origin: "AMS", Adults: 1}
	_, err := adapter.Search(context.Background(), query)
	if !IsKind(err, ErrKindRejected) {
		t.Fatalf("expected rejected error, got %v", err)
	}
}

func TestSkyFareBookingStatusMapping(t *testing.T) {
	cases := []struct {
		state string
		want  travel.BookingStatus
	}{
		{"CONFIRMED", travel.BookingConfirmed},
		{"ON_REQUEST", travel.BookingPending},
	}

	for _, tc := range cases {
		adapter, _ := newTestSkyFare(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/bookings" || r.Method != http.MethodPost {
				t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"booking_ref":"BR-9","state":"` + tc.state + `"}`))
		}))

		conf, err := adapter.CreateBooking(context.Background(), travel.BookingRequest{
			OfferID: "SF-1",
			Contact: travel.BookingContact{FullName: "A Traveller", Email: "a@example.com"},
		})
		if err != nil {
			t.Fatalf("booking failed for state %s: %v", tc.state, err)
		}
		if conf.Status != tc.want {
			t.Fatalf("state %s: expected status %s, got %s", tc.state, tc.want, conf.Status)
		}
		if conf.Reference != "BR-9" {
			t.Fatalf("unexpected reference %s", conf.Reference)
		}
	}
}
