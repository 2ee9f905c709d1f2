package travel

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func validFlightQuery() SearchQuery {
	return SearchQuery{
		Capability:    CapabilityFlight,
		Origin:        "Amsterdam",
		Destination:   "Lisbon",
		DepartureDate: "2026-04-01",
		Adults:        2,
	}
}

func validHotelQuery() SearchQuery {
	return SearchQuery{
		Capability: CapabilityHotel,
		City:       "Lisbon",
		CheckIn:    "2026-04-01",
		CheckOut:   "2026-04-05",
		Rooms:      1,
		Adults:     2,
	}
}

func TestValidateAcceptsWellFormedQueries(t *testing.T) {
	queries := []SearchQuery{
		validFlightQuery(),
		validHotelQuery(),
		{Capability: CapabilityTransfer, Pickup: "Airport", Dropoff: "Hotel", Adults: 1},
		{Capability: CapabilityActivity, City: "Lisbon", Adults: 1},
	}

	for _, q := range queries {
		if err := q.Validate(testNow); err != nil {
			t.Fatalf("%s query unexpectedly invalid: %v", q.Capability, err)
		}
	}
}

func TestValidateRejectsBadQueries(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SearchQuery)
		base   SearchQuery
	}{
		{"unknown capability", func(q *SearchQuery) { q.Capability = "cruise" }, validFlightQuery()},
		{"zero adults", func(q *SearchQuery) { q.Adults = 0 }, validFlightQuery()},
		{"negative children", func(q *SearchQuery) { q.Children = -1 }, validFlightQuery()},
		{"missing origin", func(q *SearchQuery) { q.Origin = "" }, validFlightQuery()},
		{"malformed departure date", func(q *SearchQuery) { q.DepartureDate = "01-04-2026" }, validFlightQuery()},
		{"departure in the past", func(q *SearchQuery) { q.DepartureDate = "2026-03-01" }, validFlightQuery()},
		{"return before departure", func(q *SearchQuery) { q.ReturnDate = "2026-03-20" }, validFlightQuery()},
		{"missing city", func(q *SearchQuery) { q.City = "" }, validHotelQuery()},
		{"zero rooms", func(q *SearchQuery) { q.Rooms = 0 }, validHotelQuery()},
		{"checkout before checkin", func(q *SearchQuery) { q.CheckOut = "2026-03-30" }, validHotelQuery()},
		{"checkin equals checkout", func(q *SearchQuery) { q.CheckOut = "2026-04-01" }, validHotelQuery()},
	}

	for _, tc := range cases {
		q := tc.base
		tc.mutate(&q)
		if err := q.Validate(testNow); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestPlaceNamesRoundTripWithResolvedPlaces(t *testing.T) {
	q := validFlightQuery()
	names := q.PlaceNames()
	if len(names) != 2 || names[0] != "Amsterdam" || names[1] != "Lisbon" {
		t.Fatalf("unexpected place names: %v", names)
	}

	resolved := q.WithResolvedPlaces([]string{"AMS", "LIS"})
	if resolved.Origin != "AMS" || resolved.Destination != "LIS" {
		t.Fatalf("codes not applied: %+v", resolved)
	}
	if q.Origin != "Amsterdam" {
		t.Fatal("WithResolvedPlaces must not mutate the receiver")
	}

	h := validHotelQuery()
	hr := h.WithResolvedPlaces([]string{"LIS"})
	if hr.City != "LIS" {
		t.Fatalf("hotel city not resolved: %+v", hr)
	}
}

func TestResultTTLPerCapability(t *testing.T) {
	cases := map[Capability]time.Duration{
		CapabilityFlight:   15 * time.Minute,
		CapabilityHotel:    30 * time.Minute,
		CapabilityTransfer: time.Hour,
		CapabilityActivity: 24 * time.Hour,
	}
	for capability, want := range cases {
		if got := capability.ResultTTL(); got != want {
			t.Fatalf("%s: expected TTL %v, got %v", capability, want, got)
		}
	}
}
