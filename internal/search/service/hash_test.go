package service

import (
	"testing"

	"tripgate_backend/internal/travel"
)

func TestQueryHashIsStableAndNormalized(t *testing.T) {
	a := travel.SearchQuery{
		Capability:    travel.CapabilityFlight,
		Origin:        "ams",
		Destination:   "LIS",
		DepartureDate: "2026-04-01",
		CabinClass:    "Economy",
		Adults:        2,
	}
	b := travel.SearchQuery{
		Capability:    travel.CapabilityFlight,
		Origin:        " AMS ",
		Destination:   "lis",
		DepartureDate: "2026-04-01",
		CabinClass:    "economy",
		Adults:        2,
	}

	if QueryHash(a) != QueryHash(b) {
		t.Fatal("equivalent queries must hash identically")
	}
}

func TestQueryHashDistinguishesQueries(t *testing.T) {
	base := travel.SearchQuery{
		Capability:    travel.CapabilityFlight,
		Origin:        "AMS",
		Destination:   "LIS",
		DepartureDate: "2026-04-01",
		Adults:        2,
	}

	changed := base
	changed.Adults = 3
	if QueryHash(base) == QueryHash(changed) {
		t.Fatal("different adult counts must hash differently")
	}

	otherDate := base
	otherDate.DepartureDate = "2026-04-02"
	if QueryHash(base) == QueryHash(otherDate) {
		t.Fatal("different dates must hash differently")
	}

	hotel := travel.SearchQuery{
		Capability: travel.CapabilityHotel,
		City:       "LIS",
		CheckIn:    "2026-04-01",
		CheckOut:   "2026-04-05",
		Rooms:      1,
		Adults:     2,
	}
	if QueryHash(base) == QueryHash(hotel) {
		t.Fatal("different capabilities must hash differently")
	}
}

func TestQueryHashIgnoresZeroCounts(t *testing.T) {
	withZero := travel.SearchQuery{
		Capability: travel.CapabilityActivity,
		City:       "LIS",
		Adults:     1,
		Children:   0,
	}
	withoutZero := travel.SearchQuery{
		Capability: travel.CapabilityActivity,
		City:       "LIS",
		Adults:     1,
	}

	if QueryHash(withZero) != QueryHash(withoutZero) {
		t.Fatal("zero-valued optional counts must not affect the hash")
	}
}
