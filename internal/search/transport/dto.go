// Package transport defines HTTP request and response DTOs for search.
package transport

import (
	"tripgate_backend/internal/travel"
)

// SearchRequest is the POST /search payload. Capability-specific fields are
// optional at binding time; the domain validator enforces the per-capability
// required set so the error messages stay consistent across transports.
type SearchRequest struct {
	Capability string `json:"capability" validate:"required,oneof=flight hotel transfer activity"`

	Origin        string `json:"origin,omitempty"`
	Destination   string `json:"destination,omitempty"`
	DepartureDate string `json:"departureDate,omitempty"`
	ReturnDate    string `json:"returnDate,omitempty"`
	CabinClass    string `json:"cabinClass,omitempty" validate:"omitempty,oneof=economy premium_economy business first"`

	City     string `json:"city,omitempty"`
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
	Rooms    int    `json:"rooms,omitempty" validate:"omitempty,min=1,max=8"`

	Pickup   string `json:"pickup,omitempty"`
	Dropoff  string `json:"dropoff,omitempty"`
	PickupAt string `json:"pickupAt,omitempty"`

	Date string `json:"date,omitempty"`

	Adults   int    `json:"adults" validate:"required,min=1,max=9"`
	Children int    `json:"children,omitempty" validate:"omitempty,min=0,max=9"`
	Currency string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}

// ToQuery converts the request into the domain query.
func (r SearchRequest) ToQuery() travel.SearchQuery {
	return travel.SearchQuery{
		Capability:    travel.Capability(r.Capability),
		Origin:        r.Origin,
		Destination:   r.Destination,
		DepartureDate: r.DepartureDate,
		ReturnDate:    r.ReturnDate,
		CabinClass:    r.CabinClass,
		City:          r.City,
		CheckIn:       r.CheckIn,
		CheckOut:      r.CheckOut,
		Rooms:         r.Rooms,
		Pickup:        r.Pickup,
		Dropoff:       r.Dropoff,
		PickupAt:      r.PickupAt,
		Date:          r.Date,
		Adults:        r.Adults,
		Children:      r.Children,
		Currency:      r.Currency,
	}
}

// SearchResponse is the search result envelope.
type SearchResponse struct {
	Results            []travel.CanonicalResult `json:"results"`
	Count              int                      `json:"count"`
	Cached             bool                     `json:"cached"`
	ProvidersSucceeded int                      `json:"providersSucceeded,omitempty"`
	ProvidersFailed    int                      `json:"providersFailed,omitempty"`
}
