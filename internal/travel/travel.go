// Package travel defines the canonical query and result model shared by the
// search orchestrator, the supplier adapters and the HTTP transport layer.
package travel

import (
	"encoding/json"
	"time"
)

// Capability is the search domain a query or result belongs to.
type Capability string

const (
	CapabilityFlight   Capability = "flight"
	CapabilityHotel    Capability = "hotel"
	CapabilityTransfer Capability = "transfer"
	CapabilityActivity Capability = "activity"
)

// Valid reports whether the capability is one of the known domains.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityFlight, CapabilityHotel, CapabilityTransfer, CapabilityActivity:
		return true
	}
	return false
}

// ResultTTL returns how long a normalized result for this capability may be
// served before it must be refreshed. Flight prices move fast, activity
// inventory barely moves at all.
func (c Capability) ResultTTL() time.Duration {
	switch c {
	case CapabilityFlight:
		return 15 * time.Minute
	case CapabilityHotel:
		return 30 * time.Minute
	case CapabilityTransfer:
		return time.Hour
	case CapabilityActivity:
		return 24 * time.Hour
	}
	return 15 * time.Minute
}

// Money is a price in a single currency.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// CanonicalResult is the vendor-neutral representation of one offer.
// Raw retains the supplier payload for later booking callbacks and audit;
// it is never re-parsed by the core.
type CanonicalResult struct {
	ID         string          `json:"id"`
	Provider   string          `json:"provider"`
	Capability Capability      `json:"capability"`
	Price      Money           `json:"price"`
	ExpiresAt  time.Time       `json:"expiresAt"`
	Flight     *FlightDetails  `json:"flight,omitempty"`
	Hotel      *HotelDetails   `json:"hotel,omitempty"`
	Transfer   *TransferDetails `json:"transfer,omitempty"`
	Activity   *ActivityDetails `json:"activity,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

// FlightDetails is the normalized per-capability variant for flights.
type FlightDetails struct {
	Carrier       string    `json:"carrier"`
	FlightNumber  string    `json:"flightNumber"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departureTime"`
	ArrivalTime   time.Time `json:"arrivalTime"`
	Stops         int       `json:"stops"`
	CabinClass    string    `json:"cabinClass,omitempty"`
	SeatsLeft     int       `json:"seatsLeft,omitempty"`
}

// HotelDetails is the normalized per-capability variant for hotels.
type HotelDetails struct {
	Name      string  `json:"name"`
	CityCode  string  `json:"cityCode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Stars     int     `json:"stars,omitempty"`
	RoomType  string  `json:"roomType,omitempty"`
	Board     string  `json:"board,omitempty"`
}

// TransferDetails is the normalized per-capability variant for ground transfers.
type TransferDetails struct {
	Pickup      string `json:"pickup"`
	Dropoff     string `json:"dropoff"`
	VehicleType string `json:"vehicleType"`
	MaxPax      int    `json:"maxPax"`
}

// ActivityDetails is the normalized per-capability variant for activities.
type ActivityDetails struct {
	Title           string  `json:"title"`
	CityCode        string  `json:"cityCode"`
	DurationMinutes int     `json:"durationMinutes,omitempty"`
	Rating          float64 `json:"rating,omitempty"`
}

// BookingStatus is the tri-state outcome of a booking attempt.
type BookingStatus string

const (
	// BookingConfirmed means the supplier committed the booking synchronously.
	BookingConfirmed BookingStatus = "confirmed"
	// BookingPending means the supplier acknowledged but confirmation is async.
	BookingPending BookingStatus = "pending"
	// BookingRedirect means the supplier offers no API booking. The caller gets
	// a deep link, inventory is not held, and no cancellation path exists.
	BookingRedirect BookingStatus = "redirect"
)

// Confirmation is the outcome of CreateBooking.
type Confirmation struct {
	Reference   string          `json:"reference"`
	Provider    string          `json:"provider"`
	Status      BookingStatus   `json:"status"`
	RedirectURL string          `json:"redirectUrl,omitempty"`
	Raw         json.RawMessage `json:"-"`
}

// CancellationResult is the outcome of CancelBooking.
type CancellationResult struct {
	Reference string `json:"reference"`
	Cancelled bool   `json:"cancelled"`
	Note      string `json:"note,omitempty"`
}

// BookingRequest carries the data needed to hand a booking off to a supplier.
type BookingRequest struct {
	OfferID    string            `json:"offerId"`
	Capability Capability        `json:"capability"`
	Provider   string            `json:"provider"`
	Contact    BookingContact    `json:"contact"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// BookingContact identifies the lead traveller for a booking.
type BookingContact struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}
