package travel

import (
	"strings"
	"time"

	"tripgate_backend/platform/apperr"
)

// DateLayout is the wire format for travel dates.
const DateLayout = "2006-01-02"

// SearchQuery is a discriminated union keyed by Capability. Exactly one
// variant's required fields apply; Validate rejects the query before any
// network call when they are missing or inconsistent.
type SearchQuery struct {
	Capability Capability `json:"capability"`

	// Flight fields
	Origin        string `json:"origin,omitempty"`
	Destination   string `json:"destination,omitempty"`
	DepartureDate string `json:"departureDate,omitempty"`
	ReturnDate    string `json:"returnDate,omitempty"`
	CabinClass    string `json:"cabinClass,omitempty"`

	// Hotel fields
	City     string `json:"city,omitempty"`
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
	Rooms    int    `json:"rooms,omitempty"`

	// Transfer fields
	Pickup    string `json:"pickup,omitempty"`
	Dropoff   string `json:"dropoff,omitempty"`
	PickupAt  string `json:"pickupAt,omitempty"`

	// Activity fields
	Date string `json:"date,omitempty"`

	// Shared fields
	Adults   int    `json:"adults"`
	Children int    `json:"children,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// Validate enforces the per-capability required fields, date ordering and
// positive traveller counts. It is pure: no I/O, no mutation.
func (q SearchQuery) Validate(now time.Time) error {
	if !q.Capability.Valid() {
		return apperr.Validation("unknown capability")
	}
	if q.Adults < 1 {
		return apperr.Validation("at least one adult is required")
	}
	if q.Children < 0 {
		return apperr.Validation("children cannot be negative")
	}

	today := now.Truncate(24 * time.Hour)

	switch q.Capability {
	case CapabilityFlight:
		if strings.TrimSpace(q.Origin) == "" || strings.TrimSpace(q.Destination) == "" {
			return apperr.Validation("origin and destination are required")
		}
		dep, err := parseDate(q.DepartureDate)
		if err != nil {
			return apperr.Validation("departureDate must be formatted as YYYY-MM-DD")
		}
		if dep.Before(today) {
			return apperr.Validation("departureDate cannot be in the past")
		}
		if q.ReturnDate != "" {
			ret, err := parseDate(q.ReturnDate)
			if err != nil {
				return apperr.Validation("returnDate must be formatted as YYYY-MM-DD")
			}
			if ret.Before(dep) {
				return apperr.Validation("returnDate cannot precede departureDate")
			}
		}

	case CapabilityHotel:
		if strings.TrimSpace(q.City) == "" {
			return apperr.Validation("city is required")
		}
		if q.Rooms < 1 {
			return apperr.Validation("at least one room is required")
		}
		in, err := parseDate(q.CheckIn)
		if err != nil {
			return apperr.Validation("checkIn must be formatted as YYYY-MM-DD")
		}
		out, err := parseDate(q.CheckOut)
		if err != nil {
			return apperr.Validation("checkOut must be formatted as YYYY-MM-DD")
		}
		if !in.Before(out) {
			return apperr.Validation("checkIn must precede checkOut")
		}

	case CapabilityTransfer:
		if strings.TrimSpace(q.Pickup) == "" || strings.TrimSpace(q.Dropoff) == "" {
			return apperr.Validation("pickup and dropoff are required")
		}
		if q.PickupAt != "" {
			if _, err := time.Parse(time.RFC3339, q.PickupAt); err != nil {
				return apperr.Validation("pickupAt must be an RFC3339 timestamp")
			}
		}

	case CapabilityActivity:
		if strings.TrimSpace(q.City) == "" {
			return apperr.Validation("city is required")
		}
		if q.Date != "" {
			d, err := parseDate(q.Date)
			if err != nil {
				return apperr.Validation("date must be formatted as YYYY-MM-DD")
			}
			if d.Before(today) {
				return apperr.Validation("date cannot be in the past")
			}
		}
	}

	return nil
}

// PlaceNames returns the free-text place fields that need resolving to codes,
// in a fixed order per capability.
func (q SearchQuery) PlaceNames() []string {
	switch q.Capability {
	case CapabilityFlight:
		return []string{q.Origin, q.Destination}
	case CapabilityHotel, CapabilityActivity:
		return []string{q.City}
	case CapabilityTransfer:
		return []string{q.Pickup, q.Dropoff}
	}
	return nil
}

// WithResolvedPlaces returns a copy of the query with place fields replaced by
// the resolved codes, in the same order PlaceNames produced them.
func (q SearchQuery) WithResolvedPlaces(codes []string) SearchQuery {
	switch q.Capability {
	case CapabilityFlight:
		if len(codes) == 2 {
			q.Origin, q.Destination = codes[0], codes[1]
		}
	case CapabilityHotel, CapabilityActivity:
		if len(codes) == 1 {
			q.City = codes[0]
		}
	case CapabilityTransfer:
		if len(codes) == 2 {
			q.Pickup, q.Dropoff = codes[0], codes[1]
		}
	}
	return q
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}
