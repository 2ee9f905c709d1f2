package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"tripgate_backend/internal/travel"
	"tripgate_backend/platform/config"
	"tripgate_backend/platform/logger"
)

// SkyFare is the primary flight supplier. OAuth2 client credentials,
// GET-based search, synchronous booking commitment.
type SkyFare struct {
	Base
}

// NewSkyFare creates the SkyFare flight adapter.
func NewSkyFare(creds config.VendorCredentials, cfg config.ProviderConfig, log *logger.Logger) *SkyFare {
	return &SkyFare{Base: NewBase("skyfare", travel.CapabilityFlight, creds, cfg, log)}
}

// skyFareOffer is SkyFare's wire shape for one flight offer.
type skyFareOffer struct {
	OfferID  string `json:"offer_id"`
	Carrier  string `json:"carrier"`
	FlightNo string `json:"flight_no"`
	Depart   string `json:"depart"`
	Arrive   string `json:"arrive"`
	Stops    int    `json:"stops"`
	Cabin    string `json:"cabin"`
	Seats    int    `json:"seats"`
	Price    struct {
		Total    float64 `json:"total"`
		Currency string  `json:"currency"`
	} `json:"price"`
}

// Search queries SkyFare and normalizes its offers.
func (s *SkyFare) Search(ctx context.Context, query travel.SearchQuery) ([]travel.CanonicalResult, error) {
	if err := s.validateRequired("search", map[string]string{
		"origin":        query.Origin,
		"destination":   query.Destination,
		"departureDate": query.DepartureDate,
	}); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("origin", query.Origin)
	params.Set("destination", query.Destination)
	params.Set("date", query.DepartureDate)
	params.Set("adults", strconv.Itoa(query.Adults))
	if query.Children > 0 {
		params.Set("children", strconv.Itoa(query.Children))
	}
	if query.CabinClass != "" {
		params.Set("cabin", query.CabinClass)
	}

	var resp struct {
		Offers []json.RawMessage `json:"offers"`
	}
	if err := s.getJSON(ctx, "search", "/v1/flights/search", params, &resp); err != nil {
		return nil, err
	}

	results := make([]travel.CanonicalResult, 0, len(resp.Offers))
	for _, raw := range resp.Offers {
		var offer skyFareOffer
		if err := json.Unmarshal(raw, &offer); err != nil {
			s.log.Warn("skipping malformed offer", "provider", s.name, "error", err)
			continue
		}
		normalized, err := s.normalize(offer, query, raw)
		if err != nil {
			s.log.Warn("skipping offer", "provider", s.name, "error", err)
			continue
		}
		results = append(results, normalized)
	}
	return results, nil
}

func (s *SkyFare) normalize(offer skyFareOffer, query travel.SearchQuery, raw json.RawMessage) (travel.CanonicalResult, error) {
	departAt, err := time.Parse(time.RFC3339, offer.Depart)
	if err != nil {
		return travel.CanonicalResult{}, fmt.Errorf("departure time: %w", err)
	}
	arriveAt, err := time.Parse(time.RFC3339, offer.Arrive)
	if err != nil {
		return travel.CanonicalResult{}, fmt.Errorf("arrival time: %w", err)
	}
	if offer.OfferID == "" || offer.Price.Total <= 0 {
		return travel.CanonicalResult{}, fmt.Errorf("offer %q has no usable id or price", offer.OfferID)
	}

	return travel.CanonicalResult{
		ID:         offer.OfferID,
		Provider:   s.name,
		Capability: travel.CapabilityFlight,
		Price:      travel.Money{Amount: offer.Price.Total, Currency: offer.Price.Currency},
		ExpiresAt:  time.Now().Add(travel.CapabilityFlight.ResultTTL()),
		Flight: &travel.FlightDetails{
			Carrier:       offer.Carrier,
			FlightNumber:  offer.FlightNo,
			Origin:        query.Origin,
			Destination:   query.Destination,
			DepartureTime: departAt,
			ArrivalTime:   arriveAt,
			Stops:         offer.Stops,
			CabinClass:    offer.Cabin,
			SeatsLeft:     offer.Seats,
		},
		Raw: raw,
	}, nil
}

// GetDetails fetches one offer by id.
func (s *SkyFare) GetDetails(ctx context.Context, offerID string) (travel.CanonicalResult, error) {
	if err := s.validateRequired("details", map[string]string{"offerID": offerID}); err != nil {
		return travel.CanonicalResult{}, err
	}

	var raw json.RawMessage
	if err := s.getJSON(ctx, "details", "/v1/flights/offers/"+url.PathEscape(offerID), nil, &raw); err != nil {
		return travel.CanonicalResult{}, err
	}
	var offer skyFareOffer
	if err := json.Unmarshal(raw, &offer); err != nil {
		return travel.CanonicalResult{}, &Error{Provider: s.name, Op: "details", Kind: ErrKindUnavailable, Err: err}
	}
	return s.normalize(offer, travel.SearchQuery{}, raw)
}

// CreateBooking commits a booking with SkyFare. The vendor answers
// synchronously, so a success maps to the confirmed status.
func (s *SkyFare) CreateBooking(ctx context.Context, req travel.BookingRequest) (travel.Confirmation, error) {
	if err := s.validateRequired("booking", map[string]string{
		"offerID": req.OfferID,
		"email":   req.Contact.Email,
		"name":    req.Contact.FullName,
	}); err != nil {
		return travel.Confirmation{}, err
	}

	body := map[string]interface{}{
		"offer_id": req.OfferID,
		"contact": map[string]string{
			"full_name": req.Contact.FullName,
			"email":     req.Contact.Email,
			"phone":     req.Contact.Phone,
		},
	}

	var resp struct {
		BookingRef string `json:"booking_ref"`
		State      string `json:"state"`
	}
	// Booking is not idempotent: a repeat could double-book.
	if err := s.postJSON(ctx, "booking", "/v1/bookings", body, callOpts{}, &resp); err != nil {
		return travel.Confirmation{}, err
	}

	status := travel.BookingConfirmed
	if resp.State == "ON_REQUEST" {
		status = travel.BookingPending
	}
	return travel.Confirmation{Reference: resp.BookingRef, Provider: s.name, Status: status}, nil
}

// CancelBooking cancels a SkyFare booking.
func (s *SkyFare) CancelBooking(ctx context.Context, reference, reason string) (travel.CancellationResult, error) {
	if err := s.validateRequired("cancel", map[string]string{"reference": reference}); err != nil {
		return travel.CancellationResult{}, err
	}

	params := url.Values{}
	if reason != "" {
		params.Set("reason", reason)
	}
	var resp struct {
		Cancelled bool   `json:"cancelled"`
		Note      string `json:"note"`
	}
	if err := s.deleteJSON(ctx, "cancel", "/v1/bookings/"+url.PathEscape(reference), params, &resp); err != nil {
		return travel.CancellationResult{}, err
	}
	return travel.CancellationResult{Reference: reference, Cancelled: resp.Cancelled, Note: resp.Note}, nil
}

// CheckAvailability asks SkyFare whether an offer is still bookable.
func (s *SkyFare) CheckAvailability(ctx context.Context, offerID string) (bool, error) {
	if err := s.validateRequired("availability", map[string]string{"offerID": offerID}); err != nil {
		return false, err
	}

	var resp struct {
		Available bool `json:"available"`
	}
	if err := s.getJSON(ctx, "availability", "/v1/flights/offers/"+url.PathEscape(offerID)+"/availability", nil, &resp); err != nil {
		return false, err
	}
	return resp.Available, nil
}
