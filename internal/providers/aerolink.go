package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"tripgate_backend/internal/travel"
	"tripgate_backend/platform/config"
	"tripgate_backend/platform/logger"
)

// AeroLink is the secondary flight supplier. POST-based search with a
// different wire shape than SkyFare; bookings always confirm asynchronously.
type AeroLink struct {
	Base
}

// NewAeroLink creates the AeroLink flight adapter.
func NewAeroLink(creds config.VendorCredentials, cfg config.ProviderConfig, log *logger.Logger) *AeroLink {
	return &AeroLink{Base: NewBase("aerolink", travel.CapabilityFlight, creds, cfg, log)}
}

type aeroLinkResult struct {
	ID      string `json:"id"`
	Airline struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"airline"`
	Number         string  `json:"number"`
	DepartureAt    string  `json:"departure_at"`
	ArrivalAt      string  `json:"arrival_at"`
	Connections    int     `json:"connections"`
	FareTotal      float64 `json:"fare_total"`
	FareCurrency   string  `json:"fare_currency"`
	SeatsRemaining int     `json:"seats_remaining"`
}

// Search queries AeroLink and normalizes its results.
func (a *AeroLink) Search(ctx context.Context, query travel.SearchQuery) ([]travel.CanonicalResult, error) {
	if err := a.validateRequired("search", map[string]string{
		"origin":        query.Origin,
		"destination":   query.Destination,
		"departureDate": query.DepartureDate,
	}); err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"from":           query.Origin,
		"to":             query.Destination,
		"departure_date": query.DepartureDate,
		"pax":            query.Adults + query.Children,
	}

	var resp struct {
		Results []json.RawMessage `json:"results"`
	}
	// AeroLink documents its search POST as safe to repeat.
	if err := a.postJSON(ctx, "search", "/api/search", body, callOpts{idempotent: true}, &resp); err != nil {
		return nil, err
	}

	results := make([]travel.CanonicalResult, 0, len(resp.Results))
	for _, raw := range resp.Results {
		var item aeroLinkResult
		if err := json.Unmarshal(raw, &item); err != nil {
			a.log.Warn("skipping malformed result", "provider", a.name, "error", err)
			continue
		}
		normalized, err := a.normalize(item, query, raw)
		if err != nil {
			a.log.Warn("skipping result", "provider", a.name, "error", err)
			continue
		}
		results = append(results, normalized)
	}
	return results, nil
}

func (a *AeroLink) normalize(item aeroLinkResult, query travel.SearchQuery, raw json.RawMessage) (travel.CanonicalResult, error) {
	departAt, err := time.Parse(time.RFC3339, item.DepartureAt)
	if err != nil {
		return travel.CanonicalResult{}, fmt.Errorf("departure time: %w", err)
	}
	arriveAt, err := time.Parse(time.RFC3339, item.ArrivalAt)
	if err != nil {
		return travel.CanonicalResult{}, fmt.Errorf("arrival time: %w", err)
	}
	if item.ID == "" || item.FareTotal <= 0 {
		return travel.CanonicalResult{}, fmt.Errorf("result %q has no usable id or fare", item.ID)
	}

	return travel.CanonicalResult{
		ID:         item.ID,
		Provider:   a.name,
		Capability: travel.CapabilityFlight,
		Price:      travel.Money{Amount: item.FareTotal, Currency: item.FareCurrency},
		ExpiresAt:  time.Now().Add(travel.CapabilityFlight.ResultTTL()),
		Flight: &travel.FlightDetails{
			Carrier:       item.Airline.Name,
			FlightNumber:  item.Airline.Code + item.Number,
			Origin:        query.Origin,
			Destination:   query.Destination,
			DepartureTime: departAt,
			ArrivalTime:   arriveAt,
			Stops:         item.Connections,
			SeatsLeft:     item.SeatsRemaining,
		},
		Raw: raw,
	}, nil
}

// GetDetails fetches one result by id.
func (a *AeroLink) GetDetails(ctx context.Context, offerID string) (travel.CanonicalResult, error) {
	if err := a.validateRequired("details", map[string]string{"offerID": offerID}); err != nil {
		return travel.CanonicalResult{}, err
	}

	var raw json.RawMessage
	if err := a.getJSON(ctx, "details", "/api/results/"+url.PathEscape(offerID), nil, &raw); err != nil {
		return travel.CanonicalResult{}, err
	}
	var item aeroLinkResult
	if err := json.Unmarshal(raw, &item); err != nil {
		return travel.CanonicalResult{}, &Error{Provider: a.name, Op: "details", Kind: ErrKindUnavailable, Err: err}
	}
	return a.normalize(item, travel.SearchQuery{}, raw)
}

// CreateBooking hands the booking to AeroLink. The vendor only acknowledges;
// confirmation arrives asynchronously, so a success maps to pending.
func (a *AeroLink) CreateBooking(ctx context.Context, req travel.BookingRequest) (travel.Confirmation, error) {
	if err := a.validateRequired("booking", map[string]string{
		"offerID": req.OfferID,
		"email":   req.Contact.Email,
		"name":    req.Contact.FullName,
	}); err != nil {
		return travel.Confirmation{}, err
	}

	body := map[string]interface{}{
		"result_id": req.OfferID,
		"traveller": map[string]string{
			"name":  req.Contact.FullName,
			"email": req.Contact.Email,
		},
	}

	var resp struct {
		Reference string `json:"reference"`
	}
	if err := a.postJSON(ctx, "booking", "/api/bookings", body, callOpts{}, &resp); err != nil {
		return travel.Confirmation{}, err
	}
	return travel.Confirmation{Reference: resp.Reference, Provider: a.name, Status: travel.BookingPending}, nil
}

// CancelBooking cancels an AeroLink booking.
func (a *AeroLink) CancelBooking(ctx context.Context, reference, reason string) (travel.CancellationResult, error) {
	if err := a.validateRequired("cancel", map[string]string{"reference": reference}); err != nil {
		return travel.CancellationResult{}, err
	}

	body := map[string]string{"reference": reference, "reason": reason}
	var resp struct {
		Status string `json:"status"`
	}
	if err := a.postJSON(ctx, "cancel", "/api/bookings/cancel", body, callOpts{}, &resp); err != nil {
		return travel.CancellationResult{}, err
	}
	return travel.CancellationResult{Reference: reference, Cancelled: resp.Status == "cancelled"}, nil
}
