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

// TransitGo is the ground transfer supplier.
type TransitGo struct {
	Base
}

// NewTransitGo creates the TransitGo transfer adapter.
func NewTransitGo(creds config.VendorCredentials, cfg config.ProviderConfig, log *logger.Logger) *TransitGo {
	return &TransitGo{Base: NewBase("transitgo", travel.CapabilityTransfer, creds, cfg, log)}
}

type transitGoQuote struct {
	QuoteID       string  `json:"quote_id"`
	Vehicle       string  `json:"vehicle"`
	MaxPassengers int     `json:"max_passengers"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
}

// Search requests transfer quotes and normalizes them.
func (t *TransitGo) Search(ctx context.Context, query travel.SearchQuery) ([]travel.CanonicalResult, error) {
	if err := t.validateRequired("search", map[string]string{
		"pickup":  query.Pickup,
		"dropoff": query.Dropoff,
	}); err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"pickup":     query.Pickup,
		"dropoff":    query.Dropoff,
		"passengers": query.Adults + query.Children,
	}
	if query.PickupAt != "" {
		body["pickup_at"] = query.PickupAt
	}

	var resp struct {
		Quotes []json.RawMessage `json:"quotes"`
	}
	if err := t.postJSON(ctx, "search", "/v1/quotes", body, callOpts{idempotent: true}, &resp); err != nil {
		return nil, err
	}

	results := make([]travel.CanonicalResult, 0, len(resp.Quotes))
	for _, raw := range resp.Quotes {
		var quote transitGoQuote
		if err := json.Unmarshal(raw, &quote); err != nil {
			t.log.Warn("skipping malformed quote", "provider", t.name, "error", err)
			continue
		}
		normalized, err := t.normalize(quote, query, raw)
		if err != nil {
			t.log.Warn("skipping quote", "provider", t.name, "error", err)
			continue
		}
		results = append(results, normalized)
	}
	return results, nil
}

func (t *TransitGo) normalize(quote transitGoQuote, query travel.SearchQuery, raw json.RawMessage) (travel.CanonicalResult, error) {
	if quote.QuoteID == "" || quote.Amount <= 0 {
		return travel.CanonicalResult{}, fmt.Errorf("quote %q has no usable id or amount", quote.QuoteID)
	}

	return travel.CanonicalResult{
		ID:         quote.QuoteID,
		Provider:   t.name,
		Capability: travel.CapabilityTransfer,
		Price:      travel.Money{Amount: quote.Amount, Currency: quote.Currency},
		ExpiresAt:  time.Now().Add(travel.CapabilityTransfer.ResultTTL()),
		Transfer: &travel.TransferDetails{
			Pickup:      query.Pickup,
			Dropoff:     query.Dropoff,
			VehicleType: quote.Vehicle,
			MaxPax:      quote.MaxPassengers,
		},
		Raw: raw,
	}, nil
}

// GetDetails fetches one quote by id.
func (t *TransitGo) GetDetails(ctx context.Context, offerID string) (travel.CanonicalResult, error) {
	if err := t.validateRequired("details", map[string]string{"offerID": offerID}); err != nil {
		return travel.CanonicalResult{}, err
	}

	var raw json.RawMessage
	if err := t.getJSON(ctx, "details", "/v1/quotes/"+url.PathEscape(offerID), nil, &raw); err != nil {
		return travel.CanonicalResult{}, err
	}
	var quote transitGoQuote
	if err := json.Unmarshal(raw, &quote); err != nil {
		return travel.CanonicalResult{}, &Error{Provider: t.name, Op: "details", Kind: ErrKindUnavailable, Err: err}
	}
	return t.normalize(quote, travel.SearchQuery{}, raw)
}

// CreateBooking commits a transfer booking with TransitGo.
func (t *TransitGo) CreateBooking(ctx context.Context, req travel.BookingRequest) (travel.Confirmation, error) {
	if err := t.validateRequired("booking", map[string]string{
		"offerID": req.OfferID,
		"email":   req.Contact.Email,
		"name":    req.Contact.FullName,
	}); err != nil {
		return travel.Confirmation{}, err
	}

	body := map[string]interface{}{
		"quote_id":  req.OfferID,
		"lead_name": req.Contact.FullName,
		"email":     req.Contact.Email,
		"phone":     req.Contact.Phone,
	}
	var resp struct {
		BookingID string `json:"booking_id"`
	}
	if err := t.postJSON(ctx, "booking", "/v1/bookings", body, callOpts{}, &resp); err != nil {
		return travel.Confirmation{}, err
	}
	return travel.Confirmation{Reference: resp.BookingID, Provider: t.name, Status: travel.BookingConfirmed}, nil
}

// CancelBooking cancels a TransitGo booking.
func (t *TransitGo) CancelBooking(ctx context.Context, reference, reason string) (travel.CancellationResult, error) {
	if err := t.validateRequired("cancel", map[string]string{"reference": reference}); err != nil {
		return travel.CancellationResult{}, err
	}

	params := url.Values{}
	if reason != "" {
		params.Set("reason", reason)
	}
	var resp struct {
		Cancelled bool `json:"cancelled"`
	}
	if err := t.deleteJSON(ctx, "cancel", "/v1/bookings/"+url.PathEscape(reference), params, &resp); err != nil {
		return travel.CancellationResult{}, err
	}
	return travel.CancellationResult{Reference: reference, Cancelled: resp.Cancelled}, nil
}
