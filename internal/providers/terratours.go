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

// TerraTours is the activity supplier. It offers no API booking: CreateBooking
// returns a deep link with the redirect status, inventory is never held, and
// there is no cancellation path.
type TerraTours struct {
	Base
}

// NewTerraTours creates the TerraTours activity adapter.
func NewTerraTours(creds config.VendorCredentials, cfg config.ProviderConfig, log *logger.Logger) *TerraTours {
	return &TerraTours{Base: NewBase("terratours", travel.CapabilityActivity, creds, cfg, log)}
}

type terraToursActivity struct {
	SKU         string  `json:"sku"`
	Title       string  `json:"title"`
	DurationMin int     `json:"duration_min"`
	Rating      float64 `json:"rating"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
}

// Search queries TerraTours and normalizes its activities.
func (t *TerraTours) Search(ctx context.Context, query travel.SearchQuery) ([]travel.CanonicalResult, error) {
	if err := t.validateRequired("search", map[string]string{"city": query.City}); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("city", query.City)
	if query.Date != "" {
		params.Set("date", query.Date)
	}

	var resp struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := t.getJSON(ctx, "search", "/v3/activities", params, &resp); err != nil {
		return nil, err
	}

	results := make([]travel.CanonicalResult, 0, len(resp.Data))
	for _, raw := range resp.Data {
		var activity terraToursActivity
		if err := json.Unmarshal(raw, &activity); err != nil {
			t.log.Warn("skipping malformed activity", "provider", t.name, "error", err)
			continue
		}
		normalized, err := t.normalize(activity, query.City, raw)
		if err != nil {
			t.log.Warn("skipping activity", "provider", t.name, "error", err)
			continue
		}
		results = append(results, normalized)
	}
	return results, nil
}

func (t *TerraTours) normalize(activity terraToursActivity, cityCode string, raw json.RawMessage) (travel.CanonicalResult, error) {
	if activity.SKU == "" || activity.Title == "" || activity.Price <= 0 {
		return travel.CanonicalResult{}, fmt.Errorf("activity %q has no usable sku, title or price", activity.SKU)
	}

	return travel.CanonicalResult{
		ID:         activity.SKU,
		Provider:   t.name,
		Capability: travel.CapabilityActivity,
		Price:      travel.Money{Amount: activity.Price, Currency: activity.Currency},
		ExpiresAt:  time.Now().Add(travel.CapabilityActivity.ResultTTL()),
		Activity: &travel.ActivityDetails{
			Title:           activity.Title,
			CityCode:        cityCode,
			DurationMinutes: activity.DurationMin,
			Rating:          activity.Rating,
		},
		Raw: raw,
	}, nil
}

// GetDetails fetches one activity by sku.
func (t *TerraTours) GetDetails(ctx context.Context, offerID string) (travel.CanonicalResult, error) {
	if err := t.validateRequired("details", map[string]string{"offerID": offerID}); err != nil {
		return travel.CanonicalResult{}, err
	}

	var raw json.RawMessage
	if err := t.getJSON(ctx, "details", "/v3/activities/"+url.PathEscape(offerID), nil, &raw); err != nil {
		return travel.CanonicalResult{}, err
	}
	var activity terraToursActivity
	if err := json.Unmarshal(raw, &activity); err != nil {
		return travel.CanonicalResult{}, &Error{Provider: t.name, Op: "details", Kind: ErrKindUnavailable, Err: err}
	}
	return t.normalize(activity, "", raw)
}

// CreateBooking returns the vendor's deep link. Callers must treat the
// redirect status as uncommitted: no inventory is held.
func (t *TerraTours) CreateBooking(ctx context.Context, req travel.BookingRequest) (travel.Confirmation, error) {
	if err := t.validateRequired("booking", map[string]string{"offerID": req.OfferID}); err != nil {
		return travel.Confirmation{}, err
	}

	return travel.Confirmation{
		Provider:    t.name,
		Status:      travel.BookingRedirect,
		RedirectURL: t.baseURL + "/book/" + url.PathEscape(req.OfferID),
	}, nil
}

// CancelBooking always fails: redirect bookings have no cancellation path.
func (t *TerraTours) CancelBooking(ctx context.Context, reference, reason string) (travel.CancellationResult, error) {
	err := &Error{Provider: t.name, Op: "cancel", Kind: ErrKindRejected, Err: fmt.Errorf("redirect bookings cannot be cancelled through the API")}
	t.log.ProviderError(t.name, "cancel", err)
	return travel.CancellationResult{}, err
}
