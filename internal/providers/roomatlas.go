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

// RoomAtlas is the secondary hotel supplier, blended with StayHub inventory.
// Single-phase GET search, synchronous booking commitment.
type RoomAtlas struct {
	Base
}

// NewRoomAtlas creates the RoomAtlas hotel adapter.
func NewRoomAtlas(creds config.VendorCredentials, cfg config.ProviderConfig, log *logger.Logger) *RoomAtlas {
	return &RoomAtlas{Base: NewBase("roomatlas", travel.CapabilityHotel, creds, cfg, log)}
}

type roomAtlasHotel struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	RatingStars int     `json:"rating_stars"`
	RoomType    string  `json:"room_type"`
	PriceTotal  float64 `json:"price_total"`
	Currency    string  `json:"currency"`
}

// Search queries RoomAtlas and normalizes its hotels.
func (r *RoomAtlas) Search(ctx context.Context, query travel.SearchQuery) ([]travel.CanonicalResult, error) {
	if err := r.validateRequired("search", map[string]string{
		"city":     query.City,
		"checkIn":  query.CheckIn,
		"checkOut": query.CheckOut,
	}); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("city", query.City)
	params.Set("checkin", query.CheckIn)
	params.Set("checkout", query.CheckOut)
	params.Set("adults", strconv.Itoa(query.Adults))
	params.Set("rooms", strconv.Itoa(query.Rooms))

	var resp struct {
		Hotels []json.RawMessage `json:"hotels"`
	}
	if err := r.getJSON(ctx, "search", "/v1/search", params, &resp); err != nil {
		return nil, err
	}

	results := make([]travel.CanonicalResult, 0, len(resp.Hotels))
	for _, raw := range resp.Hotels {
		var hotel roomAtlasHotel
		if err := json.Unmarshal(raw, &hotel); err != nil {
			r.log.Warn("skipping malformed hotel", "provider", r.name, "error", err)
			continue
		}
		normalized, err := r.normalize(hotel, query.City, raw)
		if err != nil {
			r.log.Warn("skipping hotel", "provider", r.name, "error", err)
			continue
		}
		results = append(results, normalized)
	}
	return results, nil
}

func (r *RoomAtlas) normalize(hotel roomAtlasHotel, cityCode string, raw json.RawMessage) (travel.CanonicalResult, error) {
	if hotel.ID == "" || hotel.Name == "" || hotel.PriceTotal <= 0 {
		return travel.CanonicalResult{}, fmt.Errorf("hotel %q has no usable id, name or price", hotel.ID)
	}

	return travel.CanonicalResult{
		ID:         hotel.ID,
		Provider:   r.name,
		Capability: travel.CapabilityHotel,
		Price:      travel.Money{Amount: hotel.PriceTotal, Currency: hotel.Currency},
		ExpiresAt:  time.Now().Add(travel.CapabilityHotel.ResultTTL()),
		Hotel: &travel.HotelDetails{
			Name:      hotel.Name,
			CityCode:  cityCode,
			Latitude:  hotel.Latitude,
			Longitude: hotel.Longitude,
			Stars:     hotel.RatingStars,
			RoomType:  hotel.RoomType,
		},
		Raw: raw,
	}, nil
}

// GetDetails fetches one hotel offer by id.
func (r *RoomAtlas) GetDetails(ctx context.Context, offerID string) (travel.CanonicalResult, error) {
	if err := r.validateRequired("details", map[string]string{"offerID": offerID}); err != nil {
		return travel.CanonicalResult{}, err
	}

	var raw json.RawMessage
	if err := r.getJSON(ctx, "details", "/v1/hotels/"+url.PathEscape(offerID), nil, &raw); err != nil {
		return travel.CanonicalResult{}, err
	}
	var hotel roomAtlasHotel
	if err := json.Unmarshal(raw, &hotel); err != nil {
		return travel.CanonicalResult{}, &Error{Provider: r.name, Op: "details", Kind: ErrKindUnavailable, Err: err}
	}
	return r.normalize(hotel, "", raw)
}

// CreateBooking commits a booking with RoomAtlas.
func (r *RoomAtlas) CreateBooking(ctx context.Context, req travel.BookingRequest) (travel.Confirmation, error) {
	if err := r.validateRequired("booking", map[string]string{
		"offerID": req.OfferID,
		"email":   req.Contact.Email,
		"name":    req.Contact.FullName,
	}); err != nil {
		return travel.Confirmation{}, err
	}

	body := map[string]interface{}{
		"hotel_id":   req.OfferID,
		"guest_name": req.Contact.FullName,
		"email":      req.Contact.Email,
	}
	var resp struct {
		Reference string `json:"reference"`
	}
	if err := r.postJSON(ctx, "booking", "/v1/bookings", body, callOpts{}, &resp); err != nil {
		return travel.Confirmation{}, err
	}
	return travel.Confirmation{Reference: resp.Reference, Provider: r.name, Status: travel.BookingConfirmed}, nil
}

// CancelBooking cancels a RoomAtlas booking.
func (r *RoomAtlas) CancelBooking(ctx context.Context, reference, reason string) (travel.CancellationResult, error) {
	if err := r.validateRequired("cancel", map[string]string{"reference": reference}); err != nil {
		return travel.CancellationResult{}, err
	}

	params := url.Values{}
	if reason != "" {
		params.Set("reason", reason)
	}
	var resp struct {
		Cancelled bool `json:"cancelled"`
	}
	if err := r.deleteJSON(ctx, "cancel", "/v1/bookings/"+url.PathEscape(reference), params, &resp); err != nil {
		return travel.CancellationResult{}, err
	}
	return travel.CancellationResult{Reference: reference, Cancelled: resp.Cancelled}, nil
}
