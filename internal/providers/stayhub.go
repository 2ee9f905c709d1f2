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

// LocationLearner persists a vendor-confirmed place code. Implemented by the
// locations service; the write is best-effort and never fails a search.
type LocationLearner interface {
	Learn(ctx context.Context, rawName, code, country string)
}

// StayHub is the primary hotel supplier. Search is two-phase: resolve the
// vendor's property-id list for a city, then request priced offers for a
// bounded top-N subset so request counts don't grow with catalog size.
type StayHub struct {
	Base
	offerLimit int
	learner    LocationLearner
}

// NewStayHub creates the StayHub hotel adapter.
func NewStayHub(creds config.VendorCredentials, cfg config.ProviderConfig, offerLimit int, log *logger.Logger) *StayHub {
	if offerLimit <= 0 {
		offerLimit = 50
	}
	return &StayHub{
		Base:       NewBase("stayhub", travel.CapabilityHotel, creds, cfg, log),
		offerLimit: offerLimit,
	}
}

// SetLocationLearner wires the optional learn-cache writer.
func (s *StayHub) SetLocationLearner(learner LocationLearner) {
	s.learner = learner
}

type stayHubOffer struct {
	OfferID  string `json:"offer_id"`
	Property struct {
		Name  string  `json:"name"`
		Lat   float64 `json:"lat"`
		Lng   float64 `json:"lng"`
		Stars int     `json:"stars"`
	} `json:"property"`
	Room       string  `json:"room"`
	Board      string  `json:"board"`
	TotalPrice float64 `json:"total_price"`
	Currency   string  `json:"currency"`
}

// Search runs the two-phase StayHub flow and normalizes the priced offers.
func (s *StayHub) Search(ctx context.Context, query travel.SearchQuery) ([]travel.CanonicalResult, error) {
	if err := s.validateRequired("search", map[string]string{
		"city":     query.City,
		"checkIn":  query.CheckIn,
		"checkOut": query.CheckOut,
	}); err != nil {
		return nil, err
	}

	// Phase one: the vendor's internal property ids for the city.
	var listing struct {
		City struct {
			Code    string `json:"code"`
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"city"`
		PropertyIDs []string `json:"property_ids"`
	}
	if err := s.getJSON(ctx, "search", "/v2/locations/"+url.PathEscape(query.City)+"/properties", nil, &listing); err != nil {
		return nil, err
	}
	if len(listing.PropertyIDs) == 0 {
		return nil, nil
	}

	if s.learner != nil && listing.City.Code != "" {
		s.learner.Learn(ctx, listing.City.Name, listing.City.Code, listing.City.Country)
	}

	ids := listing.PropertyIDs
	if len(ids) > s.offerLimit {
		ids = ids[:s.offerLimit]
	}

	// Phase two: priced offers for the bounded subset.
	body := map[string]interface{}{
		"property_ids": ids,
		"check_in":     query.CheckIn,
		"check_out":    query.CheckOut,
		"adults":       query.Adults,
		"rooms":        query.Rooms,
	}
	var resp struct {
		Offers []json.RawMessage `json:"offers"`
	}
	if err := s.postJSON(ctx, "search", "/v2/offers", body, callOpts{idempotent: true}, &resp); err != nil {
		return nil, err
	}

	results := make([]travel.CanonicalResult, 0, len(resp.Offers))
	for _, raw := range resp.Offers {
		var offer stayHubOffer
		if err := json.Unmarshal(raw, &offer); err != nil {
			s.log.Warn("skipping malformed offer", "provider", s.name, "error", err)
			continue
		}
		normalized, err := s.normalize(offer, query.City, raw)
		if err != nil {
			s.log.Warn("skipping offer", "provider", s.name, "error", err)
			continue
		}
		results = append(results, normalized)
	}
	return results, nil
}

func (s *StayHub) normalize(offer stayHubOffer, cityCode string, raw json.RawMessage) (travel.CanonicalResult, error) {
	if offer.OfferID == "" || offer.Property.Name == "" || offer.TotalPrice <= 0 {
		return travel.CanonicalResult{}, fmt.Errorf("offer %q has no usable id, name or price", offer.OfferID)
	}

	return travel.CanonicalResult{
		ID:         offer.OfferID,
		Provider:   s.name,
		Capability: travel.CapabilityHotel,
		Price:      travel.Money{Amount: offer.TotalPrice, Currency: offer.Currency},
		ExpiresAt:  time.Now().Add(travel.CapabilityHotel.ResultTTL()),
		Hotel: &travel.HotelDetails{
			Name:      offer.Property.Name,
			CityCode:  cityCode,
			Latitude:  offer.Property.Lat,
			Longitude: offer.Property.Lng,
			Stars:     offer.Property.Stars,
			RoomType:  offer.Room,
			Board:     offer.Board,
		},
		Raw: raw,
	}, nil
}

// GetDetails fetches one offer by id.
func (s *StayHub) GetDetails(ctx context.Context, offerID string) (travel.CanonicalResult, error) {
	if err := s.validateRequired("details", map[string]string{"offerID": offerID}); err != nil {
		return travel.CanonicalResult{}, err
	}

	var raw json.RawMessage
	if err := s.getJSON(ctx, "details", "/v2/offers/"+url.PathEscape(offerID), nil, &raw); err != nil {
		return travel.CanonicalResult{}, err
	}
	var offer stayHubOffer
	if err := json.Unmarshal(raw, &offer); err != nil {
		return travel.CanonicalResult{}, &Error{Provider: s.name, Op: "details", Kind: ErrKindUnavailable, Err: err}
	}
	return s.normalize(offer, "", raw)
}

// CreateBooking commits a booking with StayHub.
func (s *StayHub) CreateBooking(ctx context.Context, req travel.BookingRequest) (travel.Confirmation, error) {
	if err := s.validateRequired("booking", map[string]string{
		"offerID": req.OfferID,
		"email":   req.Contact.Email,
		"name":    req.Contact.FullName,
	}); err != nil {
		return travel.Confirmation{}, err
	}

	body := map[string]interface{}{
		"offer_id": req.OfferID,
		"guest": map[string]string{
			"name":  req.Contact.FullName,
			"email": req.Contact.Email,
			"phone": req.Contact.Phone,
		},
	}
	var resp struct {
		Confirmation string `json:"confirmation"`
		Status       string `json:"status"`
	}
	if err := s.postJSON(ctx, "booking", "/v2/bookings", body, callOpts{}, &resp); err != nil {
		return travel.Confirmation{}, err
	}

	status := travel.BookingConfirmed
	if resp.Status == "processing" {
		status = travel.BookingPending
	}
	return travel.Confirmation{Reference: resp.Confirmation, Provider: s.name, Status: status}, nil
}

// CancelBooking cancels a StayHub booking.
func (s *StayHub) CancelBooking(ctx context.Context, reference, reason string) (travel.CancellationResult, error) {
	if err := s.validateRequired("cancel", map[string]string{"reference": reference}); err != nil {
		return travel.CancellationResult{}, err
	}

	params := url.Values{}
	if reason != "" {
		params.Set("reason", reason)
	}
	var resp struct {
		Cancelled bool `json:"cancelled"`
	}
	if err := s.deleteJSON(ctx, "cancel", "/v2/bookings/"+url.PathEscape(reference), params, &resp); err != nil {
		return travel.CancellationResult{}, err
	}
	return travel.CancellationResult{Reference: reference, Cancelled: resp.Cancelled}, nil
}

// CheckAvailability asks StayHub whether an offer is still bookable.
func (s *StayHub) CheckAvailability(ctx context.Context, offerID string) (bool, error) {
	if err := s.validateRequired("availability", map[string]string{"offerID": offerID}); err != nil {
		return false, err
	}

	var resp struct {
		Bookable bool `json:"bookable"`
	}
	if err := s.getJSON(ctx, "availability", "/v2/offers/"+url.PathEscape(offerID)+"/availability", nil, &resp); err != nil {
		return false, err
	}
	return resp.Bookable, nil
}
