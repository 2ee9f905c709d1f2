// Package service dispatches booking operations to the adapter that owns the
// offer. It carries no booking state of its own: the supplier is the system
// of record, this layer only routes and normalizes errors.
package service

import (
	"context"
	"errors"
	"fmt"

	"tripgate_backend/internal/providers"
	"tripgate_backend/internal/travel"
	"tripgate_backend/platform/apperr"
	"tripgate_backend/platform/logger"
)

// Service routes booking operations to vendor adapters.
type Service struct {
	registry *providers.Registry
	log      *logger.Logger
}

// New creates a new bookings service.
func New(registry *providers.Registry, log *logger.Logger) *Service {
	return &Service{registry: registry, log: log}
}

// CreateBooking hands the booking to the owning supplier.
func (s *Service) CreateBooking(ctx context.Context, req travel.BookingRequest) (travel.Confirmation, error) {
	adapter, err := s.adapter(req.Provider)
	if err != nil {
		return travel.Confirmation{}, err
	}
	if req.Capability != "" && req.Capability != adapter.Capability() {
		return travel.Confirmation{}, apperr.Validation(fmt.Sprintf("provider %s does not serve %s", adapter.Name(), req.Capability))
	}

	conf, err := adapter.CreateBooking(ctx, req)
	if err != nil {
		return travel.Confirmation{}, s.normalize(err)
	}

	s.log.Info("booking_created",
		"provider", conf.Provider,
		"reference", conf.Reference,
		"status", string(conf.Status),
	)
	return conf, nil
}

// CancelBooking cancels a booking at the owning supplier. Redirect bookings
// were never held by us and are rejected by the adapter.
func (s *Service) CancelBooking(ctx context.Context, provider, reference, reason string) (travel.CancellationResult, error) {
	adapter, err := s.adapter(provider)
	if err != nil {
		return travel.CancellationResult{}, err
	}

	result, err := adapter.CancelBooking(ctx, reference, reason)
	if err != nil {
		return travel.CancellationResult{}, s.normalize(err)
	}

	s.log.Info("booking_cancelled",
		"provider", provider,
		"reference", reference,
		"cancelled", result.Cancelled,
	)
	return result, nil
}

// GetOffer fetches a single live offer from the owning supplier.
func (s *Service) GetOffer(ctx context.Context, provider, offerID string) (travel.CanonicalResult, error) {
	adapter, err := s.adapter(provider)
	if err != nil {
		return travel.CanonicalResult{}, err
	}

	result, err := adapter.GetDetails(ctx, offerID)
	if err != nil {
		return travel.CanonicalResult{}, s.normalize(err)
	}
	return result, nil
}

// CheckAvailability asks the supplier whether an offer is still bookable.
// Suppliers without a live availability endpoint report a validation error.
func (s *Service) CheckAvailability(ctx context.Context, provider, offerID string) (bool, error) {
	adapter, err := s.adapter(provider)
	if err != nil {
		return false, err
	}

	checker, ok := adapter.(providers.AvailabilityChecker)
	if !ok {
		return false, apperr.Validation(fmt.Sprintf("provider %s does not support availability checks", adapter.Name()))
	}

	available, err := checker.CheckAvailability(ctx, offerID)
	if err != nil {
		return false, s.normalize(err)
	}
	return available, nil
}

func (s *Service) adapter(provider string) (providers.Adapter, error) {
	adapter, ok := s.registry.ByName(provider)
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("unknown provider %q", provider))
	}
	return adapter, nil
}

// normalize maps adapter errors onto the typed domain errors the HTTP layer
// understands. Supplier rejections surface to the caller with their message;
// infrastructure failures collapse into gateway errors.
func (s *Service) normalize(err error) error {
	var provErr *providers.Error
	if !errors.As(err, &provErr) {
		return apperr.Wrap(apperr.KindInternal, "provider call failed", err)
	}

	switch provErr.Kind {
	case providers.ErrKindRejected:
		return apperr.Wrap(apperr.KindValidation, provErr.Error(), err)
	case providers.ErrKindTimeout:
		return apperr.Wrap(apperr.KindTimeout, provErr.Error(), err)
	default:
		return apperr.Wrap(apperr.KindUnavailable, provErr.Error(), err)
	}
}
