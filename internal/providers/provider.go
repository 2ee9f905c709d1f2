// Package providers defines the supplier adapter contract and the shared
// HTTP, token and retry behavior every vendor adapter builds on. An adapter
// is the sole translation boundary between one vendor's API and the
// canonical model.
package providers

import (
	"context"
	"strings"

	"tripgate_backend/internal/travel"
)

// Adapter is implemented once per vendor and capability.
type Adapter interface {
	// Name identifies the vendor, e.g. "skyfare".
	Name() string
	// Capability is the search domain this adapter serves.
	Capability() travel.Capability
	// Search maps the canonical query onto the vendor API and normalizes the
	// response. Place fields are already resolved to codes.
	Search(ctx context.Context, query travel.SearchQuery) ([]travel.CanonicalResult, error)
	// GetDetails fetches one offer by its vendor id.
	GetDetails(ctx context.Context, offerID string) (travel.CanonicalResult, error)
	// CreateBooking hands the booking off to the vendor. The returned status
	// is tri-state: confirmed, pending or redirect.
	CreateBooking(ctx context.Context, req travel.BookingRequest) (travel.Confirmation, error)
	// CancelBooking cancels a previously created booking.
	CancelBooking(ctx context.Context, reference, reason string) (travel.CancellationResult, error)
}

// AvailabilityChecker is implemented by adapters whose vendor exposes a
// live availability endpoint.
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, offerID string) (bool, error)
}

// Registry holds the adapters registered per capability. It is built once at
// startup and read-only afterwards.
type Registry struct {
	byCapability map[travel.Capability][]Adapter
	byName       map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byCapability: make(map[travel.Capability][]Adapter),
		byName:       make(map[string]Adapter),
	}
}

// Register adds an adapter. Registration order is preserved per capability.
func (r *Registry) Register(a Adapter) {
	r.byCapability[a.Capability()] = append(r.byCapability[a.Capability()], a)
	r.byName[strings.ToLower(a.Name())] = a
}

// ForCapability returns the adapters registered for a capability.
func (r *Registry) ForCapability(c travel.Capability) []Adapter {
	return r.byCapability[c]
}

// ByName looks an adapter up by its vendor name.
func (r *Registry) ByName(name string) (Adapter, bool) {
	a, ok := r.byName[strings.ToLower(name)]
	return a, ok
}
