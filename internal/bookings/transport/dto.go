// Package transport defines HTTP request and response DTOs for bookings.
package transport

import (
	"tripgate_backend/internal/travel"
)

// CreateBookingRequest is the POST /bookings payload.
type CreateBookingRequest struct {
	OfferID    string            `json:"offerId" validate:"required"`
	Provider   string            `json:"provider" validate:"required"`
	Capability string            `json:"capability" validate:"omitempty,oneof=flight hotel transfer activity"`
	Contact    BookingContact    `json:"contact" validate:"required"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// BookingContact identifies the lead traveller.
type BookingContact struct {
	FullName string `json:"fullName" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,min=6,max=20"`
}

// ToBookingRequest converts the DTO into the domain booking request.
func (r CreateBookingRequest) ToBookingRequest() travel.BookingRequest {
	return travel.BookingRequest{
		OfferID:    r.OfferID,
		Provider:   r.Provider,
		Capability: travel.Capability(r.Capability),
		Contact: travel.BookingContact{
			FullName: r.Contact.FullName,
			Email:    r.Contact.Email,
			Phone:    r.Contact.Phone,
		},
		Extra: r.Extra,
	}
}

// CancelBookingRequest is the optional DELETE /bookings body.
type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ConfirmationResponse is the booking outcome envelope.
type ConfirmationResponse struct {
	Reference   string `json:"reference"`
	Provider    string `json:"provider"`
	Status      string `json:"status"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// CancellationResponse is the cancellation outcome envelope.
type CancellationResponse struct {
	Reference string `json:"reference"`
	Cancelled bool   `json:"cancelled"`
	Note      string `json:"note,omitempty"`
}

// AvailabilityResponse reports whether an offer is still bookable.
type AvailabilityResponse struct {
	OfferID   string `json:"offerId"`
	Provider  string `json:"provider"`
	Available bool   `json:"available"`
}
