package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripgate_backend/internal/bookings/service"
	"tripgate_backend/internal/bookings/transport"
	"tripgate_backend/platform/httpkit"
	"tripgate_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for bookings and offer lookups.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new bookings handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create hands a booking off to the owning supplier.
// POST /api/v1/bookings
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	conf, err := h.svc.CreateBooking(c.Request.Context(), req.ToBookingRequest())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ConfirmationResponse{
		Reference:   conf.Reference,
		Provider:    conf.Provider,
		Status:      string(conf.Status),
		RedirectURL: conf.RedirectURL,
	})
}

// Cancel cancels a booking at the owning supplier.
// DELETE /api/v1/bookings/:provider/:reference
func (h *Handler) Cancel(c *gin.Context) {
	var req transport.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.CancelBooking(c.Request.Context(), c.Param("provider"), c.Param("reference"), req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.CancellationResponse{
		Reference: result.Reference,
		Cancelled: result.Cancelled,
		Note:      result.Note,
	})
}

// GetOffer fetches one live offer from the owning supplier.
// GET /api/v1/offers/:provider/:id
func (h *Handler) GetOffer(c *gin.Context) {
	result, err := h.svc.GetOffer(c.Request.Context(), c.Param("provider"), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CheckAvailability asks the supplier whether an offer is still bookable.
// GET /api/v1/offers/:provider/:id/availability
func (h *Handler) CheckAvailability(c *gin.Context) {
	provider, offerID := c.Param("provider"), c.Param("id")

	available, err := h.svc.CheckAvailability(c.Request.Context(), provider, offerID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.AvailabilityResponse{
		OfferID:   offerID,
		Provider:  provider,
		Available: available,
	})
}
