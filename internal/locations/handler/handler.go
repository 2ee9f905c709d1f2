package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripgate_backend/internal/locations/service"
	"tripgate_backend/internal/locations/transport"
	"tripgate_backend/platform/httpkit"
	"tripgate_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for locations.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new locations handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Resolve resolves a free-text place name to its code.
// GET /api/v1/locations/:name
func (h *Handler) Resolve(c *gin.Context) {
	rec, err := h.svc.Resolve(c.Request.Context(), c.Param("name"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.LocationResponse{
		RawName:        rec.RawName,
		NormalizedName: rec.NormalizedName,
		Code:           rec.Code,
		Country:        rec.Country,
		Provenance:     rec.Provenance,
	})
}

// Correct overwrites the code of an existing location record.
// PUT /api/v1/admin/locations/:name
func (h *Handler) Correct(c *gin.Context) {
	var req transport.CorrectLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	rec, err := h.svc.Correct(c.Request.Context(), c.Param("name"), req.Code, req.Country)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.LocationResponse{
		RawName:        rec.RawName,
		NormalizedName: rec.NormalizedName,
		Code:           rec.Code,
		Country:        rec.Country,
		Provenance:     rec.Provenance,
	})
}
