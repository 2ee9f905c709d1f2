package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripgate_backend/internal/search/service"
	"tripgate_backend/internal/search/transport"
	"tripgate_backend/platform/httpkit"
	"tripgate_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for search.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new search handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Search runs an aggregated supplier search.
// POST /api/v1/search
func (h *Handler) Search(c *gin.Context) {
	var req transport.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Search(c.Request.Context(), req.ToQuery())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.SearchResponse{
		Results:            result.Results,
		Count:              len(result.Results),
		Cached:             result.Cached,
		ProvidersSucceeded: result.ProvidersSucceeded,
		ProvidersFailed:    result.ProvidersFailed,
	})
}
