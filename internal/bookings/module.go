// Package bookings provides the booking dispatch bounded context module.
package bookings

import (
	"tripgate_backend/internal/bookings/handler"
	"tripgate_backend/internal/bookings/service"
	apphttp "tripgate_backend/internal/http"
	"tripgate_backend/internal/providers"
	"tripgate_backend/platform/logger"
	"tripgate_backend/platform/validator"
)

// Module is the bookings bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the bookings module.
func NewModule(registry *providers.Registry, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(registry, log)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "bookings"
}

// RegisterRoutes mounts booking routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/bookings", m.handler.Create)
	ctx.V1.DELETE("/bookings/:provider/:reference", m.handler.Cancel)
	ctx.V1.GET("/offers/:provider/:id", m.handler.GetOffer)
	ctx.V1.GET("/offers/:provider/:id/availability", m.handler.CheckAvailability)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
