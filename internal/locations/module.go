// Package locations provides the location resolution bounded context module.
package locations

import (
	"tripgate_backend/internal/locations/handler"
	"tripgate_backend/internal/locations/repository"
	"tripgate_backend/internal/locations/service"
	apphttp "tripgate_backend/internal/http"
	"tripgate_backend/platform/logger"
	"tripgate_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the locations bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the locations module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "locations"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts location routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/locations/:name", m.handler.Resolve)
	ctx.Admin.PUT("/locations/:name", m.handler.Correct)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
