// Package search provides the aggregated supplier search bounded context.
package search

import (
	apphttp "tripgate_backend/internal/http"
	"tripgate_backend/internal/providers"
	"tripgate_backend/internal/search/handler"
	"tripgate_backend/internal/search/repository"
	"tripgate_backend/internal/search/service"
	"tripgate_backend/platform/logger"
	"tripgate_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the search bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repo
}

// NewModule creates and initializes the search module.
func NewModule(pool *pgxpool.Pool, registry *providers.Registry, resolver service.Resolver, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, resolver, registry, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "search"
}

// CacheRepo returns the cache repository for the sweep worker.
func (m *Module) CacheRepo() *repository.Repo {
	return m.repo
}

// RegisterRoutes mounts search routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/search", m.handler.Search)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
