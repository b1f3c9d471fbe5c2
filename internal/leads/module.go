// Package leads provides the lead management bounded context.
package leads

import (
	apphttp "inspection_portal/internal/http"
	"inspection_portal/internal/leads/handler"
	"inspection_portal/internal/leads/repository"
	"inspection_portal/internal/leads/service"
	"inspection_portal/platform/logger"
	"inspection_portal/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, audit service.AuditRecorder, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), audit, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the leads service, used by quotes to store submissions.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.Protected.Group("/leads")
	leads.GET("", m.handler.List)
	leads.GET("/stats", m.handler.Stats)
	leads.GET("/export", m.handler.Export)
	leads.GET("/:id", m.handler.GetByID)
	leads.PATCH("/:id", m.handler.Update)
}

var _ apphttp.Module = (*Module)(nil)
