// Package audit provides the append-only audit log of admin mutations.
package audit

import (
	"inspection_portal/internal/audit/handler"
	"inspection_portal/internal/audit/repository"
	"inspection_portal/internal/audit/service"
	apphttp "inspection_portal/internal/http"
	"inspection_portal/platform/logger"
	"inspection_portal/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the audit bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the audit module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "audit"
}

// Recorder returns the service other modules record mutations through.
func (m *Module) Recorder() *service.Service {
	return m.service
}

// RegisterRoutes mounts audit routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/audit-logs", m.handler.List)
}

var _ apphttp.Module = (*Module)(nil)
