// Package reports provides the sample-report download bounded context.
package reports

import (
	"inspection_portal/internal/adapters/storage"
	"inspection_portal/internal/events"
	apphttp "inspection_portal/internal/http"
	"inspection_portal/internal/reports/handler"
	"inspection_portal/internal/reports/repository"
	"inspection_portal/internal/reports/service"
	"inspection_portal/platform/config"
	"inspection_portal/platform/logger"
	"inspection_portal/platform/phone"
	"inspection_portal/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the report downloads module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the report downloads module. store may be nil when
// object storage is not configured.
func NewModule(
	pool *pgxpool.Pool,
	store storage.StorageService,
	cfg config.ReportConfig,
	phones *phone.Normalizer,
	eventBus events.Bus,
	audit service.AuditRecorder,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	svc := service.New(repository.New(pool), store, cfg, phones, eventBus, audit, log)
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reports"
}

// RegisterRoutes mounts report download routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	capture := []gin.HandlerFunc{m.handler.Capture}
	if ctx.FormRateLimiter != nil {
		capture = append([]gin.HandlerFunc{ctx.FormRateLimiter.RateLimit()}, capture...)
	}
	ctx.V1.POST("/report-downloads", capture...)

	downloads := ctx.Protected.Group("/report-downloads")
	downloads.GET("", m.handler.List)
	downloads.GET("/:id", m.handler.GetByID)
	downloads.PATCH("/:id", m.handler.Update)
}

var _ apphttp.Module = (*Module)(nil)
